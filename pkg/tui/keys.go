package tui

import "github.com/charmbracelet/bubbles/v2/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Parent   key.Binding
	Edit     key.Binding
	Move     key.Binding
	Detail   key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Mode     key.Binding
	Pinned   key.Binding
	Delete   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys("enter", "space", "right", "l"), key.WithHelp("enter", "open/close")),
		Parent:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "close")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Detail:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open detail")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Mode:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "edit/move")),
		Pinned:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "use pinned")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete/restore")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	}
}

// treeHelp is the footer key map for the tree.
type treeHelp struct{ k keyMap }

func (h treeHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Toggle, h.k.Edit, h.k.Move, h.k.Detail, h.k.Reload, h.k.Help, h.k.Quit}
}

func (h treeHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.PageUp, h.k.PageDown},
		{h.k.Toggle, h.k.Parent, h.k.Reload},
		{h.k.Edit, h.k.Move, h.k.Detail},
		{h.k.Help, h.k.Quit},
	}
}

// modalHelp is the footer key map while the modal is open.
type modalHelp struct{ k keyMap }

func (h modalHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Submit, h.k.Cancel, h.k.Mode, h.k.Pinned, h.k.Delete}
}

func (h modalHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
