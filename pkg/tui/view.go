package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/stow/pkg/assoc"
	"tableflip.dev/stow/pkg/remote"
	"tableflip.dev/stow/pkg/tree"
)

const indentWidth = 2

// View implements tea.Model.
func (m *Model) View() string {
	header := m.theme.Header.Title.Render("stow") + " " + m.theme.Header.Server.Render(m.cfg.Server)
	body := m.viewBody()
	status := m.notice
	if status == "" {
		status = m.eng.Status()
	}
	footer := m.theme.Footer.Status.Render(m.clip(status))
	helpView := m.viewHelp()
	return lipgloss.JoinVertical(lipgloss.Left, m.clip(header), body, footer, helpView)
}

func (m *Model) viewHelp() string {
	var km help.KeyMap = treeHelp{m.keys}
	if m.eng.Modal() != nil {
		km = modalHelp{m.keys}
	}
	if m.help.ShowAll {
		return m.theme.Footer.Help.Render(m.help.View(km))
	}
	return m.theme.Footer.Help.Render(m.clip(m.help.View(km)))
}

func (m *Model) helpHeight() int {
	return lipgloss.Height(m.viewHelp())
}

func (m *Model) viewBody() string {
	h := m.bodyHeight()
	w := max(m.width, 1)
	if err := m.eng.Fatal(); err != nil {
		b := m.theme.Banner
		banner := b.Frame.Render(lipgloss.JoinVertical(lipgloss.Left,
			b.Title.Render("cannot load the inventory"),
			b.Body.Render(remote.Message(err)),
			"",
			b.Body.Render("press r to retry"),
		))
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, banner)
	}
	if len(m.rows) == 0 {
		msg := "no items"
		if m.eng.Loading() {
			msg = m.spinner.View() + " loading…"
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, msg)
	}
	if m.eng.Modal() != nil {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.viewModal())
	}

	lines := make([]string, 0, h)
	for i := m.offset; i < len(m.rows) && len(lines) < h; i++ {
		lines = append(lines, m.viewRow(m.rows[i], i == m.cursor))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewRow(row tree.Row, selected bool) string {
	t := m.theme.Tree
	n := row.Node
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", row.Depth*indentWidth))
	switch {
	case n.LoadingChildren:
		b.WriteString(t.Loading.Render(m.spinner.View()))
	case n.Open:
		b.WriteString(t.Disclosure.Render("▾"))
	case n.Expandable():
		b.WriteString(t.Disclosure.Render("▸"))
	default:
		b.WriteString(t.Leaf.Render("·"))
	}
	b.WriteString(" ")

	label := m.clipLabel(n.Data.DisplayName(), row.Depth)
	style := t.Row
	if n.Data.Deleted {
		style = t.Deleted
	}
	if selected {
		style = style.Inherit(t.Selected).Reverse(true)
	}
	b.WriteString(style.Render(label))

	if glyphs := assoc.Glyphs(n.Data.Associations); len(glyphs) > 0 {
		b.WriteString(" ")
		b.WriteString(t.Glyph.Render(strings.Join(glyphs, "")))
	}
	if n.LoadErr != "" {
		b.WriteString(" ")
		b.WriteString(t.Error.Render("! " + n.LoadErr))
	}
	return m.clip(b.String())
}

func (m *Model) clipLabel(label string, depth int) string {
	if m.width <= 0 {
		return label
	}
	room := m.width - depth*indentWidth - 2
	if room <= 1 {
		return ""
	}
	return truncate.StringWithTail(label, uint(room), "…")
}

func (m *Model) clip(s string) string {
	if m.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(m.width), "…")
}
