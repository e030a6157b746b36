package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/stow/pkg/session"
)

func (m *Model) openModal(id string, mode session.Mode) tea.Cmd {
	lookup, err := m.eng.OpenModal(id)
	if err != nil {
		m.notice = err.Error()
		return nil
	}
	s := m.eng.Modal()
	s.SetMode(mode)
	m.loadInput(s)
	focus := m.input.Focus()
	return tea.Batch(m.run(lookup), focus, textinput.Blink)
}

func (m *Model) loadInput(s *session.Session) {
	if s.Mode == session.Move {
		m.input.Placeholder = "destination id or " + m.pinnedLabel()
		m.input.SetValue(s.Destination)
	} else {
		m.input.Placeholder = "name"
		m.input.SetValue(s.Name)
	}
	m.input.CursorEnd()
}

// saveInput copies the text field into the buffer for the current mode.
func (m *Model) saveInput(s *session.Session) {
	if s.Mode == session.Move {
		s.Destination = m.input.Value()
	} else {
		s.Name = m.input.Value()
	}
}

// syncModalInput blurs the field once the engine has closed the modal.
func (m *Model) syncModalInput() {
	if m.eng.Modal() == nil && m.input.Focused() {
		m.input.Blur()
		m.input.SetValue("")
	}
}

func (m *Model) updateModal(msg tea.KeyPressMsg) tea.Cmd {
	s := m.eng.Modal()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.eng.CloseModal()
		m.syncModalInput()
		return nil
	case s.Busy:
		return nil
	case key.Matches(msg, m.keys.Submit):
		m.saveInput(s)
		task := m.eng.SubmitModal()
		m.syncModalInput()
		return m.run(task)
	case key.Matches(msg, m.keys.Mode):
		m.saveInput(s)
		if s.Mode == session.Edit {
			s.SetMode(session.Move)
		} else {
			s.SetMode(session.Edit)
		}
		m.loadInput(s)
		return nil
	case key.Matches(msg, m.keys.Pinned):
		if s.UseSuggestion() {
			m.loadInput(s)
		}
		return nil
	case key.Matches(msg, m.keys.Delete):
		deleted := false
		if n := m.eng.Forest().Find(s.ID); n != nil {
			deleted = n.Data.Deleted
		}
		return m.run(m.eng.DeleteFromModal(!deleted))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.saveInput(s)
	return cmd
}

func (m *Model) pinnedLabel() string {
	if q := strings.TrimSpace(m.cfg.PinnedQuery); q != "" {
		return q
	}
	return "pinned"
}

func (m *Model) modalWidth() int {
	w := m.width * 2 / 3
	if w < 40 {
		w = min(40, max(m.width, 20))
	}
	return w
}

func (m *Model) viewModal() string {
	s := m.eng.Modal()
	t := m.theme.Modal
	label := s.ID
	deleted := false
	if n := m.eng.Forest().Find(s.ID); n != nil {
		label = n.Data.DisplayName()
		deleted = n.Data.Deleted
	}

	edit, move := t.Tab, t.Tab
	if s.Mode == session.Move {
		move = t.ActiveTab
	} else {
		edit = t.ActiveTab
	}
	lines := []string{
		t.Title.Render(label),
		edit.Render("edit") + move.Render("move"),
		"",
		m.input.View(),
	}
	if s.Suggestion != nil {
		lines = append(lines, t.Suggestion.Render("pinned: "+s.Suggestion.Label()+" (ctrl+p)"))
	}
	if s.Busy {
		lines = append(lines, m.spinner.View()+" saving…")
	}
	if s.Err != "" {
		lines = append(lines, t.Error.Render(s.Err))
	}
	action := "ctrl+d delete"
	if deleted {
		action = "ctrl+d restore"
	}
	lines = append(lines, "", t.Hint.Render("enter save · esc cancel · tab edit/move · "+action))
	body := t.Body.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return t.Frame.Width(m.modalWidth()).Render(body)
}
