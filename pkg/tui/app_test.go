package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/remote/remotetest"
	"tableflip.dev/stow/pkg/session"
	"tableflip.dev/stow/pkg/store"
	"tableflip.dev/stow/pkg/tui/clickgate"
)

type harness struct {
	m      *Model
	queue  []engine.Task
	opened []string
	svc    *remotetest.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pinned := remotetest.Item("P")
	pinned.Pinned = true
	svc := remotetest.New().
		Put(remotetest.Item("A", "B", "C"), remotetest.Item("B", "A"), remotetest.Item("C"), pinned).
		SetRoots("A", "P")
	h := &harness{svc: svc}
	eng := engine.New(engine.Options{Service: svc, PinnedQuery: remotetest.PinnedQuery})
	h.m = New(context.Background(), Options{
		Engine: eng,
		Config: store.Config{
			Server:      "http://inventory.test",
			ClickDelay:  5 * time.Millisecond,
			DetailURL:   "http://inventory.test/items/{id}",
			PinnedQuery: remotetest.PinnedQuery,
		},
		Opener: func(_ context.Context, url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	h.m.now = func() time.Time { return now }
	h.m.exec = func(task engine.Task) tea.Cmd {
		h.queue = append(h.queue, task)
		return nil
	}
	t.Cleanup(h.m.shutdown)
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	h.m.Init()
	h.settle()
	return h
}

// settle runs queued engine tasks until none remain.
func (h *harness) settle() {
	for len(h.queue) > 0 {
		task := h.queue[0]
		h.queue = h.queue[1:]
		h.m.Update(task(context.Background()))
	}
}

func (h *harness) key(k tea.KeyPressMsg) tea.Cmd {
	_, cmd := h.m.Update(k)
	return cmd
}

// typeText sends one key press per rune.
func (h *harness) typeText(s string) {
	for _, r := range s {
		h.key(tea.KeyPressMsg{Text: string(r), Code: r})
	}
}

func press(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Text: string(r), Code: r}
}

func (h *harness) view() string {
	return ansi.Strip(h.view())
}

func (h *harness) selectID(t *testing.T, id string) {
	t.Helper()
	for i, row := range h.m.rows {
		if row.Node.ID == id {
			h.m.cursor = i
			return
		}
	}
	t.Fatalf("row %q not visible", id)
}

func (h *harness) rowY(t *testing.T, id string) int {
	t.Helper()
	for i, row := range h.m.rows {
		if row.Node.ID == id {
			return i - h.m.offset + headerHeight
		}
	}
	t.Fatalf("row %q not visible", id)
	return 0
}

func TestInitialLoad(t *testing.T) {
	h := newHarness(t)
	if len(h.m.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(h.m.rows))
	}
	view := h.view()
	if !strings.Contains(view, "A") || !strings.Contains(view, "P") {
		t.Fatalf("view missing roots:\n%s", view)
	}
}

func TestEnterExpands(t *testing.T) {
	h := newHarness(t)
	h.selectID(t, "A")
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	h.settle()
	if len(h.m.rows) != 4 {
		t.Fatalf("rows = %d, want 4 after expanding A", len(h.m.rows))
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(h.m.rows) != 2 {
		t.Fatalf("rows = %d, want 2 after collapsing A", len(h.m.rows))
	}
}

func TestEditModalRename(t *testing.T) {
	h := newHarness(t)
	h.selectID(t, "A")
	h.key(press('e'))
	h.settle()
	if h.m.eng.Modal() == nil {
		t.Fatal("modal not open")
	}
	if !strings.Contains(h.view(), "pinned: P") {
		t.Fatalf("suggestion not shown:\n%s", h.view())
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyBackspace})
	h.typeText("Crate")
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	h.settle()
	if h.m.eng.Modal() != nil {
		t.Fatal("modal still open")
	}
	if got := h.m.eng.Forest().Find("A").Data.Name; got != "Crate" {
		t.Fatalf("name = %q", got)
	}
}

func TestModalEscapeCloses(t *testing.T) {
	h := newHarness(t)
	h.selectID(t, "A")
	h.key(press('e'))
	h.key(tea.KeyPressMsg{Code: tea.KeyEscape})
	if h.m.eng.Modal() != nil {
		t.Fatal("esc did not close the modal")
	}
	h.settle()
	if h.m.eng.Modal() != nil {
		t.Fatal("late suggestion reopened the modal")
	}
}

func TestModalMoveWithPinned(t *testing.T) {
	h := newHarness(t)
	h.selectID(t, "A")
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	h.settle()
	h.selectID(t, "C")
	h.key(press('m'))
	h.settle()
	if s := h.m.eng.Modal(); s == nil || s.Mode != session.Move {
		t.Fatalf("modal = %+v", s)
	}
	h.key(tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl})
	if h.m.input.Value() != "P" {
		t.Fatalf("input = %q", h.m.input.Value())
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	h.settle()
	if h.m.eng.Modal() != nil {
		t.Fatal("modal open after move")
	}
	if len(h.m.rows) != 2 {
		t.Fatalf("rows = %d, want the reloaded roots only", len(h.m.rows))
	}
}

func TestClickOpensModalAfterDelay(t *testing.T) {
	h := newHarness(t)
	y := h.rowY(t, "A")
	_, cmd := h.m.Update(tea.MouseClickMsg{X: 10, Y: y, Button: tea.MouseLeft})
	if cmd == nil {
		t.Fatal("click did not schedule")
	}
	if h.m.gate.State() != clickgate.Pending {
		t.Fatalf("gate = %s", h.m.gate.State())
	}
	h.m.Update(cmd())
	if s := h.m.eng.Modal(); s == nil || s.ID != "A" {
		t.Fatalf("modal = %+v", s)
	}
}

func TestDoubleClickOpensDetail(t *testing.T) {
	h := newHarness(t)
	y := h.rowY(t, "A")
	click := tea.MouseClickMsg{X: 10, Y: y, Button: tea.MouseLeft}
	_, first := h.m.Update(click)
	_, second := h.m.Update(click)
	if second == nil {
		t.Fatal("double click returned no command")
	}
	h.m.Update(second())
	if len(h.opened) != 1 || h.opened[0] != "http://inventory.test/items/A" {
		t.Fatalf("opened = %q", h.opened)
	}
	h.m.Update(first())
	if h.m.eng.Modal() != nil {
		t.Fatal("cancelled single click still opened the modal")
	}
}

func TestMiddleClickOpensDetail(t *testing.T) {
	h := newHarness(t)
	y := h.rowY(t, "P")
	_, cmd := h.m.Update(tea.MouseClickMsg{X: 10, Y: y, Button: tea.MouseMiddle})
	h.m.Update(cmd())
	if len(h.opened) != 1 || h.opened[0] != "http://inventory.test/items/P" {
		t.Fatalf("opened = %q", h.opened)
	}
}

func TestClickDisclosureToggles(t *testing.T) {
	h := newHarness(t)
	y := h.rowY(t, "A")
	h.m.Update(tea.MouseClickMsg{X: 0, Y: y, Button: tea.MouseLeft})
	h.settle()
	if !h.m.eng.Forest().Find("A").Open {
		t.Fatal("disclosure click did not expand")
	}
}

func TestRootFailureBanner(t *testing.T) {
	h := newHarness(t)
	h.svc.Fail(remotetest.OpRoots, "", remotetest.ErrBoom)
	h.key(press('r'))
	h.settle()
	if !strings.Contains(h.view(), "cannot load the inventory") {
		t.Fatalf("banner missing:\n%s", h.view())
	}
	h.svc.Fail(remotetest.OpRoots, "", nil)
	h.key(press('r'))
	h.settle()
	if h.m.eng.Fatal() != nil || len(h.m.rows) != 2 {
		t.Fatal("retry did not recover")
	}
}

func TestQuitClosesEngine(t *testing.T) {
	h := newHarness(t)
	cmd := h.key(press('q'))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
	if !h.m.eng.Closed() {
		t.Fatal("engine not closed")
	}
}

func TestRowsRenderBeforeFirstResize(t *testing.T) {
	h := newHarness(t)
	h.m.width, h.m.height = 0, 0
	view := h.view()
	if !strings.Contains(view, "▸ A") || !strings.Contains(view, "· P") {
		t.Fatalf("rows truncated before the terminal size is known:\n%s", view)
	}
}

func TestSpaceTogglesAndWheelScrolls(t *testing.T) {
	h := newHarness(t)
	h.selectID(t, "A")
	h.key(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	h.settle()
	if !h.m.eng.Forest().Find("A").Open {
		t.Fatal("space did not expand A")
	}
	h.m.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	if h.m.cursor != 1 {
		t.Fatalf("cursor = %d after wheel down, want 1", h.m.cursor)
	}
}
