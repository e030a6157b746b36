// Package tui is the interactive tree browser.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/termenv"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/session"
	"tableflip.dev/stow/pkg/store"
	"tableflip.dev/stow/pkg/tree"
	"tableflip.dev/stow/pkg/tui/clickgate"
	"tableflip.dev/stow/pkg/tui/theme"
)

// Options configure the UI.
type Options struct {
	Engine *engine.Engine
	Config store.Config
	// Opener shows item detail pages. Defaults to SystemOpener.
	Opener Opener
	Logger *slog.Logger
	// Theme defaults to theme.Default.
	Theme *theme.Theme
}

type gateFiredMsg struct{ seq uint64 }

// Describe renders the message for logs.
func (m gateFiredMsg) Describe() string { return fmt.Sprintf("seq:%d", m.seq) }

type detailOpenedMsg struct {
	id  string
	url string
	err error
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	eng    *engine.Engine
	cfg    store.Config
	gate   *clickgate.Gate
	opener Opener
	log    *slog.Logger
	now    func() time.Time
	exec   func(engine.Task) tea.Cmd

	theme   theme.Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	width  int
	height int
	cursor int
	offset int

	forest *tree.Forest
	rows   []tree.Row
	notice string
}

// New builds the model. The engine is not reloaded until Init.
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opener := opts.Opener
	if opener == nil {
		opener = SystemOpener
	}
	th := theme.Default()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	input := textinput.New()
	input.CharLimit = 200
	input.Prompt = "› "

	m := &Model{
		ctx:     ctx,
		eng:     opts.Engine,
		cfg:     opts.Config,
		gate:    clickgate.New(opts.Config.ClickDelay),
		opener:  opener,
		log:     log,
		now:     time.Now,
		theme:   th,
		keys:    defaultKeys(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:   input,
	}
	m.exec = m.runTask
	m.refresh()
	return m
}

// Run launches the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if opts.Theme == nil {
		th := theme.ForBackground(termenv.HasDarkBackground())
		opts.Theme = &th
	}
	m := New(ctx, opts)
	defer m.shutdown()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) runTask(t engine.Task) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return t(ctx)
	}
}

func (m *Model) run(tasks ...engine.Task) tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range tasks {
		if t != nil {
			cmds = append(cmds, m.exec(t))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) shutdown() {
	m.gate.Stop()
	m.eng.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.run(m.eng.Reload()), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if d, ok := msg.(interface{ Describe() string }); ok {
		m.log.Debug("ui message", "type", fmt.Sprintf("%T", msg), "detail", d.Describe())
	}

	var cmd tea.Cmd
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.input.SetWidth(max(m.modalWidth()-8, 10))
		m.scroll()
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(v)
	case gateFiredMsg:
		if id, ok := m.gate.Fire(v.seq); ok {
			cmd = m.openModal(id, session.Edit)
		}
	case detailOpenedMsg:
		if v.err != nil {
			m.notice = fmt.Sprintf("open %s failed: %v", v.url, v.err)
		} else {
			m.notice = "opened " + v.url
		}
	case engine.Msg:
		follow := m.eng.Apply(v)
		m.notice = ""
		m.syncModalInput()
		cmd = m.run(follow...)
	case tea.KeyPressMsg:
		if m.eng.Modal() != nil {
			cmd = m.updateModal(v)
		} else {
			cmd = m.updateTree(v)
		}
	case tea.MouseWheelMsg:
		m.updateWheel(v.Mouse())
	case tea.MouseClickMsg:
		cmd = m.updateClick(v.Mouse())
	}
	m.refresh()
	return m, cmd
}

func (m *Model) updateTree(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return tea.Quit
	case key.Matches(msg, m.keys.Reload):
		return m.run(m.eng.Reload())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	if m.eng.Fatal() != nil {
		return nil
	}
	row, ok := m.selected()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.bodyHeight())
	case !ok:
		return nil
	case key.Matches(msg, m.keys.Toggle):
		return m.run(m.eng.Toggle(row.Node.ID))
	case key.Matches(msg, m.keys.Parent):
		if row.Node.Open {
			m.eng.Collapse(row.Node.ID)
			return nil
		}
		m.selectParent()
	case key.Matches(msg, m.keys.Edit):
		return m.openModal(row.Node.ID, session.Edit)
	case key.Matches(msg, m.keys.Move):
		return m.openModal(row.Node.ID, session.Move)
	case key.Matches(msg, m.keys.Detail):
		return m.openDetail(row.Node.ID)
	}
	return nil
}

func (m *Model) updateWheel(msg tea.Mouse) {
	if m.eng.Modal() != nil || m.eng.Fatal() != nil {
		return
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.move(-1)
	case tea.MouseWheelDown:
		m.move(1)
	}
}

func (m *Model) updateClick(msg tea.Mouse) tea.Cmd {
	if m.eng.Modal() != nil || m.eng.Fatal() != nil {
		return nil
	}
	idx, ok := m.rowAt(msg.Y)
	if !ok {
		return nil
	}
	m.cursor = idx
	row := m.rows[idx]
	id := row.Node.ID
	switch msg.Button {
	case tea.MouseMiddle:
		m.gate.Middle(id)
		return m.openDetail(id)
	case tea.MouseLeft:
		if msg.X < disclosureEnd(row) {
			return m.run(m.eng.Toggle(id))
		}
		out := m.gate.Click(id, m.now())
		switch out.Kind {
		case clickgate.Schedule:
			seq := out.Seq
			return tea.Tick(out.Delay, func(time.Time) tea.Msg { return gateFiredMsg{seq: seq} })
		case clickgate.OpenDetail:
			return m.openDetail(id)
		}
	}
	return nil
}

func (m *Model) openDetail(id string) tea.Cmd {
	url := m.cfg.DetailLink(id)
	if url == "" {
		m.notice = "detail_url is not configured"
		return nil
	}
	ctx, opener := m.ctx, m.opener
	return func() tea.Msg {
		return detailOpenedMsg{id: id, url: url, err: opener(ctx, url)}
	}
}

// refresh recomputes visible rows when the forest pointer changed.
func (m *Model) refresh() {
	if f := m.eng.Forest(); f != m.forest {
		m.forest = f
		m.rows = f.Visible()
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

func (m *Model) selected() (tree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tree.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) move(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

func (m *Model) selectParent() {
	row, ok := m.selected()
	if !ok || row.Depth == 0 {
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Depth == row.Depth-1 {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *Model) scroll() {
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

const headerHeight = 1

func (m *Model) rowAt(y int) (int, bool) {
	idx := y - headerHeight + m.offset
	if y < headerHeight || y >= headerHeight+m.bodyHeight() || idx < 0 || idx >= len(m.rows) {
		return 0, false
	}
	return idx, true
}

func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return max(len(m.rows), 1)
	}
	return max(m.height-headerHeight-1-m.helpHeight(), 1)
}

func disclosureEnd(row tree.Row) int {
	return row.Depth*indentWidth + 2
}
