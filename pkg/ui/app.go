// Package ui is the terminal presentation of the guide: a bubbletea model
// with a chapter sidebar, a scrolling content viewport, and a footer with
// prev/next navigation. All state changes go through nav and the widget
// arena; this package only draws them and routes keys.
package ui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/config"
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/highlight"
	"github.com/vanderheijden86/underhood/pkg/logging"
	"github.com/vanderheijden86/underhood/pkg/nav"
	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

const (
	headerHeight = 3
	footerHeight = 2
	sidebarWidth = 34
	statusTTL    = 2 * time.Second

	// sessionSlot is the arena slot holding the mount's highlight session.
	// Block slots are block indices and never negative.
	sessionSlot = -1
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// ScrollToTopMsg is nav's scroll event delivered through the update loop.
type ScrollToTopMsg nav.ScrollToTop

// ConfigReloadedMsg is sent by the config watcher after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

type clearStatusMsg struct{ seq int }

// Options configures NewModel. Catalog is required; everything else has a
// usable zero value.
type Options struct {
	Catalog    *catalog.Catalog
	Start      string
	Theme      theme.Theme
	Pool       *highlight.Pool
	Logger     *logging.Logger
	Config     *config.Config
	ConfigPath string // where appearance changes are saved; empty disables saving
	Links      []catalog.Link

	// ThemeOverride is the appearance forced for this run (--theme). Config
	// reloads leave it alone until the user toggles the appearance.
	ThemeOverride theme.Mode
}

// Model is the root bubbletea model.
type Model struct {
	nav     *nav.Controller
	arena   *widget.Arena
	pool    *highlight.Pool
	session *highlight.Session
	log     *logging.Logger

	cfg           *config.Config
	cfgPath       string
	links         []catalog.Link
	themeOverride theme.Mode

	theme   theme.Theme
	md      *MarkdownRenderer // content width
	mdInset *MarkdownRenderer // inside callouts and quizzes
	help    help.Model

	viewport viewport.Model
	tree     content.Tree
	stats    content.Stats
	sections []content.Section

	// focusables lists focusable block indices; focus indexes into it, -1 is
	// plain reading.
	focusables []int
	focus      int

	// blockStart/blockEnd are the first and last content line of each block.
	blockStart []int
	blockEnd   []int

	sidebarFocused bool
	cursor         int
	showHelp       bool
	showSections   bool
	sectionCursor  int

	status    string
	statusSeq int

	width       int
	height      int
	narrowWidth int
	ready       bool
	sized       bool
}

// NewModel builds the model and mounts the start chapter.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Theme.Renderer == nil {
		opts.Theme = theme.Plain()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if opts.ThemeOverride != "" {
		opts.Theme = opts.Theme.WithMode(opts.ThemeOverride)
	}

	m := Model{
		nav:           nav.New(opts.Catalog, opts.Start),
		arena:         widget.NewArena(),
		pool:          opts.Pool,
		log:           opts.Logger,
		cfg:           cfg,
		cfgPath:       opts.ConfigPath,
		links:         opts.Links,
		themeOverride: opts.ThemeOverride,
		theme:         opts.Theme,
		md:            NewMarkdownRenderer(78, opts.Theme),
		mdInset:       NewMarkdownRenderer(74, opts.Theme),
		help:          help.New(),
		viewport:      viewport.New(80, 20),
		focus:         -1,
		width:         80,
		height:        24,
		narrowWidth:   cfg.NarrowWidth,
	}
	m.styleHelp()
	m.mount()
	return m
}

// Init implements tea.Model. Highlighting starts with the first size.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.sized {
			m.sized = true
			m.nav.SetSidePanelOpen(!m.narrow())
		}
		m.ready = true
		m.resize()
		m.rebuild()
		return m, m.requestVisible()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.requestVisible())

	case ScrollToTopMsg:
		m.viewport.GotoTop()
		return m, m.requestVisible()

	case highlight.ResultMsg:
		if m.session != nil && m.session.Accept(msg) {
			m.rebuild()
		} else if msg.Err == nil {
			m.log.Debug("highlight result dropped", "key", msg.Key, "mount", msg.Mount.String(), "gen", msg.Gen)
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.log.Warn("config reload failed", "error", msg.Err)
			return m, m.flash("Config not reloaded: " + msg.Err.Error())
		}
		m.applyConfig(msg.Config)
		return m, tea.Batch(m.requestVisible(), m.flash("Config reloaded"))

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, keys.Help, keys.Escape, keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSections {
		return m, m.handleSectionKey(msg)
	}

	// A demo with an active text field gets every key.
	if w, ok := m.focusedDemo(); ok {
		if e, ok := w.(widget.Editor); ok && e.Editing() {
			w.Update(msg)
			m.rebuild()
			return m, nil
		}
	}

	if m.sidebarFocused && m.nav.SidePanelOpen() {
		if cmd, handled := m.handleSidebarKey(msg); handled {
			return m, cmd
		}
	} else if cmd, handled := m.handleFocusedKey(msg); handled {
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Next):
		if ev, ok := m.nav.Next(); ok {
			return m, m.navigated(ev)
		}
		return m, nil
	case key.Matches(msg, keys.Prev):
		if ev, ok := m.nav.Previous(); ok {
			return m, m.navigated(ev)
		}
		return m, nil
	case key.Matches(msg, keys.FocusNext):
		return m, m.moveFocus(1)
	case key.Matches(msg, keys.FocusPrev):
		return m, m.moveFocus(-1)
	case key.Matches(msg, keys.Panel):
		m.panelKey()
		return m, m.requestVisible()
	case key.Matches(msg, keys.Theme):
		m.themeOverride = ""
		m.setTheme(m.theme.Toggle())
		m.persistTheme()
		return m, m.requestVisible()
	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, keys.Sections):
		return m, m.openSections()
	case key.Matches(msg, keys.Escape):
		if m.nav.SidePanelOpen() && m.narrow() {
			m.nav.SetSidePanelOpen(false)
			m.sidebarFocused = false
			m.resize()
			m.rebuild()
			return m, m.requestVisible()
		}
		if m.focus >= 0 {
			m.focus = -1
			m.rebuild()
		}
		return m, nil
	case key.Matches(msg, keys.Top):
		m.viewport.GotoTop()
		return m, m.requestVisible()
	case key.Matches(msg, keys.Bottom):
		m.viewport.GotoBottom()
		return m, m.requestVisible()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, tea.Batch(cmd, m.requestVisible())
}

// handleSidebarKey handles keys while the chapter list has focus. Keys it
// does not own fall through to the global bindings.
func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	n := m.nav.Catalog().Len()
	switch {
	case key.Matches(msg, keys.Up):
		m.cursor = lo.Clamp(m.cursor-1, 0, n-1)
	case key.Matches(msg, keys.Down):
		m.cursor = lo.Clamp(m.cursor+1, 0, n-1)
	case key.Matches(msg, keys.Top):
		m.cursor = 0
	case key.Matches(msg, keys.Bottom):
		m.cursor = n - 1
	case key.Matches(msg, keys.Select):
		ch, ok := m.nav.Catalog().At(m.cursor)
		if !ok {
			return nil, true
		}
		narrow := m.narrow()
		ev, ok := m.nav.SelectChapterNarrow(ch.ID, narrow)
		if !ok {
			return nil, true
		}
		m.sidebarFocused = false
		if narrow {
			m.resize()
		}
		return m.navigated(ev), true
	case key.Matches(msg, keys.Escape, keys.FocusNext, keys.FocusPrev):
		m.sidebarFocused = false
		if m.narrow() {
			m.nav.SetSidePanelOpen(false)
			m.resize()
			m.rebuild()
			return m.requestVisible(), true
		}
	default:
		return nil, false
	}
	return nil, true
}

// handleFocusedKey offers msg to the focused block: the demo widget, the
// quiz, or the code excerpt.
func (m *Model) handleFocusedKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.focus < 0 {
		return nil, false
	}
	i := m.focusables[m.focus]
	switch b := m.tree[i].(type) {
	case content.Demo:
		w := widget.Obtain(m.arena, i, b.New)
		if w.Update(msg) {
			m.rebuild()
			return nil, true
		}
	case content.Quiz:
		if !key.Matches(msg, keys.Answer) {
			return nil, false
		}
		q := widget.Obtain(m.arena, i, b.NewState)
		if q.Select(answerIndex(msg.String())) {
			m.log.Debug("quiz answered", "chapter", m.nav.ActiveID(), "block", i, "feedback", q.Feedback().String())
			m.rebuild()
		}
		return nil, true
	case content.Code:
		if !key.Matches(msg, keys.Copy) {
			return nil, false
		}
		if err := clipboardWrite(b.Source); err != nil {
			m.log.Warn("copy failed", "file", b.Filename, "error", err)
			return m.flash("Copy failed: " + err.Error()), true
		}
		return m.flash("Copied " + b.Filename), true
	}
	return nil, false
}

// answerIndex maps a–d and 1–4 onto option indices.
func answerIndex(s string) int {
	if len(s) != 1 {
		return -1
	}
	switch c := s[0]; {
	case c >= 'a' && c <= 'd':
		return int(c - 'a')
	case c >= '1' && c <= '4':
		return int(c - '1')
	}
	return -1
}

func (m *Model) panelKey() {
	switch {
	case !m.nav.SidePanelOpen():
		m.nav.SetSidePanelOpen(true)
		m.sidebarFocused = true
		m.cursor = m.activeIndex()
	case !m.sidebarFocused:
		m.sidebarFocused = true
		m.cursor = m.activeIndex()
	default:
		m.nav.SetSidePanelOpen(false)
		m.sidebarFocused = false
	}
	m.resize()
	m.rebuild()
}

// navigated remounts when the chapter changed and schedules the scroll.
func (m *Model) navigated(ev nav.ScrollToTop) tea.Cmd {
	if ev.Changed {
		m.mount()
		m.rebuild()
	}
	m.cursor = m.activeIndex()
	return func() tea.Msg { return ScrollToTopMsg(ev) }
}

// mount gives the active chapter a fresh arena mount: new widget state, a
// new highlight session, and nothing focused.
func (m *Model) mount() {
	ch := m.nav.Active()
	id := m.arena.Mount(ch.ID)
	m.tree = ch.Render()
	m.focusables = m.tree.Focusables()
	m.focus = -1
	m.stats = content.Collect(m.tree)
	m.sections = content.Outline(m.tree)
	m.showSections = false
	m.sectionCursor = 0
	m.session = nil
	if m.pool != nil {
		pool := m.pool
		m.session = widget.Obtain(m.arena, sessionSlot, func() *highlight.Session { return pool.Session(id) })
	}
	m.cursor = m.activeIndex()
	m.log.Info("chapter mounted", "chapter", ch.ID, "mount", id.String())
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	n := len(m.focusables)
	if n == 0 {
		return nil
	}
	switch {
	case m.focus < 0 && delta > 0:
		m.focus = 0
	case m.focus < 0:
		m.focus = n - 1
	default:
		m.focus = (m.focus + delta + n) % n
	}
	m.rebuild()
	i := m.focusables[m.focus]
	start, end := m.blockStart[i], m.blockEnd[i]
	top, h := m.viewport.YOffset, m.viewport.Height
	if start < top || end >= top+h {
		m.viewport.SetYOffset(max(0, start-1))
	}
	return m.requestVisible()
}

func (m *Model) setTheme(th theme.Theme) {
	m.theme = th
	m.md.SetTheme(th)
	m.mdInset.SetTheme(th)
	m.styleHelp()
	if m.session != nil {
		m.session.Invalidate()
	}
	m.rebuild()
}

// persistTheme writes the appearance back to the config file, if there is
// one. Failures are logged; the toggle itself already happened.
func (m *Model) persistTheme() {
	if m.cfgPath == "" {
		return
	}
	c := *m.cfg
	c.Theme = string(m.theme.Mode())
	if err := c.Save(m.cfgPath); err != nil {
		m.log.Warn("saving theme failed", "path", m.cfgPath, "error", err)
		return
	}
	m.cfg = &c
}

func (m *Model) applyConfig(c *config.Config) {
	m.cfg = c
	if c.NarrowWidth > 0 {
		m.narrowWidth = c.NarrowWidth
	}
	if m.pool != nil {
		m.pool.SetStyles(c.Highlight.StyleDark, c.Highlight.StyleLight)
	}
	if m.themeOverride == "" {
		m.setTheme(m.theme.WithMode(c.Mode()))
	}
	m.resize()
	m.rebuild()
	m.log.Info("config reloaded", "theme", c.Theme, "narrow_width", c.NarrowWidth)
}

func (m *Model) flash(s string) tea.Cmd {
	m.statusSeq++
	m.status = s
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) resize() {
	w := m.contentWidth()
	m.viewport.Width = w
	m.viewport.Height = max(3, m.height-headerHeight-footerHeight)
	m.viewport.Style = m.theme.Style().PaddingLeft(1).PaddingRight(1)
	m.md.SetWidth(max(20, w-2))
	m.mdInset.SetWidth(max(16, w-6))
	m.help.Width = m.width
}

func (m Model) contentWidth() int {
	if m.nav.SidePanelOpen() && !m.narrow() {
		return max(20, m.width-sidebarWidth)
	}
	return m.width
}

func (m Model) narrow() bool {
	return m.width < m.narrowWidth
}

// requestVisible asks for highlighting of every excerpt that overlaps the
// viewport and has not been requested yet.
func (m *Model) requestVisible() tea.Cmd {
	if m.session == nil || !m.ready {
		return nil
	}
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height
	var cmds []tea.Cmd
	for i, b := range m.tree {
		c, ok := b.(content.Code)
		if !ok || i >= len(m.blockStart) {
			continue
		}
		if m.blockEnd[i] < top || m.blockStart[i] >= bottom {
			continue
		}
		k := blockKey(i)
		if m.session.Requested(k) {
			continue
		}
		if cmd := m.session.Request(k, c.Source, c.Lang(), m.theme.IsDark()); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) focusedDemo() (widget.Interactive, bool) {
	if m.focus < 0 {
		return nil, false
	}
	i := m.focusables[m.focus]
	d, ok := m.tree[i].(content.Demo)
	if !ok {
		return nil, false
	}
	return widget.Obtain(m.arena, i, d.New), true
}

func (m Model) activeIndex() int {
	i, _ := m.nav.Position()
	return i
}

// ActiveChapterID is the chapter on screen.
func (m Model) ActiveChapterID() string { return m.nav.ActiveID() }

// Focused returns the focused block index, or -1.
func (m Model) Focused() int {
	if m.focus < 0 {
		return -1
	}
	return m.focusables[m.focus]
}

func (m Model) SidePanelOpen() bool   { return m.nav.SidePanelOpen() }
func (m Model) SidebarFocused() bool  { return m.sidebarFocused }
func (m Model) HelpVisible() bool     { return m.showHelp }
func (m Model) SectionsVisible() bool { return m.showSections }
func (m Model) Theme() theme.Theme    { return m.theme }
func (m Model) Status() string        { return m.status }
func (m Model) YOffset() int          { return m.viewport.YOffset }

// Mount is the arena mount id of the chapter on screen.
func (m Model) Mount() uuid.UUID {
	id, _ := m.arena.Current()
	return id
}
