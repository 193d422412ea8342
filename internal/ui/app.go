package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mmwdash/internal/logtail"
	"github.com/five82/mmwdash/internal/prefs"
	"github.com/five82/mmwdash/internal/router"
	"github.com/five82/mmwdash/internal/state"
)

// Refresher is the part of the poller the UI drives.
type Refresher interface {
	Trigger() bool
	Watch(v router.View)
	Resume()
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Router    *router.Router
	Refresher Refresher
	Bridge    *Bridge
	LogPath   string
	StartPath string
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	router    *router.Router
	refresher Refresher
	bridge    *Bridge
	prefsPath string
	logPath   string
	pollTick  time.Duration
	now       func() time.Time

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	keys     keyMap
	showHelp bool

	// Routing
	route      router.Route
	popup      *router.Route
	navInput   textinput.Model
	navigating bool
	navError   string

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Notifications and pending confirmations, oldest first.
	toasts   []toast
	confirms []*confirmModal

	// Logs overlay
	showLogs    bool
	logFollow   bool
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
}

// New creates the model and navigates to the start path.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	rt := opts.Router
	if rt == nil {
		rt = router.New()
	}

	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = router.DefaultPath
	ti.CharLimit = 200

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		router:    rt,
		refresher: opts.Refresher,
		bridge:    opts.Bridge,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		now:       time.Now,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		navInput:  ti,
		logFollow: true,
	}

	start := opts.StartPath
	if strings.TrimSpace(start) == "" {
		start = router.HomePath
	}
	m.navigate(start)
	if m.route.Path == "" {
		m.navigate(router.HomePath)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		return m, nil

	case toastMsg:
		m.pushToast(msg)
		return m, nil

	case confirmMsg:
		m.confirms = append(m.confirms, newConfirmModal(msg))
		return m, nil

	case reloadMsg:
		m.reload()
		return m, nil

	case logsMsg:
		m.logEntries, m.logErr = msg.entries, msg.err
		m.updateLogViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if len(m.confirms) > 0 {
		return m.confirms[0].View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Dialogs and the path prompt take
// every key while they are open.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if len(m.confirms) > 0 {
		_, cmd, closed := m.confirms[0].Update(msg, m.keys)
		if closed {
			m.confirms = m.confirms[1:]
		}
		return m, cmd
	}

	if m.navigating {
		return m.handleNavInput(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Navigate):
		m.navigating = true
		m.navInput.SetValue("")
		m.navInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		if m.refresher != nil && !m.refresher.Trigger() {
			m.pushToast(toastMsg{text: "Refresh skipped, try again in a moment", level: toastInfo})
		}
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, m.fetchLogs()
		}
		return m, nil
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closePopup()
	case key.Matches(msg, m.keys.Monitor):
		uid := m.route.UID()
		if uid == "" {
			uid = m.snapshot.UID
		}
		if uid == "" {
			m.navigate(router.DefaultPath)
		} else {
			m.navigate(router.Monitor(uid))
		}
	case key.Matches(msg, m.keys.BigScreen):
		m.navigate(router.ShowPath)
	case key.Matches(msg, m.keys.NextUser):
		m.stepUser(1)
	case key.Matches(msg, m.keys.PrevUser):
		m.stepUser(-1)
	}
	return m, nil
}

// handleNavInput edits the path prompt.
func (m Model) handleNavInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		path := strings.TrimSpace(m.navInput.Value())
		m.navigating = false
		m.navInput.Blur()
		if path != "" {
			m.navigate(path)
		}
		return m, nil
	case tea.KeyEsc:
		m.navigating = false
		m.navInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.navInput, cmd = m.navInput.Update(msg)
	return m, cmd
}

// navigate asks the router for path and applies the outcome.
func (m *Model) navigate(path string) {
	nav, err := m.router.Navigate(path)
	if err != nil {
		m.navError = err.Error()
		m.pushToast(toastMsg{text: "Navigation failed: " + err.Error(), level: toastError})
		return
	}
	m.navError = ""

	if nav.Popup != nil {
		popup := *nav.Popup
		m.popup = &popup
		m.watch(popup.View)
		return
	}
	if nav.Cancelled {
		return
	}

	m.popup = nil
	m.route = nav.To
	if nav.To.View == router.ViewMonitor && m.store != nil {
		m.store.SetUID(nav.To.UID())
	}
	m.watch(nav.To.View)
	m.savePrefs()
}

// closePopup returns to the routed view.
func (m *Model) closePopup() {
	if m.popup == nil {
		return
	}
	m.popup = nil
	m.watch(m.route.View)
}

// stepUser moves the monitor view to the neighbouring numeric user id.
func (m *Model) stepUser(delta int) {
	if m.route.View != router.ViewMonitor || m.popup != nil {
		return
	}
	id, err := strconv.Atoi(m.route.UID())
	if err != nil {
		return
	}
	id += delta
	if id < 0 {
		return
	}
	m.navigate(router.Monitor(strconv.Itoa(id)))
}

func (m *Model) watch(v router.View) {
	if m.refresher == nil {
		return
	}
	m.refresher.Watch(v)
	m.refresher.Trigger()
}

// reload starts over from a clean state on the current route.
func (m *Model) reload() {
	if m.store != nil {
		m.store.Reset()
		m.snapshot = m.store.Snapshot()
	}
	if m.refresher != nil {
		m.refresher.Resume()
	}
	m.toasts = nil
	m.popup = nil
	m.showHelp = false

	path := m.route.Path
	if path == "" {
		path = router.HomePath
	}
	m.navigate(path)
}

// quit declines every pending dialog so no goroutine is left waiting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	for _, c := range m.confirms {
		c.answer(false)
	}
	m.confirms = nil
	return m, tea.Quit
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, LastPath: m.route.Path})
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.expireToasts()

	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.showLogs && m.logFollow {
		cmds = append(cmds, m.fetchLogs())
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// activeView is the view filling the content area.
func (m Model) activeView() router.View {
	if m.popup != nil {
		return m.popup.View
	}
	return m.route.View
}

// renderMain renders header, command bar, content and notifications.
func (m Model) renderMain() string {
	header := m.renderHeader()
	bar := m.renderCommandBar()
	toasts := m.renderToasts()

	contentHeight := m.height - 2
	if toasts != "" {
		contentHeight -= lipgloss.Height(toasts)
	}
	contentHeight = max(contentHeight, 3)

	parts := []string{header, bar, m.renderContent(contentHeight)}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	return strings.Join(parts, "\n")
}

// renderContent renders the main content area for the active view.
func (m Model) renderContent(height int) string {
	if m.showLogs {
		return m.renderLogs(height)
	}
	switch m.activeView() {
	case router.ViewMonitor:
		return m.renderMonitor(height)
	case router.ViewBigScreen:
		return m.renderBigScreen(height)
	default:
		return m.renderNotFound(height)
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type reloadMsg struct{}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if opts.Bridge != nil {
		opts.Bridge.Attach(p)
		defer opts.Bridge.Detach()
	}
	_, err := p.Run()
	return err
}
