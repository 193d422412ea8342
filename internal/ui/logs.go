package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/mmwdash/internal/logtail"
)

// fetchLogs reads the tail of the dashboard's own log file.
func (m Model) fetchLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		entries, err := logtail.Tail(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

// resizeLogViewport fits the viewport inside the logs box.
func (m *Model) resizeLogViewport() {
	w, h := max(m.width-4, 1), max(m.height-5, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(w, h)
	}
	m.logViewport.Width = w
	m.logViewport.Height = h
	m.updateLogViewport()
}

// updateLogViewport re-renders the entries into the viewport.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		return
	}
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the logs overlay with a status line below the box.
func (m Model) renderLogs(height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	title := "Dashboard log"
	if m.logPath != "" {
		title += "  " + truncateMiddle(m.logPath, max(m.width/2, 10))
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, max(height-1, 3), true)

	follow := "off"
	if m.logFollow {
		follow = "on"
	}
	status := fmt.Sprintf("%d lines  auto-tail %s", len(m.logEntries), follow)
	line := bg.Render(status, styles.FaintText)
	if m.logErr != nil {
		line += bg.Spaces(2) + bg.Render(truncate(m.logErr.Error(), 60), styles.DangerText)
	}
	return box + "\n" + line
}

// renderLogContent colors each entry by level.
func (m *Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	if m.logPath == "" {
		return bg.Render("Logging to file is disabled.", styles.FaintText)
	}
	if len(m.logEntries) == 0 {
		return bg.Render("No log entries yet.", styles.FaintText)
	}

	width := m.logViewport.Width
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.colorizeEntry(e, styles, bg, width))
	}
	return strings.Join(lines, "\n")
}

// colorizeEntry renders one entry as "time LEVEL [component] message k=v".
func (m *Model) colorizeEntry(e logtail.Entry, styles Styles, bg BgStyle, width int) string {
	if e.Level == zerolog.NoLevel && e.Fields == nil && e.Component == "" {
		return bg.Render(truncate(e.Message, width), styles.Text)
	}

	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
	}
	parts = append(parts, bg.Render(strings.ToUpper(e.Level.String()), levelStyle(e.Level, styles).Bold(true)))
	if e.Component != "" {
		parts = append(parts, bg.Render("["+e.Component+"]", styles.AccentText))
	}

	used := 0
	for _, p := range parts {
		used += lipgloss.Width(p) + 1
	}
	rest := e.Message
	for _, k := range e.Keys {
		rest += " " + k + "=" + e.Fields[k]
	}
	if e.Error != "" {
		rest += " error=" + e.Error
	}
	msgStyle := styles.Text
	if e.Level >= zerolog.ErrorLevel {
		msgStyle = styles.DangerText
	}
	parts = append(parts, bg.Render(truncate(rest, max(width-used, 10)), msgStyle))
	return strings.Join(parts, bg.Space())
}

func levelStyle(level zerolog.Level, styles Styles) lipgloss.Style {
	switch level {
	case zerolog.InfoLevel:
		return styles.SuccessText
	case zerolog.WarnLevel:
		return styles.WarningText
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return styles.DangerText
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return styles.InfoText
	default:
		return styles.Text
	}
}

// handleLogsKey scrolls the logs overlay.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.showLogs = false
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
			return m, m.fetchLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logFollow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logFollow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
		m.logFollow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
		m.logFollow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfViewDown()
		m.logFollow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfViewUp()
		m.logFollow = false
	}
	return m, nil
}
