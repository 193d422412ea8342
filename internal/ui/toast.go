package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastError
)

type toast struct {
	text    string
	level   toastLevel
	expires time.Time
}

type toastMsg struct {
	text  string
	level toastLevel
}

// pushToast appends a notification, dropping the oldest past MaxToasts.
func (m *Model) pushToast(msg toastMsg) {
	m.toasts = append(m.toasts, toast{text: msg.text, level: msg.level, expires: m.now().Add(ToastLifetime)})
	if extra := len(m.toasts) - MaxToasts; extra > 0 {
		m.toasts = m.toasts[extra:]
	}
}

// expireToasts drops notifications whose lifetime has passed.
func (m *Model) expireToasts() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// renderToasts renders the notification stack, newest last.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		color := m.theme.Info
		label := "INFO"
		if t.level == toastError {
			color = m.theme.Danger
			label = "ERROR"
		}
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.FocusBg)).
			Foreground(lipgloss.Color(m.theme.Text)).
			Padding(0, 1)
		badge := lipgloss.NewStyle().
			Background(lipgloss.Color(color)).
			Foreground(lipgloss.Color(m.theme.Background)).
			Bold(true).
			Padding(0, 1).
			Render(label)
		lines = append(lines, badge+style.Render(truncate(t.text, max(m.width-12, 10))))
	}
	return strings.Join(lines, "\n")
}
