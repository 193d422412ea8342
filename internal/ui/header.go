package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mmwdash/internal/request"
	"github.com/five82/mmwdash/internal/router"
)

const logoText = "mmWave"

// connectionStatus classifies the snapshot into a header badge.
func (m Model) connectionStatus() (status, label string) {
	snap := m.snapshot
	switch {
	case request.IsSessionExpired(snap.LastError):
		return statusExpired, "SESSION EXPIRED"
	case snap.IsOffline():
		return statusOffline, "OFFLINE"
	case snap.LastError != nil:
		return statusError, "PARTIAL"
	}
	switch m.activeView() {
	case router.ViewMonitor:
		if snap.HasMonitor {
			return statusLive, "LIVE"
		}
	case router.ViewBigScreen:
		if snap.HasBigScreen {
			return statusLive, "LIVE"
		}
	default:
		return statusAway, "IDLE"
	}
	return statusWaiting, "WAITING"
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render(logoText, styles.Logo)}

	status, label := m.connectionStatus()
	parts = append(parts, styles.StatusStyle(status).Render(label))

	title := m.route.Title
	if m.popup != nil {
		title = m.popup.Title
	}
	if title != "" {
		parts = append(parts, bg.Render(title, styles.Text.Bold(true)))
	}
	if m.activeView() == router.ViewMonitor {
		parts = append(parts,
			bg.Render("User:", styles.MutedText)+bg.Space()+
				bg.Render(m.route.UID(), styles.AccentText))
	}
	if !compact {
		parts = append(parts, bg.Render(m.route.Path, styles.FaintText))
	}

	last := "never"
	if !m.snapshot.LastUpdated.IsZero() {
		last = m.snapshot.LastUpdated.Format("15:04:05")
	}
	parts = append(parts,
		bg.Render("Updated:", styles.MutedText)+bg.Space()+bg.Render(last, styles.Text))

	if n := m.snapshot.ConsecutiveFailures; n > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d failed", n), styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints, or the path prompt while it is open.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	line := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width)

	if m.navigating {
		return line.Render(m.navInput.View())
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.showLogs:
		followLabel := "Pause"
		if !m.logFollow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"l", "Close logs"},
			{"?", "More"},
		}
	case m.popup != nil:
		commands = []cmd{
			{"esc", "Close"},
			{"r", "Refresh"},
			{"l", "Logs"},
			{":", "Go"},
			{"?", "More"},
		}
	case m.route.View == router.ViewMonitor:
		commands = []cmd{
			{"[/]", "User"},
			{"b", "Big screen"},
			{"r", "Refresh"},
			{"l", "Logs"},
			{":", "Go"},
			{"T", "Theme"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"m", "Monitor"},
			{"b", "Big screen"},
			{"l", "Logs"},
			{":", "Go"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	if m.navError != "" {
		segments = append(segments, bg.Render(truncate(m.navError, 40), styles.DangerText))
	}
	return line.Render(strings.Join(segments, bg.Spaces(2)))
}
