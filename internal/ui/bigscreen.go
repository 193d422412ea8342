package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mmwdash/internal/vitals"
)

// renderBigScreen renders the aggregate wall display. Wide terminals get the
// three summary panels side by side; the warning list always spans the width.
func (m Model) renderBigScreen(height int) string {
	if !m.snapshot.HasBigScreen {
		return m.renderWaiting("Big screen", height)
	}
	b := m.snapshot.BigScreen

	if m.width < LayoutCompactWidth {
		third := max(height/4, 4)
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTitledBox("Overview", m.bigScreenOverview(b), m.width, 6, false),
			m.renderTitledBox("Users per city", m.bigScreenCities(b, m.width-4), m.width, third, false),
			m.renderTitledBox("Recent warnings", m.bigScreenWarnings(b, m.width-4), m.width, max(height-6-third, 3), true),
		)
	}

	topHeight := min(max(height/2, 8), height-3)
	var top string
	if m.width >= LayoutWideWidth {
		w := splitWidths(m.width, 3)
		top = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTitledBox("Overview", m.bigScreenOverview(b), w[0], topHeight, false),
			m.renderTitledBox("Users per city", m.bigScreenCities(b, w[1]-4), w[1], topHeight, false),
			m.renderTitledBox("Warnings per day", m.bigScreenDates(b, w[2]-4), w[2], topHeight, false),
		)
	} else {
		w := splitWidths(m.width, 2)
		top = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTitledBox("Overview", m.bigScreenOverview(b)+"\n\n"+m.bigScreenDates(b, w[0]-4), w[0], topHeight, false),
			m.renderTitledBox("Users per city", m.bigScreenCities(b, w[1]-4), w[1], topHeight, false),
		)
	}
	warnings := m.renderTitledBox("Recent warnings", m.bigScreenWarnings(b, m.width-4), m.width, height-topHeight, true)
	return lipgloss.JoinVertical(lipgloss.Left, top, warnings)
}

func (m Model) bigScreenOverview(b vitals.BigScreen) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	count := func(n *int) string {
		if n == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *n)
	}

	var online, total, processed, unprocessed *int
	if b.Online != nil {
		online = &b.Online.Count
	}
	if b.WarningCount != nil {
		total, processed, unprocessed = &b.WarningCount.Total, &b.WarningCount.Processed, &b.WarningCount.Unprocessed
	}

	unprocessedStyle := styles.Text
	if unprocessed != nil && *unprocessed > 0 {
		unprocessedStyle = styles.DangerText
	}
	return strings.Join([]string{
		labelRow(bg, styles, "Online", count(online), styles.SuccessText),
		labelRow(bg, styles, "Warnings", count(total), styles.Text),
		labelRow(bg, styles, "Processed", count(processed), styles.MutedText),
		labelRow(bg, styles, "Open", count(unprocessed), unprocessedStyle),
	}, "\n")
}

func (m Model) bigScreenCities(b vitals.BigScreen, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	if !b.HasPerCity {
		return bg.Render("-", styles.FaintText)
	}
	if len(b.PerCity) == 0 {
		return bg.Render("No users", styles.FaintText)
	}

	limit := 0
	nameWidth := 0
	for _, c := range b.PerCity {
		limit = max(limit, c.Count)
		nameWidth = max(nameWidth, lipgloss.Width(c.CityName))
	}
	nameWidth = min(nameWidth, 16)
	barWidth := max(width-nameWidth-8, 4)
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))

	rows := make([]string, 0, len(b.PerCity))
	for _, c := range b.PerCity {
		name := truncate(c.CityName, nameWidth)
		rows = append(rows,
			bg.Render(name, styles.Text)+bg.Spaces(nameWidth-lipgloss.Width(name)+1)+
				bg.Render(bar(c.Count, limit, barWidth), barStyle)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", c.Count), styles.MutedText))
	}
	return strings.Join(rows, "\n")
}

func (m Model) bigScreenDates(b vitals.BigScreen, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	if !b.HasPerDate {
		return bg.Render("-", styles.FaintText)
	}
	if len(b.PerDate) == 0 {
		return bg.Render("No warnings", styles.FaintText)
	}

	values := make([]float64, len(b.PerDate))
	limit := 0
	for i, d := range b.PerDate {
		values[i] = float64(d.Count)
		limit = max(limit, d.Count)
	}
	trend := bg.Render(sparkline(values, max(width, 4)), lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)))

	rows := []string{trend}
	first, last := b.PerDate[0], b.PerDate[len(b.PerDate)-1]
	rows = append(rows, bg.Render(first.Date+" .. "+last.Date, styles.FaintText), "")

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))
	for _, d := range b.PerDate {
		rows = append(rows,
			bg.Render(truncate(d.Date, 10), styles.MutedText)+bg.Space()+
				bg.Render(bar(d.Count, limit, max(width-16, 4)), barStyle)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", d.Count), styles.Text))
	}
	return strings.Join(rows, "\n")
}

func (m Model) bigScreenWarnings(b vitals.BigScreen, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	if !b.HasWarningList {
		return bg.Render("-", styles.FaintText)
	}
	if len(b.Warnings) == 0 {
		return bg.Render("No warnings", styles.SuccessText)
	}

	rows := make([]string, 0, len(b.Warnings))
	for _, w := range b.Warnings {
		status, label := statusAlert, "OPEN"
		if w.IsProcessed {
			status, label = statusNormal, "DONE"
		}
		prefix := styles.StatusStyle(status).Render(label) + bg.Space() +
			bg.Render(w.WarningTime, styles.FaintText) + bg.Space() +
			bg.Render("user "+w.UserID, styles.AccentText) + bg.Space() +
			bg.Render(w.WarningType, styles.WarningText) + bg.Space()
		rest := max(width-lipgloss.Width(prefix), 8)
		rows = append(rows, prefix+bg.Render(truncate(w.WarningContent, rest), styles.Text))
	}
	return strings.Join(rows, "\n")
}
