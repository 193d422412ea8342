package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mmwdash/internal/vitals"
)

// summaryWidth is the width of the vitals panel when side by side.
const summaryWidth = 38

// renderMonitor renders the per-user vitals view: a summary panel next to
// the waveform panel, stacked on narrow terminals.
func (m Model) renderMonitor(height int) string {
	mon := m.snapshot.Monitor
	if !m.snapshot.HasMonitor || mon.UID != m.route.UID() {
		return m.renderWaiting("Monitor", height)
	}

	if m.width < LayoutCompactWidth {
		summaryHeight := min(10, height/2)
		summary := m.renderTitledBox("Vitals", m.monitorSummary(mon), m.width, summaryHeight, false)
		waves := m.renderTitledBox("Waveforms", m.monitorWaveforms(mon, m.width-4), m.width, height-summaryHeight, true)
		return lipgloss.JoinVertical(lipgloss.Left, summary, waves)
	}

	waveWidth := m.width - summaryWidth
	summary := m.renderTitledBox("Vitals", m.monitorSummary(mon), summaryWidth, height, false)
	waves := m.renderTitledBox("Waveforms", m.monitorWaveforms(mon, waveWidth-4), waveWidth, height, true)
	return lipgloss.JoinHorizontal(lipgloss.Top, summary, waves)
}

// monitorSummary lists the scalar vitals.
func (m Model) monitorSummary(mon vitals.Monitor) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	missing := styles.FaintText

	var rows []string
	add := func(label, value string, style lipgloss.Style) {
		rows = append(rows, labelRow(bg, styles, label, value, style))
	}

	add("User", mon.UID, styles.AccentText)
	if mon.InBed() {
		add("Presence", "in bed", styles.SuccessText)
	} else {
		add("Presence", "away", styles.MutedText)
	}

	if mon.Latest != nil {
		value := fmt.Sprintf("%.0f bpm", mon.Latest.HeartRate)
		if mon.Latest.Timestamp != "" {
			value += "  @ " + mon.Latest.Timestamp
		}
		add("Heart rate", value, styles.Text)
	} else {
		add("Heart rate", "-", missing)
	}

	if mon.Stress != nil {
		level := mon.Stress.StressLevel
		if level == "" {
			level = "unknown"
		}
		add("Stress", fmt.Sprintf("%.1f (%s)", mon.Stress.StressIndex, level), styles.Text)
	} else {
		add("Stress", "-", missing)
	}

	switch {
	case mon.Warning == nil:
		add("Breathing", "-", missing)
	case mon.Warning.WarningID != 0:
		add("Breathing", fmt.Sprintf("warning #%d", mon.Warning.WarningID), styles.DangerText)
	default:
		add("Breathing", "normal", styles.SuccessText)
	}

	switch {
	case mon.Arrhythmia == nil:
		add("Arrhythmia", "-", missing)
	case mon.Arrhythmia.Arrhythmic():
		add("Arrhythmia", "detected", styles.DangerText)
	default:
		add("Arrhythmia", "none", styles.SuccessText)
	}

	if mon.HRV != nil {
		if _, _, last, ok := seriesStats(gaps(mon.HRV.HRVData)); ok {
			add("HRV", fmt.Sprintf("%.0f ms", last), styles.Text)
		} else {
			add("HRV", "no samples", missing)
		}
	} else {
		add("HRV", "-", missing)
	}

	if mon.Ring != nil {
		add("Ring", fmt.Sprintf("%d points", min(len(mon.Ring.RingX), len(mon.Ring.RingY))), styles.MutedText)
	}
	return strings.Join(rows, "\n")
}

// monitorWaveforms renders one sparkline row per series.
func (m Model) monitorWaveforms(mon vitals.Monitor, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	const labelWidth = 12
	const statsWidth = 22
	chartWidth := max(width-labelWidth-statsWidth, 8)

	chartStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	var rows []string
	series := func(label string, values []float64, unit string, style lipgloss.Style) {
		line := bg.Render(label, styles.MutedText) + bg.Spaces(labelWidth-lipgloss.Width(label))
		if len(values) == 0 {
			rows = append(rows, line+bg.Render("no data", styles.FaintText), "")
			return
		}
		line += bg.Render(sparkline(values, chartWidth), style)
		if lo, hi, last, ok := seriesStats(values); ok {
			line += bg.Space() + bg.Render(formatStats(lo, hi, last, unit), styles.FaintText)
		}
		rows = append(rows, line, "")
	}

	var breath, scg, heart, hrv []float64
	if mon.Breath != nil {
		breath = mon.Breath.BreathWaveform
	}
	if mon.Arrhythmia != nil {
		scg = mon.Arrhythmia.SCGWaveform
	}
	if mon.HeartRate != nil {
		heart = mon.HeartRate.HeartWaveform
	}
	if mon.HRV != nil {
		hrv = gaps(mon.HRV.HRVData)
	}

	series("Breath", breath, "", chartStyle)
	series("Heart rate", heart, "bpm", lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Danger)))
	if labels := mon.HeartRateLabels(); len(labels) > 1 && len(heart) > 0 {
		axisWidth := min(len(heart), chartWidth)
		first, last := labels[0], labels[len(labels)-1]
		gap := max(axisWidth-lipgloss.Width(first)-lipgloss.Width(last), 1)
		rows[len(rows)-1] = bg.Spaces(labelWidth) + bg.Render(first, styles.FaintText) +
			bg.Spaces(gap) + bg.Render(last, styles.FaintText)
	}
	scgStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Info))
	if mon.Arrhythmia != nil && mon.Arrhythmia.Arrhythmic() {
		scgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))
	}
	series("SCG", scg, "", scgStyle)
	series("HRV", hrv, "ms", lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Success)))

	return strings.Join(rows, "\n")
}

func formatStats(lo, hi, last float64, unit string) string {
	out := fmt.Sprintf("%s-%s now %s", trimFloat(lo), trimFloat(hi), trimFloat(last))
	if unit != "" {
		out += " " + unit
	}
	return out
}

// trimFloat prints whole numbers without decimals and others with one.
func trimFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// renderWaiting fills the content area while no data has arrived.
func (m Model) renderWaiting(title string, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	msg := bg.Render("Waiting for data...", styles.MutedText)
	if err := m.snapshot.LastError; err != nil {
		msg = bg.Render(truncate(err.Error(), max(m.width-6, 10)), styles.DangerText)
	}
	return m.renderTitledBox(title, msg, m.width, height, false)
}

// renderNotFound renders the 404 view.
func (m Model) renderNotFound(height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	lines := []string{
		bg.Render("404", styles.DangerText),
		"",
		bg.Render("Nothing lives at this path.", styles.Text),
		bg.Render("Press", styles.MutedText) + bg.Space() + bg.Render("m", styles.AccentText) +
			bg.Space() + bg.Render("for the monitor or", styles.MutedText) + bg.Space() +
			bg.Render(":", styles.AccentText) + bg.Space() + bg.Render("to enter a path.", styles.MutedText),
	}
	return m.renderTitledBox("Not found", strings.Join(lines, "\n"), m.width, height, false)
}
