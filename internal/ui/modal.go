package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mmwdash/internal/request"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal closed.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

type confirmMsg struct {
	prompt request.Prompt
	reply  chan<- bool
}

// confirmModal asks a yes/no question on behalf of a waiting goroutine.
type confirmModal struct {
	prompt request.Prompt
	reply  chan<- bool
}

func newConfirmModal(msg confirmMsg) *confirmModal {
	return &confirmModal{prompt: msg.prompt, reply: msg.reply}
}

// answer sends the result once; reply is buffered so this never blocks.
func (c *confirmModal) answer(ok bool) {
	if c.reply == nil {
		return
	}
	c.reply <- ok
	c.reply = nil
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return c, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		c.answer(true)
		return c, nil, true
	case key.Matches(keyMsg, keys.Cancel):
		c.answer(false)
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	accent := theme.Accent
	if c.prompt.Warning {
		accent = theme.Warning
	}

	var b strings.Builder
	title := c.prompt.Title
	if title == "" {
		title = "Confirm"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)).Render(title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(c.prompt.Message))
	b.WriteString("\n\n")

	confirm := c.prompt.ConfirmLabel
	if confirm == "" {
		confirm = "OK"
	}
	cancel := c.prompt.CancelLabel
	if cancel == "" {
		cancel = "Cancel"
	}
	button := lipgloss.NewStyle().Padding(0, 1)
	b.WriteString(button.
		Background(lipgloss.Color(accent)).
		Foreground(lipgloss.Color(theme.Background)).
		Bold(true).
		Render("y  " + confirm))
	b.WriteString("  ")
	b.WriteString(button.
		Background(lipgloss.Color(theme.SurfaceAlt)).
		Foreground(lipgloss.Color(theme.Text)).
		Render("n  " + cancel))

	modalWidth := min(60, max(width-4, 20))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(accent)).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
