package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/qrpay/internal/orchestrator"
)

// View renders the console.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.theme.Title.Render("QR Payment Assistant"))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.scanning:
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.StatusPending.Render(" Scanning..."))
		b.WriteString("\n")
	case m.errMsg != "":
		b.WriteString(m.theme.StatusError.Render(m.errMsg))
		b.WriteString("\n")
	case m.last != nil:
		b.WriteString(m.renderResult())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderStatus() string {
	session := m.sessionID
	if session == "" {
		session = "(new)"
	}

	parts := []string{
		m.theme.Subtitle.Render("user " + m.userID),
		m.theme.Subtitle.Render("session " + session),
		m.theme.Subtitle.Render(fmt.Sprintf("%d scans", m.scans)),
	}
	if m.scanner != nil && m.scanner.CompletionState() == orchestrator.StateDegraded {
		parts = append(parts, m.theme.StatusWarning.Render("assistant degraded"))
	}
	return strings.Join(parts, m.theme.Subtitle.Render(" · "))
}

func (m Model) renderResult() string {
	res := m.last
	var b strings.Builder

	if total, ok := res.Total(); ok && (res.Multiple || res.FXResult != nil) {
		line := fmt.Sprintf("Total: %.2f %s", total, res.HomeCurrency)
		if label := res.RiskLabel(); label != "" {
			line += "  " + m.theme.RiskStyle(label).Render("risk "+label)
		}
		b.WriteString(m.theme.Bold.Render(line))
		b.WriteString("\n")
	}

	if len(m.items.Rows()) > 0 {
		b.WriteString(m.items.View())
		b.WriteString("\n")
	}

	width := max(40, m.width-4)
	b.WriteString(m.theme.RoundedBox.Width(width).Render(res.Message))
	b.WriteString("\n")

	if res.Degraded {
		b.WriteString(m.theme.StatusWarning.Render("Summary generated without the language model."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderHelp() string {
	bindings := m.keymap.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(parts, " • "))
}
