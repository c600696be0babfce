package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samaelod/netprobe/engine"
)

// renderTranscript colours each record by direction.
func renderTranscript(records []engine.Record) string {
	if len(records) == 0 {
		return styleHelp.Render("no messages yet")
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		style := styleError
		switch rec.Dir {
		case engine.DirSent:
			style = styleSent
		case engine.DirReceived:
			style = styleReceived
		}
		lines[i] = style.Render(rec.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styleTitle.Render("netprobe client"),
		" ",
		styleAddr.Render(fmt.Sprintf("%s %s", m.proto, m.client.RemoteAddr())),
	)

	body := stylePanel.Width(m.viewport.Width + 2).Render(m.viewport.View())

	input := m.input.View()
	if m.waiting {
		input = styleWaiting.Render("waiting for reply...")
	}
	inputPanel := stylePanel.Width(m.viewport.Width + 2).Render(input)

	help := styleHelp.Render("enter: send • pgup/pgdn: scroll • esc/ctrl+c: quit")
	if m.err != nil {
		help = styleError.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, inputPanel, help)
}
