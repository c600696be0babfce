package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samaelod/netprobe/engine"
)

func exchange(c *engine.Client, msg string) tea.Cmd {
	return func() tea.Msg {
		reply, err := c.Exchange([]byte(msg))
		return replyMsg{reply: reply, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - headerHeight - footerHeight - 2 // panel border
		if vpHeight < 1 {
			vpHeight = 1
		}
		vpWidth := msg.Width - 4
		if vpWidth < minWidth {
			vpWidth = minWidth
		}

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		m.input.Width = vpWidth - len(m.input.Prompt) - 1
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			value := m.input.Value()
			m.input.Reset()
			m.waiting = true
			m.refresh()
			return m, exchange(m.client, value)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			m.transcript.Error(msg.err)
			m.refresh()
			return m, tea.Quit
		}
		m.refresh()
		return m, nil
	}

	if m.waiting {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.transcript.Records()))
	m.viewport.GotoBottom()
}
