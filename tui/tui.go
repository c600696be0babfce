// Package tui is a full-screen front end for an interactive client session.
// It keeps the client's request/response contract: one message in flight,
// input locked until its reply (or an error) comes back.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samaelod/netprobe/engine"
)

func New(client *engine.Client, transcript *engine.Transcript, proto string) Model {
	return Model{
		client:     client,
		transcript: transcript,
		proto:      proto,
		input:      newInput(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// RunClient blocks until the operator quits or the connection fails. The
// returned error is the transport error that ended the session, if any.
func RunClient(client *engine.Client, transcript *engine.Transcript, proto string) error {
	p := tea.NewProgram(New(client, transcript, proto), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.err
	}
	return nil
}
