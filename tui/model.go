package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/samaelod/netprobe/engine"
)

type Model struct {
	client     *engine.Client
	transcript *engine.Transcript
	proto      string

	input    textinput.Model
	viewport viewport.Model
	ready    bool

	waiting bool
	err     error

	width  int
	height int
}

// replyMsg carries the outcome of one Exchange.
type replyMsg struct {
	reply []byte
	err   error
}

const (
	headerHeight = 1
	footerHeight = 4 // input panel (3) + help line
	minWidth     = 20
)

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "message"
	ti.CharLimit = engine.BufferSize
	ti.Focus()
	return ti
}
