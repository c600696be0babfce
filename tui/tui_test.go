package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/samaelod/netprobe/engine"
	"github.com/samaelod/netprobe/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	tr, err := engine.NewTranscript("", 10)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })

	c := engine.NewClient(engine.ClientOptions{Protocol: types.ProtocolTCP, Host: "127.0.0.1", Port: 7000})
	m := New(c, tr, "tcp")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestSendLocksInputUntilReply(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	m = next.(Model)
	require.Equal(t, "hi", m.input.Value())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.waiting)
	require.Empty(t, m.input.Value())
	require.Contains(t, m.View(), "waiting for reply...")

	// a second enter while waiting sends nothing
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.Nil(t, cmd)

	m.transcript.Received([]byte("PONG"))
	next, _ = m.Update(replyMsg{reply: []byte("PONG")})
	m = next.(Model)
	require.False(t, m.waiting)
	require.Contains(t, m.View(), "< PONG")
}

func TestReplyErrorQuits(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(replyMsg{err: errors.New("boom")})
	m = next.(Model)
	require.EqualError(t, m.err, "boom")
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
	require.Contains(t, m.View(), "Error: boom")

	recs := m.transcript.Records()
	require.Len(t, recs, 1)
	require.Equal(t, engine.DirError, recs[0].Dir)
	require.Equal(t, "boom", string(recs[0].Data))
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := newTestModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		require.Equal(t, tea.QuitMsg{}, cmd())
	}
}
