package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/samaelod/netprobe/types"
)

func dialClient(t *testing.T, proto types.Protocol, addr net.Addr, out io.Writer, tr *Transcript) *Client {
	t.Helper()

	host, port, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	p, err := net.LookupPort(string(proto), port)
	require.NoError(t, err)

	c := NewClient(ClientOptions{
		Protocol:   proto,
		Host:       host,
		Port:       p,
		Out:        out,
		Transcript: tr,
		Log:        zerolog.Nop(),
	})
	require.NoError(t, c.Dial(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientRunFile(t *testing.T) {
	tests := []struct {
		name  string
		proto types.Protocol
		opts  ServerOptions
		input string
		want  string
	}{
		{
			name:  "tcp_echo_keeps_terminator",
			proto: types.ProtocolTCP,
			opts:  ServerOptions{Mode: types.SubModeEcho},
			input: "hello\nworld",
			want:  "Received: hello\n\nReceived: world\n",
		},
		{
			name:  "tcp_scripted",
			proto: types.ProtocolTCP,
			opts:  ServerOptions{Responses: testSequence("PONG", "Hello")},
			input: "a\nb\n",
			want:  "Received: PONG\nReceived: Hello\n",
		},
		{
			name:  "udp_echo",
			proto: types.ProtocolUDP,
			opts:  ServerOptions{Mode: types.SubModeEcho},
			input: "one\ntwo\n",
			want:  "Received: one\n\nReceived: two\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startServer(t, tt.proto, tt.opts)

			var out bytes.Buffer
			c := dialClient(t, tt.proto, addr, &out, nil)
			require.NoError(t, c.RunFile(context.Background(), strings.NewReader(tt.input)))
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestClientRunInteractive(t *testing.T) {
	addr := startServer(t, types.ProtocolTCP, ServerOptions{Mode: types.SubModeEcho})

	var out bytes.Buffer
	c := dialClient(t, types.ProtocolTCP, addr, &out, nil)
	require.NoError(t, c.RunInteractive(context.Background(), strings.NewReader("ping\npong\n")))

	require.Equal(t,
		"Enter message: Received: ping\nEnter message: Received: pong\nEnter message: \nClient exiting...\n",
		out.String())
}

func TestClientInteractiveInterrupt(t *testing.T) {
	addr := startServer(t, types.ProtocolTCP, ServerOptions{Mode: types.SubModeEcho})

	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	c := dialClient(t, types.ProtocolTCP, addr, &out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	require.NoError(t, c.RunInteractive(ctx, pr))
	require.Contains(t, out.String(), "Client exiting...")
}

func TestClientPeerClosed(t *testing.T) {
	// an empty script makes the server shut the connection at once
	addr := startServer(t, types.ProtocolTCP, ServerOptions{Responses: types.NewSequence(nil)})

	var out bytes.Buffer
	c := dialClient(t, types.ProtocolTCP, addr, &out, nil)
	time.Sleep(50 * time.Millisecond)

	err := c.RunFile(context.Background(), strings.NewReader("x\n"))
	var te *types.TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	require.Contains(t, out.String(), "Error: ")
}

func TestClientDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c := NewClient(ClientOptions{Protocol: types.ProtocolTCP, Host: "127.0.0.1", Port: port, Out: io.Discard})
	err = c.Dial(context.Background())
	var ce *types.ConnectError
	require.True(t, errors.As(err, &ce))
}

func TestClientTranscript(t *testing.T) {
	addr := startServer(t, types.ProtocolTCP, ServerOptions{Responses: testSequence("PONG")})

	path := filepath.Join(t.TempDir(), "logs", "session.log")
	tr, err := NewTranscript(path, 10)
	require.NoError(t, err)

	c := dialClient(t, types.ProtocolTCP, addr, io.Discard, tr)
	reply, err := c.Exchange([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, "PONG", string(reply))
	require.NoError(t, tr.Close())

	mem := tr.ReadAll()
	require.Contains(t, mem, "> ping\n")
	require.Contains(t, mem, "< PONG\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, mem, string(data))
}

func TestTranscriptRingBuffer(t *testing.T) {
	tr, err := NewTranscript("", 2)
	require.NoError(t, err)
	defer tr.Close()

	tr.Sent([]byte("a"))
	tr.Received([]byte("b"))
	tr.Error(errors.New("c"))

	recs := tr.Records()
	require.Len(t, recs, 2)
	require.Equal(t, DirReceived, recs[0].Dir)
	require.Equal(t, "b", string(recs[0].Data))
	require.Equal(t, DirError, recs[1].Dir)
	require.Equal(t, "c", string(recs[1].Data))

	lines := strings.Split(strings.TrimSpace(tr.ReadAll()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasSuffix(lines[0], "] < b"))
	require.True(t, strings.HasSuffix(lines[1], "] ! c"))
}

func TestRecordPayload(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "text", data: []byte("PONG\n"), want: "PONG\n"},
		{name: "binary", data: []byte{0x00, 0x01, 0xff}, want: "hex:0001ff"},
		{name: "invalid_utf8", data: []byte{0xc3, 0x28}, want: "hex:c328"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Record{Dir: DirReceived, Data: tt.data}.Payload())
		})
	}
}
