package main

import (
	"testing"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/stretchr/testify/require"

	"github.com/samaelod/netprobe/types"
)

func parse(t *testing.T, argv ...string) args {
	t.Helper()
	var a args
	p, err := arg.NewParser(arg.Config{Program: "netprobe"}, &a)
	require.NoError(t, err)
	require.NoError(t, p.Parse(argv))
	return a
}

func TestParseSubcommands(t *testing.T) {
	a := parse(t, "check", "example.com", "443", "--timeout", "250ms")
	require.NotNil(t, a.Check)
	require.Equal(t, "example.com", a.Check.Host)
	require.Equal(t, 443, a.Check.Port)
	require.Equal(t, 250*time.Millisecond, a.Check.Timeout)

	a = parse(t, "client", "udp", "10.0.0.1", "9000", "-f", "msgs.txt", "-u")
	require.NotNil(t, a.Client)
	require.Equal(t, types.InputFile, types.InputModeFor(a.Client.File))
	require.True(t, a.Client.User)

	a = parse(t, "client", "tcp", "localhost", "7000", "-u")
	require.Equal(t, types.InputInteractive, types.InputModeFor(a.Client.File))

	a = parse(t, "--log-level", "debug", "server", "udp", "7000", "-f", "script.csv", "--per-peer")
	require.NotNil(t, a.Server)
	require.Equal(t, "debug", a.LogLevel)
	require.Equal(t, "script.csv", a.Server.File)
	require.True(t, a.Server.PerPeer)
	require.False(t, a.Server.Echo)

	a = parse(t, "convert", "trace.pcapng", "-o", "out.csv", "--port", "8080")
	require.NotNil(t, a.Convert)
	require.Equal(t, "tcp", a.Convert.Protocol)
	require.Equal(t, 8080, a.Convert.Port)
}

func TestSanitize(t *testing.T) {
	require.Equal(t, "__1", sanitize("::1"))
	require.Equal(t, "example.com", sanitize("example.com"))
}
