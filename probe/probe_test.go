package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samaelod/netprobe/types"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	openPort := ln.Addr().(*net.TCPAddr).Port

	tests := []struct {
		name string
		host string
		port int
		want types.PortStatus
	}{
		{"listening", "127.0.0.1", openPort, types.Open},
		{"closed", "127.0.0.1", freePort(t), types.Closed},
		{"bad_host", "host.invalid", 80, types.Closed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got := Check(context.Background(), tt.host, tt.port, 500*time.Millisecond)
			require.Equal(t, tt.want, got)
			require.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestAddress(t *testing.T) {
	require.Equal(t, "127.0.0.1:80", Address("127.0.0.1", 80))
	require.Equal(t, "[::1]:443", Address("::1", 443))
}
