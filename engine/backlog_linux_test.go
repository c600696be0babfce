package engine

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestTCPListenAppliesBacklog(t *testing.T) {
	srv := NewTCPServer(ServerOptions{Host: "127.0.0.1", Backlog: 1, Log: zerolog.Nop()})
	require.NoError(t, srv.Listen())
	defer srv.Close()

	// nothing accepts, so dials past the queue length stall
	var (
		conns   []net.Conn
		stalled bool
	)
	for i := 0; i < 8 && !stalled; i++ {
		c, err := net.DialTimeout("tcp", srv.Addr().String(), 200*time.Millisecond)
		if err != nil {
			var ne net.Error
			require.ErrorAs(t, err, &ne)
			require.True(t, ne.Timeout(), "dial %d: %v", i, err)
			stalled = true
			break
		}
		conns = append(conns, c)
	}
	for _, c := range conns {
		c.Close()
	}
	require.True(t, stalled, "all %d dials completed with backlog 1", len(conns))
}
