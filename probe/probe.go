// Package probe answers a single question: does a TCP port accept
// connections right now.
package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samaelod/netprobe/types"
)

const DefaultTimeout = time.Second

func Address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Check makes one connection attempt bounded by timeout. Any failure,
// including the timeout, reports Closed.
func Check(ctx context.Context, host string, port int, timeout time.Duration) types.PortStatus {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	addr := Address(host, port)
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Debug().Str("addr", addr).Err(err).Msg("port check failed")
		return types.Closed
	}
	conn.Close()
	return types.Open
}
