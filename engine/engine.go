// Package engine runs the data plane: the TCP/UDP servers that echo or
// replay a response sequence, and the client that talks to them.
//
// Everything here is blocking and serves one peer at a time. The only
// extra goroutines are context watchers that close a socket so a blocked
// Accept or Read returns when the operator interrupts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/samaelod/netprobe/types"
)

const (
	// BufferSize bounds every read on both client and server sockets.
	BufferSize     = 4096
	DefaultBacklog = 5
)

// ServerOptions configures both server flavours.
type ServerOptions struct {
	Host      string // empty binds the wildcard address
	Port      int
	Mode      types.SubMode
	Responses types.Sequence
	Backlog   int
	Scope     types.CursorScope // UDP scripted mode only
	Log       zerolog.Logger
}

func (o *ServerOptions) setDefaults() {
	if o.Backlog <= 0 {
		o.Backlog = DefaultBacklog
	}
}

func (o *ServerOptions) bindAddr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Server is what cmd drives; TCPServer and UDPServer implement it.
type Server interface {
	Listen() error
	Addr() net.Addr
	Serve(ctx context.Context) error
	Close() error
}

// readRequest blocks until at least one byte arrives. An error returned
// together with data is dropped; the next read reports it again.
func readRequest(r io.Reader, buf []byte) (int, error) {
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

func portOf(addr net.Addr) int {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.Port
	case *net.UDPAddr:
		return a.Port
	}
	return 0
}

// NewServer picks the server for proto.
func NewServer(proto types.Protocol, opts ServerOptions) (Server, error) {
	switch proto {
	case types.ProtocolTCP:
		return NewTCPServer(opts), nil
	case types.ProtocolUDP:
		return NewUDPServer(opts), nil
	}
	return nil, fmt.Errorf("unknown protocol %q", proto)
}
