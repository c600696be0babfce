package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/samaelod/netprobe/types"
)

// TCPServer accepts one connection, serves it until it ends, and only then
// accepts the next. Peers that connect meanwhile wait in the kernel backlog.
type TCPServer struct {
	opts ServerOptions
	ln   net.Listener
	log  zerolog.Logger
}

func NewTCPServer(opts ServerOptions) *TCPServer {
	opts.setDefaults()
	return &TCPServer{
		opts: opts,
		log:  opts.Log.With().Str("proto", "tcp").Logger(),
	}
}

func (s *TCPServer) Listen() error {
	ln, err := net.Listen("tcp", s.opts.bindAddr())
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", s.opts.bindAddr(), err)
	}
	if err := setBacklog(ln, s.opts.Backlog); err != nil {
		ln.Close()
		return fmt.Errorf("set backlog %d: %w", s.opts.Backlog, err)
	}
	s.ln = ln
	s.log.Info().Int("backlog", s.opts.Backlog).Msgf("TCP server listening on port %d", portOf(ln.Addr()))
	return nil
}

func (s *TCPServer) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the accept loop until ctx is cancelled. The listener is closed
// on return.
func (s *TCPServer) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { s.ln.Close() })
	defer stop()
	defer s.ln.Close()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				s.log.Info().Msg("Server shutting down...")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.handle(ctx, conn)

		if ctx.Err() != nil {
			s.log.Info().Msg("Server shutting down...")
			return nil
		}
	}
}

func (s *TCPServer) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *TCPServer) handle(ctx context.Context, conn net.Conn) {
	peer := conn.RemoteAddr().String()
	log := s.log.With().Str("session", uuid.NewString()).Logger()
	log.Info().Msgf("Connection from %s", peer)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		conn.Close()
		log.Info().Msgf("Connection closed from %s", peer)
	}()

	var err error
	if s.opts.Mode == types.SubModeEcho {
		err = s.echo(conn)
	} else {
		err = s.replay(conn, log)
	}
	if err != nil && ctx.Err() == nil {
		log.Error().Msgf("Error: %v", err)
	}
}

func (s *TCPServer) echo(conn net.Conn) error {
	buf := make([]byte, BufferSize)
	for {
		n, err := readRequest(conn, buf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &types.TransportError{Op: "receive", Err: err}
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			return &types.TransportError{Op: "send", Err: err}
		}
	}
}

// replay answers each request with the next scripted response, starting
// from the first one for every connection, then shuts the connection down
// in both directions.
func (s *TCPServer) replay(conn net.Conn, log zerolog.Logger) error {
	seq := s.opts.Responses
	buf := make([]byte, BufferSize)

	for i := 0; i < seq.Len(); i++ {
		n, err := readRequest(conn, buf)
		if errors.Is(err, io.EOF) {
			log.Debug().Int("sent", i).Int("discarded", seq.Len()-i).Msg("peer closed before sequence end")
			break
		}
		if err != nil {
			return &types.TransportError{Op: "receive", Err: err}
		}
		log.Debug().Int("request_bytes", n).Int("response", i).Msg("replying")
		if _, err := conn.Write(seq.Payload(i)); err != nil {
			return &types.TransportError{Op: "send", Err: err}
		}
	}

	return halfClose(conn)
}

func halfClose(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tc.CloseWrite(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := tc.CloseRead(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
