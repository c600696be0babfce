package engine

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/samaelod/netprobe/types"
)

// UDPServer answers datagrams on a single socket. In scripted mode it keeps
// one cursor for all senders unless Scope is CursorPerPeer.
type UDPServer struct {
	opts ServerOptions
	conn *net.UDPConn
	log  zerolog.Logger

	cursor int
	peers  map[string]int
}

func NewUDPServer(opts ServerOptions) *UDPServer {
	opts.setDefaults()
	return &UDPServer{
		opts:  opts,
		log:   opts.Log.With().Str("proto", "udp").Logger(),
		peers: make(map[string]int),
	}
}

func (s *UDPServer) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", s.opts.bindAddr())
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen udp %s: %w", s.opts.bindAddr(), err)
	}
	s.conn = conn
	s.log.Info().Msgf("UDP server listening on port %d", portOf(conn.LocalAddr()))
	return nil
}

func (s *UDPServer) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

func (s *UDPServer) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *UDPServer) Serve(ctx context.Context) error {
	if s.conn == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()
	defer s.conn.Close()

	buf := make([]byte, BufferSize)
	for {
		n, peer, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				s.log.Info().Msg("Server shutting down...")
				return nil
			}
			s.log.Error().Msgf("Error: %v", err)
			continue
		}
		s.log.Info().Msgf("Connection from %s", peer)

		if err := s.respond(buf[:n], peer); err != nil {
			s.log.Error().Msgf("Error: %v", err)
		}
	}
}

func (s *UDPServer) respond(data []byte, peer *net.UDPAddr) error {
	reply := data
	if s.opts.Mode == types.SubModeScripted {
		i, ok := s.next(peer)
		if !ok {
			s.log.Debug().Str("peer", peer.String()).Msg("response sequence exhausted, not replying")
			return nil
		}
		reply = s.opts.Responses.Payload(i)
	}

	if _, err := s.conn.WriteToUDP(reply, peer); err != nil {
		return &types.TransportError{Op: "send", Err: err}
	}
	return nil
}

// next claims the cursor position for this datagram. Once the sequence is
// exhausted it stays exhausted; there is no restart.
func (s *UDPServer) next(peer *net.UDPAddr) (int, bool) {
	n := s.opts.Responses.Len()

	if s.opts.Scope == types.CursorPerPeer {
		key := peer.String()
		i := s.peers[key]
		if i >= n {
			return 0, false
		}
		s.peers[key] = i + 1
		return i, true
	}

	if s.cursor >= n {
		return 0, false
	}
	i := s.cursor
	s.cursor++
	return i, true
}
