package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/samaelod/netprobe/types"
)

type ClientOptions struct {
	Protocol   types.Protocol
	Host       string
	Port       int
	Out        io.Writer // replies and prompts, stdout when nil
	Transcript *Transcript
	Log        zerolog.Logger
}

// Client sends one message at a time and waits, without a deadline, for
// exactly one reply read of up to BufferSize bytes.
type Client struct {
	opts ClientOptions
	addr string
	buf  []byte

	conn  net.Conn     // tcp
	udp   *net.UDPConn // udp
	raddr *net.UDPAddr
}

func NewClient(opts ClientOptions) *Client {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Client{
		opts: opts,
		addr: net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		buf:  make([]byte, BufferSize),
	}
}

func (c *Client) RemoteAddr() string { return c.addr }

// Dial connects over TCP. For UDP it only resolves the destination and
// opens a local socket; nothing is sent.
func (c *Client) Dial(ctx context.Context) error {
	switch c.opts.Protocol {
	case types.ProtocolTCP:
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", c.addr)
		if err != nil {
			return &types.ConnectError{Addr: c.addr, Err: err}
		}
		c.conn = conn
	case types.ProtocolUDP:
		raddr, err := net.ResolveUDPAddr("udp", c.addr)
		if err != nil {
			return &types.ConnectError{Addr: c.addr, Err: err}
		}
		conn, err := net.ListenUDP("udp", nil)
		if err != nil {
			return &types.ConnectError{Addr: c.addr, Err: err}
		}
		c.raddr = raddr
		c.udp = conn
	default:
		return fmt.Errorf("unknown protocol %q", c.opts.Protocol)
	}
	c.opts.Log.Debug().Str("addr", c.addr).Str("proto", string(c.opts.Protocol)).Msg("client ready")
	return nil
}

// Exchange writes msg in one call and performs one blocking read.
func (c *Client) Exchange(msg []byte) ([]byte, error) {
	var (
		n   int
		err error
	)

	c.opts.Transcript.Sent(msg)

	switch {
	case c.conn != nil:
		if _, err = c.conn.Write(msg); err != nil {
			return nil, &types.TransportError{Op: "send", Err: err}
		}
		n, err = c.conn.Read(c.buf)
		if n == 0 && (err == nil || errors.Is(err, io.EOF)) {
			return nil, &types.TransportError{Op: "receive", Err: types.ErrPeerClosed}
		}
	case c.udp != nil:
		if _, err = c.udp.WriteToUDP(msg, c.raddr); err != nil {
			return nil, &types.TransportError{Op: "send", Err: err}
		}
		n, _, err = c.udp.ReadFromUDP(c.buf)
	default:
		return nil, fmt.Errorf("client not connected")
	}
	if err != nil && n == 0 {
		return nil, &types.TransportError{Op: "receive", Err: err}
	}

	reply := append([]byte(nil), c.buf[:n]...)
	c.opts.Transcript.Received(reply)
	return reply, nil
}

func (c *Client) Close() error {
	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	if c.udp != nil {
		err = c.udp.Close()
	}
	return err
}

// RunFile sends the input one line at a time, terminator included, and
// prints every reply.
func (c *Client) RunFile(ctx context.Context, r io.Reader) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			if err := c.send(ctx, line); err != nil {
				return c.interrupted(ctx, err)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
	}
}

// RunInteractive prompts for messages until the operator interrupts, input
// ends, or the socket fails.
func (c *Client) RunInteractive(ctx context.Context, in io.Reader) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		fmt.Fprint(c.opts.Out, "Enter message: ")

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return c.interrupted(ctx, ctx.Err())
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(c.opts.Out)
			select {
			case err := <-scanErr:
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
			default:
			}
			fmt.Fprintln(c.opts.Out, "Client exiting...")
			return nil
		}

		if err := c.send(ctx, []byte(line)); err != nil {
			return c.interrupted(ctx, err)
		}
	}
}

func (c *Client) send(ctx context.Context, msg []byte) error {
	reply, err := c.Exchange(msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.opts.Out, "Received: %s\n", reply)
	return nil
}

// interrupted reports how a session ended. Errors caused by the interrupt
// closing the socket are not errors.
func (c *Client) interrupted(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		fmt.Fprintln(c.opts.Out)
		fmt.Fprintln(c.opts.Out, "Client exiting...")
		return nil
	}
	fmt.Fprintf(c.opts.Out, "Error: %v\n", err)
	return err
}
