package types

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHex  = errors.New("malformed hex value")
	ErrMalformedRow  = errors.New("malformed script row")
	ErrPeerClosed    = errors.New("peer closed connection")
	ErrMissingScript = errors.New("scripted mode requires a response file (-f)")
)

// LoadError reports a response script that could not be turned into a
// Sequence. Servers never start listening after one.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TransportError is a send or receive failure in the middle of a session.
type TransportError struct {
	Op  string // "send" or "receive"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
