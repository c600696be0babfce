//go:build unix

package engine

import (
	"net"
	"syscall"
)

// setBacklog re-issues listen(2) on the bound socket so the pending
// connection queue holds backlog entries instead of somaxconn.
func setBacklog(ln net.Listener, backlog int) error {
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		return nil
	}
	rc, err := tl.SyscallConn()
	if err != nil {
		return err
	}
	var listenErr error
	if err := rc.Control(func(fd uintptr) {
		listenErr = syscall.Listen(int(fd), backlog)
	}); err != nil {
		return err
	}
	return listenErr
}
