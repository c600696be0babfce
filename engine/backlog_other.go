//go:build !unix

package engine

import "net"

// setBacklog is a no-op where the listening socket cannot be re-listened;
// the OS default queue length applies.
func setBacklog(ln net.Listener, backlog int) error { return nil }
