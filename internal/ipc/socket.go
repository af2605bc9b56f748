// Package ipc implements the keyboard interceptor's transport to the
// core process (spec.md §6): a unix-domain socket at
// $XDG_RUNTIME_DIR/odilia.sock carrying one JSON-encoded event.UserEvent
// per line, plus the PID-file liveness check that cmd/odilia uses to keep
// two core instances from running at once (the keyboard interceptor does
// not take the PID file). Grounded on
// canonical-snapd/daemon/ucrednet_test.go's peer-credential-checking
// listener wrapper (the real ucrednet.go was not included in the
// retrieval pack, only its test, but the test fully specifies the shape:
// a swappable getUcred func wrapping golang.org/x/sys/unix's
// SO_PEERCRED sockopt, and a net.Listener wrapper that rejects
// connections).
package ipc

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/odilia-app/odilia-core/internal/logging"
)

// getPeerCred is swappable for tests, mirroring ucrednet_test.go's
// package-level getUcred var.
var getPeerCred = func(fd int) (*unix.Ucred, error) {
	return unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
}

// Listener wraps a unix-domain net.Listener, rejecting any accepted
// connection whose peer UID doesn't match this process's (spec.md §6's
// socket is a single-user local IPC boundary, not a multi-tenant one).
type Listener struct {
	net.Listener
}

// Listen opens a unix-domain socket at path, removing any stale socket
// file left behind by a previous, no-longer-running instance first.
func Listen(path string) (*Listener, error) {
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", path, err)
	}
	return &Listener{Listener: l}, nil
}

func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if _, err := net.Dial("unix", path); err == nil {
		return fmt.Errorf("ipc: socket %s already has a live listener", path)
	}
	return os.Remove(path)
}

// AcceptAuthenticated accepts the next connection and verifies its peer
// UID matches the caller's own, closing and retrying on mismatch rather
// than handing back a connection from an unexpected user.
func (l *Listener) AcceptAuthenticated() (net.Conn, error) {
	for {
		conn, err := l.Accept()
		if err != nil {
			return nil, err
		}
		uc, ok := conn.(*net.UnixConn)
		if !ok {
			return conn, nil
		}
		raw, err := uc.SyscallConn()
		if err != nil {
			conn.Close()
			return nil, err
		}
		var cred *unix.Ucred
		var credErr error
		ctlErr := raw.Control(func(fd uintptr) {
			cred, credErr = getPeerCred(int(fd))
		})
		if ctlErr != nil {
			conn.Close()
			return nil, ctlErr
		}
		if credErr != nil {
			conn.Close()
			return nil, credErr
		}
		if int(cred.Uid) != os.Getuid() {
			logging.Trace(logging.For("ipc"), "rejecting connection from unexpected uid", "uid", cred.Uid)
			conn.Close()
			continue
		}
		return conn, nil
	}
}
