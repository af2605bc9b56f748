package speech

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// netConn is the real Conn, a line-oriented connection to
// speech-dispatcher's SSIP socket. SSIP speaks CRLF-terminated text
// lines over either a unix socket or a TCP port; this tries the unix
// socket speech-dispatcher publishes under XDG_RUNTIME_DIR first and
// falls back to its default TCP port, matching how a local desktop
// session normally has it configured.
type netConn struct {
	conn net.Conn
	w    *bufio.Writer
}

// DialDispatcher is the default Dialer, used by cmd/odilia.
func DialDispatcher() (Conn, error) {
	if path := socketPath(); path != "" {
		if conn, err := net.Dial("unix", path); err == nil {
			return &netConn{conn: conn, w: bufio.NewWriter(conn)}, nil
		}
	}
	conn, err := net.Dial("tcp", "127.0.0.1:6560")
	if err != nil {
		return nil, fmt.Errorf("speech: dial speech-dispatcher: %w", err)
	}
	return &netConn{conn: conn, w: bufio.NewWriter(conn)}, nil
}

func socketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return ""
	}
	return filepath.Join(runtimeDir, "speech-dispatcher", "speechd.sock")
}

func (c *netConn) WriteLine(line string) error {
	if _, err := c.w.WriteString(line); err != nil {
		return err
	}
	if _, err := c.w.WriteString("\r\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *netConn) Close() error {
	return c.conn.Close()
}
