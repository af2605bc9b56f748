package ipc

import (
	"fmt"
	"net"

	"github.com/odilia-app/odilia-core/internal/event"
)

// Client is the keyboard interceptor's side of the socket: it dials the
// core process and encodes one UserEvent per call as a JSON line.
type Client struct {
	conn net.Conn
	enc  *Encoder
}

// Dial connects to the core process's socket at path.
func Dial(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: dial %s: %w", path, err)
	}
	return &Client{conn: conn, enc: NewEncoder(conn)}, nil
}

// Send emits ev as one JSON line on the socket.
func (c *Client) Send(ev event.UserEvent) error {
	return c.enc.Encode(ev)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
