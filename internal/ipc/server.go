package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/logging"
)

// Handler is called once per decoded UserEvent. It runs on the
// connection's own goroutine, so a slow handler only stalls the
// interceptor that sent it, not other connections.
type Handler func(event.UserEvent)

// Server accepts connections on a Listener and feeds every decoded
// UserEvent to a Handler, one goroutine per connection (spec.md §6: the
// core process is the listening side, the keyboard interceptor the
// dialing side).
type Server struct {
	ln     *Listener
	handle Handler
	log    *slog.Logger
}

func NewServer(ln *Listener, handle Handler) *Server {
	return &Server{ln: ln, handle: handle, log: logging.For("ipc.server")}
}

// Serve accepts connections until the listener is closed, returning nil
// in that case (mirroring net.Listener.Accept's documented shutdown
// signal: a "use of closed network connection" error).
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.AcceptAuthenticated()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	dec := NewDecoder(conn)
	for {
		ev, err := dec.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logging.Trace(s.log, "connection read failed", "error", err)
			}
			return
		}
		s.handle(ev)
	}
}
