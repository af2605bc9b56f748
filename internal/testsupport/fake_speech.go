package testsupport

import (
	"sync"

	"github.com/odilia-app/odilia-core/internal/speech"
)

// FakeSpeechConn is a speech.Conn double that records every line
// written to it instead of talking to a real speech-dispatcher.
type FakeSpeechConn struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func NewFakeSpeechConn() *FakeSpeechConn {
	return &FakeSpeechConn{}
}

func (c *FakeSpeechConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
	return nil
}

func (c *FakeSpeechConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Lines returns a copy of every line written so far.
func (c *FakeSpeechConn) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *FakeSpeechConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Dialer returns a speech.Dialer that always hands back this connection,
// for wiring into speech.NewSink in tests.
func (c *FakeSpeechConn) Dialer() speech.Dialer {
	return func() (speech.Conn, error) { return c, nil }
}
