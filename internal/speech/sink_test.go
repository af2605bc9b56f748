package speech_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/speech"
)

type fakeConn struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (c *fakeConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func dialerFor(conn *fakeConn) speech.Dialer {
	return func() (speech.Conn, error) { return conn, nil }
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestSpeakWritesSSIPBlockTerminatedByDot(t *testing.T) {
	conn := &fakeConn{}
	sink := speech.NewSink(dialerFor(conn))
	defer sink.Quit()

	sink.Speak("hello world")

	waitFor(t, func() bool { return len(conn.Lines()) == 3 })
	lines := conn.Lines()
	assert.Equal(t, "SPEAK", lines[0])
	assert.Equal(t, "hello world", lines[1])
	assert.Equal(t, ".", lines[2])
}

func TestBareDotLineIsEscaped(t *testing.T) {
	conn := &fakeConn{}
	sink := speech.NewSink(dialerFor(conn))
	defer sink.Quit()

	sink.Speak(".")

	waitFor(t, func() bool { return len(conn.Lines()) == 3 })
	assert.Equal(t, "..", conn.Lines()[1])
}

func TestSendLinesWritesEachLine(t *testing.T) {
	conn := &fakeConn{}
	sink := speech.NewSink(dialerFor(conn))
	defer sink.Quit()

	sink.SendLines([]string{"one", "two", "three"})

	waitFor(t, func() bool { return len(conn.Lines()) == 5 })
	lines := conn.Lines()
	assert.Equal(t, []string{"SPEAK", "one", "two", "three", "."}, lines)
}

func TestSetPriorityWritesSSIPCommand(t *testing.T) {
	conn := &fakeConn{}
	sink := speech.NewSink(dialerFor(conn))
	defer sink.Quit()

	sink.SetPriority(command.PriorityImportant)

	waitFor(t, func() bool { return len(conn.Lines()) == 1 })
	assert.Equal(t, "SET SELF PRIORITY IMPORTANT", conn.Lines()[0])
}

func TestCancelScopeSelectsSSIPScope(t *testing.T) {
	conn := &fakeConn{}
	sink := speech.NewSink(dialerFor(conn))
	defer sink.Quit()

	sink.Cancel(speech.ScopeAll)

	waitFor(t, func() bool { return len(conn.Lines()) == 1 })
	assert.Equal(t, "CANCEL ALL", conn.Lines()[0])
}

func TestQuitClosesConnection(t *testing.T) {
	conn := &fakeConn{}
	sink := speech.NewSink(dialerFor(conn))

	sink.Speak("hi")
	sink.Quit()

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.True(t, conn.closed)
}

