// Package speech implements the "opaque sink" spec.md §6 describes:
// a channel-driven single-writer task that turns Speak/StopSpeech-style
// requests into lines on a speech-dispatcher SSIP connection, matching
// the teacher's channel-plus-strategy shape in
// pkg/bubbly/commands/batcher.go (a struct wrapping a small request
// queue and a dispatch strategy) generalized from Bubbletea commands to
// speech requests, and grounded on original_source/tts/src/lib.rs for
// the reconnect-once-then-abort behavior and the speech-dispatcher
// process-spawn fallback.
package speech

import (
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/logging"
)

// RequestChannelSize is the speech request channel's buffer (spec.md
// "Speech request channel: 128").
const RequestChannelSize = 128

// Scope names what Cancel should stop: the in-flight utterance, or
// everything queued behind it too.
type Scope int

const (
	ScopeCurrent Scope = iota
	ScopeAll
)

// request is the sink's internal tagged union: exactly one of
// SetPriority, Speak, SendLines, Cancel, Quit (spec.md §6's "a channel
// accepting requests: SetPriority(p), Speak, SendLines([...]), Cancel(scope),
// Quit").
type request struct {
	kind     requestKind
	priority command.Priority
	text     string
	lines    []string
	scope    Scope
	done     chan struct{} // reqQuit only: closed once the writer goroutine exits
}

type requestKind int

const (
	reqSetPriority requestKind = iota
	reqSpeak
	reqSendLines
	reqCancel
	reqQuit
)

// Conn is the transport a Sink writes SSIP lines to; responses are not
// read. A real connection dials speech-dispatcher; tests substitute an
// in-memory fake.
type Conn interface {
	WriteLine(line string) error
	Close() error
}

// Dialer opens a new Conn. It does not spawn speech-dispatcher itself;
// Sink.dialWithRetry does that once after a failed dial and then calls
// the Dialer one more time.
type Dialer func() (Conn, error)

// Sink owns the speech connection and is driven by a single writer
// goroutine reading off its request channel (spec.md §6: "The speech
// sink owns its connection and is driven by a single writer task").
type Sink struct {
	requests chan request
	dial     Dialer
	log      *slog.Logger

	conn     Conn
	priority command.Priority
}

// NewSink starts a Sink's writer goroutine against dial. The connection
// is established lazily, on the first request, so constructing a Sink
// never blocks or fails.
func NewSink(dial Dialer) *Sink {
	s := &Sink{
		requests: make(chan request, RequestChannelSize),
		dial:     dial,
		log:      logging.For("speech"),
	}
	go s.run()
	return s
}

func (s *Sink) SetPriority(p command.Priority) {
	s.requests <- request{kind: reqSetPriority, priority: p}
}

func (s *Sink) Speak(text string) {
	s.requests <- request{kind: reqSpeak, text: text}
}

func (s *Sink) SendLines(lines []string) {
	s.requests <- request{kind: reqSendLines, lines: lines}
}

func (s *Sink) Cancel(scope Scope) {
	s.requests <- request{kind: reqCancel, scope: scope}
}

// Quit asks the writer goroutine to close the connection and return; it
// blocks until that happens.
func (s *Sink) Quit() {
	done := make(chan struct{})
	s.requests <- request{kind: reqQuit, done: done}
	<-done
}

func (s *Sink) run() {
	for req := range s.requests {
		if req.kind == reqQuit {
			s.closeConn()
			close(req.done)
			return
		}
		if err := s.ensureConn(); err != nil {
			logging.Error(s.log, "speech sink has no connection, dropping request", "error", err)
			continue
		}
		s.handle(req)
	}
}

func (s *Sink) ensureConn() error {
	if s.conn != nil {
		return nil
	}
	conn, err := s.dialWithRetry()
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// dialWithRetry implements the single-reconnect-then-abort policy: dial
// once, and on failure spawn speech-dispatcher and try exactly once
// more.
func (s *Sink) dialWithRetry() (Conn, error) {
	conn, err := s.dial()
	if err == nil {
		return conn, nil
	}
	logging.Trace(s.log, "speech-dispatcher unreachable, spawning", "error", err)
	if spawnErr := spawnDispatcher(); spawnErr != nil {
		return nil, spawnErr
	}
	time.Sleep(500 * time.Millisecond)
	return s.dial()
}

// spawnDispatcher is swappable for tests, the same way internal/ipc's
// getPeerCred is: it isolates the one line that actually execs a
// subprocess.
var spawnDispatcher = func() error {
	cmd := exec.Command("speech-dispatcher", "--spawn")
	return cmd.Start()
}

func (s *Sink) closeConn() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		logging.Error(s.log, "error closing speech connection", "error", err)
	}
	s.conn = nil
}

func (s *Sink) handle(req request) {
	switch req.kind {
	case reqSetPriority:
		s.priority = req.priority
		s.write(ssipSetPriority(req.priority))
	case reqSpeak:
		s.speakLines([]string{req.text})
	case reqSendLines:
		s.speakLines(req.lines)
	case reqCancel:
		s.write(ssipCancel(req.scope))
	}
}

func (s *Sink) speakLines(lines []string) {
	s.write("SPEAK")
	for _, line := range lines {
		s.write(escapeBareDot(line))
	}
	s.write(".")
}

func (s *Sink) write(line string) {
	if err := s.conn.WriteLine(line); err != nil {
		logging.Error(s.log, "speech connection write failed", "error", err)
		s.closeConn()
	}
}

// escapeBareDot implements spec.md §6's singleton-"." quirk: a line
// that is exactly "." is speech-dispatcher's block terminator, so a
// literal one-character "." utterance must be escaped (dot-stuffed) or
// it silently ends the block early instead of being spoken.
func escapeBareDot(line string) string {
	if line == "." {
		return ".."
	}
	return line
}

// ssipSetPriority renders p as the SSIP command expects: its five
// priority categories (IMPORTANT, MESSAGE, TEXT, NOTIFICATION, PROGRESS)
// are spoken in upper case on the wire, unlike command.Priority's own
// lower-case String().
func ssipSetPriority(p command.Priority) string {
	return "SET SELF PRIORITY " + strings.ToUpper(p.String())
}

func ssipCancel(scope Scope) string {
	if scope == ScopeAll {
		return "CANCEL ALL"
	}
	return "CANCEL SELF"
}
