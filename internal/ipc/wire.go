package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/odilia-app/odilia-core/internal/event"
)

// Encoder writes one event.UserEvent as one JSON line per call, matching
// spec.md §6's "exactly one JSON line" wire format.
type Encoder struct {
	w io.Writer
	// enc is reused across Encode calls so its internal buffer doesn't
	// get reallocated per event.
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, enc: json.NewEncoder(w)}
}

// Encode writes ev followed by a newline. json.Encoder already appends
// one, so this is just a thin, named wrapper around it.
func (e *Encoder) Encode(ev event.UserEvent) error {
	if err := e.enc.Encode(ev); err != nil {
		return fmt.Errorf("ipc: encode event: %w", err)
	}
	return nil
}

// Decoder reads a stream of newline-delimited JSON UserEvents off r.
type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 64*1024)
	return &Decoder{scanner: s}
}

// Next reads the next line and decodes it as a UserEvent. It returns
// io.EOF once the underlying reader is exhausted.
func (d *Decoder) Next() (event.UserEvent, error) {
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return event.UserEvent{}, fmt.Errorf("ipc: read line: %w", err)
		}
		return event.UserEvent{}, io.EOF
	}
	var ev event.UserEvent
	if err := json.Unmarshal(d.scanner.Bytes(), &ev); err != nil {
		return event.UserEvent{}, fmt.Errorf("ipc: decode event: %w", err)
	}
	return ev, nil
}
