package command

import "sync/atomic"

// CaretState holds the single atomic integer spec.md §3 describes as
// "the last observed caret offset", updated by the CaretPos command
// handler and read by cmd/odilia's CaretMoved handler to find the span of
// text the caret crossed.
type CaretState struct {
	offset atomic.Int64
}

// NewCaretState builds a CaretState starting at offset 0.
func NewCaretState() *CaretState {
	return &CaretState{}
}

// Set records offset as the last observed caret position.
func (c *CaretState) Set(offset int) {
	c.offset.Store(int64(offset))
}

// Offset returns the last observed caret position.
func (c *CaretState) Offset() int {
	return int(c.offset.Load())
}
