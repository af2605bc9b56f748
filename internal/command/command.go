// Package command defines the closed command vocabulary event handlers
// produce and command handlers consume (spec.md §4.3), plus the serial,
// FIFO command queue the main loop drains one command at a time.
package command

import (
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/state"
)

// Priority orders speech requests (spec.md §6): Important > Message >
// Text > Notification > Progress.
type Priority int

const (
	PriorityProgress Priority = iota
	PriorityNotification
	PriorityText
	PriorityMessage
	PriorityImportant
)

func (p Priority) String() string {
	switch p {
	case PriorityImportant:
		return "important"
	case PriorityMessage:
		return "message"
	case PriorityText:
		return "text"
	case PriorityNotification:
		return "notification"
	case PriorityProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Kind discriminates the closed command taxonomy (spec.md §4.3).
type Kind int

const (
	KindSpeak Kind = iota
	KindStopSpeech
	KindFocus
	KindCaretPos
	KindSetState
	KindSetText
	KindChangeChild
	KindChangeMode
)

func (k Kind) String() string {
	switch k {
	case KindSpeak:
		return "Speak"
	case KindStopSpeech:
		return "StopSpeech"
	case KindFocus:
		return "Focus"
	case KindCaretPos:
		return "CaretPos"
	case KindSetState:
		return "SetState"
	case KindSetText:
		return "SetText"
	case KindChangeChild:
		return "ChangeChild"
	case KindChangeMode:
		return "ChangeMode"
	default:
		return "Unknown"
	}
}

// Mode is the screen-reader mode (spec.md §4.5's ChangeMode payload and
// the keybinding combo registry's mode scoping).
type Mode string

const (
	ModeFocus  Mode = "focus"
	ModeBrowse Mode = "browse"
)

// Command is a single value in the closed mutation vocabulary produced
// by event handlers and consumed by command handlers (spec.md §4.3). It
// is a struct-of-fields rather than an interface-per-variant union so
// the command queue and dispatcher can treat every command uniformly;
// only the fields relevant to Kind are populated.
type Command struct {
	Kind Kind

	// Speak (Text, Priority), SetText (Text)
	Text     string
	Priority Priority

	// Focus, SetState, SetText, ChangeChild
	Key key.Key

	// CaretPos
	Offset int

	// SetState
	State   state.State
	Enabled bool

	// ChangeChild
	Index    int
	NewChild key.Key
	Add      bool

	// ChangeMode
	Mode Mode
}

// Speak builds a Speak command.
func Speak(text string, priority Priority) Command {
	return Command{Kind: KindSpeak, Text: text, Priority: priority}
}

// StopSpeech builds a StopSpeech command.
func StopSpeech() Command {
	return Command{Kind: KindStopSpeech}
}

// Focus builds a Focus command.
func Focus(k key.Key) Command {
	return Command{Kind: KindFocus, Key: k}
}

// CaretPos builds a CaretPos command.
func CaretPos(offset int) Command {
	return Command{Kind: KindCaretPos, Offset: offset}
}

// SetState builds a SetState command.
func SetState(k key.Key, st state.State, enabled bool) Command {
	return Command{Kind: KindSetState, Key: k, State: st, Enabled: enabled}
}

// SetText builds a SetText command.
func SetText(k key.Key, text string) Command {
	return Command{Kind: KindSetText, Key: k, Text: text}
}

// ChangeChild builds a ChangeChild command.
func ChangeChild(k key.Key, index int, newChild key.Key, add bool) Command {
	return Command{Kind: KindChangeChild, Key: k, Index: index, NewChild: newChild, Add: add}
}

// ChangeMode builds a ChangeMode command.
func ChangeMode(mode Mode) Command {
	return Command{Kind: KindChangeMode, Mode: mode}
}
