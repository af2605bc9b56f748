package keyboard

import (
	"log/slog"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/logging"
)

// Emit receives a UserEvent a matched combo produced, for internal/ipc
// to forward to the core process.
type Emit func(event.UserEvent)

// State holds the interceptor's per-device state: whether the
// activation key is currently held, which mode the screen reader is in,
// which non-activation keys are currently held (in press order), and
// the combo table to match against. Grounded on original_source's
// State struct; the channel send there becomes an Emit callback here.
type State struct {
	activationPressed bool
	mode              command.Mode
	pressed           []Key
	combos            *ComboSets
	emit              Emit
	log               *slog.Logger
}

// NewState builds a State in browse mode with combos as its keybinding
// table and emit as the sink for matched combos.
func NewState(combos *ComboSets, emit Emit) *State {
	return &State{
		mode:   command.ModeBrowse,
		combos: combos,
		emit:   emit,
		log:    logging.For("keyboard"),
	}
}

// Mode reports the screen reader mode State currently believes is
// active (updated in lockstep with every matched ChangeMode combo).
func (s *State) Mode() command.Mode { return s.mode }

// HandleKeyPress processes one key-down event and reports whether it
// should be passed through to the rest of the system (true) or swallowed
// (false), mirroring original_source's callback for EventType::KeyPress.
func (s *State) HandleKeyPress(key Key) bool {
	if key == ActivationKey {
		if !s.activationPressed {
			s.activationPressed = true
			logging.Trace(s.log, "activation enabled")
		}
		return false
	}
	if !s.activationPressed {
		return true
	}

	for _, held := range s.pressed {
		if held == key {
			return false // held down / auto-repeat, already accounted for
		}
	}
	s.pressed = append(s.pressed, key)

	for _, entry := range s.combos.applicable(s.mode) {
		if entry.keys.matchesPressed(s.pressed) {
			logging.Trace(s.log, "combo matched", "event", entry.ev.Kind.String())
			if entry.ev.Kind == event.UserEventChangeMode {
				s.mode = entry.ev.Mode
			}
			s.emit(entry.ev)
			return false
		}
	}
	return false
}

// HandleKeyRelease processes one key-up event and reports whether it
// should be passed through, mirroring original_source's callback for
// EventType::KeyRelease.
func (s *State) HandleKeyRelease(key Key) bool {
	if key == ActivationKey {
		if !s.activationPressed {
			return true
		}
		s.activationPressed = false
		logging.Trace(s.log, "activation disabled")
		return false
	}

	for i, held := range s.pressed {
		if held == key {
			s.pressed = append(s.pressed[:i], s.pressed[i+1:]...)
			return false
		}
	}
	// Released a key that was never tracked as held (pressed before
	// activation began, or before the interceptor started): pass it
	// through so the focused application doesn't see it as stuck down.
	return true
}
