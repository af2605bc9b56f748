package event

import (
	"encoding/json"
	"fmt"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/role"
)

// Feature names an optional, togglable capability (spec.md §4.5's
// keyboard-emitted UserEvent stream; supplemented from original_source
// common/src/events.rs).
type Feature string

const (
	FeatureSpeech  Feature = "speech"
	FeatureBraille Feature = "braille"
)

// Direction is a navigation direction, carried by StructuralNavigation
// user events; cmd/odilia turns it into the backward flag that
// structural navigation takes (spec.md §4.4).
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// UserEventKind discriminates the closed set of intents the keyboard
// interceptor can emit over the IPC socket (spec.md §4.5, §6).
type UserEventKind int

const (
	UserEventStopSpeech UserEventKind = iota
	UserEventEnable
	UserEventDisable
	UserEventChangeMode
	UserEventStructuralNavigation
	UserEventQuit
)

func (k UserEventKind) String() string {
	switch k {
	case UserEventStopSpeech:
		return "StopSpeech"
	case UserEventEnable:
		return "Enable"
	case UserEventDisable:
		return "Disable"
	case UserEventChangeMode:
		return "ChangeMode"
	case UserEventStructuralNavigation:
		return "StructuralNavigation"
	case UserEventQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes k by name rather than ordinal, so the wire format
// internal/ipc ships isn't coupled to this iota's declaration order.
func (k UserEventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a name produced by MarshalJSON.
func (k *UserEventKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, candidate := range []UserEventKind{
		UserEventStopSpeech, UserEventEnable, UserEventDisable,
		UserEventChangeMode, UserEventStructuralNavigation, UserEventQuit,
	} {
		if candidate.String() == name {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("event: unknown UserEventKind %q", name)
}

// UserEvent is the second tagged union the pipeline consumes (spec.md
// §4.2 "User-intent event stream"), decoded from JSON delivered over the
// keyboard IPC socket (internal/ipc).
type UserEvent struct {
	Kind UserEventKind `json:"kind"`

	Feature Feature      `json:"feature,omitempty"` // Enable, Disable
	Mode    command.Mode `json:"mode,omitempty"`     // ChangeMode
	Dir     Direction    `json:"dir,omitempty"`      // StructuralNavigation
	Role    role.Role    `json:"role,omitempty"`     // StructuralNavigation
}

func StopSpeech() UserEvent { return UserEvent{Kind: UserEventStopSpeech} }

func Enable(f Feature) UserEvent { return UserEvent{Kind: UserEventEnable, Feature: f} }

func Disable(f Feature) UserEvent { return UserEvent{Kind: UserEventDisable, Feature: f} }

func ChangeMode(m command.Mode) UserEvent { return UserEvent{Kind: UserEventChangeMode, Mode: m} }

func StructuralNavigation(dir Direction, r role.Role) UserEvent {
	return UserEvent{Kind: UserEventStructuralNavigation, Dir: dir, Role: r}
}

// Quit requests the core process shut down (spec.md §4.5's default
// Shift+Q binding, supplemented from original_source's Quit event).
func Quit() UserEvent { return UserEvent{Kind: UserEventQuit} }
