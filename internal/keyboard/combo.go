package keyboard

import (
	"fmt"

	"github.com/odilia-app/odilia-core/internal/event"
)

// ComboError reports why a combo could not be added to a ComboSet.
type ComboError struct {
	Msg string
}

func (e *ComboError) Error() string { return e.Msg }

type comboEntry struct {
	keys KeySet
	ev   event.UserEvent
}

// ComboSet is a flat list of key combos and the UserEvent each produces,
// grounded on original_source's ComboSet: no two combos may be
// identical, and no combo may be a prefix of another, since a prefix
// match would make the shorter combo un-triggerable (or the longer one
// unreachable, depending on press order).
type ComboSet struct {
	entries []comboEntry
}

// NewComboSet builds an empty ComboSet.
func NewComboSet() *ComboSet {
	return &ComboSet{}
}

// Insert adds keys -> ev, rejecting an identical or prefix-colliding
// combo already present.
func (c *ComboSet) Insert(keys KeySet, ev event.UserEvent) error {
	for _, e := range c.entries {
		if e.keys.Equal(keys) {
			return &ComboError{Msg: "identical combo already registered"}
		}
		if e.keys.StartsWith(keys) || keys.StartsWith(e.keys) {
			return &ComboError{Msg: fmt.Sprintf("combo shares a prefix with an existing one (%v)", e.keys.keys)}
		}
	}
	c.entries = append(c.entries, comboEntry{keys: keys, ev: ev})
	return nil
}

// MustInsert is Insert, panicking on error; used when building the
// fixed default combo table.
func (c *ComboSet) MustInsert(keys KeySet, ev event.UserEvent) {
	if err := c.Insert(keys, ev); err != nil {
		panic(err)
	}
}

// changeModeTarget reports the Mode a combo in this set would switch to,
// if ev is a ChangeMode event, used by ComboSets.Insert to validate mode
// reachability.
func (e comboEntry) changeModeTarget() (string, bool) {
	if e.ev.Kind != event.UserEventChangeMode {
		return "", false
	}
	return string(e.ev.Mode), true
}
