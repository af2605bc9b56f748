// Package keyboard implements the activation-key/combo state machine
// behind the keyboard interceptor process (spec.md §4.5), grounded on
// original_source/input-server-keyboard/src/lib.rs. The interceptor reads
// raw key events off an evdev device (github.com/gvalkov/golang-evdev,
// the domain dependency the retrieval pack's canonical-snapd pulls in
// for exactly this purpose), tracks which keys are held down after a
// fixed activation key is pressed, and matches the held set against a
// registry of key combos to produce event.UserEvent values for
// internal/ipc to ship to the core process.
package keyboard

import (
	"github.com/odilia-app/odilia-core/internal/errs"
)

// Key is one key code, taken directly from evdev's stable numeric
// keycodes (evdev.KEY_*).
type Key uint16

// ActivationKey is the fixed key that must be held for any other key
// press to be interpreted as part of a combo (spec.md §4.5). It can
// never itself be part of a KeySet.
const ActivationKey Key = 58 // evdev.KEY_CAPSLOCK

// KeySet is an ordered set of keys making up one combo, in the order
// they must be pressed: Shift-then-Ctrl-then-A and Ctrl-then-Shift-then-A
// are distinct combos, matching the original's plain Vec<Key> equality
// (spec.md §4.5 does not require order-independent matching, and the
// default keybindings never rely on it, but nothing here assumes that).
type KeySet struct {
	keys []Key
}

// NewKeySet builds an empty KeySet.
func NewKeySet() KeySet {
	return KeySet{}
}

// Insert adds key to the set, rejecting the activation key and
// duplicates (spec.md §4.5's "a combo's keys must be distinct,
// non-activation keys").
func (s *KeySet) Insert(key Key) error {
	if key == ActivationKey {
		return &errs.PredicateFailure{Msg: "activation key cannot be part of a combo"}
	}
	for _, k := range s.keys {
		if k == key {
			return &errs.PredicateFailure{Msg: "key already in combo"}
		}
	}
	s.keys = append(s.keys, key)
	return nil
}

// Keys builds a KeySet from a literal list of keys, failing on the
// first rejected insert.
func Keys(keys ...Key) (KeySet, error) {
	s := NewKeySet()
	for _, k := range keys {
		if err := s.Insert(k); err != nil {
			return KeySet{}, err
		}
	}
	return s, nil
}

// MustKeys is Keys, panicking on error; used to build the default combo
// table from literal key lists at init time.
func MustKeys(keys ...Key) KeySet {
	s, err := Keys(keys...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len reports how many keys are in the set.
func (s KeySet) Len() int { return len(s.keys) }

// Equal reports whether s and other contain the same keys pressed in
// the same order.
func (s KeySet) Equal(other KeySet) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for i, k := range s.keys {
		if other.keys[i] != k {
			return false
		}
	}
	return true
}

// StartsWith reports whether prefix is a prefix of s, matching the
// original's KeySet::starts_with check used to reject ambiguous combos.
func (s KeySet) StartsWith(prefix KeySet) bool {
	if len(prefix.keys) > len(s.keys) {
		return false
	}
	for i, k := range prefix.keys {
		if s.keys[i] != k {
			return false
		}
	}
	return true
}

// matchesPressed reports whether the currently held keys (in press
// order, as tracked by State) exactly match this combo. The original
// compares the held Vec<Key> to the combo's KeySet directly, which means
// a combo only fires if its keys were pressed in the order they were
// declared; KeySet keeps that behavior by comparing against pressed
// order rather than sorted order.
func (s KeySet) matchesPressed(pressed []Key) bool {
	if len(pressed) != len(s.keys) {
		return false
	}
	for i, k := range pressed {
		if s.keys[i] != k {
			return false
		}
	}
	return true
}
