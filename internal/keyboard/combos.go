package keyboard

import (
	"fmt"

	"github.com/odilia-app/odilia-core/internal/command"
)

// SetError reports why a mode-scoped ComboSet could not be added to a
// ComboSets registry.
type SetError struct {
	Msg string
}

func (e *SetError) Error() string { return e.Msg }

type modeSet struct {
	mode *command.Mode // nil means global, active in every mode
	set  *ComboSet
}

// ComboSets is the full keybinding registry: a list of (mode, ComboSet)
// pairs, grounded on original_source's ComboSets. A nil mode means the
// combos in that set fire regardless of the screen reader's current
// mode; a non-nil mode restricts them to only fire while State.mode
// equals it.
type ComboSets struct {
	sets []modeSet
}

// NewComboSets builds an empty ComboSets registry.
func NewComboSets() *ComboSets {
	return &ComboSets{}
}

// Insert adds cs, scoped to mode (nil for global), validating:
//
//   - every combo in cs has at least one key (spec.md §4.5: a combo
//     with zero keys could never be pressed),
//   - mode, if non-nil, is reachable: some combo already registered
//     (in any scope) must be a ChangeMode to it, since otherwise the
//     user could never enter the mode the new combos are scoped to,
//   - no combo in cs collides (identical or shared-prefix) with a
//     combo already registered in the same mode or in the global scope,
//     since a global combo and a mode-scoped combo can both be live at
//     once.
func (cs *ComboSets) Insert(mode *command.Mode, set *ComboSet) error {
	for _, e := range set.entries {
		if e.keys.Len() == 0 {
			return &SetError{Msg: "combo has no keys"}
		}
	}

	if mode != nil {
		reachable := false
	outer:
		for _, existing := range cs.sets {
			for _, e := range existing.set.entries {
				if target, ok := e.changeModeTarget(); ok && target == string(*mode) {
					reachable = true
					break outer
				}
			}
		}
		if !reachable {
			return &SetError{Msg: fmt.Sprintf("mode %q is not reachable by any registered combo", *mode)}
		}
	}

	for _, existing := range cs.sets {
		scoped := mode == nil || existing.mode == nil || (existing.mode != nil && *existing.mode == *mode)
		if !scoped {
			continue
		}
		for _, e1 := range existing.set.entries {
			for _, e2 := range set.entries {
				if e1.keys.Equal(e2.keys) {
					return &SetError{Msg: "identical combo already registered in an applicable mode"}
				}
				if e1.keys.StartsWith(e2.keys) || e2.keys.StartsWith(e1.keys) {
					return &SetError{Msg: "combo shares a prefix with one already registered in an applicable mode"}
				}
			}
		}
	}

	cs.sets = append(cs.sets, modeSet{mode: mode, set: set})
	return nil
}

// MustInsert is Insert, panicking on error; used when building the
// fixed default combo table.
func (cs *ComboSets) MustInsert(mode *command.Mode, set *ComboSet) {
	if err := cs.Insert(mode, set); err != nil {
		panic(err)
	}
}

// applicable reports the combo entries active while the screen reader
// is in currentMode: every global combo, plus every combo scoped to
// currentMode.
func (cs *ComboSets) applicable(currentMode command.Mode) []comboEntry {
	var out []comboEntry
	for _, s := range cs.sets {
		if s.mode == nil || *s.mode == currentMode {
			out = append(out, s.set.entries...)
		}
	}
	return out
}
