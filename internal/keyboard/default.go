package keyboard

import (
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/role"
)

func modePtr(m command.Mode) *command.Mode { return &m }

// DefaultComboSets builds the stock keybinding table (spec.md §6),
// adapted from original_source's Default impl for ComboSets: a global
// set of mode switches plus a Browse-mode set of structural navigation
// shortcuts. Built fresh on every call so callers are free to mutate
// their own copy (e.g. adding user-configured combos) without aliasing
// a shared table.
func DefaultComboSets() *ComboSets {
	global := NewComboSet()
	global.MustInsert(MustKeys(KeyF), event.ChangeMode(command.ModeFocus))
	global.MustInsert(MustKeys(KeyG), event.StopSpeech())
	global.MustInsert(MustKeys(KeyB), event.ChangeMode(command.ModeBrowse))
	global.MustInsert(MustKeys(KeyLeftShift, KeyQ), event.Quit())

	browse := NewComboSet()
	browse.MustInsert(MustKeys(KeyT), event.StructuralNavigation(event.DirectionForward, role.RoleTable))
	browse.MustInsert(MustKeys(KeyLeftShift, KeyT), event.StructuralNavigation(event.DirectionBackward, role.RoleTable))
	browse.MustInsert(MustKeys(KeyH), event.StructuralNavigation(event.DirectionForward, role.RoleHeading))
	browse.MustInsert(MustKeys(KeyLeftShift, KeyH), event.StructuralNavigation(event.DirectionBackward, role.RoleHeading))
	browse.MustInsert(MustKeys(KeyI), event.StructuralNavigation(event.DirectionForward, role.RoleImage))
	browse.MustInsert(MustKeys(KeyLeftShift, KeyI), event.StructuralNavigation(event.DirectionBackward, role.RoleImage))
	browse.MustInsert(MustKeys(KeyK), event.StructuralNavigation(event.DirectionForward, role.RoleLink))
	browse.MustInsert(MustKeys(KeyLeftShift, KeyK), event.StructuralNavigation(event.DirectionBackward, role.RoleLink))

	sets := NewComboSets()
	sets.MustInsert(nil, global)
	sets.MustInsert(modePtr(command.ModeBrowse), browse)
	return sets
}
