package cache

import (
	"github.com/odilia-app/odilia-core/internal/iface"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/logging"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

// Mutator exposes the closed set of in-place mutations a command handler
// may apply to a cache item (spec.md §4.2 command taxonomy: SetState,
// SetText, ChangeChild). It is only ever handed to a caller already
// holding the item's write lock, via Cache.Modify or Handle.Mutate; it
// never outlives that call.
type Mutator struct {
	it *item
}

// SetText replaces the item's stored text wholesale (spec.md SetText
// command). Callers compute the new text via Insert/Delete beforehand.
func (m Mutator) SetText(text string) {
	m.it.text = text
}

// Text returns the item's current text, for handlers that need to read
// before computing a patch within the same critical section.
func (m Mutator) Text() string {
	return m.it.text
}

// SetState toggles a single state bit (spec.md SetState command).
func (m Mutator) SetState(st state.State, enabled bool) {
	m.it.states = m.it.states.With(st, enabled)
}

// States returns the item's current state set.
func (m Mutator) States() state.Set {
	return m.it.states
}

// ChangeChild inserts or removes a child reference at index (spec.md
// ChangeChild command). When add is true, child is inserted at index,
// shifting subsequent children right; when false, the child whose key is
// child is removed wherever it sits, and a declared index that disagrees
// with its cached position is logged at trace level. Out-of-range indices
// on insert clip to append; removing a child that is not listed is a
// no-op.
func (m Mutator) ChangeChild(index int, child key.Key, add bool) {
	if add {
		ref := key.NewRef(child)
		if index < 0 || index > len(m.it.children) {
			m.it.children = append(m.it.children, ref)
		} else {
			m.it.children = append(m.it.children, key.Ref{})
			copy(m.it.children[index+1:], m.it.children[index:])
			m.it.children[index] = ref
		}
		m.it.childrenNum = len(m.it.children)
		return
	}
	at := -1
	for i, ref := range m.it.children {
		if ref.Key == child {
			at = i
			break
		}
	}
	if at < 0 {
		return
	}
	if at != index {
		logging.Trace(logging.For("cache"), "ChildrenChanged removal index disagrees with cached position",
			"child", child.String(), "index", index, "cached_index", at)
	}
	m.it.children = append(m.it.children[:at], m.it.children[at+1:]...)
	m.it.childrenNum = len(m.it.children)
}

// SetName, SetDescription, and SetLocale apply AT-SPI PropertyChange
// updates to the cached mirror of those optional attributes.
func (m Mutator) SetName(name string) {
	m.it.name = name
	m.it.hasName = true
}

func (m Mutator) SetDescription(desc string) {
	m.it.description = desc
	m.it.hasDesc = true
}

func (m Mutator) SetLocale(locale string) {
	m.it.locale = locale
	m.it.hasLocale = true
}

// SetRole updates the cached role, e.g. on an AT-SPI role-changed event.
func (m Mutator) SetRole(r role.Role) {
	m.it.role = r
}

// SetInterfaces replaces the cached interface set.
func (m Mutator) SetInterfaces(s iface.Set) {
	m.it.interfaces = s
}

// Snapshot returns a value-typed copy of the item as it stands mid-mutation.
func (m Mutator) Snapshot() Snapshot {
	return m.it.snapshotLocked()
}
