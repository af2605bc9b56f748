// Package cache implements the concurrent mirror of the remote AT-SPI tree
// (spec.md §3, §4.1). Items live in an arena keyed by (bus_name, path);
// parent/child links are keys plus optional weak handles into other
// slots, never owning references, so late-arriving parents and dropped
// children never produce cycles or dangling pointers (spec.md §9).
package cache

import (
	"sync"
	"time"

	"github.com/odilia-app/odilia-core/internal/iface"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

// item is one arena slot. All fields below mu are guarded by it; holding
// mu across a blocking or suspension point is forbidden (spec.md §4.1
// concurrency discipline, §5 suspension points).
type item struct {
	mu sync.Mutex

	object key.Key
	app    key.Key
	parent key.Ref
	index  int

	// handle is the single weak handle identifying this slot. Every Ref
	// that resolves to this item binds the same handle, so Detach (on
	// removal) invalidates all of them at once (spec.md §3 Lifecycle).
	handle *key.WeakHandle

	childrenNum int
	interfaces  iface.Set
	role        role.Role
	states      state.Set
	text        string
	children    []key.Ref

	name        string
	hasName     bool
	description string
	hasDesc     bool
	locale      string
	hasLocale   bool

	createdAt time.Time
}

// Key implements key.Slot so item can be the resolution target of a
// key.Ref's weak handle.
func (it *item) Key() key.Key { return it.object }

// Snapshot is a value-typed copy of one cache item, returned by Get and
// GetOrCreate. It carries no locks and is safe to read after the cache
// call returns (spec.md §4.1: "No locks held across the return").
type Snapshot struct {
	Object key.Key
	App    key.Key
	Parent key.Key
	Index  int

	ChildrenNum int
	Interfaces  iface.Set
	Role        role.Role
	States      state.Set
	Text        string
	Children    []key.Key

	Name           string
	HasName        bool
	Description    string
	HasDescription bool
	Locale         string
	HasLocale      bool
}

func (it *item) snapshotLocked() Snapshot {
	children := make([]key.Key, len(it.children))
	for i, c := range it.children {
		children[i] = c.Key
	}
	return Snapshot{
		Object:         it.object,
		App:            it.app,
		Parent:         it.parent.Key,
		Index:          it.index,
		ChildrenNum:    it.childrenNum,
		Interfaces:     it.interfaces,
		Role:           it.role,
		States:         it.states,
		Text:           it.text,
		Children:       children,
		Name:           it.name,
		HasName:        it.hasName,
		Description:    it.description,
		HasDescription: it.hasDesc,
		Locale:         it.locale,
		HasLocale:      it.hasLocale,
	}
}

// NewItem builds a detached item (not yet inserted into a Cache) from a
// Snapshot-shaped set of fields; used by Fetcher implementations and by
// tests constructing fixtures directly.
func NewItem(s Snapshot) *item {
	it := &item{
		object:      s.Object,
		app:         s.App,
		parent:      key.NewRef(s.Parent),
		index:       s.Index,
		childrenNum: s.ChildrenNum,
		interfaces:  s.Interfaces,
		role:        s.Role,
		states:      s.States,
		text:        s.Text,
		name:        s.Name,
		hasName:     s.HasName,
		description: s.Description,
		hasDesc:     s.HasDescription,
		locale:      s.Locale,
		hasLocale:   s.HasLocale,
		createdAt:   time.Now(),
	}
	it.children = make([]key.Ref, len(s.Children))
	for i, c := range s.Children {
		it.children[i] = key.NewRef(c)
	}
	it.handle = key.NewWeakHandle(it)
	return it
}
