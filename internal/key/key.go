// Package key defines the object key that identifies every accessible in
// the remote AT-SPI tree.
package key

import "fmt"

// Key identifies a single accessible object by the bus name of the
// application that owns it and the object's D-Bus path within that
// application. Key is value-typed, hashable and totally ordered so it can
// be used directly as a map key and sorted for deterministic logging.
type Key struct {
	BusName string
	Path    string
}

// New builds a Key from a bus name and object path.
func New(busName, path string) Key {
	return Key{BusName: busName, Path: path}
}

// RootPath is the well-known object path of an application's root
// accessible.
const RootPath = "/org/a11y/atspi/accessible/root"

// Root returns the key of busName's root accessible.
func Root(busName string) Key {
	return Key{BusName: busName, Path: RootPath}
}

// IsRoot reports whether k addresses an application root.
func (k Key) IsRoot() bool {
	return k.Path == RootPath
}

// String renders the key as "busName:path", used in logs and traces.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.BusName, k.Path)
}

// Less gives Key a total order (by bus name, then path), suitable for
// taking per-item locks in a deterministic order. Nothing in this module
// calls it: no code path holds two item locks at once.
func (k Key) Less(other Key) bool {
	if k.BusName != other.BusName {
		return k.BusName < other.BusName
	}
	return k.Path < other.Path
}

// Ref is a cache reference: a key plus a weak handle to the referenced
// item's cache slot. A Ref with a nil or stale handle is not an error — it
// simply forces a fresh lookup by Key. Refs never own the item they point
// at; dropping one never removes anything from the cache.
type Ref struct {
	Key    Key
	handle *WeakHandle
}

// NewRef builds an unresolved reference to key; it must be resolved by the
// cache before Resolve returns anything.
func NewRef(k Key) Ref {
	return Ref{Key: k}
}

// WeakHandle is the resolution target a Ref points at. It is owned by the
// cache slot it names; the cache nils out live when the slot is removed so
// that every Ref holding this handle observes the detachment without a
// map lookup.
type WeakHandle struct {
	slot Slot
	live bool
}

// Slot is the minimal surface a cache exposes for weak-handle resolution.
// internal/cache.item implements this; it is defined here (rather than in
// internal/cache) so that Ref can resolve without importing the cache
// package and creating an import cycle.
type Slot interface {
	Key() Key
}

// Bind attaches handle h (created by the cache on insert/reconciliation)
// to this Ref. Binding is how the cache's reconciliation pass (§4.1)
// populates a previously-unresolved Ref after the target item appears.
func (r *Ref) Bind(h *WeakHandle) {
	r.handle = h
}

// Handle exposes the raw weak handle for the cache package's
// reconciliation pass; callers outside internal/cache should use Resolve.
func (r Ref) Handle() *WeakHandle {
	return r.handle
}

// Resolve returns the referenced slot if the weak handle is still live.
// A false result is the normal "not resolved yet" case, not an error: the
// caller should fall back to a fresh lookup by Key.
func (r Ref) Resolve() (Slot, bool) {
	if r.handle == nil || !r.handle.live {
		return nil, false
	}
	return r.handle.slot, true
}

// NewWeakHandle constructs a live weak handle pointing at slot. Only
// internal/cache calls this, when it inserts or reconciles an item.
func NewWeakHandle(slot Slot) *WeakHandle {
	return &WeakHandle{slot: slot, live: true}
}

// Detach marks h as no longer resolvable. Called by the cache when the
// slot it names is removed (§3 Lifecycle); every Ref holding h observes
// the detachment on its next Resolve call.
func Detach(h *WeakHandle) {
	if h != nil {
		h.live = false
	}
}
