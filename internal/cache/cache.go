package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/logging"
	"github.com/odilia-app/odilia-core/internal/metrics"
)

// Fetcher constructs a fresh item for k by issuing whatever concurrent
// RPCs are needed against the remote object (spec.md §4.1
// get_or_create). It must not hold any cache lock while it runs.
type Fetcher func(ctx context.Context, k key.Key) (Snapshot, error)

// Cache is the concurrent mirror of the remote accessibility tree
// (spec.md §4.1, C2). The map itself is guarded by mu for safe concurrent
// lookup; per-item mutation is serialized by each item's own mutex, never
// by mu, so a slow mutator of one item holds up only readers and writers
// of that same item (spec.md §4.1 "Concurrency discipline").
type Cache struct {
	mu    sync.RWMutex
	items map[key.Key]*item
	log   *slog.Logger
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		items: make(map[key.Key]*item),
		log:   logging.For("cache"),
	}
}

// Get returns a value-typed snapshot of the item at k, or false if absent.
// No lock is held across the return (spec.md §4.1).
func (c *Cache) Get(k key.Key) (Snapshot, bool) {
	c.mu.RLock()
	it, ok := c.items[k]
	c.mu.RUnlock()
	if !ok {
		metrics.Global().RecordCacheOp("get", false)
		return Snapshot{}, false
	}
	it.mu.Lock()
	snap := it.snapshotLocked()
	it.mu.Unlock()
	metrics.Global().RecordCacheOp("get", true)
	return snap, true
}

// Handle is a shared reference that permits in-place read and short-lived
// mutation of exactly one cache item (spec.md §4.1 get_ref).
type Handle struct {
	c  *Cache
	it *item
}

// GetRef returns a Handle to the item at k, or false if absent.
func (c *Cache) GetRef(k key.Key) (Handle, bool) {
	c.mu.RLock()
	it, ok := c.items[k]
	c.mu.RUnlock()
	if !ok {
		return Handle{}, false
	}
	return Handle{c: c, it: it}, true
}

// Read returns a value-typed snapshot of the handle's item.
func (h Handle) Read() Snapshot {
	h.it.mu.Lock()
	defer h.it.mu.Unlock()
	return h.it.snapshotLocked()
}

// Mutate applies fn to the handle's item under its write lock. fn must
// not block or suspend (spec.md §4.1, §5).
func (h Handle) Mutate(fn func(Mutator)) {
	h.it.mu.Lock()
	defer h.it.mu.Unlock()
	fn(Mutator{it: h.it})
}

// Add inserts or replaces the item described by s, then reconciles
// parent/child back-references (spec.md §4.1 "Reconciliation on insert").
func (c *Cache) Add(s Snapshot) {
	c.addLocked(s)
	metrics.Global().RecordCacheOp("add", false)
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	metrics.Global().RecordCacheSize(n)
}

// AddAll bulk-inserts items, reconciling once after all inserts rather
// than once per item (spec.md §4.1 add_all).
func (c *Cache) AddAll(items []Snapshot) {
	keys := make([]key.Key, 0, len(items))
	for _, s := range items {
		it := NewItem(s)
		c.mu.Lock()
		c.items[s.Object] = it
		c.mu.Unlock()
		keys = append(keys, s.Object)
	}
	for _, k := range keys {
		c.reconcile(k)
	}
	metrics.Global().RecordCacheOp("add_all", false)
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	metrics.Global().RecordCacheSize(n)
}

func (c *Cache) addLocked(s Snapshot) {
	it := NewItem(s)
	c.mu.Lock()
	c.items[s.Object] = it
	c.mu.Unlock()
	c.reconcile(s.Object)
}

// reconcile performs the three-step pass spec.md §4.1 describes after
// inserting key k: resolve each child's parent handle, then resolve k's
// own parent slot and, if its declared index still names k, resolve that
// child reference's weak handle too. Mismatches are logged at trace and
// left alone — they indicate a parent update still in flight, which a
// later event will heal (spec.md invariant 2).
func (c *Cache) reconcile(k key.Key) {
	c.mu.RLock()
	self, ok := c.items[k]
	c.mu.RUnlock()
	if !ok {
		return
	}

	self.mu.Lock()
	children := append([]key.Ref(nil), self.children...)
	parentKey := self.parent.Key
	selfIndex := self.index
	self.mu.Unlock()

	// Step 1: point each resolvable child's parent ref at self.
	for _, childRef := range children {
		c.mu.RLock()
		childItem, ok := c.items[childRef.Key]
		c.mu.RUnlock()
		if !ok {
			continue
		}
		childItem.mu.Lock()
		childItem.parent.Bind(self.handle)
		childItem.mu.Unlock()
	}

	// Step 2: resolve self's parent slot and, if it still lists self at
	// selfIndex, bind that entry's weak handle to self.
	c.mu.RLock()
	parentItem, ok := c.items[parentKey]
	c.mu.RUnlock()
	if !ok {
		return
	}
	parentItem.mu.Lock()
	if selfIndex >= 0 && selfIndex < len(parentItem.children) && parentItem.children[selfIndex].Key == k {
		parentItem.children[selfIndex].Bind(self.handle)
	} else {
		logging.Trace(c.log, "reconciliation mismatch: parent does not list child at declared index",
			"child", k.String(), "parent", parentKey.String(), "index", selfIndex)
	}
	parentItem.mu.Unlock()
}

// Remove detaches the item at k. Weak references held elsewhere become
// unresolvable; concurrent readers holding a prior Snapshot see
// stale-but-coherent data (spec.md §3 Lifecycle).
func (c *Cache) Remove(k key.Key) {
	c.mu.Lock()
	it, ok := c.items[k]
	if ok {
		delete(c.items, k)
	}
	n := len(c.items)
	c.mu.Unlock()
	if !ok {
		metrics.Global().RecordCacheOp("remove", false)
		return
	}
	it.mu.Lock()
	key.Detach(it.handle)
	it.mu.Unlock()
	metrics.Global().RecordCacheOp("remove", true)
	metrics.Global().RecordCacheSize(n)
}

// Modify acquires exclusive access to the item at k and applies fn.
// Returns whether the item existed (spec.md §4.1, §8 testable property).
func (c *Cache) Modify(k key.Key, fn func(Mutator)) bool {
	c.mu.RLock()
	it, ok := c.items[k]
	c.mu.RUnlock()
	if !ok {
		logging.Trace(c.log, "modify on missing item", "key", k.String())
		metrics.Global().RecordCacheOp("modify", false)
		return false
	}
	it.mu.Lock()
	fn(Mutator{it: it})
	it.mu.Unlock()
	metrics.Global().RecordCacheOp("modify", true)
	return true
}

// GetOrCreate returns the cached snapshot at k if present; otherwise it
// calls fetcher (outside any lock) to build one, inserts it, and returns
// the snapshot (spec.md §4.1). On miss-and-fetch failure the fetcher's
// error is returned wrapped in *errs.AtspiError, which unwraps to it.
func (c *Cache) GetOrCreate(ctx context.Context, k key.Key, fetcher Fetcher) (Snapshot, error) {
	if s, ok := c.Get(k); ok {
		return s, nil
	}
	s, err := fetcher(ctx, k)
	if err != nil {
		return Snapshot{}, &errs.AtspiError{Cause: err}
	}
	c.addLocked(s)
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	metrics.Global().RecordCacheOp("get_or_create_miss", true)
	metrics.Global().RecordCacheSize(n)
	return s, nil
}

// Len returns the current number of cached items, mainly for tests and
// metrics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns a snapshot of every cached item, for introspection and
// export (internal/devtools). As with Get, no per-item lock is held
// across the return: each snapshot is taken while holding that item's
// own mutex, never the cache-wide one.
func (c *Cache) All() []Snapshot {
	c.mu.RLock()
	items := make([]*item, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	c.mu.RUnlock()

	out := make([]Snapshot, 0, len(items))
	for _, it := range items {
		it.mu.Lock()
		out = append(out, it.snapshotLocked())
		it.mu.Unlock()
	}
	return out
}
