// Package extract provides typed, cache-backed parameter extraction for
// event handlers (spec.md §4.2's handler-parameter extraction, supplemented
// from original_source/odilia/src/tower/extractors/*.rs). Handlers ask
// for derived values — a subtree, a relation set, whether an event's
// object belongs to the active application — instead of re-deriving them
// from a raw cache.Snapshot every time.
package extract

import (
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/key"
)

// Subtree returns every item reachable from root by following children
// links, root included, each item visited at most once even if the tree
// has converged (duplicate) references (original_source's subtree.rs
// "only allow one copy of any circular reference"). Items missing from
// the cache are skipped rather than treated as an error: a child
// reference that hasn't arrived yet is normal, not exceptional
// (spec.md §3 invariant 2).
func Subtree(c *cache.Cache, root key.Key) []cache.Snapshot {
	visited := make(map[key.Key]struct{})
	var out []cache.Snapshot
	stack := []key.Key{root}

	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[k]; seen {
			continue
		}
		snap, ok := c.Get(k)
		if !ok {
			continue
		}
		visited[k] = struct{}{}
		out = append(out, snap)
		for _, child := range snap.Children {
			if _, seen := visited[child]; !seen {
				stack = append(stack, child)
			}
		}
	}
	return out
}
