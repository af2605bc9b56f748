// Package structural implements the ancestor/sibling/edge queries and the
// "get next element with role" search structural navigation relies on
// (spec.md §4.4), grounded on original_source/cache/src/accessible_ext.rs's
// AccessibleExt trait. Unlike the original, every query here reads
// straight from the cache — no RPC round trip — since the cache already
// mirrors parent/child/index for every object it holds; only
// ChildrenFromCaret needs a live provider call, since hyperlink start
// offsets aren't part of a cache.Snapshot.
package structural

import (
	"context"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
)

// Ancestors returns k's ancestor chain, nearest first, stopping once an
// ancestor is missing from the cache or names itself as its own parent
// (an application root).
func Ancestors(c *cache.Cache, k key.Key) []key.Key {
	var out []key.Key
	current := k
	for {
		snap, ok := c.Get(current)
		if !ok || snap.Parent == current {
			return out
		}
		out = append(out, snap.Parent)
		current = snap.Parent
	}
}

// AncestorWithRole walks k's ancestor chain looking for the nearest
// ancestor with role r, stopping at a RoleFrame boundary the way original_source's get_ancestor_with_role treats
// RootPane as a hard ceiling.
func AncestorWithRole(c *cache.Cache, k key.Key, r role.Role) (key.Key, bool) {
	for _, ancestor := range Ancestors(c, k) {
		snap, ok := c.Get(ancestor)
		if !ok {
			return key.Key{}, false
		}
		if snap.Role == r {
			return ancestor, true
		}
		if snap.Role == role.RoleFrame {
			return key.Key{}, false
		}
	}
	return key.Key{}, false
}

// Children returns k's children in order, or nil if k is not cached.
func Children(c *cache.Cache, k key.Key) []key.Key {
	snap, ok := c.Get(k)
	if !ok {
		return nil
	}
	return snap.Children
}

// Siblings returns every child of k's parent other than k itself.
func Siblings(c *cache.Cache, k key.Key) []key.Key {
	return siblingsFiltered(c, k, func(int, int) bool { return true })
}

// SiblingsBefore returns k's parent's children that precede k.
func SiblingsBefore(c *cache.Cache, k key.Key) []key.Key {
	return siblingsFiltered(c, k, func(i, self int) bool { return i < self })
}

// SiblingsAfter returns k's parent's children that follow k.
func SiblingsAfter(c *cache.Cache, k key.Key) []key.Key {
	return siblingsFiltered(c, k, func(i, self int) bool { return i > self })
}

func siblingsFiltered(c *cache.Cache, k key.Key, keep func(i, self int) bool) []key.Key {
	self, ok := c.Get(k)
	if !ok {
		return nil
	}
	parent, ok := c.Get(self.Parent)
	if !ok {
		return nil
	}
	selfIndex := indexOf(parent.Children, k)
	if selfIndex < 0 {
		return nil
	}
	var out []key.Key
	for i, child := range parent.Children {
		if child == k {
			continue
		}
		if keep(i, selfIndex) {
			out = append(out, child)
		}
	}
	return out
}

func indexOf(children []key.Key, k key.Key) int {
	for i, c := range children {
		if c == k {
			return i
		}
	}
	return -1
}

// ChildrenFromCaret returns the subset of k's children positioned on the
// requested side of k's text caret (spec.md §4.4, §9's resolved caret
// contract): inclusive on the backward edge (start_index <= caret),
// exclusive on the forward edge (start_index > caret). Children that
// don't expose a Hyperlink start index are always included, matching
// original_source's "include all children which do not identify their
// positions" fallback.
func ChildrenFromCaret(ctx context.Context, c *cache.Cache, provider atspi.Provider, k key.Key, backward bool) ([]key.Key, error) {
	snap, ok := c.Get(k)
	if !ok {
		return nil, errs.NoItem(k)
	}
	text, err := provider.Text(k)
	if err != nil {
		return nil, err
	}
	caret, err := text.CaretOffset(ctx)
	if err != nil {
		return nil, err
	}

	var out []key.Key
	for _, child := range snap.Children {
		hyperlink, err := provider.Hyperlink(child)
		if err != nil {
			out = append(out, child)
			continue
		}
		start, err := hyperlink.StartIndex(ctx)
		if err != nil {
			out = append(out, child)
			continue
		}
		if (backward && start <= caret) || (!backward && start > caret) {
			out = append(out, child)
		}
	}
	return out, nil
}

// Edges returns all children, siblings, and the parent of k, in that
// order (original_source's "all children, siblings, and parent, in that
// order"). dir, if non-nil, restricts children to the caret-relative
// subset and siblings to before/after accordingly; dir == nil returns
// every child and every sibling. Falls back to all children if the
// caret query fails (no Text interface, no caret), matching the
// original's "if caret_children fails, use all children."
func Edges(ctx context.Context, c *cache.Cache, provider atspi.Provider, k key.Key, dir *bool) ([]key.Key, error) {
	snap, ok := c.Get(k)
	if !ok {
		return nil, errs.NoItem(k)
	}

	var out []key.Key
	if dir == nil {
		out = append(out, snap.Children...)
		out = append(out, Siblings(c, k)...)
	} else {
		children, err := ChildrenFromCaret(ctx, c, provider, k, *dir)
		if err != nil {
			children = snap.Children
		}
		out = append(out, children...)
		if *dir {
			out = append(out, SiblingsAfter(c, k)...)
		} else {
			out = append(out, SiblingsBefore(c, k)...)
		}
	}

	if snap.Parent != k {
		if _, ok := c.Get(snap.Parent); ok {
			out = append(out, snap.Parent)
		}
	}
	return out, nil
}

// GetNext performs the visited-set DFS structural navigation uses to
// find the next (or, if backward, previous) element with role r,
// starting from k's edges (spec.md §4.4, §9: the newer visited-set
// algorithm, not the older bounded find_inner recursion). It stops and
// reports "not found" on crossing a RoleInternalFrame boundary, the top
// of structural navigation's search space.
func GetNext(ctx context.Context, c *cache.Cache, provider atspi.Provider, k key.Key, r role.Role, backward bool) (key.Key, bool, error) {
	initial, err := Edges(ctx, c, provider, k, &backward)
	if err != nil {
		return key.Key{}, false, err
	}

	visited := map[key.Key]struct{}{k: {}}
	stack := append([]key.Key(nil), initial...)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[item]; seen {
			continue
		}
		visited[item] = struct{}{}

		snap, ok := c.Get(item)
		if !ok {
			continue
		}
		if snap.Role == role.RoleInternalFrame {
			return key.Key{}, false, nil
		}
		if snap.Role == r {
			return item, true, nil
		}

		next, err := Edges(ctx, c, provider, item, &backward)
		if err != nil {
			continue
		}
		for _, e := range next {
			if _, seen := visited[e]; !seen {
				stack = append(stack, e)
			}
		}
	}
	return key.Key{}, false, nil
}
