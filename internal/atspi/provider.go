package atspi

import (
	"context"

	"github.com/odilia-app/odilia-core/internal/iface"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

// Provider is the opaque AT-SPI consumer interface spec.md §6 requires:
// event subscription plus typed RPC proxies. The core is grounded
// against this interface only; GodbusProvider in provider_dbus.go is its
// sole production implementation, and internal/testsupport provides a
// fake for tests.
type Provider interface {
	// Events returns a channel of decoded events. Closing ctx stops
	// delivery and closes the channel.
	Events(ctx context.Context) (<-chan Event, error)

	Accessible(k key.Key) AccessibleProxy
	Text(k key.Key) (TextProxy, error)
	Hyperlink(k key.Key) (HyperlinkProxy, error)
	Component(k key.Key) (ComponentProxy, error)
	Collection(k key.Key) (CollectionProxy, error)
}

// AccessibleProxy is the Accessible interface's required method set
// (spec.md §6).
type AccessibleProxy interface {
	Parent(ctx context.Context) (key.Key, error)
	Children(ctx context.Context) ([]key.Key, error)
	IndexInParent(ctx context.Context) (int, error)
	Role(ctx context.Context) (role.Role, error)
	Interfaces(ctx context.Context) (iface.Set, error)
	State(ctx context.Context) (state.Set, error)
	ChildCount(ctx context.Context) (int, error)
	Name(ctx context.Context) (string, error)
	Description(ctx context.Context) (string, error)
	Locale(ctx context.Context) (string, error)
	Attributes(ctx context.Context) (map[string]string, error)
	RelationSet(ctx context.Context) (RelationSet, error)
	RoleName(ctx context.Context) (string, error)
	LocalizedRoleName(ctx context.Context) (string, error)
	Application(ctx context.Context) (key.Key, error)
}

// TextProxy is the Text interface's required method set (spec.md §6).
// Line granularity and other view-dependent queries always go through
// here rather than the cache's local text operations.
type TextProxy interface {
	CaretOffset(ctx context.Context) (int, error)
	GetText(ctx context.Context, start, end int) (string, error)
	CharacterCount(ctx context.Context) (int, error)
	GetStringAtOffset(ctx context.Context, offset int, granularity string) (text string, start int, end int, err error)
	Selections(ctx context.Context) ([]TextRange, error)
	Attributes(ctx context.Context, offset int) (attrs map[string]string, start int, end int, err error)
}

// TextRange is a [Start, End) character-index selection span.
type TextRange struct {
	Start int
	End   int
}

// HyperlinkProxy is the Hyperlink interface's required method set,
// used by structural.ChildrenFromCaret (spec.md §4.4).
type HyperlinkProxy interface {
	StartIndex(ctx context.Context) (int, error)
	EndIndex(ctx context.Context) (int, error)
}

// ComponentProxy is the Component interface's required method set.
type ComponentProxy interface {
	Extents(ctx context.Context) (x, y, width, height int, err error)
}

// CollectionProxy is the Collection interface's required method set,
// used for bulk subtree queries.
type CollectionProxy interface {
	GetMatches(ctx context.Context, rule MatchRule, count int) ([]key.Key, error)
}

// MatchRule restricts a Collection query by role and state.
type MatchRule struct {
	Roles  role.Set
	States state.Set
}

// RelationKind enumerates the AT-SPI relation types surfaced by
// get_relation_set (spec.md §6; supplemented from original_source's
// odilia/src/tower/extractors/relation_set.rs).
type RelationKind string

const (
	RelationLabelFor      RelationKind = "label-for"
	RelationLabelledBy    RelationKind = "labelled-by"
	RelationControllerFor RelationKind = "controller-for"
	RelationControlledBy  RelationKind = "controlled-by"
	RelationFlowsTo       RelationKind = "flows-to"
	RelationFlowsFrom     RelationKind = "flows-from"
)

// Relation pairs a RelationKind with the set of objects it targets.
type Relation struct {
	Kind    RelationKind
	Targets []key.Key
}

// RelationSet is the full set of relations an accessible participates in.
type RelationSet []Relation
