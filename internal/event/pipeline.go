// Package event hydrates raw AT-SPI signals and keyboard-emitted user
// intents into the values event handlers actually run against (spec.md
// §4.2). Hydration is the only place the pipeline touches the cache
// before dispatch: everything downstream works off a snapshot taken at
// admission time, never the live item.
package event

import (
	"context"
	"log/slog"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/logging"
)

// Hydrated pairs a raw AT-SPI event with the cache snapshot of the
// object it names, resolved via get_or_create (spec.md §4.1, §4.2). This
// is what event handlers are actually invoked with; they never see the
// live cache item.
type Hydrated struct {
	Raw  atspi.Event
	Item cache.Snapshot
}

// Fetch builds a cache.Fetcher that asks provider for a fresh snapshot
// of an object missing from the cache, used to back Hydrator's
// get_or_create call.
func Fetch(provider atspi.Provider) cache.Fetcher {
	return func(ctx context.Context, k key.Key) (cache.Snapshot, error) {
		return fetchSnapshot(ctx, provider, k)
	}
}

// fetchSnapshot issues the RPCs get_or_create needs to build a fresh
// Snapshot for k. The RPCs run one after another, not concurrently, and
// the first one that fails ends the fetch. Errors are returned unwrapped;
// Cache.GetOrCreate wraps them in errs.AtspiError itself.
func fetchSnapshot(ctx context.Context, provider atspi.Provider, k key.Key) (cache.Snapshot, error) {
	acc := provider.Accessible(k)

	r, err := acc.Role(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	ifaces, err := acc.Interfaces(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	states, err := acc.State(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	name, err := acc.Name(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	app, err := acc.Application(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	parent, err := acc.Parent(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	index, err := acc.IndexInParent(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}
	children, err := acc.Children(ctx)
	if err != nil {
		return cache.Snapshot{}, err
	}

	return cache.Snapshot{
		Object:      k,
		App:         app,
		Parent:      parent,
		Index:       index,
		Role:        r,
		Interfaces:  ifaces,
		States:      states,
		Name:        name,
		HasName:     true,
		Children:    children,
		ChildrenNum: len(children),
	}, nil
}

// Hydrator resolves raw AT-SPI events against the cache before dispatch.
type Hydrator struct {
	cache *cache.Cache
	fetch cache.Fetcher
	log   *slog.Logger
}

// NewHydrator builds a Hydrator backed by c, fetching misses from provider.
func NewHydrator(c *cache.Cache, provider atspi.Provider) *Hydrator {
	return &Hydrator{cache: c, fetch: Fetch(provider), log: logging.For("event")}
}

// Hydrate resolves raw's object reference via get_or_create (spec.md
// §4.1). If resolution fails the event is dropped: the second return
// value is false and no handler should run (spec.md §4.2 "If the lookup
// fails... the event is dropped with a trace log; no handler runs").
func (h *Hydrator) Hydrate(ctx context.Context, raw atspi.Event) (Hydrated, bool) {
	snap, err := h.cache.GetOrCreate(ctx, raw.Object, h.fetch)
	if err != nil {
		logging.Trace(h.log, "dropping event: object resolution failed", "event", raw.Kind.String(), "object", raw.Object, "error", err)
		return Hydrated{}, false
	}
	return Hydrated{Raw: raw, Item: snap}, true
}

// Predicate decides whether a hydrated event is relevant to a given
// handler (spec.md §4.2's predicate filtering). Handlers that return
// errs.PredicateFailure from a Predicate are treated as "nothing to do
// here", not a failure.
type Predicate func(Hydrated) error

// And combines predicates; the first failure short-circuits the rest.
func And(predicates ...Predicate) Predicate {
	return func(h Hydrated) error {
		for _, p := range predicates {
			if err := p(h); err != nil {
				return err
			}
		}
		return nil
	}
}

// KindIs matches events of exactly the given wire kind.
func KindIs(kind atspi.Kind) Predicate {
	return func(h Hydrated) error {
		if h.Raw.Kind != kind {
			return &errs.PredicateFailure{Msg: "kind mismatch: want " + kind.String() + " got " + h.Raw.Kind.String()}
		}
		return nil
	}
}

// StateEnabled matches events whose hydrated item currently reports st
// as enabled.
func StateEnabled(st func(cache.Snapshot) bool) Predicate {
	return func(h Hydrated) error {
		if !st(h.Item) {
			return &errs.PredicateFailure{Msg: "required state not set"}
		}
		return nil
	}
}
