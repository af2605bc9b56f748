// Package handlers implements the two dispatch tables spec.md §4.3
// describes: event handlers, keyed by the AT-SPI (interface, member)
// pair, run concurrently per event and produce commands; command
// handlers, keyed by command kind, run strictly serially and mutate the
// cache. The registration style (a mutex-guarded map plus a monotonic
// id counter for add/remove) follows the teacher's own
// pkg/bubble/event_dispatcher.go, simplified from its capture/bubble DOM
// phases down to the flat fan-out/serial model this spec calls for.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/breadcrumbs"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/logging"
)

// EventHandlerFunc handles one hydrated event and produces zero or more
// commands. Returning an *errs.PredicateFailure means "not for me" and is
// not logged as an error (spec.md §7); any other error is logged and the
// handler's commands are discarded, but sibling handlers still run
// (spec.md §7 propagation policy: independent, never cancels siblings).
type EventHandlerFunc func(ctx context.Context, h event.Hydrated) ([]command.Command, error)

type eventEntry struct {
	id        string
	kind      atspi.Kind
	predicate event.Predicate
	handler   EventHandlerFunc
}

// EventRegistry holds the concurrent-dispatch event handler table.
type EventRegistry struct {
	mu      sync.RWMutex
	entries map[string]eventEntry
	nextID  int
	log     *slog.Logger
}

// NewEventRegistry builds an empty EventRegistry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{
		entries: make(map[string]eventEntry),
		nextID:  1,
		log:     logging.For("handlers.event"),
	}
}

// Register adds a handler for kind, gated by an optional predicate (nil
// means "always runs"). Returns an id usable with Remove.
func (r *EventRegistry) Register(kind atspi.Kind, predicate event.Predicate, handler EventHandlerFunc) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := strconv.Itoa(r.nextID)
	r.nextID++
	r.entries[id] = eventEntry{id: id, kind: kind, predicate: predicate, handler: handler}
	return id
}

// Remove unregisters a handler by id.
func (r *EventRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *EventRegistry) matching(kind atspi.Kind) []eventEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []eventEntry
	for _, e := range r.entries {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	// ids are decimal renderings of an increasing counter, so shorter
	// ids were registered first.
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].id) != len(out[j].id) {
			return len(out[i].id) < len(out[j].id)
		}
		return out[i].id < out[j].id
	})
	return out
}

// Dispatch runs every handler registered for h.Raw.Kind concurrently
// (spec.md §4.3: "event handlers run concurrently per event"), filters
// by each handler's predicate, and returns the concatenation of all
// produced commands in registration order. A handler whose predicate
// fails contributes nothing and is not logged as an error; any other
// handler error is logged and that handler contributes nothing, but does
// not affect the others (spec.md §7).
func (r *EventRegistry) Dispatch(ctx context.Context, h event.Hydrated) []command.Command {
	entries := r.matching(h.Raw.Kind)
	if len(entries) == 0 {
		logging.Trace(r.log, "no handlers registered for event kind", "kind", h.Raw.Kind.String())
		return nil
	}

	results := make([][]command.Command, len(entries))
	var wg sync.WaitGroup
	wg.Add(len(entries))
	for i, e := range entries {
		go func(i int, e eventEntry) {
			defer wg.Done()
			if e.predicate != nil {
				if err := e.predicate(h); err != nil {
					logging.Trace(r.log, "handler predicate declined event", "handler", e.id, "error", err)
					return
				}
			}
			cmds, err := e.handler(ctx, h)
			if err != nil {
				var pf *errs.PredicateFailure
				if errors.As(err, &pf) {
					logging.Trace(r.log, "handler declined event", "handler", e.id, "error", err)
					return
				}
				logging.Error(r.log, "event handler failed", "handler", e.id, "kind", h.Raw.Kind.String(), "error", err)
				breadcrumbs.Report(&breadcrumbs.HandlerFailure{Handler: e.id, Event: h.Raw.Kind.String(), Cause: err},
					&breadcrumbs.Context{Key: h.Raw.Object.String()})
				return
			}
			results[i] = cmds
		}(i, e)
	}
	wg.Wait()

	var all []command.Command
	for _, cmds := range results {
		all = append(all, cmds...)
	}
	return all
}
