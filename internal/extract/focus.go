package extract

import (
	"sync/atomic"

	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/key"
)

// FocusTracker records the application of the most recently focused
// accessible (original_source's ScreenReaderState.history_item(0)),
// updated by the Focus command handler. Handlers that only care about
// events from the foreground application use ActiveApplication rather
// than re-deriving this from the whole event history.
type FocusTracker struct {
	app atomic.Value // key.Key
}

// NewFocusTracker builds an empty tracker; ActiveApplication rejects
// every event until the first focus update arrives.
func NewFocusTracker() *FocusTracker {
	return &FocusTracker{}
}

// SetActiveApplication records app as the currently focused application.
func (f *FocusTracker) SetActiveApplication(app key.Key) {
	f.app.Store(app)
}

// ActiveApplication reports the currently tracked application, or the
// zero key if none has been recorded yet.
func (f *FocusTracker) ActiveApplication() key.Key {
	v, _ := f.app.Load().(key.Key)
	return v
}

// ActiveApplication builds an event.Predicate that passes only events
// whose object belongs to the currently focused application (by bus
// name), grounded on original_source's cache_event.rs ActiveApplication
// predicate.
func ActiveApplication(tracker *FocusTracker) event.Predicate {
	return func(h event.Hydrated) error {
		active := tracker.ActiveApplication()
		if active.BusName == "" || h.Raw.Object.BusName != active.BusName {
			return &errs.PredicateFailure{Msg: "event object is not in the active application"}
		}
		return nil
	}
}
