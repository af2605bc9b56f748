package extract

import (
	"sync"

	"github.com/odilia-app/odilia-core/internal/key"
)

// FocusHistory is the bounded ring buffer of recently focused keys
// spec.md §3 calls the "accessible history" (capacity 16), kept
// separately from FocusTracker's single active-application value: this
// retains the actual sequence of focused objects, used by handlers that
// need to compare the current event's object against what was focused
// immediately before it (spec.md §4.3's caret-move worked examples).
// Mirrors event.History's ring-buffer shape, generalized from Hydrated
// events to key.Key.
type FocusHistory struct {
	mu       sync.Mutex
	entries  []key.Key
	capacity int
}

// NewFocusHistory builds a FocusHistory holding at most capacity
// entries.
func NewFocusHistory(capacity int) *FocusHistory {
	return &FocusHistory{capacity: capacity}
}

// Record appends k as the most recently focused key, evicting the
// oldest entry once capacity is exceeded.
func (h *FocusHistory) Record(k key.Key) {
	if h.capacity <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, k)
	if excess := len(h.entries) - h.capacity; excess > 0 {
		h.entries = h.entries[excess:]
	}
}

// Last returns the most recently focused key and true, or the zero Key
// and false if nothing has been focused yet.
func (h *FocusHistory) Last() (key.Key, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return key.Key{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Recent returns a copy of the retained keys, oldest first.
func (h *FocusHistory) Recent() []key.Key {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]key.Key, len(h.entries))
	copy(out, h.entries)
	return out
}
