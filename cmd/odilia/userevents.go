package main

import (
	"context"
	"sync/atomic"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/logging"
	"github.com/odilia-app/odilia-core/internal/structural"
)

// userEventRouter turns the keyboard interceptor's UserEvent stream
// (spec.md §4.5, §6) into commands on the core's queue. Three of the six
// UserEventKinds — Enable, Disable and Quit — have no corresponding
// command.Kind and are handled directly here rather than via the queue,
// the same closed-vocabulary gap ChildrenChanged(remove) hits on the
// AT-SPI side.
type userEventRouter struct {
	queue        *command.Queue
	cache        *cache.Cache
	provider     atspi.Provider
	focusHistory *extract.FocusHistory
	speechOn     *atomic.Bool
	cancel       context.CancelFunc
}

func (r *userEventRouter) handle(ev event.UserEvent) {
	ctx := context.Background()
	log := logging.For("odilia")

	switch ev.Kind {
	case event.UserEventStopSpeech:
		r.enqueue(ctx, command.StopSpeech())

	case event.UserEventEnable:
		if ev.Feature == event.FeatureSpeech {
			r.speechOn.Store(true)
		}

	case event.UserEventDisable:
		if ev.Feature == event.FeatureSpeech {
			r.speechOn.Store(false)
			r.enqueue(ctx, command.StopSpeech())
		}

	case event.UserEventChangeMode:
		r.enqueue(ctx, command.ChangeMode(ev.Mode))

	case event.UserEventStructuralNavigation:
		r.navigate(ctx, ev)

	case event.UserEventQuit:
		logging.Trace(log, "quit requested over ipc socket")
		r.cancel()

	default:
		logging.Trace(log, "unrecognized user event kind", "kind", ev.Kind.String())
	}
}

// navigate resolves spec.md §4.4's "find next by role" search from the
// currently focused item and, on success, focuses and speaks the match.
func (r *userEventRouter) navigate(ctx context.Context, ev event.UserEvent) {
	log := logging.For("odilia")
	from, ok := r.focusHistory.Last()
	if !ok {
		logging.Trace(log, "structural navigation requested with no focus history")
		return
	}

	backward := ev.Dir == event.DirectionBackward
	next, found, err := structural.GetNext(ctx, r.cache, r.provider, from, ev.Role, backward)
	if err != nil {
		logging.Error(log, "structural navigation failed", "from", from.String(), "role", ev.Role.String(), "error", err)
		return
	}
	if !found {
		logging.Trace(log, "structural navigation found nothing", "from", from.String(), "role", ev.Role.String())
		return
	}

	snap, ok := r.cache.Get(next)
	if !ok {
		return
	}
	r.enqueue(ctx, command.Focus(next), command.Speak(speakableName(snap), command.PriorityText))
}

func (r *userEventRouter) enqueue(ctx context.Context, cmds ...command.Command) {
	if err := r.queue.EnqueueAll(ctx, cmds); err != nil {
		logging.Error(logging.For("odilia"), "failed to enqueue commands from user event", "error", err)
	}
}
