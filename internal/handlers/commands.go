package handlers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/odilia-app/odilia-core/internal/breadcrumbs"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/logging"
)

// CommandHandlerFunc mutates state in response to one command. Command
// handlers run strictly serially (spec.md §4.3, §5): the dispatcher never
// calls a second handler before the first returns.
type CommandHandlerFunc func(ctx context.Context, cmd command.Command) error

// CommandRegistry holds the serial-dispatch command handler table: an
// ordered list of handlers per command.Kind, all run in registration
// order for a single command (spec.md §4.3), mirroring the event
// table's many-per-kind fan-out but serially rather than concurrently.
type CommandRegistry struct {
	mu       sync.RWMutex
	handlers map[command.Kind][]CommandHandlerFunc
	log      *slog.Logger
}

// NewCommandRegistry builds a CommandRegistry with the cache-mutation
// handlers (SetState, SetText, ChangeChild) pre-registered against c —
// these are intrinsic to the core and need no wiring from cmd/odilia.
// Speak, StopSpeech, Focus, CaretPos and ChangeMode depend on
// process-level collaborators (speech sink, focus tracker, mode state)
// and are registered by the caller via Register.
func NewCommandRegistry(c *cache.Cache) *CommandRegistry {
	r := &CommandRegistry{
		handlers: make(map[command.Kind][]CommandHandlerFunc),
		log:      logging.For("handlers.command"),
	}
	r.Register(command.KindSetState, setStateHandler(c))
	r.Register(command.KindSetText, setTextHandler(c))
	r.Register(command.KindChangeChild, changeChildHandler(c))
	return r
}

// RegisterFocusTracking installs a Focus handler that records the
// focused object's application with tracker, for extract.ActiveApplication
// to filter against. cmd/odilia wires this in alongside whatever focus
// handler also drives speech/braille output.
func (r *CommandRegistry) RegisterFocusTracking(tracker *extract.FocusTracker) {
	r.Register(command.KindFocus, func(_ context.Context, cmd command.Command) error {
		tracker.SetActiveApplication(cmd.Key)
		return nil
	})
}

// Register appends handler to the ordered list for kind.
func (r *CommandRegistry) Register(kind command.Kind, handler CommandHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], handler)
}

func (r *CommandRegistry) lookup(kind command.Kind) ([]CommandHandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

// Dispatch runs every handler registered for cmd.Kind, in registration
// order. A missing handler list is an errs.ServiceNotFound, logged at
// trace rather than treated as fatal (spec.md §7): an unregistered
// command variant is expected during incremental startup wiring, not a
// corrupt pipeline. A handler's failure is logged and reported but does
// not stop the handlers after it from running; Dispatch returns the
// first error encountered, if any.
func (r *CommandRegistry) Dispatch(ctx context.Context, cmd command.Command) error {
	handlers, ok := r.lookup(cmd.Kind)
	if !ok {
		err := &errs.ServiceNotFound{What: "command handler for " + cmd.Kind.String()}
		logging.Trace(r.log, "no handler registered for command", "kind", cmd.Kind.String())
		return err
	}
	var first error
	for _, handler := range handlers {
		if err := handler(ctx, cmd); err != nil {
			logging.Error(r.log, "command handler failed", "kind", cmd.Kind.String(), "error", err)
			breadcrumbs.Report(&breadcrumbs.HandlerFailure{Handler: "command:" + cmd.Kind.String(), Event: cmd.Kind.String(), Cause: err},
				&breadcrumbs.Context{Key: cmd.Key.String()})
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Run drains queue strictly one command at a time, calling Dispatch for
// each, until ctx is canceled or queue is closed and empty (spec.md §5:
// "the dispatcher consumes the queue serially — never more than one
// command in flight").
func (r *CommandRegistry) Run(ctx context.Context, queue *command.Queue) {
	for {
		cmd, ok := queue.Dequeue(ctx)
		if !ok {
			return
		}
		_ = r.Dispatch(ctx, cmd)
	}
}

func setStateHandler(c *cache.Cache) CommandHandlerFunc {
	return func(_ context.Context, cmd command.Command) error {
		if !c.Modify(cmd.Key, func(m cache.Mutator) { m.SetState(cmd.State, cmd.Enabled) }) {
			return errs.NoItem(cmd.Key)
		}
		return nil
	}
}

func setTextHandler(c *cache.Cache) CommandHandlerFunc {
	return func(_ context.Context, cmd command.Command) error {
		if !c.Modify(cmd.Key, func(m cache.Mutator) { m.SetText(cmd.Text) }) {
			return errs.NoItem(cmd.Key)
		}
		return nil
	}
}

func changeChildHandler(c *cache.Cache) CommandHandlerFunc {
	return func(_ context.Context, cmd command.Command) error {
		if !c.Modify(cmd.Key, func(m cache.Mutator) {
			m.ChangeChild(cmd.Index, cmd.NewChild, cmd.Add)
		}) {
			return errs.NoItem(cmd.Key)
		}
		return nil
	}
}
