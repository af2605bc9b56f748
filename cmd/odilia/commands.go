package main

import (
	"context"
	"sync/atomic"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/handlers"
	"github.com/odilia-app/odilia-core/internal/speech"
)

// registerCommandHandlers installs the command handlers that depend on
// process-level collaborators (spec.md §4.3): the speech sink, the
// focus tracker and history ring, the caret atomic, and the core's
// current-mode state. The cache-mutation handlers (SetState, SetText,
// ChangeChild) are already installed by handlers.NewCommandRegistry.
//
// Focus is registered directly here rather than via
// handlers.RegisterFocusTracking: this process also needs to append
// every focus to the "accessible history" ring (spec.md §3), which that
// helper's single-purpose active-application tracking doesn't cover.
func registerCommandHandlers(reg *handlers.CommandRegistry, sink *speech.Sink, speechOn *atomic.Bool, tracker *extract.FocusTracker, focusHistory *extract.FocusHistory, caret *command.CaretState, mode *command.ModeState) {
	reg.Register(command.KindFocus, func(_ context.Context, cmd command.Command) error {
		tracker.SetActiveApplication(cmd.Key)
		focusHistory.Record(cmd.Key)
		return nil
	})

	reg.Register(command.KindSpeak, func(_ context.Context, cmd command.Command) error {
		if !speechOn.Load() {
			return nil
		}
		sink.SetPriority(cmd.Priority)
		sink.Speak(cmd.Text)
		return nil
	})

	reg.Register(command.KindStopSpeech, func(_ context.Context, _ command.Command) error {
		sink.Cancel(speech.ScopeAll)
		return nil
	})

	reg.Register(command.KindCaretPos, func(_ context.Context, cmd command.Command) error {
		caret.Set(cmd.Offset)
		return nil
	})

	reg.Register(command.KindChangeMode, func(_ context.Context, cmd command.Command) error {
		mode.Set(cmd.Mode)
		return nil
	})
}
