package main

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/handlers"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/speech"
	"github.com/odilia-app/odilia-core/internal/testsupport"
)

func newTestSink() (*speech.Sink, *testsupport.FakeSpeechConn) {
	conn := testsupport.NewFakeSpeechConn()
	sink := speech.NewSink(conn.Dialer())
	return sink, conn
}

func newTestRegistry(sink *speech.Sink, speechOn *atomic.Bool, tracker *extract.FocusTracker, focusHistory *extract.FocusHistory, caret *command.CaretState, mode *command.ModeState) *handlers.CommandRegistry {
	reg := handlers.NewCommandRegistry(nil)
	registerCommandHandlers(reg, sink, speechOn, tracker, focusHistory, caret, mode)
	return reg
}

func TestRegisterCommandHandlersFocusRecordsTrackerAndHistory(t *testing.T) {
	sink, _ := newTestSink()
	defer sink.Quit()
	var speechOn atomic.Bool
	tracker := extract.NewFocusTracker()
	focusHistory := extract.NewFocusHistory(16)
	caret := command.NewCaretState()
	mode := command.NewModeState(command.ModeFocus)
	reg := newTestRegistry(sink, &speechOn, tracker, focusHistory, caret, mode)

	k := key.New("org.test", "/widget")
	require.NoError(t, reg.Dispatch(context.Background(), command.Focus(k)))

	assert.Equal(t, k, tracker.ActiveApplication())
	last, ok := focusHistory.Last()
	require.True(t, ok)
	assert.Equal(t, k, last)
}

func TestRegisterCommandHandlersSpeakWritesWhenEnabled(t *testing.T) {
	sink, conn := newTestSink()
	var speechOn atomic.Bool
	speechOn.Store(true)
	tracker := extract.NewFocusTracker()
	focusHistory := extract.NewFocusHistory(16)
	caret := command.NewCaretState()
	mode := command.NewModeState(command.ModeFocus)
	reg := newTestRegistry(sink, &speechOn, tracker, focusHistory, caret, mode)

	require.NoError(t, reg.Dispatch(context.Background(), command.Speak("hello", command.PriorityText)))
	sink.Quit()

	assert.Contains(t, conn.Lines(), "hello")
}

func TestRegisterCommandHandlersSpeakSuppressedWhenDisabled(t *testing.T) {
	sink, conn := newTestSink()
	var speechOn atomic.Bool
	speechOn.Store(false)
	tracker := extract.NewFocusTracker()
	focusHistory := extract.NewFocusHistory(16)
	caret := command.NewCaretState()
	mode := command.NewModeState(command.ModeFocus)
	reg := newTestRegistry(sink, &speechOn, tracker, focusHistory, caret, mode)

	require.NoError(t, reg.Dispatch(context.Background(), command.Speak("hello", command.PriorityText)))
	sink.Quit()

	assert.Empty(t, conn.Lines())
}

func TestRegisterCommandHandlersCaretPosUpdatesState(t *testing.T) {
	sink, _ := newTestSink()
	defer sink.Quit()
	var speechOn atomic.Bool
	tracker := extract.NewFocusTracker()
	focusHistory := extract.NewFocusHistory(16)
	caret := command.NewCaretState()
	mode := command.NewModeState(command.ModeFocus)
	reg := newTestRegistry(sink, &speechOn, tracker, focusHistory, caret, mode)

	require.NoError(t, reg.Dispatch(context.Background(), command.CaretPos(7)))
	assert.Equal(t, 7, caret.Offset())
}

func TestRegisterCommandHandlersChangeModeUpdatesState(t *testing.T) {
	sink, _ := newTestSink()
	defer sink.Quit()
	var speechOn atomic.Bool
	tracker := extract.NewFocusTracker()
	focusHistory := extract.NewFocusHistory(16)
	caret := command.NewCaretState()
	mode := command.NewModeState(command.ModeFocus)
	reg := newTestRegistry(sink, &speechOn, tracker, focusHistory, caret, mode)

	require.NoError(t, reg.Dispatch(context.Background(), command.ChangeMode(command.ModeBrowse)))
	assert.Equal(t, command.ModeBrowse, mode.Current())
}
