package keyboard_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/keyboard"
)

type transition struct {
	code    keyboard.Key
	pressed bool
}

type fakeGrabber struct {
	grabbed bool
	events  []transition
	i       int
}

func (f *fakeGrabber) Grab() error { f.grabbed = true; return nil }
func (f *fakeGrabber) Close() error { return nil }
func (f *fakeGrabber) Next() (keyboard.Key, bool, error) {
	if f.i >= len(f.events) {
		return 0, false, io.EOF
	}
	t := f.events[f.i]
	f.i++
	return t.code, t.pressed, nil
}

func TestInterceptorGrabsSourceBeforeReading(t *testing.T) {
	src := &fakeGrabber{}
	state := keyboard.NewState(keyboard.NewComboSets(), func(event.UserEvent) {})
	ic := keyboard.NewInterceptor(src, state, nil)
	require.NoError(t, ic.Run())
	assert.True(t, src.grabbed)
}

func TestInterceptorReinjectsPassthroughTransitions(t *testing.T) {
	src := &fakeGrabber{events: []transition{
		{code: keyboard.KeyF, pressed: true},
		{code: keyboard.KeyF, pressed: false},
	}}
	state := keyboard.NewState(keyboard.NewComboSets(), func(event.UserEvent) {})

	var replayed []transition
	ic := keyboard.NewInterceptor(src, state, func(code keyboard.Key, pressed bool) {
		replayed = append(replayed, transition{code: code, pressed: pressed})
	})
	require.NoError(t, ic.Run())

	assert.Equal(t, []transition{
		{code: keyboard.KeyF, pressed: true},
		{code: keyboard.KeyF, pressed: false},
	}, replayed)
}

func TestInterceptorSwallowsMatchedComboWithoutReinjecting(t *testing.T) {
	sets := keyboard.NewComboSets()
	cs := keyboard.NewComboSet()
	require.NoError(t, cs.Insert(keyboard.MustKeys(keyboard.KeyG), event.StopSpeech()))
	require.NoError(t, sets.Insert(nil, cs))

	src := &fakeGrabber{events: []transition{
		{code: keyboard.ActivationKey, pressed: true},
		{code: keyboard.KeyG, pressed: true},
		{code: keyboard.ActivationKey, pressed: false},
	}}
	var emitted []event.UserEvent
	state := keyboard.NewState(sets, func(e event.UserEvent) { emitted = append(emitted, e) })

	var replayed int
	ic := keyboard.NewInterceptor(src, state, func(keyboard.Key, bool) { replayed++ })
	require.NoError(t, ic.Run())

	assert.Equal(t, 0, replayed)
	require.Len(t, emitted, 1)
	assert.Equal(t, event.UserEventStopSpeech, emitted[0].Kind)
}
