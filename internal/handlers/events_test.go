package handlers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/handlers"
	"github.com/odilia-app/odilia-core/internal/key"
)

var stateChangedKind = atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberStateChanged}

func TestDispatchRunsAllMatchingHandlersConcurrently(t *testing.T) {
	r := handlers.NewEventRegistry()
	var calls int32
	r.Register(stateChangedKind, nil, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		atomic.AddInt32(&calls, 1)
		return []command.Command{command.Speak("a", command.PriorityText)}, nil
	})
	r.Register(stateChangedKind, nil, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		atomic.AddInt32(&calls, 1)
		return []command.Command{command.Speak("b", command.PriorityText)}, nil
	})

	h := event.Hydrated{Raw: atspi.Event{Kind: stateChangedKind, Object: key.New(":1.1", "/x")}}
	cmds := r.Dispatch(context.Background(), h)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, cmds, 2)
}

func TestDispatchSkipsHandlersWhoseKindDoesNotMatch(t *testing.T) {
	r := handlers.NewEventRegistry()
	called := false
	other := atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextChanged}
	r.Register(other, nil, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		called = true
		return nil, nil
	})

	h := event.Hydrated{Raw: atspi.Event{Kind: stateChangedKind}}
	cmds := r.Dispatch(context.Background(), h)

	assert.False(t, called)
	assert.Nil(t, cmds)
}

func TestDispatchHonorsPredicate(t *testing.T) {
	r := handlers.NewEventRegistry()
	called := false
	alwaysFails := func(event.Hydrated) error { return &errs.PredicateFailure{Msg: "nope"} }
	r.Register(stateChangedKind, alwaysFails, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		called = true
		return nil, nil
	})

	h := event.Hydrated{Raw: atspi.Event{Kind: stateChangedKind}}
	r.Dispatch(context.Background(), h)

	assert.False(t, called)
}

func TestDispatchIsolatesHandlerErrors(t *testing.T) {
	r := handlers.NewEventRegistry()
	r.Register(stateChangedKind, nil, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		return nil, errors.New("boom")
	})
	r.Register(stateChangedKind, nil, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		return []command.Command{command.StopSpeech()}, nil
	})

	h := event.Hydrated{Raw: atspi.Event{Kind: stateChangedKind}}
	cmds := r.Dispatch(context.Background(), h)

	assert.Len(t, cmds, 1)
}

func TestRemoveUnregistersHandler(t *testing.T) {
	r := handlers.NewEventRegistry()
	called := false
	id := r.Register(stateChangedKind, nil, func(ctx context.Context, h event.Hydrated) ([]command.Command, error) {
		called = true
		return nil, nil
	})
	r.Remove(id)

	h := event.Hydrated{Raw: atspi.Event{Kind: stateChangedKind}}
	r.Dispatch(context.Background(), h)

	assert.False(t, called)
}

func TestCommandDispatchSetsCacheState(t *testing.T) {
	c := cache.New()
	k := key.New(":1.1", "/x")
	c.Add(cache.Snapshot{Object: k})

	reg := handlers.NewCommandRegistry(c)
	err := reg.Dispatch(context.Background(), command.SetText(k, "hello"))
	assert.NoError(t, err)

	snap, ok := c.Get(k)
	assert.True(t, ok)
	assert.Equal(t, "hello", snap.Text)
}

func TestCommandDispatchReturnsServiceNotFoundForUnregisteredKind(t *testing.T) {
	c := cache.New()
	reg := handlers.NewCommandRegistry(c)
	err := reg.Dispatch(context.Background(), command.Speak("hi", command.PriorityText))

	var snf *errs.ServiceNotFound
	assert.ErrorAs(t, err, &snf)
}

func TestCommandDispatchReturnsNoItemForMissingKey(t *testing.T) {
	c := cache.New()
	reg := handlers.NewCommandRegistry(c)
	err := reg.Dispatch(context.Background(), command.SetText(key.New(":1.1", "/missing"), "x"))

	var cacheErr *errs.CacheError
	assert.ErrorAs(t, err, &cacheErr)
}

func TestCommandDispatchRunsEveryRegisteredHandlerForAKindInOrder(t *testing.T) {
	c := cache.New()
	reg := handlers.NewCommandRegistry(c)

	var calls []string
	reg.Register(command.KindSpeak, func(_ context.Context, _ command.Command) error {
		calls = append(calls, "first")
		return nil
	})
	reg.Register(command.KindSpeak, func(_ context.Context, _ command.Command) error {
		calls = append(calls, "second")
		return nil
	})

	err := reg.Dispatch(context.Background(), command.Speak("hi", command.PriorityText))
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}
