package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

func TestOnChildrenChangedAddEmitsChangeChildWithoutRemoving(t *testing.T) {
	c := cache.New()
	child := key.New("org.test", "/child0")
	parent := key.New("org.test", "/parent")
	c.Add(cache.Snapshot{Object: child})

	h := event.Hydrated{Raw: atspi.Event{
		Kind:    atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberChildrenChanged},
		Object:  parent,
		Minor:   "add",
		Detail1: 0,
		AnyData: child,
	}}

	cmds, err := onChildrenChanged(c)(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, command.ChangeChild(parent, 0, child, true), cmds[0])

	_, stillThere := c.Get(child)
	assert.True(t, stillThere, "add must not remove the child from the cache")
}

func TestOnChildrenChangedRemoveDropsChildFromCache(t *testing.T) {
	c := cache.New()
	child := key.New("org.test", "/child0")
	parent := key.New("org.test", "/parent")
	c.Add(cache.Snapshot{Object: child})

	h := event.Hydrated{Raw: atspi.Event{
		Kind:    atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberChildrenChanged},
		Object:  parent,
		Minor:   "remove",
		Detail1: 0,
		AnyData: child,
	}}

	cmds, err := onChildrenChanged(c)(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, command.ChangeChild(parent, 0, child, false), cmds[0])

	_, stillThere := c.Get(child)
	assert.False(t, stillThere, "remove must drop the child from the cache directly")
}

func TestOnStateChangedFocusedEnabledSpeaksNameAndRole(t *testing.T) {
	obj := key.New("org.test", "/button")
	h := event.Hydrated{
		Raw: atspi.Event{
			Kind:    atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberStateChanged},
			Object:  obj,
			Minor:   "focused",
			Detail1: 1,
		},
		Item: cache.Snapshot{Object: obj, Role: role.RolePushButton, Name: "OK", HasName: true},
	}

	cmds, err := onStateChanged(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, command.SetState(obj, state.Focused, true), cmds[0])
	assert.Equal(t, command.Focus(obj), cmds[1])
	assert.Equal(t, command.Speak("OK push button", command.PriorityText), cmds[2])
}

func TestOnStateChangedUnfocusedOnlySetsState(t *testing.T) {
	obj := key.New("org.test", "/button")
	h := event.Hydrated{Raw: atspi.Event{
		Kind:    atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberStateChanged},
		Object:  obj,
		Minor:   "focused",
		Detail1: 0,
	}}

	cmds, err := onStateChanged(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, command.SetState(obj, state.Focused, false), cmds[0])
}

func TestOnStateChangedUnknownStateNameIsIgnored(t *testing.T) {
	h := event.Hydrated{Raw: atspi.Event{
		Kind:  atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberStateChanged},
		Minor: "not-a-real-state",
	}}

	cmds, err := onStateChanged(context.Background(), h)
	require.NoError(t, err)
	assert.Nil(t, cmds)
}

func TestOnTextChangedInsertComputesNewTextAndSpeaksInsertedSpan(t *testing.T) {
	obj := key.New("org.test", "/entry")
	h := event.Hydrated{
		Raw: atspi.Event{
			Kind:    atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextChanged},
			Object:  obj,
			Minor:   "insert",
			Detail1: 3,
			Detail2: 3,
			AnyData: "abc",
		},
		Item: cache.Snapshot{Object: obj, Text: "123456"},
	}

	cmds, err := onTextChanged(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, command.SetText(obj, "123abc456"), cmds[0])
	assert.Equal(t, command.Speak("abc", command.PriorityProgress), cmds[1])
}

func TestOnTextChangedDeleteComputesNewTextWithoutSpeaking(t *testing.T) {
	obj := key.New("org.test", "/entry")
	h := event.Hydrated{
		Raw: atspi.Event{
			Kind:    atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextChanged},
			Object:  obj,
			Minor:   "delete",
			Detail1: 3,
			Detail2: 3,
		},
		Item: cache.Snapshot{Object: obj, Text: "123abc456"},
	}

	cmds, err := onTextChanged(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, command.SetText(obj, "123456"), cmds[0])
}

func TestOnCaretMovedSameItemSpeaksCrossedSpan(t *testing.T) {
	k := key.New("org.test", "/entry")
	history := extract.NewFocusHistory(16)
	history.Record(k)
	caret := command.NewCaretState()
	caret.Set(0)

	h := event.Hydrated{
		Raw:  atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextCaretMoved}, Object: k, Detail1: 3},
		Item: cache.Snapshot{Object: k, Text: "abcdef"},
	}

	cmds, err := onCaretMoved(history, caret)(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, command.Focus(k), cmds[0])
	assert.Equal(t, command.CaretPos(3), cmds[1])
	assert.Equal(t, command.Speak("abc", command.PriorityText), cmds[2])
}

func TestOnCaretMovedNewItemSpeaksEntireText(t *testing.T) {
	k1 := key.New("org.test", "/entry1")
	k2 := key.New("org.test", "/entry2")
	history := extract.NewFocusHistory(16)
	history.Record(k1)
	caret := command.NewCaretState()
	caret.Set(5)

	h := event.Hydrated{
		Raw:  atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextCaretMoved}, Object: k2, Detail1: 0},
		Item: cache.Snapshot{Object: k2, Text: "new item text"},
	}

	cmds, err := onCaretMoved(history, caret)(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, command.Focus(k2), cmds[0])
	assert.Equal(t, command.CaretPos(0), cmds[1])
	assert.Equal(t, command.Speak("new item text", command.PriorityText), cmds[2])
}

func TestSpeakableNameFallsBackToRoleOnly(t *testing.T) {
	assert.Equal(t, "push button", speakableName(cache.Snapshot{Role: role.RolePushButton}))
}
