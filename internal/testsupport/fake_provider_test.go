package testsupport_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/testsupport"
)

func TestFakeProviderServesConfiguredAccessible(t *testing.T) {
	p := testsupport.NewFakeProvider()
	k := key.New(":1.1", "/org/a11y/atspi/accessible/1")
	p.Set(k, &testsupport.FakeAccessible{NameValue: "OK", RoleValue: role.RolePushButton})

	a := p.Accessible(k)
	name, err := a.Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", name)

	r, err := a.Role(context.Background())
	require.NoError(t, err)
	assert.Equal(t, role.RolePushButton, r)
}

func TestFakeProviderAccessibleDefaultsWhenUnconfigured(t *testing.T) {
	p := testsupport.NewFakeProvider()
	a := p.Accessible(key.New(":1.1", "/unknown"))
	name, err := a.Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestFakeProviderTextReturnsErrorWhenNotConfigured(t *testing.T) {
	p := testsupport.NewFakeProvider()
	k := key.New(":1.1", "/org/a11y/atspi/accessible/1")
	p.Set(k, &testsupport.FakeAccessible{})

	_, err := p.Text(k)
	assert.Error(t, err)
}

func TestFakeProviderEmitDeliversOverEvents(t *testing.T) {
	p := testsupport.NewFakeProvider()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := p.Events(ctx)
	require.NoError(t, err)

	want := atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceFocus, Member: "Focused"}}
	p.Emit(want)

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emitted event")
	}
}

func TestFakeProviderEventsStopsOnContextCancel(t *testing.T) {
	p := testsupport.NewFakeProvider()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := p.Events(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel never closed after cancel")
	}
}

var _ atspi.Provider = (*testsupport.FakeProvider)(nil)
var _ atspi.AccessibleProxy = (*testsupport.FakeAccessible)(nil)
