package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/iface"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

type fakeAccessible struct {
	key      key.Key
	parent   key.Key
	children []key.Key
	role     role.Role
	ifaces   iface.Set
	states   state.Set
	name     string
	err      error
}

func (f *fakeAccessible) Parent(ctx context.Context) (key.Key, error)       { return f.parent, f.err }
func (f *fakeAccessible) Children(ctx context.Context) ([]key.Key, error)   { return f.children, f.err }
func (f *fakeAccessible) IndexInParent(ctx context.Context) (int, error)    { return 0, f.err }
func (f *fakeAccessible) Role(ctx context.Context) (role.Role, error)       { return f.role, f.err }
func (f *fakeAccessible) Interfaces(ctx context.Context) (iface.Set, error) { return f.ifaces, f.err }
func (f *fakeAccessible) State(ctx context.Context) (state.Set, error)      { return f.states, f.err }
func (f *fakeAccessible) ChildCount(ctx context.Context) (int, error)       { return len(f.children), f.err }
func (f *fakeAccessible) Name(ctx context.Context) (string, error)          { return f.name, f.err }
func (f *fakeAccessible) Description(ctx context.Context) (string, error)   { return "", f.err }
func (f *fakeAccessible) Locale(ctx context.Context) (string, error)        { return "", f.err }
func (f *fakeAccessible) Attributes(ctx context.Context) (map[string]string, error) {
	return nil, f.err
}
func (f *fakeAccessible) RelationSet(ctx context.Context) (atspi.RelationSet, error) {
	return nil, f.err
}
func (f *fakeAccessible) RoleName(ctx context.Context) (string, error)          { return f.role.Name(), f.err }
func (f *fakeAccessible) LocalizedRoleName(ctx context.Context) (string, error) { return f.role.Name(), f.err }
func (f *fakeAccessible) Application(ctx context.Context) (key.Key, error)      { return f.key, f.err }

type fakeProvider struct {
	byKey map[key.Key]*fakeAccessible
}

func (p *fakeProvider) Events(ctx context.Context) (<-chan atspi.Event, error) { return nil, nil }

func (p *fakeProvider) Accessible(k key.Key) atspi.AccessibleProxy {
	if acc, ok := p.byKey[k]; ok {
		return acc
	}
	return &fakeAccessible{key: k, err: errors.New("no such object")}
}

func (p *fakeProvider) Text(k key.Key) (atspi.TextProxy, error) { return nil, nil }
func (p *fakeProvider) Hyperlink(k key.Key) (atspi.HyperlinkProxy, error) { return nil, nil }
func (p *fakeProvider) Component(k key.Key) (atspi.ComponentProxy, error) { return nil, nil }
func (p *fakeProvider) Collection(k key.Key) (atspi.CollectionProxy, error) { return nil, nil }

func TestHydrateReturnsCachedSnapshotOnHit(t *testing.T) {
	c := cache.New()
	k := key.New(":1.1", "/org/a11y/atspi/accessible/1")
	c.Add(cache.Snapshot{Object: k, Role: role.RoleLabel, Name: "hello", HasName: true})

	provider := &fakeProvider{byKey: map[key.Key]*fakeAccessible{}}
	h := event.NewHydrator(c, provider)

	raw := atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberPropertyChange}, Object: k}
	hydrated, ok := h.Hydrate(context.Background(), raw)
	require.True(t, ok)
	assert.Equal(t, "hello", hydrated.Item.Name)
	assert.Equal(t, raw, hydrated.Raw)
}

func TestHydrateFetchesOnMiss(t *testing.T) {
	c := cache.New()
	k := key.New(":1.1", "/org/a11y/atspi/accessible/1")
	provider := &fakeProvider{byKey: map[key.Key]*fakeAccessible{
		k: {key: k, role: role.RolePushButton, name: "OK", ifaces: iface.Of(iface.Accessible)},
	}}
	h := event.NewHydrator(c, provider)

	raw := atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberStateChanged}, Object: k}
	hydrated, ok := h.Hydrate(context.Background(), raw)
	require.True(t, ok)
	assert.Equal(t, "OK", hydrated.Item.Name)
	assert.Equal(t, role.RolePushButton, hydrated.Item.Role)
	assert.Equal(t, 1, c.Len())
}

func TestHydrateDropsEventOnFetchFailure(t *testing.T) {
	c := cache.New()
	k := key.New(":1.1", "/org/a11y/atspi/accessible/missing")
	provider := &fakeProvider{byKey: map[key.Key]*fakeAccessible{}}
	h := event.NewHydrator(c, provider)

	raw := atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberChildrenChanged}, Object: k}
	_, ok := h.Hydrate(context.Background(), raw)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestKindIsPredicate(t *testing.T) {
	want := atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextChanged}
	p := event.KindIs(want)

	matching := event.Hydrated{Raw: atspi.Event{Kind: want}}
	assert.NoError(t, p(matching))

	other := event.Hydrated{Raw: atspi.Event{Kind: atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextCaretMoved}}}
	err := p(other)
	require.Error(t, err)
	var pf *errs.PredicateFailure
	assert.ErrorAs(t, err, &pf)
}

func TestAndShortCircuitsOnFirstFailure(t *testing.T) {
	calledSecond := false
	first := func(event.Hydrated) error { return &errs.PredicateFailure{Msg: "no"} }
	second := func(event.Hydrated) error { calledSecond = true; return nil }

	err := event.And(first, second)(event.Hydrated{})
	assert.Error(t, err)
	assert.False(t, calledSecond)
}

func TestStateEnabledPredicate(t *testing.T) {
	p := event.StateEnabled(func(s cache.Snapshot) bool { return s.States.Has(state.Focused) })

	focused := event.Hydrated{Item: cache.Snapshot{States: state.Of(state.Focused)}}
	assert.NoError(t, p(focused))

	unfocused := event.Hydrated{Item: cache.Snapshot{States: state.Of(state.Enabled)}}
	assert.Error(t, p(unfocused))
}
