// Package testsupport collects test doubles for Odilia's external
// collaborators: the AT-SPI provider and the speech sink. In the
// teacher's own testing/testutil package these doubles are flat,
// directly constructible structs with recorder fields a test can
// inspect after the fact (MockRef, MockStorage, MockErrorReporter); the
// same shape here, adapted from component/ref mocking to AT-SPI
// proxy/event mocking.
package testsupport

import (
	"context"
	"sync"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/iface"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

// FakeProvider is a scriptable atspi.Provider: its event stream is fed
// by the test via Emit, and its proxy accessors are backed by a plain
// map the test populates with FakeAccessible values.
type FakeProvider struct {
	mu          sync.Mutex
	accessibles map[key.Key]*FakeAccessible
	events      chan atspi.Event
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		accessibles: make(map[key.Key]*FakeAccessible),
		events:      make(chan atspi.Event, 64),
	}
}

// Set registers the proxy data returned for k.
func (p *FakeProvider) Set(k key.Key, a *FakeAccessible) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessibles[k] = a
}

// Emit pushes ev onto the event stream Events returns.
func (p *FakeProvider) Emit(ev atspi.Event) {
	p.events <- ev
}

func (p *FakeProvider) Events(ctx context.Context) (<-chan atspi.Event, error) {
	out := make(chan atspi.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-p.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (p *FakeProvider) Accessible(k key.Key) atspi.AccessibleProxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.accessibles[k]; ok {
		return a
	}
	return &FakeAccessible{}
}

func (p *FakeProvider) Text(k key.Key) (atspi.TextProxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accessibles[k]
	if !ok || a.TextProxy == nil {
		return nil, &notImplementedError{k: k, iface: "Text"}
	}
	return a.TextProxy, nil
}

func (p *FakeProvider) Hyperlink(k key.Key) (atspi.HyperlinkProxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accessibles[k]
	if !ok || a.HyperlinkProxy == nil {
		return nil, &notImplementedError{k: k, iface: "Hyperlink"}
	}
	return a.HyperlinkProxy, nil
}

func (p *FakeProvider) Component(k key.Key) (atspi.ComponentProxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accessibles[k]
	if !ok || a.ComponentProxy == nil {
		return nil, &notImplementedError{k: k, iface: "Component"}
	}
	return a.ComponentProxy, nil
}

func (p *FakeProvider) Collection(k key.Key) (atspi.CollectionProxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accessibles[k]
	if !ok || a.CollectionProxy == nil {
		return nil, &notImplementedError{k: k, iface: "Collection"}
	}
	return a.CollectionProxy, nil
}

type notImplementedError struct {
	k     key.Key
	iface string
}

func (e *notImplementedError) Error() string {
	return e.iface + " interface not configured on fake for " + e.k.String()
}

// FakeAccessible is a plain struct double for atspi.AccessibleProxy:
// every field is a canned return value, set directly by the test rather
// than through a builder API.
type FakeAccessible struct {
	ParentKey   key.Key
	ChildKeys   []key.Key
	Index       int
	RoleValue   role.Role
	Ifaces      iface.Set
	States      state.Set
	NameValue   string
	Desc        string
	LocaleValue string
	Attrs       map[string]string
	Relations   atspi.RelationSet
	RoleNameStr string
	LocalName   string
	AppKey      key.Key

	TextProxy      atspi.TextProxy
	HyperlinkProxy atspi.HyperlinkProxy
	ComponentProxy atspi.ComponentProxy
	CollectionProxy atspi.CollectionProxy
}

func (a *FakeAccessible) Parent(ctx context.Context) (key.Key, error)    { return a.ParentKey, nil }
func (a *FakeAccessible) Children(ctx context.Context) ([]key.Key, error) { return a.ChildKeys, nil }
func (a *FakeAccessible) IndexInParent(ctx context.Context) (int, error) { return a.Index, nil }
func (a *FakeAccessible) Role(ctx context.Context) (role.Role, error)    { return a.RoleValue, nil }
func (a *FakeAccessible) Interfaces(ctx context.Context) (iface.Set, error) {
	return a.Ifaces, nil
}
func (a *FakeAccessible) State(ctx context.Context) (state.Set, error) { return a.States, nil }
func (a *FakeAccessible) ChildCount(ctx context.Context) (int, error)  { return len(a.ChildKeys), nil }
func (a *FakeAccessible) Name(ctx context.Context) (string, error)     { return a.NameValue, nil }
func (a *FakeAccessible) Description(ctx context.Context) (string, error) {
	return a.Desc, nil
}
func (a *FakeAccessible) Locale(ctx context.Context) (string, error) { return a.LocaleValue, nil }
func (a *FakeAccessible) Attributes(ctx context.Context) (map[string]string, error) {
	return a.Attrs, nil
}
func (a *FakeAccessible) RelationSet(ctx context.Context) (atspi.RelationSet, error) {
	return a.Relations, nil
}
func (a *FakeAccessible) RoleName(ctx context.Context) (string, error) { return a.RoleNameStr, nil }
func (a *FakeAccessible) LocalizedRoleName(ctx context.Context) (string, error) {
	return a.LocalName, nil
}
func (a *FakeAccessible) Application(ctx context.Context) (key.Key, error) { return a.AppKey, nil }
