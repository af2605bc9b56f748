package atspi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/iface"
	"github.com/odilia-app/odilia-core/internal/key"
	"github.com/odilia-app/odilia-core/internal/logging"
	"github.com/odilia-app/odilia-core/internal/role"
	"github.com/odilia-app/odilia-core/internal/state"
)

const (
	ifaceAccessible = "org.a11y.atspi.Accessible"
	ifaceText       = "org.a11y.atspi.Text"
	ifaceHyperlink  = "org.a11y.atspi.Hyperlink"
	ifaceComponent  = "org.a11y.atspi.Component"
	ifaceCollection = "org.a11y.atspi.Collection"
)

// GodbusProvider is the production Provider (spec.md §6), a thin shim
// over a single connection to the accessibility bus. Per spec.md §1's
// non-goal, it never interprets AT-SPI semantics beyond decoding the
// wire shape into an Event or forwarding a proxy call; all policy lives
// above the Provider interface.
type GodbusProvider struct {
	conn *dbus.Conn
	log  *slog.Logger
}

// NewGodbusProvider connects to the accessibility bus at addr (typically
// obtained via the a11y bus activation address, not the session bus
// directly).
func NewGodbusProvider(addr string) (*GodbusProvider, error) {
	conn, err := dbus.Dial(addr)
	if err != nil {
		return nil, &errs.AtspiError{Cause: err}
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, &errs.AtspiError{Cause: err}
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, &errs.AtspiError{Cause: err}
	}
	return &GodbusProvider{conn: conn, log: logging.For("atspi")}, nil
}

// Close releases the underlying connection.
func (p *GodbusProvider) Close() error {
	return p.conn.Close()
}

// Events subscribes to the four AT-SPI event interfaces the core
// consumes and decodes each signal into an Event (spec.md §6). The
// returned channel is sized per spec.md §5's 128-deep AT-SPI event
// channel backpressure budget.
func (p *GodbusProvider) Events(ctx context.Context) (<-chan Event, error) {
	matches := []string{
		"type='signal',interface='" + string(InterfaceObject) + "'",
		"type='signal',interface='" + string(InterfaceWindow) + "'",
		"type='signal',interface='" + string(InterfaceFocus) + "'",
		"type='signal',interface='" + string(InterfaceDocument) + "'",
	}
	for _, m := range matches {
		call := p.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, m)
		if call.Err != nil {
			return nil, &errs.AtspiError{Cause: call.Err}
		}
	}

	signals := make(chan *dbus.Signal, 128)
	p.conn.Signal(signals)

	out := make(chan Event, 128)
	go func() {
		defer close(out)
		defer p.conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				ev, ok := decodeSignal(sig)
				if !ok {
					logging.Trace(p.log, "dropping undecodable signal", "name", sig.Name)
					continue
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

// decodeSignal turns a raw dbus.Signal into an Event. AT-SPI event
// signals carry a body of (minor string, detail1 int32, detail2 int32,
// any_data variant, properties map); only the first four are used.
func decodeSignal(sig *dbus.Signal) (Event, bool) {
	ifaceName, member, ok := splitSignalName(sig.Name)
	if !ok {
		return Event{}, false
	}
	if len(sig.Body) < 4 {
		return Event{}, false
	}
	minor, _ := sig.Body[0].(string)
	detail1, _ := sig.Body[1].(int32)
	detail2, _ := sig.Body[2].(int32)
	var anyData any
	if v, ok := sig.Body[3].(dbus.Variant); ok {
		anyData = v.Value()
	} else {
		anyData = sig.Body[3]
	}
	return Event{
		Kind:      Kind{Interface: Interface(ifaceName), Member: Member(member)},
		Object:    key.New(string(sig.Sender), string(sig.Path)),
		Minor:     minor,
		Detail1:   detail1,
		Detail2:   detail2,
		AnyData:   anyData,
		Timestamp: time.Now(),
	}, true
}

func splitSignalName(full string) (iface, member string, ok bool) {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '.' {
			return full[:i], full[i+1:], true
		}
	}
	return "", "", false
}

func (p *GodbusProvider) object(k key.Key) dbus.BusObject {
	return p.conn.Object(k.BusName, dbus.ObjectPath(k.Path))
}

// Accessible never fails: every object answering on the a11y bus
// implements Accessible (spec.md §6).
func (p *GodbusProvider) Accessible(k key.Key) AccessibleProxy {
	return &dbusAccessible{p: p, key: k}
}

func (p *GodbusProvider) Text(k key.Key) (TextProxy, error) {
	ctx := context.Background()
	ifaces, err := p.Accessible(k).Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	if !ifaces.Has(iface.Text) {
		return nil, &errs.InterfaceNotFound{Key: k, Iface: ifaceText}
	}
	return &dbusText{p: p, key: k}, nil
}

func (p *GodbusProvider) Hyperlink(k key.Key) (HyperlinkProxy, error) {
	ctx := context.Background()
	ifaces, err := p.Accessible(k).Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	if !ifaces.Has(iface.Hyperlink) {
		return nil, &errs.InterfaceNotFound{Key: k, Iface: ifaceHyperlink}
	}
	return &dbusHyperlink{p: p, key: k}, nil
}

func (p *GodbusProvider) Component(k key.Key) (ComponentProxy, error) {
	ctx := context.Background()
	ifaces, err := p.Accessible(k).Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	if !ifaces.Has(iface.Component) {
		return nil, &errs.InterfaceNotFound{Key: k, Iface: ifaceComponent}
	}
	return &dbusComponent{p: p, key: k}, nil
}

func (p *GodbusProvider) Collection(k key.Key) (CollectionProxy, error) {
	ctx := context.Background()
	ifaces, err := p.Accessible(k).Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	if !ifaces.Has(iface.Collection) {
		return nil, &errs.InterfaceNotFound{Key: k, Iface: ifaceCollection}
	}
	return &dbusCollection{p: p, key: k}, nil
}

type dbusAccessible struct {
	p   *GodbusProvider
	key key.Key
}

func (a *dbusAccessible) call(ctx context.Context, method string, ret any, args ...any) error {
	call := a.p.object(a.key).CallWithContext(ctx, ifaceAccessible+"."+method, 0, args...)
	if call.Err != nil {
		return &errs.AtspiError{Cause: call.Err}
	}
	if ret == nil {
		return nil
	}
	if err := call.Store(ret); err != nil {
		return &errs.AtspiError{Cause: err}
	}
	return nil
}

// decodeRef decodes the (so) struct AT-SPI uses to serialize every
// accessible reference on the wire: bus name plus object path.
func decodeRef(raw []any) (key.Key, bool) {
	if len(raw) != 2 {
		return key.Key{}, false
	}
	busName, _ := raw[0].(string)
	path, _ := raw[1].(dbus.ObjectPath)
	return key.New(busName, string(path)), true
}

func (a *dbusAccessible) Parent(ctx context.Context) (key.Key, error) {
	var raw []any
	call := a.p.object(a.key).CallWithContext(ctx, ifaceAccessible+".GetParent", 0)
	if call.Err != nil {
		return key.Key{}, &errs.AtspiError{Cause: call.Err}
	}
	if err := call.Store(&raw); err != nil {
		return key.Key{}, &errs.AtspiError{Cause: err}
	}
	k, ok := decodeRef(raw)
	if !ok {
		return key.Key{}, &errs.AtspiError{Cause: fmt.Errorf("malformed GetParent reply")}
	}
	return k, nil
}

func (a *dbusAccessible) Children(ctx context.Context) ([]key.Key, error) {
	var raw [][]any
	if err := a.call(ctx, "GetChildren", &raw); err != nil {
		return nil, err
	}
	out := make([]key.Key, 0, len(raw))
	for _, pair := range raw {
		if k, ok := decodeRef(pair); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (a *dbusAccessible) IndexInParent(ctx context.Context) (int, error) {
	var idx int32
	if err := a.call(ctx, "GetIndexInParent", &idx); err != nil {
		return 0, err
	}
	return int(idx), nil
}

func (a *dbusAccessible) Role(ctx context.Context) (role.Role, error) {
	var r uint32
	if err := a.call(ctx, "GetRole", &r); err != nil {
		return 0, err
	}
	return role.Role(r), nil
}

func (a *dbusAccessible) Interfaces(ctx context.Context) (iface.Set, error) {
	var names []string
	if err := a.call(ctx, "GetInterfaces", &names); err != nil {
		return 0, err
	}
	var set iface.Set
	for _, n := range names {
		if i, ok := interfaceFromWireName(n); ok {
			set = set.With(i)
		}
	}
	return set, nil
}

// AT-SPI packs the state bitset as two uint32 words; this core's State
// set fits entirely in the low word.
func (a *dbusAccessible) State(ctx context.Context) (state.Set, error) {
	var bits []uint32
	if err := a.call(ctx, "GetState", &bits); err != nil {
		return 0, err
	}
	var set state.Set
	if len(bits) > 0 {
		set = state.Set(bits[0])
	}
	return set, nil
}

func (a *dbusAccessible) ChildCount(ctx context.Context) (int, error) {
	v, err := a.p.object(a.key).GetProperty(ifaceAccessible + ".ChildCount")
	if err != nil {
		return 0, &errs.AtspiError{Cause: err}
	}
	n, _ := v.Value().(int32)
	return int(n), nil
}

func (a *dbusAccessible) Name(ctx context.Context) (string, error) {
	v, err := a.p.object(a.key).GetProperty(ifaceAccessible + ".Name")
	if err != nil {
		return "", &errs.AtspiError{Cause: err}
	}
	s, _ := v.Value().(string)
	return s, nil
}

func (a *dbusAccessible) Description(ctx context.Context) (string, error) {
	v, err := a.p.object(a.key).GetProperty(ifaceAccessible + ".Description")
	if err != nil {
		return "", &errs.AtspiError{Cause: err}
	}
	s, _ := v.Value().(string)
	return s, nil
}

func (a *dbusAccessible) Locale(ctx context.Context) (string, error) {
	var locale string
	if err := a.call(ctx, "GetLocale", &locale); err != nil {
		return "", err
	}
	return locale, nil
}

func (a *dbusAccessible) Attributes(ctx context.Context) (map[string]string, error) {
	var attrs map[string]string
	if err := a.call(ctx, "GetAttributes", &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (a *dbusAccessible) RelationSet(ctx context.Context) (RelationSet, error) {
	var raw [][]any
	if err := a.call(ctx, "GetRelationSet", &raw); err != nil {
		return nil, err
	}
	out := make(RelationSet, 0, len(raw))
	for _, rel := range raw {
		if len(rel) != 2 {
			continue
		}
		kind, _ := rel[0].(string)
		pairs, _ := rel[1].([][]any)
		targets := make([]key.Key, 0, len(pairs))
		for _, pair := range pairs {
			if k, ok := decodeRef(pair); ok {
				targets = append(targets, k)
			}
		}
		out = append(out, Relation{Kind: RelationKind(kind), Targets: targets})
	}
	return out, nil
}

func (a *dbusAccessible) RoleName(ctx context.Context) (string, error) {
	var name string
	if err := a.call(ctx, "GetRoleName", &name); err != nil {
		return "", err
	}
	return name, nil
}

func (a *dbusAccessible) LocalizedRoleName(ctx context.Context) (string, error) {
	var name string
	if err := a.call(ctx, "GetLocalizedRoleName", &name); err != nil {
		return "", err
	}
	return name, nil
}

func (a *dbusAccessible) Application(ctx context.Context) (key.Key, error) {
	var raw []any
	call := a.p.object(a.key).CallWithContext(ctx, ifaceAccessible+".GetApplication", 0)
	if call.Err != nil {
		return key.Key{}, &errs.AtspiError{Cause: call.Err}
	}
	if err := call.Store(&raw); err != nil {
		return key.Key{}, &errs.AtspiError{Cause: err}
	}
	k, ok := decodeRef(raw)
	if !ok {
		return key.Key{}, &errs.AtspiError{Cause: fmt.Errorf("malformed GetApplication reply")}
	}
	return k, nil
}

func interfaceFromWireName(name string) (iface.Interface, bool) {
	switch name {
	case ifaceAccessible:
		return iface.Accessible, true
	case "org.a11y.atspi.Action":
		return iface.Action, true
	case ifaceComponent:
		return iface.Component, true
	case ifaceText:
		return iface.Text, true
	case "org.a11y.atspi.EditableText":
		return iface.EditableText, true
	case "org.a11y.atspi.Hypertext":
		return iface.Hypertext, true
	case ifaceHyperlink:
		return iface.Hyperlink, true
	case "org.a11y.atspi.Image":
		return iface.Image, true
	case "org.a11y.atspi.Selection":
		return iface.Selection, true
	case "org.a11y.atspi.Table":
		return iface.Table, true
	case "org.a11y.atspi.TableCell":
		return iface.TableCell, true
	case "org.a11y.atspi.Value":
		return iface.Value, true
	case ifaceCollection:
		return iface.Collection, true
	case "org.a11y.atspi.Document":
		return iface.Document, true
	default:
		return 0, false
	}
}

type dbusText struct {
	p   *GodbusProvider
	key key.Key
}

func (t *dbusText) call(ctx context.Context, method string, ret any, args ...any) error {
	call := t.p.object(t.key).CallWithContext(ctx, ifaceText+"."+method, 0, args...)
	if call.Err != nil {
		return &errs.AtspiError{Cause: call.Err}
	}
	if ret == nil {
		return nil
	}
	if err := call.Store(ret); err != nil {
		return &errs.AtspiError{Cause: err}
	}
	return nil
}

func (t *dbusText) CaretOffset(ctx context.Context) (int, error) {
	v, err := t.p.object(t.key).GetProperty(ifaceText + ".CaretOffset")
	if err != nil {
		return 0, &errs.AtspiError{Cause: err}
	}
	n, _ := v.Value().(int32)
	return int(n), nil
}

func (t *dbusText) GetText(ctx context.Context, start, end int) (string, error) {
	var s string
	if err := t.call(ctx, "GetText", &s, int32(start), int32(end)); err != nil {
		return "", err
	}
	return s, nil
}

func (t *dbusText) CharacterCount(ctx context.Context) (int, error) {
	v, err := t.p.object(t.key).GetProperty(ifaceText + ".CharacterCount")
	if err != nil {
		return 0, &errs.AtspiError{Cause: err}
	}
	n, _ := v.Value().(int32)
	return int(n), nil
}

func (t *dbusText) GetStringAtOffset(ctx context.Context, offset int, granularity string) (string, int, int, error) {
	var ret []any
	if err := t.call(ctx, "GetStringAtOffset", &ret, int32(offset), granularity); err != nil {
		return "", 0, 0, err
	}
	if len(ret) != 3 {
		return "", 0, 0, &errs.AtspiError{Cause: fmt.Errorf("malformed GetStringAtOffset reply")}
	}
	text, _ := ret[0].(string)
	start, _ := ret[1].(int32)
	end, _ := ret[2].(int32)
	return text, int(start), int(end), nil
}

func (t *dbusText) Selections(ctx context.Context) ([]TextRange, error) {
	var n int32
	if err := t.call(ctx, "GetNSelections", &n); err != nil {
		return nil, err
	}
	out := make([]TextRange, 0, n)
	for i := int32(0); i < n; i++ {
		var bounds []any
		if err := t.call(ctx, "GetSelection", &bounds, i); err != nil {
			return nil, err
		}
		if len(bounds) != 2 {
			continue
		}
		start, _ := bounds[0].(int32)
		end, _ := bounds[1].(int32)
		out = append(out, TextRange{Start: int(start), End: int(end)})
	}
	return out, nil
}

func (t *dbusText) Attributes(ctx context.Context, offset int) (map[string]string, int, int, error) {
	var attrs map[string]string
	var start, end int32
	call := t.p.object(t.key).CallWithContext(ctx, ifaceText+".GetAttributes", 0, int32(offset))
	if call.Err != nil {
		return nil, 0, 0, &errs.AtspiError{Cause: call.Err}
	}
	if err := call.Store(&attrs, &start, &end); err != nil {
		return nil, 0, 0, &errs.AtspiError{Cause: err}
	}
	return attrs, int(start), int(end), nil
}

type dbusHyperlink struct {
	p   *GodbusProvider
	key key.Key
}

func (h *dbusHyperlink) StartIndex(ctx context.Context) (int, error) {
	v, err := h.p.object(h.key).GetProperty(ifaceHyperlink + ".StartIndex")
	if err != nil {
		return 0, &errs.AtspiError{Cause: err}
	}
	n, _ := v.Value().(int32)
	return int(n), nil
}

func (h *dbusHyperlink) EndIndex(ctx context.Context) (int, error) {
	v, err := h.p.object(h.key).GetProperty(ifaceHyperlink + ".EndIndex")
	if err != nil {
		return 0, &errs.AtspiError{Cause: err}
	}
	n, _ := v.Value().(int32)
	return int(n), nil
}

type dbusComponent struct {
	p   *GodbusProvider
	key key.Key
}

func (c *dbusComponent) Extents(ctx context.Context) (int, int, int, int, error) {
	var ret []any
	call := c.p.object(c.key).CallWithContext(ctx, ifaceComponent+".GetExtents", 0, uint32(0))
	if call.Err != nil {
		return 0, 0, 0, 0, &errs.AtspiError{Cause: call.Err}
	}
	if err := call.Store(&ret); err != nil {
		return 0, 0, 0, 0, &errs.AtspiError{Cause: err}
	}
	if len(ret) != 4 {
		return 0, 0, 0, 0, &errs.AtspiError{Cause: fmt.Errorf("malformed GetExtents reply")}
	}
	x, _ := ret[0].(int32)
	y, _ := ret[1].(int32)
	w, _ := ret[2].(int32)
	h, _ := ret[3].(int32)
	return int(x), int(y), int(w), int(h), nil
}

type dbusCollection struct {
	p   *GodbusProvider
	key key.Key
}

func (c *dbusCollection) GetMatches(ctx context.Context, rule MatchRule, count int) ([]key.Key, error) {
	var raw [][]any
	// The wire MatchRule struct packs role/state bitsets plus match-type
	// flags; only the pieces this core actually filters on are forwarded.
	call := c.p.object(c.key).CallWithContext(ctx, ifaceCollection+".GetMatches", 0,
		rule.Roles[:], uint32(rule.States), int32(count))
	if call.Err != nil {
		return nil, &errs.AtspiError{Cause: call.Err}
	}
	if err := call.Store(&raw); err != nil {
		return nil, &errs.AtspiError{Cause: err}
	}
	out := make([]key.Key, 0, len(raw))
	for _, pair := range raw {
		if k, ok := decodeRef(pair); ok {
			out = append(out, k)
		}
	}
	return out, nil
}
