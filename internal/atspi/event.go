// Package atspi defines the core's consumer-side contract against the
// AT-SPI2 accessibility bus: the decoded event shape the transport
// delivers, and the Provider interface the rest of the core is grounded
// against. The concrete godbus-backed implementation lives in
// provider_dbus.go; every other package in this module depends only on the
// Provider interface and the types in this file.
package atspi

import (
	"time"

	"github.com/odilia-app/odilia-core/internal/key"
)

// Interface names the AT-SPI event interface an Event arrived on.
type Interface string

const (
	InterfaceObject   Interface = "org.a11y.atspi.Event.Object"
	InterfaceWindow   Interface = "org.a11y.atspi.Event.Window"
	InterfaceFocus    Interface = "org.a11y.atspi.Event.Focus"
	InterfaceDocument Interface = "org.a11y.atspi.Event.Document"
)

// Member names the signal member within Interface.
type Member string

const (
	MemberActiveDescendantChanged Member = "ActiveDescendantChanged"
	MemberChildrenChanged         Member = "ChildrenChanged"
	MemberPropertyChange          Member = "PropertyChange"
	MemberStateChanged            Member = "StateChanged"
	MemberTextCaretMoved          Member = "TextCaretMoved"
	MemberTextChanged             Member = "TextChanged"
	MemberVisibleDataChanged      Member = "VisibleDataChanged"
	MemberWindowActivate          Member = "Activate"
)

// Kind is the (interface, member) tuple the handler registry keys on
// (spec.md §4.2, §4.3).
type Kind struct {
	Interface Interface
	Member    Member
}

func (k Kind) String() string {
	return string(k.Interface) + ":" + string(k.Member)
}

// Event is the decoded shape every AT-SPI signal arrives as: a kind, the
// object reference it concerns, a generic two-int/one-string/one-any
// payload mirroring the real AT-SPI wire signal body (minor string,
// detail1, detail2, any_data), plus the time it was observed. The
// typed accessors below (ChildrenChanged, StateChanged, ...) reinterpret
// this generic payload for handlers that want named fields instead of
// positional ones (spec.md §4.2 "tagged union... variant-specific
// fields").
type Event struct {
	Kind      Kind
	Object    key.Key
	Minor     string
	Detail1   int32
	Detail2   int32
	AnyData   any
	Timestamp time.Time
}

// ChildrenChangedData is the decoded body of a ChildrenChanged event.
type ChildrenChangedData struct {
	Add   bool // Minor == "add"; false means "remove"
	Index int
	Child key.Key
}

// ChildrenChanged reinterprets e as a ChildrenChanged event. ok is false
// if e is not one (spec.md §4.1 lifecycle: created/removed by this
// event).
func (e Event) ChildrenChanged() (ChildrenChangedData, bool) {
	if e.Kind.Member != MemberChildrenChanged {
		return ChildrenChangedData{}, false
	}
	child, _ := e.AnyData.(key.Key)
	return ChildrenChangedData{
		Add:   e.Minor == "add",
		Index: int(e.Detail1),
		Child: child,
	}, true
}

// StateChangedData is the decoded body of a StateChanged event. The
// state name (e.g. "focused") must still be resolved via state.FromName
// by the caller since AT-SPI delivers it as a string.
type StateChangedData struct {
	StateName string
	Enabled   bool
}

func (e Event) StateChanged() (StateChangedData, bool) {
	if e.Kind.Member != MemberStateChanged {
		return StateChangedData{}, false
	}
	return StateChangedData{StateName: e.Minor, Enabled: e.Detail1 != 0}, true
}

// PropertyChangeData is the decoded body of a PropertyChange event.
type PropertyChangeData struct {
	Property string // e.g. "accessible-name"
	Value    any
}

func (e Event) PropertyChange() (PropertyChangeData, bool) {
	if e.Kind.Member != MemberPropertyChange {
		return PropertyChangeData{}, false
	}
	return PropertyChangeData{Property: e.Minor, Value: e.AnyData}, true
}

// TextChangedData is the decoded body of a TextChanged event (spec.md
// §4.3 example handler flow).
type TextChangedData struct {
	Operation string // "insert" or "delete"
	StartPos  int
	Length    int
	Text      string
}

func (e Event) TextChanged() (TextChangedData, bool) {
	if e.Kind.Member != MemberTextChanged {
		return TextChangedData{}, false
	}
	text, _ := e.AnyData.(string)
	return TextChangedData{
		Operation: e.Minor,
		StartPos:  int(e.Detail1),
		Length:    int(e.Detail2),
		Text:      text,
	}, true
}

// TextCaretMovedData is the decoded body of a TextCaretMoved event.
type TextCaretMovedData struct {
	Position int
}

func (e Event) TextCaretMoved() (TextCaretMovedData, bool) {
	if e.Kind.Member != MemberTextCaretMoved {
		return TextCaretMovedData{}, false
	}
	return TextCaretMovedData{Position: int(e.Detail1)}, true
}
