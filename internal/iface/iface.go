// Package iface enumerates the AT-SPI interfaces an accessible object may
// implement and provides a compact bitset for a cache item's declared
// interface set (spec.md §3).
package iface

// Interface is a single bit position in a Set. Values mirror the AT-SPI
// interface list required by spec.md §6.
type Interface uint32

const (
	Accessible Interface = 1 << iota
	Action
	Component
	Text
	EditableText
	Hypertext
	Hyperlink
	Image
	Selection
	Table
	TableCell
	Value
	Collection
	Document
)

var names = map[Interface]string{
	Accessible:   "Accessible",
	Action:       "Action",
	Component:    "Component",
	Text:         "Text",
	EditableText: "EditableText",
	Hypertext:    "Hypertext",
	Hyperlink:    "Hyperlink",
	Image:        "Image",
	Selection:    "Selection",
	Table:        "Table",
	TableCell:    "TableCell",
	Value:        "Value",
	Collection:   "Collection",
	Document:     "Document",
}

func (i Interface) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return "Unknown"
}

// Set is a bitset of Interface values, the cache item's `interfaces`
// field (spec.md §3).
type Set uint32

// Of builds a Set from the given interfaces.
func Of(ifaces ...Interface) Set {
	var s Set
	for _, i := range ifaces {
		s |= Set(i)
	}
	return s
}

// Has reports whether i is present in s.
func (s Set) Has(i Interface) bool {
	return s&Set(i) != 0
}

// With returns s with i added.
func (s Set) With(i Interface) Set {
	return s | Set(i)
}

// List returns the interfaces present in s in a stable order.
func (s Set) List() []Interface {
	var out []Interface
	for _, i := range []Interface{
		Accessible, Action, Component, Text, EditableText, Hypertext,
		Hyperlink, Image, Selection, Table, TableCell, Value, Collection,
		Document,
	} {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}
