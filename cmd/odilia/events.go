package main

import (
	"context"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/handlers"
	"github.com/odilia-app/odilia-core/internal/state"
)

// speakableName phrases an item for speech as "name role", e.g. "OK
// push button" (spec.md §8 scenario 2), falling back to just the role
// name for unnamed items.
func speakableName(item cache.Snapshot) string {
	if item.HasName && item.Name != "" {
		return item.Name + " " + item.Role.Name()
	}
	return item.Role.Name()
}

// registerEventHandlers wires the event-handler table cmd/odilia needs
// on top of the intrinsic cache-mutation handlers handlers.NewCommandRegistry
// already installs: the AT-SPI signals that drive cache state (spec.md
// §3's lifecycle and mutation rules) and the ones that drive speech and
// focus output.
func registerEventHandlers(reg *handlers.EventRegistry, c *cache.Cache, focusHistory *extract.FocusHistory, caret *command.CaretState) {
	reg.Register(atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberChildrenChanged}, nil, onChildrenChanged(c))
	reg.Register(atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberStateChanged}, nil, onStateChanged)
	reg.Register(atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextChanged}, nil, onTextChanged)
	reg.Register(atspi.Kind{Interface: atspi.InterfaceObject, Member: atspi.MemberTextCaretMoved}, nil, onCaretMoved(focusHistory, caret))
}

// onChildrenChanged keeps the parent's children list in sync via the
// ChangeChild command (spec.md §4.3), and additionally drops the removed
// child from the cache directly: command.Kind has no "remove" variant,
// so this is the one place an event handler mutates the cache outside
// the command-handler pipeline (spec.md §3: "removed by
// ChildrenChanged(remove) on its parent").
func onChildrenChanged(c *cache.Cache) handlers.EventHandlerFunc {
	return func(_ context.Context, h event.Hydrated) ([]command.Command, error) {
		data, ok := h.Raw.ChildrenChanged()
		if !ok {
			return nil, nil
		}
		if !data.Add {
			c.Remove(data.Child)
		}
		return []command.Command{command.ChangeChild(h.Raw.Object, data.Index, data.Child, data.Add)}, nil
	}
}

// onStateChanged translates a StateChanged signal into a SetState
// command, plus a Focus command and a Speak of the object's name and role
// when the state in question is "focused" turning on (spec.md §4.3's
// worked example).
func onStateChanged(_ context.Context, h event.Hydrated) ([]command.Command, error) {
	data, ok := h.Raw.StateChanged()
	if !ok {
		return nil, nil
	}
	st, known := state.FromName(data.StateName)
	if !known {
		return nil, nil
	}

	cmds := []command.Command{command.SetState(h.Raw.Object, st, data.Enabled)}
	if st == state.Focused && data.Enabled {
		cmds = append(cmds, command.Focus(h.Raw.Object))
		cmds = append(cmds, command.Speak(speakableName(h.Item), command.PriorityText))
	}
	return cmds, nil
}

// onTextChanged computes the item's new full text from its cached text
// plus the inserted or deleted span (spec.md §4.3's worked example:
// "new_text = insert(snapshot.text, 12, \"abc\")"), then speaks an
// inserted span so a user typing hears what they typed.
func onTextChanged(_ context.Context, h event.Hydrated) ([]command.Command, error) {
	data, ok := h.Raw.TextChanged()
	if !ok {
		return nil, nil
	}

	var newText string
	switch data.Operation {
	case "insert":
		newText = insertText(h.Item.Text, data.StartPos, data.Text)
	case "delete":
		newText = deleteText(h.Item.Text, data.StartPos, data.Length)
	default:
		newText = h.Item.Text
	}

	cmds := []command.Command{command.SetText(h.Raw.Object, newText)}
	if data.Operation == "insert" && data.Text != "" {
		cmds = append(cmds, command.Speak(data.Text, command.PriorityProgress))
	}
	return cmds, nil
}

// onCaretMoved reports the new caret offset and speaks the span the
// caret crossed: the moved-over substring of the current item when the
// caret stays within the last-focused item, or the item's entire text
// when it lands on a different one (spec.md §4.3's two worked caret
// examples). Focus is always re-asserted, matching the spec's example
// command sequences, which issue Focus(K) even when K was already
// focused.
func onCaretMoved(focusHistory *extract.FocusHistory, caret *command.CaretState) handlers.EventHandlerFunc {
	return func(_ context.Context, h event.Hydrated) ([]command.Command, error) {
		data, ok := h.Raw.TextCaretMoved()
		if !ok {
			return nil, nil
		}

		prevOffset := caret.Offset()
		last, hasLast := focusHistory.Last()
		sameItem := hasLast && last == h.Raw.Object

		cmds := []command.Command{command.Focus(h.Raw.Object), command.CaretPos(data.Position)}

		var speak string
		if sameItem {
			speak = spanText(h.Item.Text, prevOffset, data.Position)
		} else {
			speak = h.Item.Text
		}
		if speak != "" {
			cmds = append(cmds, command.Speak(speak, command.PriorityText))
		}
		return cmds, nil
	}
}

func insertText(text string, at int, insert string) string {
	runes := []rune(text)
	if at < 0 {
		at = 0
	}
	if at > len(runes) {
		at = len(runes)
	}
	out := make([]rune, 0, len(runes)+len([]rune(insert)))
	out = append(out, runes[:at]...)
	out = append(out, []rune(insert)...)
	out = append(out, runes[at:]...)
	return string(out)
}

func deleteText(text string, at, length int) string {
	runes := []rune(text)
	if at < 0 {
		at = 0
	}
	if at > len(runes) {
		at = len(runes)
	}
	end := at + length
	if end > len(runes) {
		end = len(runes)
	}
	if end <= at {
		return text
	}
	out := make([]rune, 0, len(runes)-(end-at))
	out = append(out, runes[:at]...)
	out = append(out, runes[end:]...)
	return string(out)
}

// spanText returns the substring of text between offsets a and b
// (order-independent), the span the caret moved across.
func spanText(text string, a, b int) string {
	if a > b {
		a, b = b, a
	}
	runes := []rune(text)
	if a < 0 {
		a = 0
	}
	if b > len(runes) {
		b = len(runes)
	}
	if a >= b {
		return ""
	}
	return string(runes[a:b])
}
