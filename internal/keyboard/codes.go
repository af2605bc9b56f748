package keyboard

// Key codes below mirror the Linux kernel's input-event-codes.h (the
// numbering golang-evdev's evdev.KEY_* constants also follow), listing
// only the keys the default keybinding table and its tests reference.
const (
	KeyLeftShift Key = 42
	KeyQ         Key = 16
	KeyT         Key = 20
	KeyF         Key = 33
	KeyG         Key = 34
	KeyH         Key = 35
	KeyK         Key = 37
	KeyB         Key = 48
	KeyI         Key = 23
)
