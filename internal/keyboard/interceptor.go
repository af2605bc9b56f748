package keyboard

import (
	"errors"
	"io"
	"log/slog"

	"github.com/odilia-app/odilia-core/internal/logging"
)

// Grabber abstracts a single exclusively-grabbed keyboard device: Next
// blocks for the next raw key transition, Grab requests exclusive
// access (so the kernel stops delivering the device's events to every
// other listener — the same "swallow at the source" behavior
// original_source's rdev grab hook provides), and Close releases the
// device. The real implementation (grab_linux.go) drives golang-evdev's
// EVIOCGRAB ioctl; this interface is what lets the combo state machine
// in State be tested without real input hardware, the same way the
// teacher isolates its component interfaces.
type Grabber interface {
	Grab() error
	Next() (code Key, pressed bool, err error)
	Close() error
}

// PassthroughFunc re-injects a key transition Grabber swallowed at grab
// time but State decided should still reach the desktop (e.g. any key
// pressed while the activation key is not held, or a key released after
// being held from before the interceptor started). golang-evdev has no
// matching uinput-backed replay call, so the caller supplies one:
// cmd/odilia-keyboard passes the Emit method of the PassthroughDevice
// defined in uinput_linux.go.
type PassthroughFunc func(code Key, pressed bool)

// Interceptor drains a Grabber, runs every transition through a State,
// and calls through to emit/passthrough as State directs.
type Interceptor struct {
	source      Grabber
	state       *State
	passthrough PassthroughFunc
	log         *slog.Logger
}

// NewInterceptor builds an Interceptor over source, tracking combo
// state in state and re-injecting passed-through key transitions via
// passthrough.
func NewInterceptor(source Grabber, state *State, passthrough PassthroughFunc) *Interceptor {
	return &Interceptor{source: source, state: state, passthrough: passthrough, log: logging.For("keyboard.interceptor")}
}

// Run grabs the device and processes events until the source closes or
// errors (other than io.EOF, which it treats as a clean shutdown).
func (i *Interceptor) Run() error {
	if err := i.source.Grab(); err != nil {
		return err
	}
	logging.Trace(i.log, "device grabbed, interceptor running")
	for {
		code, pressed, err := i.source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var through bool
		if pressed {
			through = i.state.HandleKeyPress(code)
		} else {
			through = i.state.HandleKeyRelease(code)
		}
		if through && i.passthrough != nil {
			logging.Trace(i.log, "passing key transition through", "code", code, "pressed", pressed)
			i.passthrough(code, pressed)
		}
	}
}
