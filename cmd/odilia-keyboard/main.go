// Command odilia-keyboard grabs a keyboard device exclusively, matches
// key transitions against the default combo table, and forwards every
// matched combo to the odilia core process over its unix-domain socket
// (spec.md §4.5, §6). It is a deliberately small process: all keybinding
// policy lives in internal/keyboard, all wire framing in internal/ipc.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/odilia-app/odilia-core/internal/config"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/ipc"
	"github.com/odilia-app/odilia-core/internal/keyboard"
	"github.com/odilia-app/odilia-core/internal/logging"
)

const usage = `odilia-keyboard - keybinding interceptor for the Odilia screen reader

USAGE:
    odilia-keyboard -device PATH [OPTIONS]

OPTIONS:
    -device string
        evdev character device to grab exclusively (required), e.g.
        /dev/input/by-path/platform-i8042-serio-0-event-kbd

    -socket string
        Odilia core's unix-domain socket (default: $XDG_RUNTIME_DIR/odilia.sock)

    -trace
        Enable trace-level logging

    -h, -help
        Show this help message and exit
`

func main() {
	os.Exit(run())
}

func run() int {
	settings := config.Load()

	deviceFlag := flag.String("device", "", "evdev device to grab")
	socketFlag := flag.String("socket", settings.SocketPath, "odilia core socket path")
	traceFlag := flag.Bool("trace", settings.TraceLogging, "enable trace logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logging.EnableTrace(*traceFlag)
	log := logging.For("odilia-keyboard")

	if *deviceFlag == "" {
		fmt.Fprintln(os.Stderr, "odilia-keyboard: -device is required")
		flag.Usage()
		return 2
	}

	client, err := ipc.Dial(*socketFlag)
	if err != nil {
		logging.Error(log, "failed to connect to odilia core", "socket", *socketFlag, "error", err)
		return 1
	}
	defer client.Close()

	grabber, err := keyboard.OpenDevice(*deviceFlag)
	if err != nil {
		logging.Error(log, "failed to open keyboard device", "device", *deviceFlag, "error", err)
		return 1
	}
	defer grabber.Close()

	combos := keyboard.DefaultComboSets()

	passthrough, ptErr := keyboard.OpenPassthroughDevice(passthroughCodes())
	if ptErr != nil {
		// Not fatal: a system without /dev/uinput access still gets
		// keybinding interception, it just can't replay the keys it
		// decides not to swallow (e.g. ordinary typing while the
		// activation key is not held).
		logging.Error(log, "failed to open passthrough device, keys will be swallowed instead of replayed", "error", ptErr)
	} else {
		defer passthrough.Close()
	}

	emit := func(ev event.UserEvent) {
		if err := client.Send(ev); err != nil {
			logging.Error(log, "failed to send user event to odilia core", "kind", ev.Kind.String(), "error", err)
		}
	}

	state := keyboard.NewState(combos, emit)
	interceptor := keyboard.NewInterceptor(grabber, state, passthroughFunc(passthrough))

	logging.Trace(log, "interceptor starting", "device", *deviceFlag)
	if err := interceptor.Run(); err != nil {
		logging.Error(log, "interceptor exited with error", "error", err)
		return 1
	}
	return 0
}

func passthroughFunc(d *keyboard.PassthroughDevice) keyboard.PassthroughFunc {
	if d == nil {
		return nil
	}
	return d.Emit
}

// passthroughCodes lists every key the default combo table and the
// activation key reference, the full set a PassthroughDevice must be
// able to emit.
func passthroughCodes() []keyboard.Key {
	return []keyboard.Key{
		keyboard.ActivationKey,
		keyboard.KeyF, keyboard.KeyG, keyboard.KeyB, keyboard.KeyLeftShift, keyboard.KeyQ,
		keyboard.KeyT, keyboard.KeyH, keyboard.KeyI, keyboard.KeyK,
	}
}
