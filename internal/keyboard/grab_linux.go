//go:build linux

package keyboard

import (
	evdev "github.com/gvalkov/golang-evdev"
)

// evdevGrabber is the real Grabber: a single evdev character device,
// grabbed exclusively via golang-evdev's EVIOCGRAB-backed Grab call.
type evdevGrabber struct {
	dev *evdev.InputDevice
}

// OpenDevice opens the evdev character device at path (e.g.
// /dev/input/by-path/platform-i8042-serio-0-event-kbd) for exclusive
// grabbing.
func OpenDevice(path string) (Grabber, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	return &evdevGrabber{dev: dev}, nil
}

func (g *evdevGrabber) Grab() error { return g.dev.Grab() }

func (g *evdevGrabber) Close() error {
	_ = g.dev.Release()
	return g.dev.File.Close()
}

func (g *evdevGrabber) Next() (Key, bool, error) {
	for {
		ev, err := g.dev.ReadOne()
		if err != nil {
			return 0, false, err
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		if ev.Value != 0 && ev.Value != 1 {
			continue // repeat (2); State already treats a held key as a no-op
		}
		return Key(ev.Code), ev.Value == 1, nil
	}
}
