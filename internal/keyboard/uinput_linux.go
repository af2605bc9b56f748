//go:build linux

package keyboard

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The constants below are the Linux kernel's stable uinput ABI
// (linux/uinput.h, linux/input.h): ioctl request numbers built from the
// kernel's _IOW/_IO macros and the legacy uinput_user_dev struct layout.
// No Go uinput library exists anywhere in this project's dependency set,
// so PassthroughDevice talks to /dev/uinput directly over
// golang.org/x/sys/unix syscalls (the grabbed evdev side goes through
// golang-evdev in OpenDevice), rather than inventing a fake "uinput
// client" dependency.
const (
	uiSetEvBit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeyBit  = 0x40045565 // _IOW('U', 101, int)
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)

	evSyn = 0x00
	evKey = 0x01
	synReport = 0
)

// uinputUserDev mirrors struct uinput_user_dev from linux/uinput.h: a
// fixed-size name buffer, device identity, and the absolute-axis tables
// this keyboard-only device leaves zeroed.
type uinputUserDev struct {
	name       [80]byte
	id         inputID
	ffEffectsMax uint32
	absMax     [64]int32
	absMin     [64]int32
	absFuzz    [64]int32
	absFlat    [64]int32
}

type inputID struct {
	busType uint16
	vendor  uint16
	product uint16
	version uint16
}

// inputEvent mirrors struct input_event from linux/input.h.
type inputEvent struct {
	sec   int64
	usec  int64
	typ   uint16
	code  uint16
	value int32
}

// PassthroughDevice is a virtual uinput keyboard used to re-inject key
// transitions an Interceptor's Grabber swallowed but State decided
// should still reach the desktop (interceptor.go's PassthroughFunc).
type PassthroughDevice struct {
	fd int
}

// OpenPassthroughDevice creates a virtual keyboard at /dev/uinput capable
// of emitting every key code the default combo table and its activation
// key reference. codes should list every Key value the caller's State
// might pass through.
func OpenPassthroughDevice(codes []Key) (*PassthroughDevice, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("keyboard: open /dev/uinput: %w", err)
	}

	if err := ioctlInt(fd, uiSetEvBit, evKey); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("keyboard: UI_SET_EVBIT: %w", err)
	}
	for _, code := range codes {
		if err := ioctlInt(fd, uiSetKeyBit, int(code)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("keyboard: UI_SET_KEYBIT %d: %w", code, err)
		}
	}

	var dev uinputUserDev
	copy(dev.name[:], "odilia-passthrough")
	dev.id = inputID{busType: 0x03 /* BUS_USB */, vendor: 0x1, product: 0x1, version: 1}
	if _, err := unix.Write(fd, uinputUserDevBytes(&dev)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("keyboard: write uinput_user_dev: %w", err)
	}

	if err := ioctlNoArg(fd, uiDevCreate); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("keyboard: UI_DEV_CREATE: %w", err)
	}
	return &PassthroughDevice{fd: fd}, nil
}

// Emit implements PassthroughFunc, replaying one key transition followed
// by the SYN_REPORT every evdev consumer expects to terminate a batch of
// input events.
func (d *PassthroughDevice) Emit(code Key, pressed bool) {
	value := int32(0)
	if pressed {
		value = 1
	}
	_ = d.write(evKey, uint16(code), value)
	_ = d.write(evSyn, synReport, 0)
}

func (d *PassthroughDevice) write(typ, code uint16, value int32) error {
	now := time.Now()
	ev := inputEvent{sec: now.Unix(), usec: int64(now.Nanosecond() / 1000), typ: typ, code: code, value: value}
	_, err := unix.Write(d.fd, inputEventBytes(&ev))
	return err
}

// Close destroys the virtual device and releases the file descriptor.
func (d *PassthroughDevice) Close() error {
	_ = ioctlNoArg(d.fd, uiDevDestroy)
	return unix.Close(d.fd)
}

func ioctlInt(fd int, req uint, arg int) error {
	return unix.IoctlSetInt(fd, req, arg)
}

func ioctlNoArg(fd int, req uint) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func uinputUserDevBytes(dev *uinputUserDev) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(dev)), unsafe.Sizeof(*dev))
}

func inputEventBytes(ev *inputEvent) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ev)), unsafe.Sizeof(*ev))
}
