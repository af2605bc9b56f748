package main

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
)

// a11yBusAddress asks the session bus's org.a11y.Bus service for the
// accessibility bus's own address (the standard AT-SPI2 discovery
// handshake: the session bus only brokers the address, every actual
// accessible lives on the bus it returns). ODILIA_A11Y_BUS_ADDRESS
// overrides this for tests and for environments that export the
// address directly rather than running org.a11y.Bus.
func a11yBusAddress() (string, error) {
	if addr := os.Getenv("ODILIA_A11Y_BUS_ADDRESS"); addr != "" {
		return addr, nil
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return "", fmt.Errorf("odilia: connect to session bus: %w", err)
	}

	obj := conn.Object("org.a11y.Bus", "/org/a11y/bus")
	var addr string
	if err := obj.Call("org.a11y.Bus.GetAddress", 0).Store(&addr); err != nil {
		return "", fmt.Errorf("odilia: org.a11y.Bus.GetAddress: %w", err)
	}
	return addr, nil
}
