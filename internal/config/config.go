// Package config reads Odilia's small set of environment-derived
// settings — the keyboard IPC socket path, the PID file path, and
// whether trace logging is on. Spec.md excludes a full configuration
// file/flag surface from scope, so this is a plain Settings struct
// populated from XDG environment variables with documented defaults,
// in the style of cmd/bubbly-mcp-config's small, hand-written settings
// plumbing rather than a general parsing framework; see DESIGN.md for
// why no third-party config library is introduced here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the paths and switches every process in the Odilia
// core needs at startup (spec.md §6).
type Settings struct {
	// SocketPath is the keyboard interceptor's unix-domain socket,
	// defaulting to $XDG_RUNTIME_DIR/odilia.sock with a /run/user/$UID
	// fallback (spec.md §6).
	SocketPath string
	// PIDFilePath is where cmd/odilia records its own PID, defaulting to
	// $XDG_RUNTIME_DIR/odilias.pid with the same fallback. The keyboard
	// interceptor neither writes nor checks it.
	PIDFilePath string
	// DataDir is $XDG_DATA_HOME (or its default), reserved for
	// whatever persistent state a future devtools export lands in.
	DataDir string
	// TraceLogging enables internal/logging's trace-level output when
	// ODILIA_TRACE is set to any non-empty value.
	TraceLogging bool
}

// Load reads Settings from the process environment, applying the XDG
// fallbacks spec.md §6 specifies.
func Load() Settings {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		} else {
			dataHome = filepath.Join(runtimeDir, "odilia-data")
		}
	}

	return Settings{
		SocketPath:   filepath.Join(runtimeDir, "odilia.sock"),
		PIDFilePath:  filepath.Join(runtimeDir, "odilias.pid"),
		DataDir:      filepath.Join(dataHome, "odilia"),
		TraceLogging: os.Getenv("ODILIA_TRACE") != "",
	}
}
