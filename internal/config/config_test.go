package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odilia-app/odilia-core/internal/config"
)

func TestLoadUsesXDGRuntimeDirWhenSet(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("ODILIA_TRACE", "")

	s := config.Load()
	assert.Equal(t, filepath.Join("/run/user/1000", "odilia.sock"), s.SocketPath)
	assert.Equal(t, filepath.Join("/run/user/1000", "odilias.pid"), s.PIDFilePath)
	assert.False(t, s.TraceLogging)
}

func TestLoadFallsBackToRunUserUIDWhenUnset(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	s := config.Load()
	assert.Equal(t, filepath.Join(fallbackRuntimeDir(), "odilia.sock"), s.SocketPath)
}

func TestLoadEnablesTraceFromEnv(t *testing.T) {
	t.Setenv("ODILIA_TRACE", "1")
	s := config.Load()
	assert.True(t, s.TraceLogging)
}

func fallbackRuntimeDir() string {
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}
