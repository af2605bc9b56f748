package ipc_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/ipc"
)

func TestAcquirePIDFileWritesOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odilias.pid")

	require.NoError(t, ipc.AcquirePIDFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestAcquirePIDFileRejectsWhenProcessAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odilias.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644))

	err := ipc.AcquirePIDFile(path)
	assert.ErrorIs(t, err, ipc.ErrAlreadyRunning)
}

func TestAcquirePIDFileOverwritesStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odilias.pid")
	// PID 1 is generally not a child the test could ever be, but a
	// genuinely unused high PID is the point here: pick one that is
	// extremely unlikely to be alive in the test sandbox.
	require.NoError(t, os.WriteFile(path, []byte("999999"), 0o644))

	err := ipc.AcquirePIDFile(path)
	assert.NoError(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestReleasePIDFileRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odilias.pid")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))

	require.NoError(t, ipc.ReleasePIDFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReleasePIDFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odilias.pid")
	assert.NoError(t, ipc.ReleasePIDFile(path))
}
