package ipc_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/ipc"
)

func TestListenRemovesStaleSocketFile(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "odilia.sock")
	require.NoError(t, os.WriteFile(sock, []byte("not a socket"), 0o644))

	ln, err := ipc.Listen(sock)
	require.NoError(t, err)
	defer ln.Close()
}

func TestListenRejectsWhenAnotherListenerIsLive(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "odilia.sock")

	first, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer first.Close()

	_, err = ipc.Listen(sock)
	assert.Error(t, err)
}

func TestServerDeliversDecodedEventsToHandler(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "odilia.sock")

	ln, err := ipc.Listen(sock)
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan event.UserEvent, 1)
	srv := ipc.NewServer(ln, func(ev event.UserEvent) {
		received <- ev
	})
	go srv.Serve()

	client, err := ipc.Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send(event.StopSpeech()))

	select {
	case got := <-received:
		assert.Equal(t, event.StopSpeech(), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
