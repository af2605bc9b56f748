package ipc_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/ipc"
	"github.com/odilia-app/odilia-core/internal/role"
)

func TestEncodeWritesExactlyOneJSONLine(t *testing.T) {
	var buf bytes.Buffer
	enc := ipc.NewEncoder(&buf)

	require.NoError(t, enc.Encode(event.ChangeMode(command.ModeFocus)))

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 1, lines)
}

func TestDecoderRoundTripsEvent(t *testing.T) {
	var buf bytes.Buffer
	enc := ipc.NewEncoder(&buf)
	sent := event.StructuralNavigation(event.DirectionBackward, role.RoleLink)
	require.NoError(t, enc.Encode(sent))

	dec := ipc.NewDecoder(&buf)
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestDecoderReturnsEOFWhenExhausted(t *testing.T) {
	dec := ipc.NewDecoder(bytes.NewReader(nil))
	_, err := dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderStreamsMultipleEvents(t *testing.T) {
	var buf bytes.Buffer
	enc := ipc.NewEncoder(&buf)
	require.NoError(t, enc.Encode(event.StopSpeech()))
	require.NoError(t, enc.Encode(event.Quit()))

	dec := ipc.NewDecoder(&buf)
	first, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, event.StopSpeech(), first)

	second, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, event.Quit(), second)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}
