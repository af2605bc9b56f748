package testsupport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/speech"
	"github.com/odilia-app/odilia-core/internal/testsupport"
)

func TestFakeSpeechConnRecordsLinesWrittenBySink(t *testing.T) {
	conn := testsupport.NewFakeSpeechConn()
	sink := speech.NewSink(conn.Dialer())

	sink.Speak("hello")
	sink.Quit()

	assert.Equal(t, []string{"SPEAK", "hello", "."}, conn.Lines())
	assert.True(t, conn.Closed())
}

func TestFakeSpeechConnLinesIsASafeCopy(t *testing.T) {
	conn := testsupport.NewFakeSpeechConn()
	require.NoError(t, conn.WriteLine("one"))

	lines := conn.Lines()
	lines[0] = "mutated"

	assert.Equal(t, []string{"one"}, conn.Lines())
}
