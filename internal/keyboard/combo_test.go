package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/keyboard"
)

func TestComboSetRejectsIdenticalCombo(t *testing.T) {
	cs := keyboard.NewComboSet()
	require.NoError(t, cs.Insert(keyboard.MustKeys(keyboard.KeyF), event.StopSpeech()))
	assert.Error(t, cs.Insert(keyboard.MustKeys(keyboard.KeyF), event.StopSpeech()))
}

func TestComboSetRejectsPrefixCollisionEitherDirection(t *testing.T) {
	cs := keyboard.NewComboSet()
	require.NoError(t, cs.Insert(keyboard.MustKeys(keyboard.KeyLeftShift), event.StopSpeech()))
	assert.Error(t, cs.Insert(keyboard.MustKeys(keyboard.KeyLeftShift, keyboard.KeyT), event.StopSpeech()))

	cs2 := keyboard.NewComboSet()
	require.NoError(t, cs2.Insert(keyboard.MustKeys(keyboard.KeyLeftShift, keyboard.KeyT), event.StopSpeech()))
	assert.Error(t, cs2.Insert(keyboard.MustKeys(keyboard.KeyLeftShift), event.StopSpeech()))
}

func TestComboSetAllowsDistinctNonOverlappingCombos(t *testing.T) {
	cs := keyboard.NewComboSet()
	require.NoError(t, cs.Insert(keyboard.MustKeys(keyboard.KeyLeftShift, keyboard.KeyT), event.StopSpeech()))
	assert.NoError(t, cs.Insert(keyboard.MustKeys(keyboard.KeyLeftShift, keyboard.KeyH), event.StopSpeech()))
}
