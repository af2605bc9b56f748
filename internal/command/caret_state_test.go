package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odilia-app/odilia-core/internal/command"
)

func TestCaretStateStartsAtZero(t *testing.T) {
	s := command.NewCaretState()
	assert.Equal(t, 0, s.Offset())
}

func TestCaretStateSetUpdatesOffset(t *testing.T) {
	s := command.NewCaretState()
	s.Set(42)
	assert.Equal(t, 42, s.Offset())
}
