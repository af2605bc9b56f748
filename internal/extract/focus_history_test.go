package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/key"
)

func TestFocusHistoryLastReturnsFalseWhenEmpty(t *testing.T) {
	h := extract.NewFocusHistory(16)
	_, ok := h.Last()
	assert.False(t, ok)
}

func TestFocusHistoryRecordsInOrder(t *testing.T) {
	h := extract.NewFocusHistory(16)
	a := key.New("org.a", "/a")
	b := key.New("org.a", "/b")
	h.Record(a)
	h.Record(b)

	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, b, last)
	assert.Equal(t, []key.Key{a, b}, h.Recent())
}

func TestFocusHistoryEvictsOldestBeyondCapacity(t *testing.T) {
	h := extract.NewFocusHistory(2)
	a := key.New("org.a", "/a")
	b := key.New("org.a", "/b")
	c := key.New("org.a", "/c")
	h.Record(a)
	h.Record(b)
	h.Record(c)

	assert.Equal(t, []key.Key{b, c}, h.Recent())
}

func TestFocusHistoryZeroCapacityDisablesRetention(t *testing.T) {
	h := extract.NewFocusHistory(0)
	h.Record(key.New("org.a", "/a"))
	assert.Empty(t, h.Recent())
	_, ok := h.Last()
	assert.False(t, ok)
}
