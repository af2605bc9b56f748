package cache

import (
	"strings"
	"unicode"

	"github.com/odilia-app/odilia-core/internal/errs"
	"github.com/odilia-app/odilia-core/internal/key"
)

// Granularity selects the unit answered by GetStringAt. Line and any
// other granularity not listed here is always delegated to the remote
// Text interface (spec.md §4.1).
type Granularity int

const (
	Character Granularity = iota
	Word
	Paragraph
)

// Span is a half-open character-index range [Start, End) into an item's
// stored text.
type Span struct {
	Start int
	End   int
}

// GetText returns the substring of the item at k spanning [start, end)
// by character index (spec.md §4.1 get_text).
func (c *Cache) GetText(k key.Key, start, end int) (string, error) {
	c.mu.RLock()
	it, ok := c.items[k]
	c.mu.RUnlock()
	if !ok {
		return "", errs.NoItem(k)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	runes := []rune(it.text)
	if start < 0 || end > len(runes) || start > end {
		return "", errs.TextBounds(k, "range outside stored text")
	}
	return string(runes[start:end]), nil
}

// GetStringAt answers a local text query at offset under granularity
// (spec.md §4.1 get_string_at). Only Character, Word, and Paragraph are
// handled; callers must delegate any other granularity to the remote
// Text interface themselves.
func (c *Cache) GetStringAt(k key.Key, offset int, g Granularity) (string, Span, error) {
	c.mu.RLock()
	it, ok := c.items[k]
	c.mu.RUnlock()
	if !ok {
		return "", Span{}, errs.NoItem(k)
	}
	it.mu.Lock()
	text := it.text
	it.mu.Unlock()
	return stringAt(k, text, offset, g)
}

func stringAt(k key.Key, text string, offset int, g Granularity) (string, Span, error) {
	runes := []rune(text)
	switch g {
	case Character:
		if offset < 0 || offset >= len(runes) {
			return "", Span{}, errs.TextBounds(k, "character offset outside stored text")
		}
		return string(runes[offset : offset+1]), Span{offset, offset + 1}, nil
	case Word:
		if offset < 0 || offset >= len(runes) {
			return "", Span{}, errs.TextBounds(k, "word offset outside stored text")
		}
		start := offset
		for start > 0 && !unicode.IsSpace(runes[start-1]) {
			start--
		}
		end := offset
		for end < len(runes) && !unicode.IsSpace(runes[end]) {
			end++
		}
		return string(runes[start:end]), Span{start, end}, nil
	case Paragraph:
		return text, Span{0, len(runes)}, nil
	default:
		return "", Span{}, errs.TextBounds(k, "granularity not handled locally")
	}
}

// Insert computes the text that results from inserting newText into text
// at character index startPos, clipping an overshooting startPos to
// len(text) rather than failing (spec.md §4.1 text patching).
func Insert(text string, startPos int, newText string) string {
	runes := []rune(text)
	if startPos < 0 {
		startPos = 0
	}
	if startPos > len(runes) {
		startPos = len(runes)
	}
	var b strings.Builder
	b.WriteString(string(runes[:startPos]))
	b.WriteString(newText)
	b.WriteString(string(runes[startPos:]))
	return b.String()
}

// Delete computes the text that results from removing the character
// range [startPos, startPos+length) from text, clipping out-of-range
// indices rather than failing (spec.md §4.1 text patching).
func Delete(text string, startPos, length int) string {
	runes := []rune(text)
	n := len(runes)
	if startPos < 0 {
		startPos = 0
	}
	if startPos > n {
		startPos = n
	}
	end := startPos + length
	if end < startPos {
		end = startPos
	}
	if end > n {
		end = n
	}
	var b strings.Builder
	b.WriteString(string(runes[:startPos]))
	b.WriteString(string(runes[end:]))
	return b.String()
}
