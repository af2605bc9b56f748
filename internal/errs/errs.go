// Package errs defines Odilia's closed error sum (spec.md §7). Handlers
// and the pipeline switch on these via errors.As/errors.Is; PredicateFailure
// and ServiceNotFound are normal control flow, not user-visible failures.
package errs

import (
	"fmt"

	"github.com/odilia-app/odilia-core/internal/key"
)

// Code categorizes a CacheError.
type Code int

const (
	// CodeNoItem is a lookup miss when a hit was required.
	CodeNoItem Code = iota
	// CodeTextBounds is a text offset outside the stored string.
	CodeTextBounds
	// CodeDuplicateItem signals a consistency violation during update.
	CodeDuplicateItem
	// CodeInvalidated signals the referenced item was removed mid-operation.
	CodeInvalidated
	// CodeMoreData is a partial success: the cache is consistent only if
	// the additional keys named by CacheError.Keys are also cached.
	CodeMoreData
)

func (c Code) String() string {
	switch c {
	case CodeNoItem:
		return "NoItem"
	case CodeTextBounds:
		return "TextBoundsError"
	case CodeDuplicateItem:
		return "DuplicateItem"
	case CodeInvalidated:
		return "Invalidated"
	case CodeMoreData:
		return "MoreData"
	default:
		return fmt.Sprintf("CacheError(%d)", int(c))
	}
}

// CacheError is the cache's error type (spec.md §4.1, §7).
type CacheError struct {
	Code Code
	Key  key.Key
	Keys []key.Key // populated for CodeMoreData
	msg  string
}

func (e *CacheError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.msg, e.Key)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Key)
}

// NoItem builds a CodeNoItem CacheError for k.
func NoItem(k key.Key) *CacheError {
	return &CacheError{Code: CodeNoItem, Key: k}
}

// TextBounds builds a CodeTextBounds CacheError describing an out-of-range
// text query against k.
func TextBounds(k key.Key, msg string) *CacheError {
	return &CacheError{Code: CodeTextBounds, Key: k, msg: msg}
}

// DuplicateItem builds a CodeDuplicateItem CacheError for k.
func DuplicateItem(k key.Key) *CacheError {
	return &CacheError{Code: CodeDuplicateItem, Key: k}
}

// Invalidated builds a CodeInvalidated CacheError for k.
func Invalidated(k key.Key) *CacheError {
	return &CacheError{Code: CodeInvalidated, Key: k}
}

// MoreData builds a CodeMoreData CacheError: the operation on k left the
// cache consistent only if keys are also present.
func MoreData(k key.Key, keys []key.Key) *CacheError {
	return &CacheError{Code: CodeMoreData, Key: k, Keys: keys}
}

// PredicateFailure reports that an event did not match a handler's
// predicate. This is normal control flow (spec.md §7): handlers return it
// to signal "nothing to do here", not a user-visible error.
type PredicateFailure struct{ Msg string }

func (e *PredicateFailure) Error() string { return "predicate failure: " + e.Msg }

// ServiceNotFound reports that no handler is registered for an event or
// command variant. Normal: traced, not surfaced to the user.
type ServiceNotFound struct{ What string }

func (e *ServiceNotFound) Error() string { return "no handler registered for " + e.What }

// PrimitiveConversionError reports a malformed object reference received
// from the wire (e.g. an empty bus name).
type PrimitiveConversionError struct{ Msg string }

func (e *PrimitiveConversionError) Error() string { return "malformed accessible reference: " + e.Msg }

// AtspiError wraps a transport failure returned by the AT-SPI provider.
type AtspiError struct{ Cause error }

func (e *AtspiError) Error() string { return "atspi transport error: " + e.Cause.Error() }
func (e *AtspiError) Unwrap() error { return e.Cause }

// InterfaceNotFound reports that an accessible does not implement the
// interface a proxy conversion was requested for (spec.md §6
// "conversion... otherwise the call fails with InterfaceNotFound").
type InterfaceNotFound struct {
	Key   key.Key
	Iface string
}

func (e *InterfaceNotFound) Error() string {
	return fmt.Sprintf("interface %s not found on %s", e.Iface, e.Key)
}
