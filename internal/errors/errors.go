package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error] so callers can branch on it without string matching.
type Kind uint8

const (
	KindInternal Kind = iota
	// The identity (feed url or post guid) could not be turned into a key.
	KindInvalidIdentity
	// The backing store could not be reached or a batch did not complete.
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentity:
		return "invalid identity"
	case KindStorageUnavailable:
		return "storage unavailable"
	default:
		return "internal"
	}
}

// Input is the raw identity that was being processed when the error happened.
type Input string

// Error represents a universal error type for the store.
type Error struct {
	Kind  Kind
	Input string
	Err   error // The error this wraps
}

// Sentinels for use with [errors.Is]. They match any *Error of the same kind.
var (
	ErrInvalidIdentity    = &Error{Kind: KindInvalidIdentity}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if e.Input != "" {
		return fmt.Sprintf("%s (input %q): %s", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// E builds an [Error] out of whatever it's given: a string or error becomes
// the wrapped error, a [Kind] sets the kind and an [Input] records the identity.
func E(args ...any) *Error {
	ret := &Error{
		Kind: KindInternal,
		Err:  nil,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			ret.Err = errors.New(arg)
		case error:
			ret.Err = arg
		case Kind:
			ret.Kind = arg
		case Input:
			ret.Input = string(arg)
		}
	}

	return ret
}
