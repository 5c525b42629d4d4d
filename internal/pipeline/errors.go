package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind uint8

const (
	// KindInput means the source could not be read or decoded.
	KindInput Kind = iota + 1
	// KindResource means the output could not be produced or stored.
	KindResource
	// KindPrecondition means the request itself is invalid. These are
	// detected before any file is touched.
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindResource:
		return "resource"
	case KindPrecondition:
		return "precondition"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinels for errors.Is matching against an *Error's Kind.
var (
	ErrInput        = errors.New("input error")
	ErrResource     = errors.New("resource error")
	ErrPrecondition = errors.New("precondition failed")
)

// Error is returned by every failing pipeline run.
type Error struct {
	Kind Kind
	Op   string // stage that failed: "options", "decode", "resample", "encode"
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInput:
		return e.Kind == KindInput
	case ErrResource:
		return e.Kind == KindResource
	case ErrPrecondition:
		return e.Kind == KindPrecondition
	}
	return false
}

func inputError(op string, err error) error {
	return &Error{Kind: KindInput, Op: op, Err: err}
}

func resourceError(op string, err error) error {
	return &Error{Kind: KindResource, Op: op, Err: err}
}

func preconditionError(op, format string, args ...any) error {
	return &Error{Kind: KindPrecondition, Op: op, Err: fmt.Errorf(format, args...)}
}
