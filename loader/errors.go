package loader

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures reported by this package.
type ErrorKind int

const (
	// The parser rejected the bytes; the message is the parser's own.
	CorruptContainer ErrorKind = iota + 1
	// A buffer or raster could not be allocated within the configured limits.
	InsufficientMemory
	// A frame's pixel encoding could not be converted to RGBA8888.
	ConversionFailure
	// An unexpected panic was caught at an entry point.
	UnhandledFault
	// Reading a file failed.
	IoFailure
)

func (k ErrorKind) String() string {
	switch k {
	case CorruptContainer:
		return "corrupt container"
	case InsufficientMemory:
		return "insufficient memory"
	case ConversionFailure:
		return "conversion failure"
	case UnhandledFault:
		return "unhandled fault"
	case IoFailure:
		return "i/o failure"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is the only error type returned by this package's entry points.
type Error struct {
	Kind ErrorKind
	// Msg is the user visible message. For CorruptContainer it is the
	// parser's diagnostic text, unmodified.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

// Sentinels for use with errors.Is; only Kind is compared.
var (
	ErrCorruptContainer   = &Error{Kind: CorruptContainer}
	ErrInsufficientMemory = &Error{Kind: InsufficientMemory}
	ErrConversionFailure  = &Error{Kind: ConversionFailure}
	ErrUnhandledFault     = &Error{Kind: UnhandledFault}
	ErrIoFailure          = &Error{Kind: IoFailure}
)

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// asError converts err into an *Error of the passed kind, unless its cause
// already is one.
func asError(kind ErrorKind, err error) *Error {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e
	}
	return &Error{Kind: kind, Err: err}
}
