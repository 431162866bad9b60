package rwf

import (
	"errors"
	"fmt"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// Code is the result taxonomy shared by every encode and decode call.
// EndOfContainer, BlankData and NoData are status sentinels in the manner
// of io.EOF; the rest are failures.
type Code int

const (
	Success Code = iota
	EndOfContainer
	BlankData
	NoData
	IncompleteData
	InvalidArgument
	BufferTooSmall
	Failure
	DepthExceeded
)

var codeNames = [...]string{
	Success:         "success",
	EndOfContainer:  "end of container",
	BlankData:       "blank data",
	NoData:          "no data",
	IncompleteData:  "incomplete data",
	InvalidArgument: "invalid argument",
	BufferTooSmall:  "buffer too small",
	Failure:         "failure",
	DepthExceeded:   "nesting depth exceeded",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeNames[c]
}

func (c Code) Error() string { return "rwf: " + c.String() }

// IsStatus reports whether c signals a normal decode outcome rather than
// a failure.
func (c Code) IsStatus() bool {
	return c == Success || c == EndOfContainer || c == BlankData || c == NoData
}

// Error carries the operation and free-text detail behind a Code.
type Error struct {
	Code   Code
	Op     string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rwf: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("rwf: %s: %s (%s)", e.Op, e.Detail, e.Code)
}

func (e *Error) Unwrap() error { return e.Code }

func errorf(code Code, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf maps err onto the taxonomy. nil is Success; unknown errors are
// Failure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return Failure
}

// fromWire translates wire package errors into the taxonomy.
func fromWire(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, wire.ErrEndOfData):
		return &Error{Code: IncompleteData, Op: op, Detail: err.Error()}
	case errors.Is(err, wire.ErrShortBuffer):
		return &Error{Code: BufferTooSmall, Op: op, Detail: err.Error()}
	case errors.Is(err, wire.ErrOutOfRange):
		return &Error{Code: InvalidArgument, Op: op, Detail: err.Error()}
	default:
		return &Error{Code: Failure, Op: op, Detail: err.Error()}
	}
}
