// Package herr defines the error taxonomy used across hotpot's components,
// so HTTP and CLI layers can map failures to exit codes / status codes
// without string-sniffing error messages.
package herr

import "fmt"

// Kind classifies an error for response-mapping purposes.
type Kind int

const (
	Internal Kind = iota
	BadInput
	NotFound
	Corruption
	IO
	Upstream
	AuthFailure
)

func (k Kind) String() string {
	switch k {
	case BadInput:
		return "bad_input"
	case NotFound:
		return "not_found"
	case Corruption:
		return "corruption"
	case IO:
		return "io"
	case Upstream:
		return "upstream"
	case AuthFailure:
		return "auth_failure"
	default:
		return "internal"
	}
}

// Error wraps an underlying cause with a Kind classification.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf constructs an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an error of the given kind wrapping an existing cause.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind of err if it (or something it wraps) is a
// *Error, defaulting to Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if asError(err, &e) {
		return e.Kind
	}
	return Internal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
