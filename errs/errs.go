// Package errs defines the fixed error taxonomy shared by every
// subsystem. Every fatal-to-the-query or fatal-to-the-run failure in
// this repository carries one of these kinds so callers can dispatch
// on Kind instead of matching strings.
package errs

import "fmt"

type Kind int

const (
	ParameterMissing Kind = iota
	ParameterMalformed
	IndexUnavailable
	UnknownField
	UnknownDocid
	QueryParseError
	UnsupportedOperator
	ScoringInvariantViolated
	IOError
)

func (k Kind) String() string {
	switch k {
	case ParameterMissing:
		return "ParameterMissing"
	case ParameterMalformed:
		return "ParameterMalformed"
	case IndexUnavailable:
		return "IndexUnavailable"
	case UnknownField:
		return "UnknownField"
	case UnknownDocid:
		return "UnknownDocid"
	case QueryParseError:
		return "QueryParseError"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case ScoringInvariantViolated:
		return "ScoringInvariantViolated"
	case IOError:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// FatalToQuery reports whether an error of this kind should abort only
// the current query (emitting the placeholder record) rather than the
// whole run.
func (k Kind) FatalToQuery() bool {
	switch k {
	case QueryParseError, UnsupportedOperator, ScoringInvariantViolated:
		return true
	default:
		return false
	}
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
