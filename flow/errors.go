package flow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the structural errors that the dataflow core can
// report. All of them are configuration errors surfaced to the caller; none
// is transient or retryable.
type ErrorKind int

// The error kinds of the dataflow core.
const (
	// ErrLayoutMismatch reports that two layouts that must be
	// bit-identical are not, such as the two sides of a Cast or of an
	// elaborated connection.
	ErrLayoutMismatch ErrorKind = iota

	// ErrAmbiguousEndpoint reports that a connection omits an endpoint
	// name while the actor has more than one endpoint of that direction.
	ErrAmbiguousEndpoint

	// ErrUnresolvedAbstractActor reports that an abstract actor's
	// parameters and attached connections are insufficient to fix its
	// endpoint layouts.
	ErrUnresolvedAbstractActor

	// ErrProtocolViolation reports a breach of the strobe/acknowledge
	// handshake rules, either found statically or observed during
	// simulation.
	ErrProtocolViolation

	// ErrAbstractGraph reports that an operation requiring a physical
	// graph was attempted on an abstract one.
	ErrAbstractGraph
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLayoutMismatch:
		return "layout mismatch"
	case ErrAmbiguousEndpoint:
		return "ambiguous endpoint"
	case ErrUnresolvedAbstractActor:
		return "unresolved abstract actor"
	case ErrProtocolViolation:
		return "protocol violation"
	case ErrAbstractGraph:
		return "abstract graph"
	}

	return "unknown error"
}

// Error is a structural error of the dataflow core.
type Error struct {
	Kind ErrorKind
	msg  string
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		msg:  fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.msg
}

// IsKind reports whether err is a flow Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}

	return false
}
