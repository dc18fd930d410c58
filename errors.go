package phylodm

import (
	"errors"
	"fmt"
)

// Kind classifies the distinct ways a phylodm operation can fail.
type Kind int

const (
	// MalformedTree means the input tree has no well-defined root, contains
	// a cycle, or is not connected.
	MalformedTree Kind = iota
	// UnlabeledLeaf means a leaf node carries no taxon label.
	UnlabeledLeaf
	// DuplicateTaxon means two leaves share a taxon label.
	DuplicateTaxon
	// MissingEdgeWeight means a non-root node lacks an edge weight in
	// patristic mode.
	MissingEdgeWeight
	// InvalidEdgeWeight means an edge weight is negative or non-finite.
	InvalidEdgeWeight
	// UnknownKey means a query or set referenced a taxon absent from the
	// index table.
	UnknownKey
	// UnknownMethod means a method string other than "pd" or "node" was
	// requested.
	UnknownMethod
	// IO means an underlying read or write failed.
	IO
	// CorruptStore means a loaded file is missing a required dataset or has
	// a dimension mismatch.
	CorruptStore
)

func (k Kind) String() string {
	switch k {
	case MalformedTree:
		return "MalformedTree"
	case UnlabeledLeaf:
		return "UnlabeledLeaf"
	case DuplicateTaxon:
		return "DuplicateTaxon"
	case MissingEdgeWeight:
		return "MissingEdgeWeight"
	case InvalidEdgeWeight:
		return "InvalidEdgeWeight"
	case UnknownKey:
		return "UnknownKey"
	case UnknownMethod:
		return "UnknownMethod"
	case IO:
		return "IO"
	case CorruptStore:
		return "CorruptStore"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every exported phylodm operation.
// Callers distinguish failure modes with errors.As and Error.Kind, or with
// KindOf.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("phylodm: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("phylodm: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(k Kind, msg string) error {
	return &Error{Kind: k, Msg: msg}
}

func newErrf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(k Kind, msg string, cause error) error {
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

// KindOf reports the Kind of err if it (or something it wraps) is a *Error,
// and ok=false otherwise.
func KindOf(err error) (k Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
