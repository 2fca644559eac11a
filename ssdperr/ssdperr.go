// Package ssdperr defines the error taxonomy the engine's outer
// collaborators (transport setup, sends, query target validation) raise,
// grounded on the teacher's pattern of wrapping a sentinel Kind with
// fmt.Errorf's %w so callers can still errors.Is/errors.As through a
// log line (see internal/upnp/http.go's error wrapping around its HTTP
// handlers). A silently dropped packet is never an error value: the
// classifier already reports that with a plain bool (SPEC_FULL.md §4.2).
package ssdperr

import (
	"errors"
	"fmt"
)

// Kind discriminates the class of failure without requiring string
// matching on Error().
type Kind int

const (
	// OK is the zero value; never attached to a real Error.
	OK Kind = iota
	// TransportSetup covers failures opening or joining a socket.
	TransportSetup
	// TransportSend covers failures writing a datagram.
	TransportSend
	// InvalidSearchTarget covers a caller-supplied ST that does not
	// parse into one of the three recognized shapes.
	InvalidSearchTarget
)

func (k Kind) String() string {
	switch k {
	case TransportSetup:
		return "transport setup"
	case TransportSend:
		return "transport send"
	case InvalidSearchTarget:
		return "invalid search target"
	default:
		return "ok"
	}
}

// Error pairs a Kind with the underlying cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ssdp: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("ssdp: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error. err may be nil when the failure has no further
// underlying cause (e.g. a malformed search target supplied by a caller).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind, so callers can
// write ssdperr.Is(err, ssdperr.InvalidSearchTarget) without a type
// assertion of their own.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
