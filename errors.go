package xwire

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseErrorKind classifies display-specifier parse failures.
type ParseErrorKind int

const (
	// IllFormatted marks a structurally broken specifier, such as an
	// unparsable display or screen number.
	IllFormatted ParseErrorKind = iota
	// UnrecognizedProtocol marks a protocol token outside the recognized
	// set (tcp, inet, inet6, unix).
	UnrecognizedProtocol
)

// ParseError reports a display specifier that could not be parsed.
type ParseError struct {
	Kind  ParseErrorKind
	Input string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnrecognizedProtocol:
		return fmt.Sprintf("unrecognized protocol in display %q", e.Input)
	}
	return fmt.Sprintf("ill-formatted display %q", e.Input)
}

// SetupFailure reports that the server declined the connection during the
// handshake. Connect returns it; there is no local retry.
type SetupFailure struct {
	Reason        string
	ProtocolMajor uint16
	ProtocolMinor uint16
}

func (e *SetupFailure) Error() string {
	return fmt.Sprintf("connection setup failed (protocol %d.%d): %s",
		e.ProtocolMajor, e.ProtocolMinor, e.Reason)
}

// AuthenticateError reports that the server requires authorization data
// that was not supplied, or that the supplied data was not accepted.
type AuthenticateError struct {
	Reason string
}

func (e *AuthenticateError) Error() string {
	return fmt.Sprintf("server requires further authentication: %s", e.Reason)
}

var (
	// ErrConnectionReset is returned by ReadFrame when the stream ends
	// while a partial frame is still buffered. The client cannot be
	// reused after it.
	ErrConnectionReset = errors.New("connection reset by peer: stream ended mid-frame")

	// ErrDECnetUnsupported is returned for DECnet display specifiers.
	// The failure is explicit rather than a silent fallback.
	ErrDECnetUnsupported = errors.New("decnet displays are not supported")

	// ErrBadFrame reports a malformed frame: on the send path, a request
	// whose payload does not match its declared block length.
	ErrBadFrame = errors.New("malformed frame")
)

// errIncomplete signals that the receive buffer does not yet hold a whole
// frame. It never escapes the read loop; it means "read more and retry".
var errIncomplete = errors.New("incomplete frame")
