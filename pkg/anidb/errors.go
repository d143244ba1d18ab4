package anidb

import (
	"errors"
	"fmt"
)

var (
	// ErrShortReply is returned when a datagram has fewer than 5 bytes,
	// too short to contain a 3-digit code and a separator.
	ErrShortReply = errors.New("anidb: reply less than 5 chars")

	// ErrNoSuchFile is returned by FileFromHash when the server replies
	// with code 320 (no matching file).
	ErrNoSuchFile = errors.New("anidb: no such file")

	// ErrNotLoggedIn is returned by an authenticated call made before
	// Login. The original implementation silently sent an empty session
	// token in this case; this is a programmer error and is rejected
	// here instead.
	ErrNotLoggedIn = errors.New("anidb: not logged in")
)

// ProtocolError means the server's reply was well-formed at the transport
// layer (parseable code + payload) but violated a higher-level protocol
// expectation.
type ProtocolError struct {
	Msg string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("anidb: protocol error: %s: %v", e.Msg, e.Err)
	}
	return "anidb: protocol error: " + e.Msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ErrorCodeError means the server returned a recognized but non-success
// status code.
type ErrorCodeError struct {
	Code int32
	Data string
}

func (e *ErrorCodeError) Error() string {
	return fmt.Sprintf("anidb: server error %d: %s", e.Code, e.Data)
}

// AmbiguousMatchError means a FILE query matched more than one file
// (server code 322). Candidates holds whatever numeric ids could be
// parsed out of the reply payload; Raw holds the payload verbatim, since
// the exact shape of a 322 reply isn't documented.
type AmbiguousMatchError struct {
	Candidates []uint32
	Raw        string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("anidb: ambiguous match: %d candidate(s)", len(e.Candidates))
}
