package player

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a lookup matched nothing. It is a normal outcome
// for PlaylistByName, not a backend failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input rejected before any remote call.
// Its message is shown to the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SearchError reports a failed or empty search. Cause is nil when the
// backend answered normally but returned zero items.
type SearchError struct {
	Query string
	Cause error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Search failed: %v", e.Cause)
	}
	return "No results found for: " + e.Query
}

func (e *SearchError) Unwrap() error { return e.Cause }

// PlaybackErrorKind classifies why the remote player rejected an operation.
type PlaybackErrorKind string

const (
	// PlaybackNoDevice means no active playback device was available.
	PlaybackNoDevice PlaybackErrorKind = "no_device"

	// PlaybackPremiumRequired means the account lacks the required
	// subscription tier for the operation.
	PlaybackPremiumRequired PlaybackErrorKind = "premium_required"

	// PlaybackForbidden is a 403 rejection that is not a premium issue.
	PlaybackForbidden PlaybackErrorKind = "forbidden"

	// PlaybackGeneric covers every other rejection.
	PlaybackGeneric PlaybackErrorKind = "generic"
)

// PlaybackError reports a rejected playback operation. Error() produces the
// user-facing message, so the router can surface it without rewording.
type PlaybackError struct {
	// Action is the human-readable phrase for the attempted operation,
	// e.g. "pause playback".
	Action string

	Kind  PlaybackErrorKind
	Cause error
}

func (e *PlaybackError) Error() string {
	switch e.Kind {
	case PlaybackNoDevice:
		return "No active Spotify device found. Please open Spotify."
	case PlaybackPremiumRequired:
		return "This action requires a Spotify Premium account."
	case PlaybackForbidden:
		return fmt.Sprintf("Playback forbidden: %v", e.Cause)
	}
	return fmt.Sprintf("Failed to %s: %v", e.Action, e.Cause)
}

func (e *PlaybackError) Unwrap() error { return e.Cause }

// AuthError reports a failure to establish or verify the remote session.
type AuthError struct {
	Op    string
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication: %s: %v", e.Op, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }
