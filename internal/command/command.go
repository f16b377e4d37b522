// Package command defines the core data types flowing through the jockey pipeline.
package command

import (
	"fmt"
	"time"
)

// Source identifies which ingress path produced a request.
type Source string

const (
	// SourceHTTP marks requests submitted through the HTTP transport.
	SourceHTTP Source = "http"

	// SourceVoice marks requests transcribed from the microphone loop.
	SourceVoice Source = "voice"
)

// Request represents a single raw command on its way to the router.
type Request struct {
	// ID is a unique identifier for this request (UUID). Transports assign
	// one when the caller does not supply it.
	ID string `json:"id"`

	// Text is the free-form command, typed or transcribed.
	Text string `json:"text"`

	// Source identifies the ingress path ("http", "voice").
	Source Source `json:"source,omitempty"`

	// Timestamp is when the request entered the pipeline.
	Timestamp time.Time `json:"timestamp"`
}

// Result is the uniform outcome of one router invocation.
//
// Every execution produces exactly one Result; failures of any kind
// (validation, search, playback, internal) are folded into
// Success=false with a short human-readable message. Callers never
// see an error value from the router.
type Result struct {
	// Success reports whether the command took effect.
	Success bool `json:"success"`

	// Message is the human-readable confirmation or failure text,
	// suitable for display and for speech synthesis.
	Message string `json:"message"`
}

// OK builds a successful Result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// OKf builds a successful Result with a formatted message.
func OKf(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failed Result.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// Failf builds a failed Result with a formatted message.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
