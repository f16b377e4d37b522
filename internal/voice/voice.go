// Package voice defines the spoken-command capture port.
package voice

import (
	"context"
	"errors"
	"fmt"
)

// Listener captures one spoken command at a time.
type Listener interface {
	// Listen blocks until an utterance has been captured and transcribed,
	// or ctx is cancelled. Transcripts are lowercased and trimmed.
	Listen(ctx context.Context) (string, error)

	// Name returns the backend identifier.
	Name() string

	// Close releases capture resources.
	Close() error
}

// Capture failure conditions with distinct user-facing treatment.
var (
	ErrNoMicrophone       = errors.New("microphone not available")
	ErrNoSpeech           = errors.New("no speech detected")
	ErrUnintelligible     = errors.New("unintelligible audio")
	ErrServiceUnavailable = errors.New("transcription service unavailable")
)

// Message renders a Listen failure as the phrase reported to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoMicrophone):
		return "Microphone not found or not accessible."
	case errors.Is(err, ErrNoSpeech):
		return "No speech detected. Please try again."
	case errors.Is(err, ErrUnintelligible):
		return "Could not understand audio."
	case errors.Is(err, ErrServiceUnavailable):
		return "Speech recognition service unavailable."
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}
