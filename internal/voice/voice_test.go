package voice_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nvalcourt/jockey/internal/voice"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no microphone", voice.ErrNoMicrophone, "Microphone not found or not accessible."},
		{"no speech", voice.ErrNoSpeech, "No speech detected. Please try again."},
		{"unintelligible", voice.ErrUnintelligible, "Could not understand audio."},
		{"service unavailable", voice.ErrServiceUnavailable, "Speech recognition service unavailable."},
		{
			"wrapped sentinel",
			fmt.Errorf("%w: connection refused", voice.ErrServiceUnavailable),
			"Speech recognition service unavailable.",
		},
		{"unknown error", errors.New("boom"), "Unexpected error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := voice.Message(tt.err); got != tt.want {
				t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
