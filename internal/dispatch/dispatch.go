// Package dispatch serializes command execution and fans results out to
// the feedback sink.
//
// Transports and the voice loop both funnel through Handle, which holds
// a mutex for the duration of the router call: the player is one shared
// playback session, and overlapping mutations race on the active device.
// Feedback is emitted strictly after the result is known; spoken
// feedback is reserved for voice-sourced requests.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvalcourt/jockey/internal/command"
	"github.com/nvalcourt/jockey/internal/feedback"
	"github.com/nvalcourt/jockey/internal/voice"
)

// captureBackoff paces the voice loop after a capture failure so a dead
// microphone does not spin the loop hot.
const captureBackoff = 2 * time.Second

// Executor runs one interpreted command to completion.
type Executor interface {
	Execute(ctx context.Context, raw string) command.Result
}

// Dispatcher funnels requests from every ingress into the executor one
// at a time and reports each outcome through the feedback sink.
type Dispatcher struct {
	exec Executor
	sink feedback.Sink
	log  *slog.Logger

	mu sync.Mutex // serializes executor calls across ingresses
}

// New creates a Dispatcher. A nil sink disables feedback.
func New(exec Executor, sink feedback.Sink, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = feedback.Noop{}
	}
	return &Dispatcher{
		exec: exec,
		sink: sink,
		log:  log.With("component", "dispatch"),
	}
}

// Handle executes one request and emits feedback for its result.
// This function is handed to each transport as its request handler.
func (d *Dispatcher) Handle(ctx context.Context, req command.Request) command.Result {
	start := time.Now()

	d.mu.Lock()
	res := d.exec.Execute(ctx, req.Text)
	d.mu.Unlock()

	d.log.Info("command handled",
		"id", req.ID,
		"source", req.Source,
		"success", res.Success,
		"duration_ms", time.Since(start).Milliseconds())

	d.sink.Notify(res.Success)
	if req.Source == command.SourceVoice {
		d.sink.Speak(res.Message)
	}
	return res
}

// VoiceLoop drives the microphone: capture a transcript, dispatch it,
// repeat until the context is cancelled.
type VoiceLoop struct {
	dispatcher *Dispatcher
	listener   voice.Listener
	log        *slog.Logger
	backoff    time.Duration
}

// NewVoiceLoop creates a VoiceLoop around the dispatcher and listener.
func NewVoiceLoop(d *Dispatcher, l voice.Listener, log *slog.Logger) *VoiceLoop {
	if log == nil {
		log = slog.Default()
	}
	return &VoiceLoop{
		dispatcher: d,
		listener:   l,
		log:        log.With("component", "voice"),
		backoff:    captureBackoff,
	}
}

// Run blocks until ctx is cancelled. Silence restarts the capture
// immediately; any other capture failure is reported through the
// feedback sink and followed by a short backoff.
func (v *VoiceLoop) Run(ctx context.Context) {
	v.log.Info("voice loop started", "listener", v.listener.Name())
	for {
		if ctx.Err() != nil {
			v.log.Info("voice loop stopped")
			return
		}

		transcript, err := v.listener.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				v.log.Info("voice loop stopped")
				return
			}
			if errors.Is(err, voice.ErrNoSpeech) {
				// Silence is idle time, not a failure.
				v.log.Debug("no speech detected")
				continue
			}
			v.reportCaptureError(ctx, err)
			continue
		}

		req := command.Request{
			ID:        uuid.NewString(),
			Text:      transcript,
			Source:    command.SourceVoice,
			Timestamp: time.Now().UTC(),
		}
		v.log.Info("voice command captured", "id", req.ID, "text", transcript)
		v.dispatcher.Handle(ctx, req)
	}
}

// reportCaptureError surfaces a capture failure the same way a failed
// command is surfaced, then waits out the backoff.
func (v *VoiceLoop) reportCaptureError(ctx context.Context, err error) {
	v.log.Error("voice capture failed", "error", err)
	v.dispatcher.sink.Notify(false)
	v.dispatcher.sink.Speak(voice.Message(err))

	select {
	case <-ctx.Done():
	case <-time.After(v.backoff):
	}
}
