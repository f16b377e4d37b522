package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/nvalcourt/jockey/internal/config"
	"github.com/nvalcourt/jockey/internal/voice"
)

// newTestListener builds a listener without touching the audio subsystem;
// only the transcription path is exercised here.
func newTestListener(endpoint string) *Listener {
	return &Listener{
		cfg: config.VoiceConfig{SampleRate: 16000},
		stt: config.STTConfig{Endpoint: endpoint, Language: "en"},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		client: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

func TestTranscribe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "audio.wav" {
			t.Errorf("filename = %q, want audio.wav", header.Filename)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language field = %q, want en", got)
		}
		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("response_format field = %q, want json", got)
		}
		fmt.Fprint(w, `{"text":" Play Daft Punk "}`)
	}))
	t.Cleanup(ts.Close)

	l := newTestListener(ts.URL)
	text, err := l.transcribe(context.Background(), []byte("fake-wav"))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != " Play Daft Punk " {
		t.Errorf("text = %q", text)
	}
	if got := normalizeTranscript(text); got != "play daft punk" {
		t.Errorf("normalized = %q, want %q", got, "play daft punk")
	}
}

func TestTranscribeServerUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // the port is now dead

	l := newTestListener(ts.URL)
	_, err := l.transcribe(context.Background(), []byte("fake-wav"))
	if !errors.Is(err, voice.ErrServiceUnavailable) {
		t.Fatalf("got %v, want ErrServiceUnavailable", err)
	}
}

func TestTranscribeServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	l := newTestListener(ts.URL)
	_, err := l.transcribe(context.Background(), []byte("fake-wav"))
	if !errors.Is(err, voice.ErrServiceUnavailable) {
		t.Fatalf("got %v, want ErrServiceUnavailable", err)
	}
}

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct{ in, want string }{
		{" Play Daft Punk ", "play daft punk"},
		{"PAUSE", "pause"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeTranscript(tt.in); got != tt.want {
			t.Errorf("normalizeTranscript(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRMS(t *testing.T) {
	if got := rms(nil); got != 0 {
		t.Errorf("rms(nil) = %v, want 0", got)
	}
	if got := rms(make([]int16, 256)); got != 0 {
		t.Errorf("rms(silence) = %v, want 0", got)
	}

	// A full-scale square wave has RMS of 1.
	loud := make([]int16, 256)
	for i := range loud {
		if i%2 == 0 {
			loud[i] = math.MaxInt16
		} else {
			loud[i] = -math.MaxInt16
		}
	}
	if got := rms(loud); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("rms(full-scale square) = %v, want 1.0", got)
	}

	quiet := make([]int16, 256)
	for i := range quiet {
		quiet[i] = math.MaxInt16 / 10
	}
	if got := rms(quiet); math.Abs(got-0.1) > 1e-3 {
		t.Errorf("rms(tenth-scale) = %v, want ~0.1", got)
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i % 100)
	}

	data, err := encodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("encodeWAV: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding wav: %v", err)
	}
	if dec.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels = %d, want 1", dec.NumChans)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i, s := range samples {
		if buf.Data[i] != int(s) {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], s)
		}
	}
}
