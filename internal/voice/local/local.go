// Package local implements the voice.Listener port with a local
// microphone and a whisper-server transcription endpoint.
//
// Capture gates on signal energy: recording starts when the RMS of an
// input block crosses the configured threshold and stops after the
// configured span of trailing silence. The utterance is encoded as WAV
// and posted to the transcription endpoint as multipart form data.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"github.com/nvalcourt/jockey/internal/config"
	"github.com/nvalcourt/jockey/internal/voice"
)

const (
	framesPerBuffer = 1024

	// speechWait bounds how long a single Listen call waits for speech
	// to start before giving up.
	speechWait = 5 * time.Second
)

// Listener captures from the default input device and transcribes over HTTP.
type Listener struct {
	cfg    config.VoiceConfig
	stt    config.STTConfig
	log    *slog.Logger
	client *http.Client

	audioUp bool
}

var _ voice.Listener = (*Listener)(nil)

// New initializes the audio subsystem and returns a ready listener.
func New(voiceCfg config.VoiceConfig, sttCfg config.STTConfig, log *slog.Logger) (*Listener, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &Listener{
		cfg: voiceCfg,
		stt: sttCfg,
		log: log.With("component", "voice"),
		client: &http.Client{
			Timeout: time.Duration(sttCfg.TimeoutSeconds) * time.Second,
		},
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", voice.ErrNoMicrophone, err)
	}
	l.audioUp = true
	return l, nil
}

// Name returns the backend identifier.
func (l *Listener) Name() string { return "local" }

// Close releases the audio subsystem.
func (l *Listener) Close() error {
	if !l.audioUp {
		return nil
	}
	l.audioUp = false
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminating audio: %w", err)
	}
	return nil
}

// Listen captures one utterance and returns its transcript.
func (l *Listener) Listen(ctx context.Context) (string, error) {
	samples, err := l.capture(ctx)
	if err != nil {
		return "", err
	}

	wavData, err := encodeWAV(samples, l.cfg.SampleRate)
	if err != nil {
		return "", fmt.Errorf("encoding utterance: %w", err)
	}

	text, err := l.transcribe(ctx, wavData)
	if err != nil {
		return "", err
	}

	text = normalizeTranscript(text)
	if text == "" {
		return "", voice.ErrUnintelligible
	}
	l.log.Info("recognized command", "text", text)
	return text, nil
}

// capture records from the default input device until trailing silence
// or the utterance cap is reached.
func (l *Listener) capture(ctx context.Context) ([]int16, error) {
	in := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(l.cfg.SampleRate), len(in), in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", voice.ErrNoMicrophone, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", voice.ErrNoMicrophone, err)
	}
	defer stream.Stop()

	var (
		samples    []int16
		heard      bool
		quietSince time.Time
		started    = time.Now()
	)
	silence := time.Duration(l.cfg.SilenceTimeoutMs) * time.Millisecond
	maxUtterance := time.Duration(l.cfg.MaxUtteranceSeconds) * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading audio stream: %w", err)
		}

		level := rms(in)
		if !heard {
			if level >= l.cfg.SilenceThreshold {
				heard = true
				samples = append(samples, in...)
				continue
			}
			if time.Since(started) > speechWait {
				return nil, voice.ErrNoSpeech
			}
			continue
		}

		samples = append(samples, in...)

		if level < l.cfg.SilenceThreshold {
			if quietSince.IsZero() {
				quietSince = time.Now()
			} else if time.Since(quietSince) > silence {
				return samples, nil
			}
		} else {
			quietSince = time.Time{}
		}

		if time.Since(started) > maxUtterance {
			l.log.Debug("utterance cap reached", "samples", len(samples))
			return samples, nil
		}
	}
}

// transcribe posts the WAV utterance to the whisper-server endpoint.
func (l *Listener) transcribe(ctx context.Context, wavData []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if l.stt.Language != "" {
		_ = writer.WriteField("language", l.stt.Language)
	}
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.stt.Endpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", voice.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		l.log.Error("transcription failed", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("%w: status %d", voice.ErrServiceUnavailable, resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", voice.ErrServiceUnavailable, err)
	}
	return result.Text, nil
}

// normalizeTranscript lowercases and trims a raw transcript so router
// matching behaves the same for spoken and typed commands.
func normalizeTranscript(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// rms computes the normalized root mean square of a sample block.
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// encodeWAV renders mono 16-bit samples as a WAV file. The encoder needs
// a seekable writer for its header fixup, so it goes through a temp file.
func encodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	f, err := os.CreateTemp("", "jockey-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return nil, fmt.Errorf("encoding wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalizing wav: %w", err)
	}

	return os.ReadFile(f.Name())
}
