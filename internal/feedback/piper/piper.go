// Package piper implements the feedback.Backend against a Piper Wyoming
// protocol server.
//
// Spoken messages are synthesized by Piper (the linuxserver/piper
// container exposes Wyoming on TCP port 10200) and played on the default
// output device. Outcome tones are generated locally, so they work even
// when no Piper server is reachable.
//
// Wyoming protocol format (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/nvalcourt/jockey/internal/config"
	"github.com/nvalcourt/jockey/internal/feedback"
)

const (
	dialTimeout  = 10 * time.Second
	synthTimeout = 30 * time.Second

	framesPerBuffer = 1024

	toneSampleRate = 22050
	toneAmplitude  = 0.3 * math.MaxInt16

	// Tone shapes: short and high for success, longer and low for failure.
	successToneHz  = 1000.0
	successToneDur = 200 * time.Millisecond
	failureToneHz  = 500.0
	failureToneDur = 400 * time.Millisecond
)

// Backend synthesizes speech via Piper and plays audio locally.
type Backend struct {
	endpoint string
	voice    string
	log      *slog.Logger

	audioUp bool
}

var _ feedback.Backend = (*Backend)(nil)

// New initializes audio output and returns a ready backend.
func New(cfg config.PiperConfig, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	b := &Backend{
		endpoint: strings.TrimPrefix(cfg.Endpoint, "tcp://"),
		voice:    cfg.Voice,
		log:      log.With("component", "piper"),
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing audio output: %w", err)
	}
	b.audioUp = true
	return b, nil
}

// PlayTone plays the outcome tone for a finished command.
func (b *Backend) PlayTone(success bool) error {
	var samples []int16
	if success {
		samples = tonePCM(successToneHz, successToneDur)
	} else {
		samples = tonePCM(failureToneHz, failureToneDur)
	}
	return b.play(samples, toneSampleRate)
}

// Say synthesizes the message and plays it.
func (b *Backend) Say(message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), synthTimeout)
	defer cancel()

	samples, sampleRate, err := b.synthesize(ctx, message)
	if err != nil {
		return err
	}
	return b.play(samples, sampleRate)
}

// Close releases audio output.
func (b *Backend) Close() error {
	if !b.audioUp {
		return nil
	}
	b.audioUp = false
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminating audio output: %w", err)
	}
	return nil
}

// synthesize sends the text to the Wyoming server and collects the PCM
// response: audio-start → audio-chunk* → audio-stop.
func (b *Backend) synthesize(ctx context.Context, text string) ([]int16, int, error) {
	if text == "" {
		return nil, 0, fmt.Errorf("empty text for synthesis")
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", b.endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	data := map[string]any{"text": text}
	if b.voice != "" {
		data["voice"] = map[string]any{"name": b.voice}
	}
	if err := writeEvent(conn, wyomingEvent{Type: "synthesize", Data: data}, nil); err != nil {
		return nil, 0, fmt.Errorf("sending synthesize event: %w", err)
	}

	var (
		pcm        bytes.Buffer
		sampleRate = toneSampleRate
		br         = bufio.NewReader(conn)
	)
	for {
		evt, payload, err := readEvent(br)
		if err != nil {
			return nil, 0, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}

		case "audio-chunk":
			pcm.Write(payload)

		case "audio-stop":
			b.log.Debug("synthesis complete", "pcm_bytes", pcm.Len(), "rate", sampleRate)
			return pcmToSamples(pcm.Bytes()), sampleRate, nil

		case "error":
			msg := "unknown error"
			if errText, ok := evt.Data["text"].(string); ok {
				msg = errText
			}
			return nil, 0, fmt.Errorf("piper error: %s", msg)

		default:
			b.log.Debug("ignoring piper event", "type", evt.Type)
		}
	}
}

// play writes samples to the default output device.
func (b *Backend) play(samples []int16, sampleRate int) error {
	if len(samples) == 0 {
		return nil
	}

	out := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(out), &out)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(samples); off += framesPerBuffer {
		end := off + framesPerBuffer
		if end > len(samples) {
			end = len(samples)
		}
		out = out[:end-off]
		copy(out, samples[off:end])
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}
	}
	return nil
}

// tonePCM renders a sine tone at the tone sample rate.
func tonePCM(freq float64, d time.Duration) []int16 {
	n := int(toneSampleRate * d.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / toneSampleRate
		samples[i] = int16(toneAmplitude * math.Sin(2*math.Pi*freq*t))
	}
	return samples
}

// pcmToSamples converts 16-bit little-endian PCM bytes into samples.
func pcmToSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return samples
}

// --- Wyoming protocol framing ---

type wyomingEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func writeEvent(w io.Writer, evt wyomingEvent, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%d %d\n", len(jsonBytes), len(payload)); err != nil {
		return err
	}
	if _, err := w.Write(append(jsonBytes, '\n')); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func readEvent(r *bufio.Reader) (*wyomingEvent, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	var jsonLen, payloadLen int
	if _, err := fmt.Sscanf(strings.TrimSpace(header), "%d %d", &jsonLen, &payloadLen); err != nil {
		return nil, nil, fmt.Errorf("invalid wyoming header %q: %w", strings.TrimSpace(header), err)
	}

	jsonBuf := make([]byte, jsonLen+1) // event JSON plus trailing newline
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading event: %w", err)
	}
	var evt wyomingEvent
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}
