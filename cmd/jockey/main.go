// Jockey is a voice-and-text remote control daemon for Spotify playback.
//
// Free-form commands arrive over HTTP or from the microphone loop, pass
// through a rule-based router, and drive the player through the Spotify
// Web API. Results are announced with confirmation tones and, for voice
// commands, synthesized speech.
//
// Usage:
//
//	jockey [flags]
//	jockey --config /path/to/jockey.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nvalcourt/jockey/internal/config"
	"github.com/nvalcourt/jockey/internal/dispatch"
	"github.com/nvalcourt/jockey/internal/feedback"
	piperfeedback "github.com/nvalcourt/jockey/internal/feedback/piper"
	"github.com/nvalcourt/jockey/internal/health"
	"github.com/nvalcourt/jockey/internal/player/spotify"
	"github.com/nvalcourt/jockey/internal/router"
	"github.com/nvalcourt/jockey/internal/transport"
	httptransport "github.com/nvalcourt/jockey/internal/transport/http"
	localvoice "github.com/nvalcourt/jockey/internal/voice/local"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
)

// @title        jockey API
// @version      1.0
// @description  Rule-based natural-language remote control for Spotify playback.

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/jockey.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("jockey %s (%s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("jockey starting", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Connect and verify the Spotify session before accepting commands.
	spotifyPlayer := spotify.New(cfg.Spotify, slog.Default())
	if err := spotifyPlayer.Authenticate(ctx); err != nil {
		slog.Error("spotify authentication failed", "error", err)
		os.Exit(1)
	}
	user, err := spotifyPlayer.CurrentUser(ctx)
	if err != nil {
		slog.Error("spotify session verification failed", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to spotify", "user", user)

	// Audible feedback: queued tone + speech worker, or a no-op sink.
	var sink feedback.Sink = feedback.Noop{}
	if cfg.Feedback.Enabled {
		switch cfg.Feedback.Backend {
		case "piper":
			backend, err := piperfeedback.New(cfg.Feedback.Piper, slog.Default())
			if err != nil {
				slog.Warn("audible feedback disabled", "error", err)
			} else {
				sink = feedback.NewQueued(backend, slog.Default())
			}
		default:
			slog.Error("unknown feedback backend", "backend", cfg.Feedback.Backend)
			os.Exit(1)
		}
	}

	rtr := router.New(spotifyPlayer, slog.Default())
	dispatcher := dispatch.New(rtr, sink, slog.Default())

	// Initialize enabled ingresses.
	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, spotifyPlayer))
	}
	if len(transports) == 0 && !cfg.Voice.Enabled {
		slog.Error("no ingress enabled — enable the http transport or voice input")
		os.Exit(1)
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Voice loop: a missing microphone degrades to HTTP-only operation.
	var listener *localvoice.Listener
	if cfg.Voice.Enabled {
		listener, err = localvoice.New(cfg.Voice, cfg.STT, slog.Default())
		if err != nil {
			slog.Warn("voice input disabled", "error", err)
			listener = nil
		} else {
			loop := dispatch.NewVoiceLoop(dispatcher, listener, slog.Default())
			wg.Add(1)
			go func() {
				defer wg.Done()
				loop.Run(ctx)
			}()
		}
	}

	healthServer.SetReady(true)
	slog.Info("jockey ready",
		"transports", len(transports),
		"voice", listener != nil,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}
	wg.Wait()

	// Audio resources go down only after their goroutines have stopped.
	if listener != nil {
		if err := listener.Close(); err != nil {
			slog.Error("voice listener close error", "error", err)
		}
	}
	if err := sink.Close(); err != nil {
		slog.Error("feedback close error", "error", err)
	}

	slog.Info("jockey stopped")
}
