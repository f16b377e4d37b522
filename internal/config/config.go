// Package config handles loading and validating the jockey configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the jockey daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Spotify    SpotifyConfig    `mapstructure:"spotify"`
	STT        STTConfig        `mapstructure:"stt"`
	Voice      VoiceConfig      `mapstructure:"voice"`
	Feedback   FeedbackConfig   `mapstructure:"feedback"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// SpotifyConfig holds the Spotify Web API credentials and token cache.
type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	TokenFile    string `mapstructure:"token_file"`
}

// STTConfig holds speech-to-text settings for the voice listener.
type STTConfig struct {
	Endpoint       string `mapstructure:"endpoint"` // whisper-server inference endpoint
	Language       string `mapstructure:"language"` // ISO-639-1 hint (e.g., "en")
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// VoiceConfig configures microphone capture for the voice command loop.
type VoiceConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	SampleRate          int     `mapstructure:"sample_rate"`
	SilenceThreshold    float64 `mapstructure:"silence_threshold"` // RMS below this counts as silence
	SilenceTimeoutMs    int     `mapstructure:"silence_timeout_ms"`
	MaxUtteranceSeconds int     `mapstructure:"max_utterance_seconds"`
}

// FeedbackConfig selects and configures the audible feedback backend.
type FeedbackConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Backend string      `mapstructure:"backend"` // "piper"
	Piper   PiperConfig `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Wyoming TCP endpoint (host:port)
	Voice    string `mapstructure:"voice"`    // Piper voice model name, empty for server default
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./jockey.yaml, ./configs/jockey.yaml, /etc/jockey/jockey.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("spotify.redirect_url", "http://localhost:8888/callback")
	v.SetDefault("spotify.token_file", ".jockey-token.json")
	v.SetDefault("stt.endpoint", "http://localhost:8000/inference")
	v.SetDefault("stt.language", "en")
	v.SetDefault("stt.timeout_seconds", 30)
	v.SetDefault("voice.enabled", false)
	v.SetDefault("voice.sample_rate", 16000)
	v.SetDefault("voice.silence_threshold", 0.015)
	v.SetDefault("voice.silence_timeout_ms", 1200)
	v.SetDefault("voice.max_utterance_seconds", 15)
	v.SetDefault("feedback.enabled", false)
	v.SetDefault("feedback.backend", "piper")
	v.SetDefault("feedback.piper.endpoint", "localhost:10200")
	v.SetDefault("feedback.piper.voice", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("jockey")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/jockey")
	}

	// Environment variables: JOCKEY_SPOTIFY_CLIENT_ID, JOCKEY_TRANSPORTS_HTTP_PORT, etc.
	v.SetEnvPrefix("JOCKEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${SPOTIFY_CLIENT_ID}")
	cfg.Spotify.ClientID = resolveEnvRef(cfg.Spotify.ClientID)
	cfg.Spotify.ClientSecret = resolveEnvRef(cfg.Spotify.ClientSecret)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
