package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.HealthPort != 8081 {
		t.Errorf("health port = %d, want 8081", cfg.Server.HealthPort)
	}
	if !cfg.Transports.HTTP.Enabled || cfg.Transports.HTTP.Port != 8080 {
		t.Errorf("http transport = %+v, want enabled on 8080", cfg.Transports.HTTP)
	}
	if cfg.Spotify.RedirectURL != "http://localhost:8888/callback" {
		t.Errorf("redirect url = %q", cfg.Spotify.RedirectURL)
	}
	if cfg.Spotify.TokenFile != ".jockey-token.json" {
		t.Errorf("token file = %q", cfg.Spotify.TokenFile)
	}
	if cfg.STT.Endpoint != "http://localhost:8000/inference" {
		t.Errorf("stt endpoint = %q", cfg.STT.Endpoint)
	}
	if cfg.Voice.Enabled {
		t.Error("voice should default to disabled")
	}
	if cfg.Voice.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", cfg.Voice.SampleRate)
	}
	if cfg.Feedback.Enabled {
		t.Error("feedback should default to disabled")
	}
	if cfg.Feedback.Backend != "piper" {
		t.Errorf("feedback backend = %q, want piper", cfg.Feedback.Backend)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jockey.yaml")
	yaml := `
transports:
  http:
    port: 9090
spotify:
  client_id: abc123
  client_secret: shh
  token_file: /var/lib/jockey/token.json
voice:
  enabled: true
  silence_timeout_ms: 800
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Transports.HTTP.Port != 9090 {
		t.Errorf("http port = %d, want 9090", cfg.Transports.HTTP.Port)
	}
	if cfg.Spotify.ClientID != "abc123" || cfg.Spotify.ClientSecret != "shh" {
		t.Errorf("spotify creds = %q/%q", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
	if cfg.Spotify.TokenFile != "/var/lib/jockey/token.json" {
		t.Errorf("token file = %q", cfg.Spotify.TokenFile)
	}
	if !cfg.Voice.Enabled || cfg.Voice.SilenceTimeoutMs != 800 {
		t.Errorf("voice = %+v", cfg.Voice)
	}
	// Unset keys keep their defaults.
	if cfg.Voice.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want default 16000", cfg.Voice.SampleRate)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded with an explicitly named missing file")
	}
}

func TestLoadResolvesEnvRefs(t *testing.T) {
	t.Setenv("TEST_SPOTIFY_ID", "id-from-env")
	t.Setenv("TEST_SPOTIFY_SECRET", "secret-from-env")

	path := filepath.Join(t.TempDir(), "jockey.yaml")
	yaml := `
spotify:
  client_id: ${TEST_SPOTIFY_ID}
  client_secret: ${TEST_SPOTIFY_SECRET}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Spotify.ClientID != "id-from-env" {
		t.Errorf("client id = %q, want id-from-env", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.ClientSecret != "secret-from-env" {
		t.Errorf("client secret = %q, want secret-from-env", cfg.Spotify.ClientSecret)
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("TEST_RESOLVE_REF", "resolved")

	tests := []struct{ in, want string }{
		{"${TEST_RESOLVE_REF}", "resolved"},
		{"${TEST_RESOLVE_REF_UNSET}", "${TEST_RESOLVE_REF_UNSET}"},
		{"plain-value", "plain-value"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := resolveEnvRef(tt.in); got != tt.want {
			t.Errorf("resolveEnvRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
