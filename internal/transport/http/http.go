// Package http implements the HTTP ingress for jockey.
//
// This transport exposes a small REST API for submitting text commands
// and for listing the user's playlists, plus the generated swagger UI.
// It is the headless replacement for the desktop text box: shells,
// scripts, and home-automation hooks POST here.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nvalcourt/jockey/internal/command"
	"github.com/nvalcourt/jockey/internal/player"
	"github.com/nvalcourt/jockey/internal/transport"

	_ "github.com/nvalcourt/jockey/docs" // registered swagger spec
)

// maxBodyBytes bounds command submissions; commands are short text.
const maxBodyBytes = 64 << 10

// PlaylistLister is the read-only slice of the player this API exposes.
type PlaylistLister interface {
	Playlists(ctx context.Context) ([]player.Playlist, error)
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	lister PlaylistLister
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int, lister PlaylistLister) *Transport {
	return &Transport{port: port, lister: lister}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.routes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// routes builds the request mux. Split out so tests can drive the
// handlers without a listening socket.
func (t *Transport) routes(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/commands", func(w http.ResponseWriter, r *http.Request) {
		t.handleCommand(w, r, handler)
	})
	mux.HandleFunc("GET /v1/playlists", t.handlePlaylists)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// commandSubmission is the POST /v1/commands request body.
type commandSubmission struct {
	// ID is optional; the transport assigns a UUID when absent.
	ID string `json:"id,omitempty" example:"7b1a8c3e-1f2d-4e5f-9a6b-0c1d2e3f4a5b"`

	// Text is the free-form command, e.g. "play daft punk".
	Text string `json:"text" example:"play daft punk"`
}

// commandResponse is the POST /v1/commands reply envelope.
type commandResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message" example:"Playing: Around the World by Daft Punk"`
}

// playlistEntry is one row of the GET /v1/playlists reply.
type playlistEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// playlistsResponse is the GET /v1/playlists reply envelope.
type playlistsResponse struct {
	Playlists []playlistEntry `json:"playlists"`
	Total     int             `json:"total"`
}

// errorResponse is the envelope for request-level failures.
type errorResponse struct {
	Error string `json:"error"`
}

// handleCommand processes a POST /v1/commands request.
//
// @Summary     Submit a playback command
// @Description Accepts a free-form text command ("play daft punk", "volume 40",
// @Description "add Blue Monday to playlist Gym") and executes it against the
// @Description player. The reply mirrors the command result: success is false
// @Description for unrecognized commands, empty input, and player failures, and
// @Description the message is the same text the voice pipeline would speak.
// @Tags        commands
// @Accept      json
// @Produce     json
// @Param       command  body      commandSubmission  true  "Command to execute"
// @Success     200  {object}  commandResponse  "Command result"
// @Failure     400  {object}  errorResponse  "Malformed request body"
// @Router      /v1/commands [post]
func (t *Transport) handleCommand(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var sub commandSubmission
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}

	req := command.Request{
		ID:        sub.ID,
		Text:      sub.Text,
		Source:    command.SourceHTTP,
		Timestamp: time.Now().UTC(),
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	res := handler(r.Context(), req)
	writeJSON(w, http.StatusOK, commandResponse{
		ID:      req.ID,
		Success: res.Success,
		Message: res.Message,
	})
}

// handlePlaylists processes a GET /v1/playlists request.
//
// @Summary     List the user's playlists
// @Description Returns the authenticated user's playlists, followed pages
// @Description included, in the order the player reports them.
// @Tags        playlists
// @Produce     json
// @Success     200  {object}  playlistsResponse  "Playlists"
// @Failure     502  {object}  errorResponse  "Player lookup failed"
// @Router      /v1/playlists [get]
func (t *Transport) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := t.lister.Playlists(r.Context())
	if err != nil {
		slog.Error("playlist listing failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "listing playlists: " + err.Error()})
		return
	}

	resp := playlistsResponse{Playlists: make([]playlistEntry, 0, len(playlists)), Total: len(playlists)}
	for _, pl := range playlists {
		resp.Playlists = append(resp.Playlists, playlistEntry{ID: pl.ID, Name: pl.Name, URI: pl.URI})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
