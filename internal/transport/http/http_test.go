package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nvalcourt/jockey/internal/command"
	"github.com/nvalcourt/jockey/internal/player"
	"github.com/nvalcourt/jockey/internal/transport"
)

type fakeLister struct {
	playlists []player.Playlist
	err       error
}

func (f *fakeLister) Playlists(ctx context.Context) ([]player.Playlist, error) {
	return f.playlists, f.err
}

// recordingHandler captures dispatched requests and replies with a fixed
// result.
type recordingHandler struct {
	mu     sync.Mutex
	seen   []command.Request
	result command.Result
}

func (h *recordingHandler) handle(ctx context.Context, req command.Request) command.Result {
	h.mu.Lock()
	h.seen = append(h.seen, req)
	h.mu.Unlock()
	return h.result
}

func (h *recordingHandler) requests() []command.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]command.Request(nil), h.seen...)
}

func serve(t *testing.T, lister PlaylistLister, handler transport.Handler) http.Handler {
	t.Helper()
	return New(0, lister).routes(handler)
}

func postCommand(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, commandResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp commandResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return rec, resp
}

func TestCommandSubmission(t *testing.T) {
	rh := &recordingHandler{result: command.OK("Playback paused")}
	h := serve(t, &fakeLister{}, rh.handle)

	rec, resp := postCommand(t, h, `{"text":"pause"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Success || resp.Message != "Playback paused" {
		t.Errorf("response = %+v", resp)
	}
	if resp.ID == "" {
		t.Error("transport must assign a request id")
	}

	reqs := rh.requests()
	if len(reqs) != 1 {
		t.Fatalf("handler saw %d requests, want 1", len(reqs))
	}
	got := reqs[0]
	if got.Text != "pause" || got.Source != command.SourceHTTP {
		t.Errorf("request = %+v", got)
	}
	if got.ID != resp.ID {
		t.Errorf("response id %q does not match dispatched id %q", resp.ID, got.ID)
	}
	if got.Timestamp.IsZero() {
		t.Error("request timestamp not set")
	}
}

func TestCommandKeepsCallerID(t *testing.T) {
	rh := &recordingHandler{result: command.OK("ok")}
	h := serve(t, &fakeLister{}, rh.handle)

	_, resp := postCommand(t, h, `{"id":"caller-7","text":"pause"}`)
	if resp.ID != "caller-7" {
		t.Errorf("id = %q, want caller-supplied id", resp.ID)
	}
}

func TestCommandMalformedJSON(t *testing.T) {
	rh := &recordingHandler{result: command.OK("ok")}
	h := serve(t, &fakeLister{}, rh.handle)

	rec, _ := postCommand(t, h, `{"text": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if !strings.Contains(errResp.Error, "invalid json") {
		t.Errorf("error = %q", errResp.Error)
	}
	if len(rh.requests()) != 0 {
		t.Error("malformed body must not reach the dispatcher")
	}
}

func TestCommandEmptyTextStillRoutes(t *testing.T) {
	// The router owns the empty-command reply; the transport forwards.
	rh := &recordingHandler{result: command.Fail("Empty command")}
	h := serve(t, &fakeLister{}, rh.handle)

	rec, resp := postCommand(t, h, `{"text":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Success || resp.Message != "Empty command" {
		t.Errorf("response = %+v", resp)
	}
	if len(rh.requests()) != 1 {
		t.Error("empty text must still be dispatched")
	}
}

func TestPlaylists(t *testing.T) {
	lister := &fakeLister{playlists: []player.Playlist{
		{ID: "1", Name: "Gym", URI: "spotify:playlist:1"},
		{ID: "2", Name: "Focus", URI: "spotify:playlist:2"},
	}}
	h := serve(t, lister, (&recordingHandler{}).handle)

	req := httptest.NewRequest(http.MethodGet, "/v1/playlists", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp playlistsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 2 || len(resp.Playlists) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Playlists[0].Name != "Gym" || resp.Playlists[1].URI != "spotify:playlist:2" {
		t.Errorf("playlists = %+v", resp.Playlists)
	}
}

func TestPlaylistsError(t *testing.T) {
	h := serve(t, &fakeLister{err: errors.New("token expired")}, (&recordingHandler{}).handle)

	req := httptest.NewRequest(http.MethodGet, "/v1/playlists", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if !strings.Contains(errResp.Error, "token expired") {
		t.Errorf("error = %q", errResp.Error)
	}
}

func TestSwaggerSpecServed(t *testing.T) {
	h := serve(t, &fakeLister{}, (&recordingHandler{}).handle)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Submit a playback command") {
		t.Errorf("doc.json does not describe the commands endpoint")
	}
}
