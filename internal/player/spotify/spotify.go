// Package spotify implements the player.Player port against the Spotify
// Web API.
//
// Authentication uses the OAuth authorization code flow with an on-disk
// token cache (see auth.go). Remote calls are rate limited client side,
// and track/artist searches are memoized for a short window because voice
// commands tend to repeat the same phrases.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/time/rate"

	"github.com/nvalcourt/jockey/internal/config"
	"github.com/nvalcourt/jockey/internal/player"
)

const (
	searchCacheSize = 256
	searchCacheTTL  = 2 * time.Minute

	// Client-side ceiling, comfortably below Spotify's documented limits.
	apiRate  = rate.Limit(10)
	apiBurst = 10
)

// Client talks to the Spotify Web API on behalf of a single user.
type Client struct {
	cfg     config.SpotifyConfig
	log     *slog.Logger
	auth    *spotifyauth.Authenticator
	api     *spotify.Client
	limiter *rate.Limiter
	userID  string

	trackCache  *expirable.LRU[string, []player.Track]
	artistCache *expirable.LRU[string, []player.Artist]
}

var _ player.Player = (*Client)(nil)

// New creates an unauthenticated client; call Authenticate before use.
func New(cfg config.SpotifyConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:         cfg,
		log:         log.With("component", "spotify"),
		auth:        newAuthenticator(cfg),
		limiter:     rate.NewLimiter(apiRate, apiBurst),
		trackCache:  expirable.NewLRU[string, []player.Track](searchCacheSize, nil, searchCacheTTL),
		artistCache: expirable.NewLRU[string, []player.Artist](searchCacheSize, nil, searchCacheTTL),
	}
}

// authed fails when Authenticate has not completed yet.
func (c *Client) authed() error {
	if c.api == nil {
		return &player.AuthError{Op: "client", Cause: errors.New("not authenticated")}
	}
	return nil
}

// ready combines the auth guard with the rate limiter.
func (c *Client) ready(ctx context.Context) error {
	if err := c.authed(); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// SearchTracks looks up tracks matching query, best match first.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]player.Track, error) {
	if err := c.authed(); err != nil {
		return nil, err
	}
	key := cacheKey(query, limit)
	if tracks, ok := c.trackCache.Get(key); ok {
		c.log.Debug("track search cache hit", "query", query)
		return tracks, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	results, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, &player.SearchError{Query: query, Cause: err}
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, &player.SearchError{Query: query}
	}

	tracks := make([]player.Track, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&results.Tracks.Tracks[i]))
	}
	c.trackCache.Add(key, tracks)
	return tracks, nil
}

// SearchArtists looks up artists matching query, best match first.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]player.Artist, error) {
	if err := c.authed(); err != nil {
		return nil, err
	}
	key := cacheKey(query, limit)
	if artists, ok := c.artistCache.Get(key); ok {
		c.log.Debug("artist search cache hit", "query", query)
		return artists, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	results, err := c.api.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(limit))
	if err != nil {
		return nil, &player.SearchError{Query: query, Cause: err}
	}
	if results.Artists == nil || len(results.Artists.Artists) == 0 {
		return nil, &player.SearchError{Query: query}
	}

	artists := make([]player.Artist, 0, len(results.Artists.Artists))
	for i := range results.Artists.Artists {
		artists = append(artists, convertArtist(&results.Artists.Artists[i]))
	}
	c.artistCache.Add(key, artists)
	return artists, nil
}

// PlayTrack starts playback of a single track URI on the active device.
func (c *Client) PlayTrack(ctx context.Context, uri string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	opts := &spotify.PlayOptions{URIs: []spotify.URI{spotify.URI(uri)}}
	if err := c.api.PlayOpt(ctx, opts); err != nil {
		return c.playbackErr("play track", err)
	}
	c.log.Info("playing track", "uri", uri)
	return nil
}

// PlayContext starts playback anchored to a context URI.
func (c *Client) PlayContext(ctx context.Context, uri string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	u := spotify.URI(uri)
	if err := c.api.PlayOpt(ctx, &spotify.PlayOptions{PlaybackContext: &u}); err != nil {
		return c.playbackErr("play context", err)
	}
	c.log.Info("playing context", "uri", uri)
	return nil
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Pause(ctx); err != nil {
		return c.playbackErr("pause", err)
	}
	c.log.Info("playback paused")
	return nil
}

// Resume resumes playback on the active device.
func (c *Client) Resume(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Play(ctx); err != nil {
		return c.playbackErr("resume", err)
	}
	c.log.Info("playback resumed")
	return nil
}

// NextTrack skips to the next track.
func (c *Client) NextTrack(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Next(ctx); err != nil {
		return c.playbackErr("skip", err)
	}
	c.log.Info("skipped to next track")
	return nil
}

// PreviousTrack returns to the previous track.
func (c *Client) PreviousTrack(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Previous(ctx); err != nil {
		return c.playbackErr("go back", err)
	}
	c.log.Info("went to previous track")
	return nil
}

// SetVolume sets the device volume. The range check runs before any
// remote call; out-of-range values are never clamped.
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return &player.ValidationError{Message: "Volume must be between 0 and 100"}
	}
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Volume(ctx, percent); err != nil {
		return c.playbackErr("set volume", err)
	}
	c.log.Info("volume set", "percent", percent)
	return nil
}

// SetShuffle enables or disables shuffle.
func (c *Client) SetShuffle(ctx context.Context, on bool) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Shuffle(ctx, on); err != nil {
		return c.playbackErr("toggle shuffle", err)
	}
	c.log.Info("shuffle set", "on", on)
	return nil
}

// SetRepeat applies the repeat mode, validating it before the remote call.
func (c *Client) SetRepeat(ctx context.Context, mode player.RepeatMode) error {
	if !mode.Valid() {
		return &player.ValidationError{Message: "Repeat mode must be 'track', 'context', or 'off'"}
	}
	if err := c.ready(ctx); err != nil {
		return err
	}
	if err := c.api.Repeat(ctx, string(mode)); err != nil {
		return c.playbackErr("set repeat", err)
	}
	c.log.Info("repeat set", "mode", mode)
	return nil
}

// Playlists returns the current user's playlists across all pages.
func (c *Client) Playlists(ctx context.Context) ([]player.Playlist, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}

	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}

	var playlists []player.Playlist
	for {
		for i := range page.Playlists {
			p := &page.Playlists[i]
			playlists = append(playlists, player.Playlist{
				ID:   string(p.ID),
				Name: p.Name,
				URI:  string(p.URI),
			})
		}
		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}
	}
	return playlists, nil
}

// PlaylistByName resolves a playlist by exact case-insensitive name.
func (c *Client) PlaylistByName(ctx context.Context, name string) (*player.Playlist, error) {
	playlists, err := c.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if strings.EqualFold(playlists[i].Name, name) {
			return &playlists[i], nil
		}
	}
	return nil, player.ErrNotFound
}

// CreatePlaylist creates a playlist for the current user and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, name string, public bool) (string, error) {
	if err := c.ready(ctx); err != nil {
		return "", err
	}

	userID := c.userID
	if userID == "" {
		user, err := c.api.CurrentUser(ctx)
		if err != nil {
			return "", fmt.Errorf("resolving user: %w", err)
		}
		userID = user.ID
		c.userID = userID
	}

	pl, err := c.api.CreatePlaylistForUser(ctx, userID, name, "", public, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist %q: %w", name, err)
	}
	c.log.Info("created playlist", "name", name, "id", pl.ID)
	return string(pl.ID), nil
}

// AddToPlaylist adds track URIs to the named playlist. Mirroring the
// Player contract, an unresolved playlist or a rejected add both come back
// as false rather than an error; the error slot is for cancellation only.
func (c *Client) AddToPlaylist(ctx context.Context, name string, uris []string) (bool, error) {
	pl, err := c.PlaylistByName(ctx, name)
	if err != nil {
		if !errors.Is(err, player.ErrNotFound) {
			if ctx.Err() != nil {
				return false, err
			}
			c.log.Error("resolving playlist for add", "name", name, "error", err)
		}
		return false, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	ids := make([]spotify.ID, 0, len(uris))
	for _, u := range uris {
		ids = append(ids, spotify.ID(trackIDFromURI(u)))
	}
	if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(pl.ID), ids...); err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		c.log.Error("adding tracks to playlist", "name", name, "error", err)
		return false, nil
	}
	c.log.Info("added tracks to playlist", "name", name, "count", len(uris))
	return true, nil
}

// CurrentUser returns the authenticated user's display name.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	if err := c.ready(ctx); err != nil {
		return "", err
	}
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", &player.AuthError{Op: "current user", Cause: err}
	}
	c.userID = user.ID
	return user.DisplayName, nil
}

// playbackErr classifies a Web API rejection for the given action phrase.
func (c *Client) playbackErr(action string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			return &player.PlaybackError{Action: action, Kind: player.PlaybackNoDevice, Cause: err}
		case http.StatusForbidden:
			if strings.Contains(strings.ToUpper(apiErr.Message), "PREMIUM") {
				return &player.PlaybackError{Action: action, Kind: player.PlaybackPremiumRequired, Cause: err}
			}
			return &player.PlaybackError{Action: action, Kind: player.PlaybackForbidden, Cause: errors.New(apiErr.Message)}
		}
	}
	return &player.PlaybackError{Action: action, Kind: player.PlaybackGeneric, Cause: err}
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("%d|%s", limit, query)
}

// trackIDFromURI strips the "spotify:track:" prefix from a URI; bare ids
// pass through unchanged.
func trackIDFromURI(uri string) string {
	if i := strings.LastIndex(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func convertTrack(t *spotify.FullTrack) player.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return player.Track{Name: t.Name, URI: string(t.URI), Artists: artists}
}

func convertArtist(a *spotify.FullArtist) player.Artist {
	return player.Artist{Name: a.Name, URI: string(a.URI)}
}
