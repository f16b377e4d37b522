// Package player defines the remote playback control port and its domain types.
//
// The router depends only on the Player interface; the Spotify-backed
// implementation lives in the spotify subpackage. Implementations are not
// required to be safe for concurrent use — callers serialize access.
package player

import (
	"context"
	"strings"
)

// RepeatMode is the repeat setting applied to the active player.
type RepeatMode string

const (
	// RepeatTrack repeats the current track.
	RepeatTrack RepeatMode = "track"

	// RepeatContext repeats the current context (playlist, album, artist).
	RepeatContext RepeatMode = "context"

	// RepeatOff disables repeat.
	RepeatOff RepeatMode = "off"
)

// Valid reports whether m is one of the three supported modes.
func (m RepeatMode) Valid() bool {
	return m == RepeatTrack || m == RepeatContext || m == RepeatOff
}

// Track is a search hit consumed immediately to start playback and build
// a confirmation message.
type Track struct {
	Name    string
	URI     string
	Artists []string
}

// ArtistLine returns the track's artist names joined for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Artist is an artist search hit.
type Artist struct {
	Name string
	URI  string
}

// Playlist is a playlist owned by or followed by the current user.
type Playlist struct {
	ID   string
	Name string
	URI  string
}

// Player is the remote control surface the command router executes against.
//
// Search operations fail with *SearchError when the backend call errors or
// when zero items come back. Playback operations fail with *PlaybackError
// carrying enough detail to distinguish a missing device, a missing premium
// subscription, and a generic rejection. Input validation happens before
// any remote call and fails with *ValidationError.
type Player interface {
	// SearchTracks looks up tracks matching query, best match first.
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)

	// SearchArtists looks up artists matching query, best match first.
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)

	// PlayTrack starts playback of a single track URI on the active device.
	PlayTrack(ctx context.Context, uri string) error

	// PlayContext starts playback anchored to a context URI
	// (playlist, artist, album).
	PlayContext(ctx context.Context, uri string) error

	// Pause pauses playback on the active device.
	Pause(ctx context.Context) error

	// Resume resumes playback on the active device.
	Resume(ctx context.Context) error

	// NextTrack skips to the next track.
	NextTrack(ctx context.Context) error

	// PreviousTrack returns to the previous track.
	PreviousTrack(ctx context.Context) error

	// SetVolume sets the device volume to percent in [0,100].
	SetVolume(ctx context.Context, percent int) error

	// SetShuffle enables or disables shuffle.
	SetShuffle(ctx context.Context, on bool) error

	// SetRepeat applies the given repeat mode.
	SetRepeat(ctx context.Context, mode RepeatMode) error

	// Playlists returns the current user's playlists.
	Playlists(ctx context.Context) ([]Playlist, error)

	// PlaylistByName resolves a playlist by exact case-insensitive name.
	// Returns ErrNotFound when no playlist matches.
	PlaylistByName(ctx context.Context, name string) (*Playlist, error)

	// CreatePlaylist creates a playlist and returns its id.
	CreatePlaylist(ctx context.Context, name string, public bool) (string, error)

	// AddToPlaylist adds track URIs to the named playlist (case-insensitive
	// lookup). Returns false without error when the playlist does not exist.
	AddToPlaylist(ctx context.Context, name string, uris []string) (bool, error)

	// CurrentUser returns the authenticated user's display name.
	CurrentUser(ctx context.Context) (string, error)
}
