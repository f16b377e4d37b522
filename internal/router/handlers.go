package router

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/nvalcourt/jockey/internal/command"
	"github.com/nvalcourt/jockey/internal/player"
)

// handlePlay resolves the play target (playlist, artist, or track search)
// from the text following the keyword and starts playback.
func handlePlay(ctx context.Context, p player.Player, _, lowered string) command.Result {
	// Strip the keyword once, not globally, so a title containing the
	// word "play" survives intact.
	text := strings.TrimSpace(strings.Replace(lowered, "play", "", 1))
	if text == "" {
		return command.Fail("Please specify what to play.")
	}

	switch {
	case strings.HasPrefix(text, "playlist"):
		name := strings.TrimSpace(strings.Replace(text, "playlist", "", 1))
		pl, err := p.PlaylistByName(ctx, name)
		if errors.Is(err, player.ErrNotFound) {
			return command.Failf("Playlist '%s' not found", name)
		}
		if err != nil {
			return failure(err)
		}
		if err := p.PlayContext(ctx, pl.URI); err != nil {
			return failure(err)
		}
		return command.OKf("Playing playlist: %s", pl.Name)

	case strings.HasPrefix(text, "artist"):
		name := strings.TrimSpace(strings.Replace(text, "artist", "", 1))
		artists, err := p.SearchArtists(ctx, name, 1)
		if err != nil {
			if noResults(err) {
				return command.Failf("Artist '%s' not found", name)
			}
			return failure(err)
		}
		if err := p.PlayContext(ctx, artists[0].URI); err != nil {
			return failure(err)
		}
		return command.OKf("Playing artist: %s", artists[0].Name)

	default:
		tracks, err := p.SearchTracks(ctx, text, 1)
		if err != nil {
			if noResults(err) {
				return command.Failf("Track '%s' not found", text)
			}
			return failure(err)
		}
		t := tracks[0]
		if err := p.PlayTrack(ctx, t.URI); err != nil {
			return failure(err)
		}
		return command.OKf("Playing: %s by %s", t.Name, t.ArtistLine())
	}
}

func handlePause(ctx context.Context, p player.Player, _, _ string) command.Result {
	if err := p.Pause(ctx); err != nil {
		return failure(err)
	}
	return command.OK("Playback paused")
}

func handleResume(ctx context.Context, p player.Player, _, _ string) command.Result {
	if err := p.Resume(ctx); err != nil {
		return failure(err)
	}
	return command.OK("Playback resumed")
}

func handleSkip(ctx context.Context, p player.Player, _, _ string) command.Result {
	if err := p.NextTrack(ctx); err != nil {
		return failure(err)
	}
	return command.OK("Skipped to next track")
}

func handlePrevious(ctx context.Context, p player.Player, _, _ string) command.Result {
	if err := p.PreviousTrack(ctx); err != nil {
		return failure(err)
	}
	return command.OK("Went to previous track")
}

// handleVolume extracts the first digit run anywhere in the text and sets
// the volume. Out-of-range values are rejected here, before the adapter is
// asked to touch remote state.
func handleVolume(ctx context.Context, p player.Player, _, lowered string) command.Result {
	digits, ok := firstDigitRun(lowered)
	if !ok {
		return command.Fail("Please specify volume level (0-100)")
	}
	level, err := strconv.Atoi(digits)
	if err != nil || level < 0 || level > 100 {
		return command.Fail("Volume must be between 0 and 100")
	}
	if err := p.SetVolume(ctx, level); err != nil {
		return failure(err)
	}
	return command.OKf("Volume set to %d%%", level)
}

// handleShuffle treats the presence of the token "on" as enable and its
// absence as disable. This is not a three-state toggle: any phrasing
// without "on" disables shuffle.
func handleShuffle(ctx context.Context, p player.Player, _, lowered string) command.Result {
	on := hasToken(lowered, "on")
	if err := p.SetShuffle(ctx, on); err != nil {
		return failure(err)
	}
	if on {
		return command.OK("Shuffle enabled")
	}
	return command.OK("Shuffle disabled")
}

// handleRepeat picks the mode by priority: "track" wins over
// "context"/"playlist", and anything else means off.
func handleRepeat(ctx context.Context, p player.Player, _, lowered string) command.Result {
	var mode player.RepeatMode
	switch {
	case strings.Contains(lowered, "track"):
		mode = player.RepeatTrack
	case strings.Contains(lowered, "context"), strings.Contains(lowered, "playlist"):
		mode = player.RepeatContext
	default:
		mode = player.RepeatOff
	}
	if err := p.SetRepeat(ctx, mode); err != nil {
		return failure(err)
	}
	return command.OKf("Repeat mode set to %s", mode)
}

// handleCreatePlaylist strips the phrase from the original-cased text so
// the new playlist keeps the casing the user typed.
func handleCreatePlaylist(ctx context.Context, p player.Player, original, _ string) command.Result {
	name := stripCreatePhrase(original)
	if name == "" {
		return command.Fail("Please specify a playlist name")
	}
	id, err := p.CreatePlaylist(ctx, name, true)
	if err != nil || id == "" {
		return command.Fail("Failed to create playlist")
	}
	return command.OKf("Created playlist: %s", name)
}

// handleAddToPlaylist parses the add phrasing against the original-cased
// text, searches for the song by its lowercased form, and adds the
// resolved track to the named playlist.
func handleAddToPlaylist(ctx context.Context, p player.Player, original, _ string) command.Result {
	song, playlistName, ok := parseAddCommand(original)
	if !ok {
		return command.Fail("Format: 'add [song] to playlist [name]'")
	}

	tracks, err := p.SearchTracks(ctx, strings.ToLower(song), 1)
	if err != nil {
		if noResults(err) {
			return command.Failf("Track '%s' not found", song)
		}
		return failure(err)
	}
	t := tracks[0]

	// The playlist name keeps its original casing; the adapter matches
	// case-insensitively and the confirmation echoes what the user typed.
	added, err := p.AddToPlaylist(ctx, playlistName, []string{t.URI})
	if err != nil {
		return failure(err)
	}
	if !added {
		return command.Failf("Failed to add track (playlist '%s' not found?)", playlistName)
	}
	return command.OKf("Added '%s' to playlist '%s'", t.Name, playlistName)
}
