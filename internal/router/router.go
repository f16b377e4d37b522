// Package router implements the rule-based command interpretation core.
//
// Free-form text (typed or transcribed) is matched against a fixed
// priority-ordered keyword table; the first entry whose keyword prefixes
// the normalized text selects an intent handler. Handlers own their own
// parameter parsing, call the player, and fold every outcome into a
// uniform command.Result. No state survives between invocations.
package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nvalcourt/jockey/internal/command"
	"github.com/nvalcourt/jockey/internal/player"
)

// handlerFunc executes one intent. original preserves the caller's casing
// for values that flow into lookups and messages; lowered is the trimmed,
// lower-cased form used for matching and sub-parsing.
type handlerFunc func(ctx context.Context, p player.Player, original, lowered string) command.Result

// route pairs the keywords that select an intent with its handler.
type route struct {
	keywords []string
	handler  handlerFunc
}

// Router maps free-form text to playback intents and executes them against
// an injected Player. It is stateless across calls and places no lock;
// callers enforce single-concurrent-call discipline.
type Router struct {
	player player.Player
	log    *slog.Logger
	routes []route
}

// New creates a Router bound to the given player.
func New(p player.Player, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		player: p,
		log:    log.With("component", "router"),
		// Priority order is load-bearing: longer phrases first so
		// "create playlist" is never captured by "play" and "add …"
		// never falls through to the play handler.
		routes: []route{
			{keywords: []string{"create playlist"}, handler: handleCreatePlaylist},
			{keywords: []string{"add"}, handler: handleAddToPlaylist},
			{keywords: []string{"play"}, handler: handlePlay},
			{keywords: []string{"pause"}, handler: handlePause},
			{keywords: []string{"resume"}, handler: handleResume},
			{keywords: []string{"skip", "next"}, handler: handleSkip},
			{keywords: []string{"previous", "back"}, handler: handlePrevious},
			{keywords: []string{"volume"}, handler: handleVolume},
			{keywords: []string{"shuffle"}, handler: handleShuffle},
			{keywords: []string{"repeat"}, handler: handleRepeat},
		},
	}
}

// Execute interprets raw text and performs the matched intent.
//
// It always yields exactly one Result and never lets a failure escape:
// empty input, unmatched keywords, adapter errors, and handler panics are
// all folded into a failed Result with a short human-readable message.
func (r *Router) Execute(ctx context.Context, raw string) (res command.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("intent handler panicked", "input", raw, "panic", rec)
			res = command.Failf("Error executing command: %v", rec)
		}
	}()

	original := strings.TrimSpace(raw)
	if original == "" {
		return command.Fail("Empty command")
	}
	lowered := strings.ToLower(original)

	for _, rt := range r.routes {
		for _, kw := range rt.keywords {
			if !strings.HasPrefix(lowered, kw) {
				continue
			}
			r.log.Debug("intent matched", "keyword", kw)
			res = rt.handler(ctx, r.player, original, lowered)
			if !res.Success {
				r.log.Warn("command failed", "keyword", kw, "message", res.Message)
			}
			return res
		}
	}

	r.log.Debug("no intent matched", "input", lowered)
	return command.Fail("Command not recognized")
}

// failure maps an adapter error to the user-facing failed Result. Errors
// from the player's taxonomy already carry a presentable message; anything
// else is unexpected and reported generically.
func failure(err error) command.Result {
	var (
		ve *player.ValidationError
		se *player.SearchError
		pe *player.PlaybackError
	)
	if errors.As(err, &ve) || errors.As(err, &se) || errors.As(err, &pe) {
		return command.Fail(err.Error())
	}
	return command.Failf("Error executing command: %v", err)
}

// noResults reports whether err marks an empty search rather than a
// backend failure.
func noResults(err error) bool {
	var se *player.SearchError
	return errors.As(err, &se) && se.Cause == nil
}
