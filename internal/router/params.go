package router

import (
	"regexp"
	"strings"
)

var (
	digitRunRe     = regexp.MustCompile(`\d+`)
	createPhraseRe = regexp.MustCompile(`(?i)create playlist`)

	// The two accepted add phrasings, tried in order. The song-first form
	// is the primary one; the name-first "with" form is the legacy
	// phrasing kept for compatibility.
	addSongFirstRe = regexp.MustCompile(`(?i)^add\s+(.+?)\s+to\s+playlist\s+(.+)$`)
	addNameFirstRe = regexp.MustCompile(`(?i)^add\s+to\s+playlist\s+(.+?)\s+with\s+(.+)$`)
)

// firstDigitRun returns the first run of decimal digits found anywhere in
// s, or ok=false when s contains none.
func firstDigitRun(s string) (string, bool) {
	m := digitRunRe.FindString(s)
	return m, m != ""
}

// hasToken reports whether tok appears as a whole whitespace-separated
// token in s.
func hasToken(s, tok string) bool {
	for _, f := range strings.Fields(s) {
		if f == tok {
			return true
		}
	}
	return false
}

// stripCreatePhrase removes every case-insensitive occurrence of the
// "create playlist" phrase and returns the trimmed remainder.
func stripCreatePhrase(s string) string {
	return strings.TrimSpace(createPhraseRe.ReplaceAllString(s, ""))
}

// parseAddCommand extracts the song and playlist name from either accepted
// add phrasing, preserving the caller's casing in both captures.
func parseAddCommand(s string) (song, playlist string, ok bool) {
	s = strings.TrimSpace(s)
	if m := addSongFirstRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if m := addNameFirstRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1]), true
	}
	return "", "", false
}
