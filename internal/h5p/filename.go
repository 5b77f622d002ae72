package h5p

import (
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Extension is appended to every generated package filename.
const Extension = ".h5p"

const (
	fallbackStem   = "flashcards"
	maxStemLength  = 64
	separatorChars = "_-"
)

var (
	unsafeRuns     = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	repeatedUnders = regexp.MustCompile(`_{2,}`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename reduces title to [A-Za-z0-9_-]: unsafe runs become "_",
// repeated separators collapse, edges are trimmed. Empty results fall back
// to "flashcards".
func SanitizeFilename(title string) string {
	s := unsafeRuns.ReplaceAllString(title, "_")
	s = repeatedUnders.ReplaceAllString(s, "_")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, separatorChars)

	if len(s) > maxStemLength {
		s = strings.TrimRight(s[:maxStemLength], separatorChars)
	}
	if s == "" {
		return fallbackStem
	}
	return s
}

// newFilename joins the sanitized title and a lowercase ULID. ULIDs from the
// default entropy source are monotonic within a millisecond, so concurrent
// calls never collide.
func newFilename(title string, now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return SanitizeFilename(title) + "_" + strings.ToLower(id.String()) + Extension
}
