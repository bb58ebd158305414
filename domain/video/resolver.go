package video

import (
	"fmt"
	"regexp"
)

// idPatterns match the supported YouTube URL shapes. The video ID is
// always an 11-character handle.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})(?:[&#].*)?$`),
	regexp.MustCompile(`^https?://(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})(?:[?#].*)?$`),
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/(?:embed|shorts|live)/([A-Za-z0-9_-]{11})(?:[?#].*)?$`),
}

// ValidateURL reports whether the URL matches a supported YouTube video
// pattern. Pure; performs no I/O.
func ValidateURL(url string) bool {
	for _, p := range idPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// ResolveID extracts the canonical video ID from a supported URL.
// The same URL always resolves to the same Reference.
func ResolveID(url string) (Reference, error) {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return Reference{ID: m[1], URL: url}, nil
		}
	}
	return Reference{}, fmt.Errorf("%w: %q", ErrInvalidURL, url)
}
