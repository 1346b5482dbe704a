package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

var (
	videoIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	fallbackPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
)

// VideoID extracts the 11-character video id from a YouTube URL.
//
// Supported forms are youtube.com/watch?v=ID, youtu.be/ID, youtube.com/embed/ID
// and youtube.com/shorts/ID. Anything else falls back to the first
// id-shaped path segment or v= parameter.
func VideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: video URL cannot be empty", generation.ErrInvalidInput)
	}

	if u, err := url.Parse(rawURL); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		host = strings.TrimPrefix(host, "m.")
		var candidate string
		switch host {
		case "youtube.com":
			switch {
			case u.Path == "/watch":
				candidate = u.Query().Get("v")
			case strings.HasPrefix(u.Path, "/embed/"):
				candidate = firstSegment(strings.TrimPrefix(u.Path, "/embed/"))
			case strings.HasPrefix(u.Path, "/shorts/"):
				candidate = firstSegment(strings.TrimPrefix(u.Path, "/shorts/"))
			}
		case "youtu.be":
			candidate = firstSegment(strings.TrimPrefix(u.Path, "/"))
		}
		if videoIDPattern.MatchString(candidate) {
			return candidate, nil
		}
	}

	if m := fallbackPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: could not extract video ID from URL %q", generation.ErrInvalidInput, rawURL)
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
