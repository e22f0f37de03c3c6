package y2mate

import (
	"fmt"
	"net/url"
	"strings"
)

// ShortLinkHosts are hosts whose first path segment is the video id.
var ShortLinkHosts = []string{"youtu.be", "yutu.be"}

// VideoIDFromURL extracts the video id from a watch or short-link URL.
// The time parameter (t=) is ignored.
func VideoIDFromURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	if isShortLinkHost(parsed.Host) {
		id := strings.TrimPrefix(parsed.Path, "/")
		if i := strings.Index(id, "/"); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", fmt.Errorf("%w: %q has no video id in its path", ErrMalformedURL, raw)
		}
		return id, nil
	}

	for _, pair := range strings.Split(parsed.RawQuery, "&") {
		value, ok := strings.CutPrefix(pair, "v=")
		if !ok {
			continue
		}
		if value == "" {
			break
		}
		return value, nil
	}
	return "", fmt.Errorf("%w: %q has no v parameter", ErrMalformedURL, raw)
}

func isShortLinkHost(host string) bool {
	host = strings.ToLower(host)
	for _, short := range ShortLinkHosts {
		if host == short {
			return true
		}
	}
	return false
}

// WatchURL is the canonical watch URL sent to the remote service.
func WatchURL(id string) string {
	return "https://youtube.com/watch?v=" + id
}
