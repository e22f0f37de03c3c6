package db

import "strings"

// ClassifyMediaType maps a container extension to "audio" or "video".
// mp3 and m4a are audio; anything else is treated as video.
func ClassifyMediaType(format string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "mp3", "m4a":
		return "audio"
	default:
		return "video"
	}
}
