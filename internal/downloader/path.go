package downloader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\[\]'\x00-\x1F]`)

// FileName builds "<title>.<ext>" with characters that break paths removed.
func FileName(title, ext string) string {
	name := invalidNameChars.ReplaceAllString(title, "")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "video"
	}
	return name + "." + ext
}

// Dirs are the configured output folders.
type Dirs struct {
	Audio string
	Video string
}

// OutputDir chooses where a file of the given family is saved.
func OutputDir(dirs Dirs, audio, currentDir bool) string {
	switch {
	case currentDir:
		return "."
	case audio:
		return dirs.Audio
	default:
		return dirs.Video
	}
}

// OutputPath joins dir and name; an empty dir means the working directory.
func OutputPath(dir, name string) string {
	return filepath.Clean(filepath.Join(dir, name))
}

// HumanBytes formats n with a binary unit, e.g. "3.0MB".
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for n >= unit*div && exp < 3 {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f%s", value, suffix[exp])
}

// formatDurationShort formats d as "5s", "2m30s" or "1h15m".
func formatDurationShort(d time.Duration) string {
	totalSeconds := int64(d.Seconds())

	if d < time.Minute {
		return fmt.Sprintf("%ds", totalSeconds)
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", totalSeconds/60, totalSeconds%60)
	}
	return fmt.Sprintf("%dh%dm", totalSeconds/3600, (totalSeconds%3600)/60)
}
