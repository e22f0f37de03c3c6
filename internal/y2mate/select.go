package y2mate

import (
	"fmt"
	"sort"
)

// SelectQuality picks the quality to download for format.
// With no requested quality the highest one wins. Otherwise the closest
// quality is chosen; on a tie the lower quality is preferred.
func SelectQuality(opts Options, format string, requested *int) (int, error) {
	family, ok := opts.Formats[format]
	if !ok || len(family) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrFormatUnavailable, format)
	}

	qualities := make([]int, 0, len(family))
	for _, option := range family {
		qualities = append(qualities, option.Quality)
	}
	sort.Ints(qualities)

	if requested == nil {
		return qualities[len(qualities)-1], nil
	}

	best := qualities[0]
	bestDiff := distance(best, *requested)
	for _, q := range qualities[1:] {
		if d := distance(q, *requested); d < bestDiff {
			best, bestDiff = q, d
		}
	}
	return best, nil
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
