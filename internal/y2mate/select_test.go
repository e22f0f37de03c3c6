package y2mate

import (
	"errors"
	"testing"
)

func qualities(format string, qs ...int) Options {
	family := make([]Option, 0, len(qs))
	for _, q := range qs {
		family = append(family, Option{Quality: q, Type: format})
	}
	return Options{Formats: map[string][]Option{format: family}}
}

func intPtr(v int) *int { return &v }

func TestSelectQuality(t *testing.T) {
	opts := qualities("mp4", 1080, 144, 720, 360)
	tests := []struct {
		name      string
		requested *int
		want      int
	}{
		{name: "no request picks highest", requested: nil, want: 1080},
		{name: "exact", requested: intPtr(720), want: 720},
		{name: "closest below", requested: intPtr(500), want: 360},
		{name: "closest above", requested: intPtr(1000), want: 1080},
		{name: "above range", requested: intPtr(4320), want: 1080},
		{name: "below range", requested: intPtr(1), want: 144},
		{name: "tie prefers lower", requested: intPtr(540), want: 360},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectQuality(opts, "mp4", tt.requested)
			if err != nil {
				t.Fatalf("SelectQuality unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SelectQuality = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelectQualityMissingFormat(t *testing.T) {
	_, err := SelectQuality(qualities("mp3", 128), "m4a", nil)
	if !errors.Is(err, ErrFormatUnavailable) {
		t.Fatalf("expected ErrFormatUnavailable, got %v", err)
	}
}
