package db

import "testing"

func TestClassifyMediaType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "mp3", want: "audio"},
		{format: "m4a", want: "audio"},
		{format: ".M4A", want: "audio"},
		{format: "mp4", want: "video"},
		{format: "", want: "video"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := ClassifyMediaType(tt.format); got != tt.want {
				t.Fatalf("ClassifyMediaType(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}
