package y2mate

import (
	"errors"
	"testing"
)

func TestVideoIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30", want: "dQw4w9WgXcQ"},
		{url: "https://youtube.com/watch?feature=share&v=abc123", want: "abc123"},
		{url: "https://m.youtube.com/watch?t=10&v=xyz&list=PL1", want: "xyz"},
		{url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://yutu.be/dQw4w9WgXcQ?t=42", want: "dQw4w9WgXcQ"},
		{url: "  https://youtu.be/abc/extra  ", want: "abc"},
	}
	for _, tt := range tests {
		got, err := VideoIDFromURL(tt.url)
		if err != nil {
			t.Fatalf("VideoIDFromURL(%q) unexpected error: %v", tt.url, err)
		}
		if got != tt.want {
			t.Fatalf("VideoIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestVideoIDFromURLMalformed(t *testing.T) {
	for _, raw := range []string{
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=",
		"https://youtu.be/",
		"https://example.com/?video=abc",
		"://bad",
	} {
		if _, err := VideoIDFromURL(raw); !errors.Is(err, ErrMalformedURL) {
			t.Fatalf("VideoIDFromURL(%q) expected ErrMalformedURL, got %v", raw, err)
		}
	}
}

func TestWatchURL(t *testing.T) {
	if got := WatchURL("abc"); got != "https://youtube.com/watch?v=abc" {
		t.Fatalf("WatchURL = %q", got)
	}
}
