package downloader

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: errors.New("boom"), want: 1},
		{name: "invalid url", err: WrapCategory(CategoryInvalidURL, errors.New("bad")), want: 2},
		{name: "unsupported", err: WrapCategory(CategoryUnsupported, errors.New("no m4a")), want: 3},
		{name: "restricted", err: WrapCategory(CategoryRestricted, errors.New("too long")), want: 4},
		{name: "network", err: WrapCategory(CategoryNetwork, errors.New("reset")), want: 5},
		{name: "filesystem", err: WrapCategory(CategoryFilesystem, errors.New("denied")), want: 6},
		{name: "not found sentinel", err: fmt.Errorf("get: %w", ErrNotFound), want: 7},
		{name: "unavailable", err: WrapCategory(CategoryUnavailable, errors.New("html page")), want: 8},
		{name: "canceled", err: context.Canceled, want: 130},
		{name: "aborted", err: ErrAborted, want: 130},
		{name: "server timeout", err: ErrServerTimeout, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategoryOfUsesOutermostCategory(t *testing.T) {
	inner := WrapCategory(CategoryNetwork, errors.New("inner"))
	outer := WrapCategory(CategoryRestricted, fmt.Errorf("outer: %w", inner))
	if got := CategoryOf(outer); got != CategoryRestricted {
		t.Fatalf("CategoryOf = %q, want %q", got, CategoryRestricted)
	}
}

func TestMarkReportedKeepsCategory(t *testing.T) {
	err := MarkReported(WrapCategory(CategoryNotFound, ErrNotFound))
	if !IsReported(err) {
		t.Fatal("expected IsReported to be true")
	}
	if !errors.Is(err, ErrNotFound) || CategoryOf(err) != CategoryNotFound {
		t.Fatalf("reported error lost its identity: %v", err)
	}
	if IsReported(errors.New("fresh")) {
		t.Fatal("unreported error flagged as reported")
	}
	if MarkReported(nil) != nil || WrapCategory(CategoryNetwork, nil) != nil {
		t.Fatal("nil errors must stay nil")
	}
}
