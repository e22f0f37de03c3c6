package downloader

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseProgressMode(t *testing.T) {
	for _, raw := range []string{"", "auto", "tui", "bar", "plain"} {
		if _, err := ParseProgressMode(raw); err != nil {
			t.Fatalf("ParseProgressMode(%q) unexpected error: %v", raw, err)
		}
	}
	if _, err := ParseProgressMode("fancy"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestProgressModeResolve(t *testing.T) {
	tests := []struct {
		mode        ProgressMode
		interactive bool
		want        ProgressMode
	}{
		{ProgressAuto, true, ProgressTUI},
		{ProgressAuto, false, ProgressPlain},
		{ProgressTUI, false, ProgressPlain},
		{ProgressBar, true, ProgressBar},
		{ProgressBar, false, ProgressPlain},
		{ProgressPlain, true, ProgressPlain},
	}
	for _, tt := range tests {
		if got := tt.mode.resolve(tt.interactive); got != tt.want {
			t.Fatalf("%q.resolve(%v) = %q, want %q", tt.mode, tt.interactive, got, tt.want)
		}
	}
}

func TestPlainProgressPrintsSummaryOnce(t *testing.T) {
	var buf bytes.Buffer
	printer := newPrinter(&buf, Options{Progress: ProgressPlain}, false, false)
	renderer := printer.newRenderer()
	progress := newProgressWriter(10, renderer, "song.mp3")
	_, _ = progress.Write([]byte("12345"))
	_, _ = progress.Write([]byte("12345"))
	progress.Finish()
	progress.Finish()

	output := buf.String()
	if strings.Contains(output, "\r") {
		t.Fatalf("expected no carriage returns, got %q", output)
	}
	if strings.Count(output, "song.mp3") != 1 {
		t.Fatalf("expected one summary line, got %q", output)
	}
	if !strings.Contains(output, "100.00%") {
		t.Fatalf("expected completed percentage, got %q", output)
	}
	if progress.Written() != 10 {
		t.Fatalf("Written() = %d, want 10", progress.Written())
	}
}

func TestQuietPrinterSuppressesProgressAndInfo(t *testing.T) {
	var buf bytes.Buffer
	printer := newPrinter(&buf, Options{Quiet: true, Progress: ProgressPlain}, false, false)
	progress := newProgressWriter(4, printer.newRenderer(), "quiet.mp4")
	_, _ = progress.Write([]byte("data"))
	progress.Finish()
	printer.Notice("hidden")
	printer.Log(LogError, "shown")

	output := buf.String()
	if strings.Contains(output, "quiet.mp4") || strings.Contains(output, "hidden") {
		t.Fatalf("quiet printer leaked output: %q", output)
	}
	if !strings.Contains(output, "[ERROR] shown") {
		t.Fatalf("expected error line, got %q", output)
	}
}

func TestBarRendererWritesToScreen(t *testing.T) {
	var buf bytes.Buffer
	printer := newPrinter(&buf, Options{Progress: ProgressBar}, false, true)
	renderer := printer.newRenderer()
	if _, ok := renderer.(*barRenderer); !ok {
		t.Fatalf("expected bar renderer, got %T", renderer)
	}
	progress := newProgressWriter(2048, renderer, "clip.mp4")
	_, _ = progress.Write(make([]byte, 2048))
	progress.Finish()
	renderer.Stop()

	if !strings.Contains(buf.String(), "clip.mp4") {
		t.Fatalf("expected label in bar output, got %q", buf.String())
	}
}

func TestPrinterSavedAndFailed(t *testing.T) {
	var buf bytes.Buffer
	printer := newPrinter(&buf, Options{}, false, false)
	printer.Saved("music/song.mp3", 2048)
	printer.Failed(ErrNotFound)

	output := buf.String()
	if !strings.Contains(output, "Saved at 'music/song.mp3' (2.0KB)") {
		t.Fatalf("unexpected saved line: %q", output)
	}
	if !strings.Contains(output, "FAIL file not found") {
		t.Fatalf("unexpected failure line: %q", output)
	}

	var nilPrinter *Printer
	nilPrinter.Saved("x", 1)
	nilPrinter.Log(LogWarn, "ignored")
}
