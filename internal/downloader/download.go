package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultTimeoutStep = 60 * time.Second
	DefaultChunkSize   = 1024
	partSuffix         = ".part"
)

// Options describes how files are fetched and displayed.
type Options struct {
	Quiet       bool
	Progress    ProgressMode
	OnDuplicate DuplicatePolicy
	// InitialTimeout bounds the wait for the file host's response headers.
	InitialTimeout time.Duration
	// TimeoutStep is added to the timeout after each HTTP 522.
	TimeoutStep time.Duration
	ChunkSize   int
}

func (o Options) withDefaults() Options {
	if o.InitialTimeout <= 0 {
		o.InitialTimeout = DefaultTimeout
	}
	if o.TimeoutStep <= 0 {
		o.TimeoutStep = DefaultTimeoutStep
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.OnDuplicate == "" {
		o.OnDuplicate = DuplicatePolicyPrompt
	}
	return o
}

// State is a step of a single download attempt.
type State int

const (
	StateRequesting State = iota
	StateRetrying
	StateSaving
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequesting:
		return "requesting"
	case StateRetrying:
		return "retrying"
	case StateSaving:
		return "saving"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Target is a resolved file link and where it should be saved.
type Target struct {
	URL      string
	Dir      string
	FileName string
}

// Attempt records one request against the file host.
type Attempt struct {
	Status  int
	Timeout time.Duration
}

// Result describes a finished or failed download.
type Result struct {
	Path     string
	FileName string
	Bytes    int64
	Size     int64
	Renamed  bool
	Attempts []Attempt
}

// Downloader streams one resolved link to disk.
type Downloader struct {
	Options  Options
	Prompter Prompter
	Printer  *Printer
	Logger   *zap.Logger
	// OnState, when set, observes every state transition.
	OnState func(State)
}

// New returns a Downloader. A nil printer discards output and a nil
// logger drops diagnostics.
func New(opts Options, prompter Prompter, printer *Printer, logger *zap.Logger) *Downloader {
	opts = opts.withDefaults()
	if printer == nil {
		printer = newPrinter(io.Discard, Options{Quiet: true, Progress: ProgressPlain}, false, false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{Options: opts, Prompter: prompter, Printer: printer, Logger: logger}
}

// Download fetches target.URL and writes it below target.Dir.
func (d *Downloader) Download(ctx context.Context, target Target) (Result, error) {
	opts := d.Options.withDefaults()
	result := Result{
		Path:     OutputPath(target.Dir, target.FileName),
		FileName: target.FileName,
	}

	resp, client, err := d.request(ctx, target.URL, opts, &result)
	if err != nil {
		d.transition(StateFailed)
		return result, err
	}
	defer client.CloseIdleConnections()
	defer resp.Body.Close()

	d.transition(StateSaving)
	c, err := resolveCollision(ctx, result.Path, result.FileName, opts.OnDuplicate, d.Prompter, d.Printer)
	if err != nil {
		d.transition(StateFailed)
		return result, err
	}
	result.Path, result.FileName, result.Renamed = c.path, c.fileName, c.renamed

	result.Size = resp.ContentLength
	if result.Size < 0 {
		result.Size = 0
	}
	written, err := d.save(ctx, resp.Body, result.Size, result.Path, result.FileName, opts.ChunkSize)
	result.Bytes = written
	if err != nil {
		d.transition(StateFailed)
		return result, err
	}
	d.transition(StateDone)
	d.Logger.Info("file saved", zap.String("path", result.Path), zap.Int64("bytes", written))
	return result, nil
}

// request issues the GET until the host answers 200. An HTTP 522 asks the
// operator whether to try again with a longer timeout; there is no limit
// on how often that can happen. The returned client owns the response's
// connection; the caller closes its idle connections when done.
func (d *Downloader) request(ctx context.Context, link string, opts Options, result *Result) (*http.Response, *http.Client, error) {
	timeout := opts.InitialTimeout
	for {
		d.transition(StateRequesting)
		d.Logger.Info("requesting file", zap.String("url", link), zap.Duration("timeout", timeout))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
		if err != nil {
			return nil, nil, WrapCategory(CategoryInvalidURL, fmt.Errorf("building file request: %w", err))
		}
		req.Header.Set("User-Agent", BrowserUserAgent)
		req.Header.Set("Connection", "Keep-Alive")

		client := newFileClient(timeout, d.Logger)
		resp, err := client.Do(req)
		if err != nil {
			client.CloseIdleConnections()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, WrapCategory(CategoryInterrupted, ctxErr)
			}
			return nil, nil, WrapCategory(CategoryNetwork, fmt.Errorf("requesting file: %w", err))
		}
		result.Attempts = append(result.Attempts, Attempt{Status: resp.StatusCode, Timeout: timeout})

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, client, nil
		case http.StatusNotFound:
			resp.Body.Close()
			client.CloseIdleConnections()
			d.Logger.Warn("file host answered 404")
			return nil, nil, WrapCategory(CategoryNotFound, ErrNotFound)
		case 522:
			resp.Body.Close()
			client.CloseIdleConnections()
			d.Printer.Log(LogError, "Server error: HTTP 522 connection timeout!")
			if d.Prompter == nil {
				return nil, nil, WrapCategory(CategoryNetwork, ErrServerTimeout)
			}
			retry, err := d.Prompter.Confirm(ctx, "Do you want to retry?")
			if err != nil {
				return nil, nil, err
			}
			if !retry {
				d.Printer.Log(LogWarn, "Cancelled by user!")
				return nil, nil, MarkReported(WrapCategory(CategoryInterrupted, fmt.Errorf("%w: %w", ErrAborted, ErrServerTimeout)))
			}
			timeout += opts.TimeoutStep
			d.transition(StateRetrying)
			d.Printer.Notice(fmt.Sprintf("Retrying with timeout of %d seconds...", int(timeout.Seconds())))
		default:
			resp.Body.Close()
			client.CloseIdleConnections()
			return nil, nil, WrapCategory(CategoryNetwork, fmt.Errorf("unexpected status %d from file host", resp.StatusCode))
		}
	}
}

// save copies body into path chunk by chunk. The data lands in a ".part"
// file first; it is renamed on success and removed on any failure.
func (d *Downloader) save(ctx context.Context, body io.Reader, size int64, path, label string, chunkSize int) (written int64, err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, WrapCategory(CategoryFilesystem, fmt.Errorf("creating output directory: %w", err))
		}
	}

	partPath := path + partSuffix
	file, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, WrapCategory(CategoryFilesystem, fmt.Errorf("opening output file: %w", err))
	}
	closed := false
	defer func() {
		if !closed {
			file.Close()
		}
		if err != nil {
			os.Remove(partPath)
		}
	}()

	renderer := d.Printer.newRenderer()
	defer renderer.Stop()
	progress := newProgressWriter(size, renderer, label)
	writer := io.MultiWriter(file, progress)

	buf := make([]byte, chunkSize)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return progress.Written(), WrapCategory(CategoryInterrupted, ctxErr)
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := writer.Write(buf[:n]); err != nil {
				return progress.Written(), WrapCategory(CategoryFilesystem, fmt.Errorf("writing output file: %w", err))
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return progress.Written(), WrapCategory(CategoryInterrupted, ctxErr)
			}
			return progress.Written(), WrapCategory(CategoryNetwork, fmt.Errorf("download failed: %w", readErr))
		}
	}
	progress.Finish()

	closed = true
	if err := file.Close(); err != nil {
		return progress.Written(), WrapCategory(CategoryFilesystem, fmt.Errorf("closing output file: %w", err))
	}
	if err := os.Rename(partPath, path); err != nil {
		return progress.Written(), WrapCategory(CategoryFilesystem, fmt.Errorf("renaming output file: %w", err))
	}
	return progress.Written(), nil
}

func (d *Downloader) transition(s State) {
	if d.OnState != nil {
		d.OnState(s)
	}
}
