package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lvcoi/y2mate-dl/internal/db"
	"github.com/lvcoi/y2mate-dl/internal/downloader"
	"github.com/lvcoi/y2mate-dl/internal/y2mate"
)

const (
	DefaultResolveAttempts = 5
	defaultResolveBackoff  = time.Second
	maxResolveBackoff      = 8 * time.Second
)

var (
	ErrNoHistory         = errors.New("-history-list needs a history database (-history or Y2MATE_HISTORY_DB)")
	ErrNoURL             = errors.New("you must give me a video url")
	ErrConvertNeedsMP3   = errors.New("you must specify '-f mp3' to use '-mp3-convert'")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Config is everything one run needs.
type Config struct {
	URL     string
	Format  string
	Quality *int
	// ListOnly prints the available options and stops.
	ListOnly bool
	// ListFormatOnly narrows the listing to Format.
	ListFormatOnly bool
	CurrentDir     bool
	MP3Convert     bool
	Dirs           downloader.Dirs
	// ResolveAttempts bounds how often resolution restarts; 0 means forever.
	ResolveAttempts int
	ResolveBackoff  time.Duration
	NoTags          bool
	HistoryPath     string
	// HistoryList prints this many recent history rows instead of downloading.
	HistoryList int
	Download        downloader.Options
}

// Validate checks flag combinations before any network work.
func (c Config) Validate() error {
	if c.HistoryList > 0 {
		if c.HistoryPath == "" {
			return ErrNoHistory
		}
		return nil
	}
	if c.URL == "" {
		return downloader.WrapCategory(downloader.CategoryInvalidURL, ErrNoURL)
	}
	if !isKnownFormat(c.Format) {
		return downloader.WrapCategory(downloader.CategoryUnsupported, fmt.Errorf("%w: %q (expected one of %v)", ErrUnsupportedFormat, c.Format, y2mate.Formats))
	}
	if c.MP3Convert && c.Format != "mp3" {
		return ErrConvertNeedsMP3
	}
	return nil
}

func isKnownFormat(format string) bool {
	for _, f := range y2mate.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (c Config) mode() y2mate.Mode {
	if c.MP3Convert {
		return y2mate.ModeConverter
	}
	return y2mate.ModeDownloader
}

// Outcome describes what a run resolved and saved.
type Outcome struct {
	VideoID string
	Options y2mate.Options
	Quality int
	Link    string
	Listed  bool
	Result  downloader.Result
}

// Runner drives one URL through resolve, select, convert, and download.
type Runner struct {
	Config     Config
	Client     *y2mate.Client
	Downloader *downloader.Downloader
	Printer    *downloader.Printer
	History    *db.DB
	Logger     *zap.Logger
	// Stdout receives the option listing.
	Stdout io.Writer
	// Tag writes the title into the saved file.
	Tag func(path, title string) error
}

// New wires the production dependencies for cfg.
func New(cfg Config, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	printer := downloader.NewPrinter(cfg.Download)
	// The ajax calls have no deadline: converter mode transcodes on the
	// server before answering. Only the file request is bounded.
	httpClient := downloader.NewHTTPClient(0, logger)

	client := y2mate.NewClient(httpClient, logger)
	client.Titles = y2mate.NewYouTubeTitles(httpClient)

	r := &Runner{
		Config:     cfg,
		Client:     client,
		Downloader: downloader.New(cfg.Download, downloader.NewStdinPrompter(), printer, logger),
		Printer:    printer,
		Logger:     logger,
		Stdout:     os.Stdout,
		Tag:        downloader.TagTitle,
	}
	if cfg.HistoryPath != "" {
		history, err := db.Open(cfg.HistoryPath)
		if err != nil {
			return nil, downloader.WrapCategory(downloader.CategoryFilesystem, err)
		}
		r.History = history
	}
	return r, nil
}

// Close releases the history database and idle connections.
func (r *Runner) Close() error {
	downloader.CloseIdleConnections()
	return r.History.Close()
}

// Run processes r.Config.URL.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	var out Outcome
	if err := r.Config.Validate(); err != nil {
		return out, err
	}

	r.Logger.Info("decoding video id", zap.String("url", r.Config.URL))
	id, err := y2mate.VideoIDFromURL(r.Config.URL)
	if err != nil {
		return out, downloader.WrapCategory(downloader.CategoryInvalidURL, err)
	}
	out.VideoID = id
	r.noteEarlierDownloads(id)

	for attempt := 1; ; attempt++ {
		err = r.resolve(ctx, &out)
		if err == nil || !errors.Is(err, y2mate.ErrRemoteUnavailable) {
			break
		}
		if limit := r.Config.ResolveAttempts; limit > 0 && attempt >= limit {
			return out, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		delay := r.backoff(attempt)
		r.Logger.Warn("error getting options, restarting", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		if err := downloader.SleepContext(ctx, delay); err != nil {
			return out, downloader.WrapCategory(downloader.CategoryInterrupted, err)
		}
	}
	if err != nil {
		return out, err
	}
	if out.Listed {
		return out, nil
	}

	fileName := downloader.FileName(out.Options.Title, r.Config.Format)
	dir := downloader.OutputDir(r.Config.Dirs, y2mate.IsAudioFormat(r.Config.Format), r.Config.CurrentDir)
	result, err := r.Downloader.Download(ctx, downloader.Target{URL: out.Link, Dir: dir, FileName: fileName})
	out.Result = result
	if err != nil {
		return out, err
	}

	tagged, tagErr := r.tag(result.Path, out.Options.Title)
	r.record(out, tagged, tagErr)
	r.Printer.Saved(result.Path, result.Bytes)
	return out, nil
}

// resolve fetches the options and, unless only listing, the file link.
// Any ErrRemoteUnavailable from either round-trip restarts the whole step
// since the token is tied to the analyze response.
func (r *Runner) resolve(ctx context.Context, out *Outcome) error {
	mode := r.Config.mode()
	opts, err := r.Client.Analyze(ctx, out.VideoID, mode)
	if err != nil {
		return err
	}
	out.Options = opts

	if r.Config.ListOnly {
		formats := opts.Families()
		if r.Config.ListFormatOnly {
			formats = []string{r.Config.Format}
		}
		WriteOptions(r.Stdout, opts, formats)
		out.Listed = true
		return nil
	}

	quality, err := y2mate.SelectQuality(opts, r.Config.Format, r.Config.Quality)
	if err != nil {
		return downloader.WrapCategory(downloader.CategoryUnsupported, err)
	}
	out.Quality = quality
	r.Logger.Info("selected quality", zap.String("format", r.Config.Format), zap.Int("quality", quality))

	if mode == y2mate.ModeConverter {
		r.Printer.Notice("This may take a while, please be patient!")
	}
	link, err := r.Client.Convert(ctx, opts, out.VideoID, r.Config.Format, quality)
	if err != nil {
		return err
	}
	out.Link = link
	return nil
}

// ListHistory writes the most recent HistoryList rows to Stdout.
func (r *Runner) ListHistory() error {
	if r.History == nil {
		return ErrNoHistory
	}
	records, err := r.History.List(r.Config.HistoryList, 0)
	if err != nil {
		return downloader.WrapCategory(downloader.CategoryFilesystem, err)
	}
	total, err := r.History.Count()
	if err != nil {
		return downloader.WrapCategory(downloader.CategoryFilesystem, err)
	}
	WriteHistory(r.Stdout, records, total)
	return nil
}

func (r *Runner) noteEarlierDownloads(videoID string) {
	if r.History == nil {
		return
	}
	records, err := r.History.ByVideo(videoID)
	if err != nil {
		r.Logger.Warn("history lookup failed", zap.String("video_id", videoID), zap.Error(err))
		return
	}
	if len(records) > 0 {
		r.Logger.Info("video already in history", zap.String("video_id", videoID), zap.Int("times", len(records)))
		r.Printer.Notice(fmt.Sprintf("Video downloaded %d time(s) before, last as '%s'", len(records), records[0].FilePath))
	}
}

func (r *Runner) backoff(attempt int) time.Duration {
	base := r.Config.ResolveBackoff
	if base <= 0 {
		base = defaultResolveBackoff
	}
	delay := base << (attempt - 1)
	if delay > maxResolveBackoff || delay <= 0 {
		delay = maxResolveBackoff
	}
	return delay
}

func (r *Runner) tag(path, title string) (bool, error) {
	if r.Config.NoTags || r.Tag == nil {
		return false, nil
	}
	err := r.Tag(path, title)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, downloader.ErrTaggingUnsupported):
		return false, nil
	default:
		r.Printer.Log(downloader.LogWarn, fmt.Sprintf("title tag not written: %v", err))
		return false, err
	}
}

func (r *Runner) record(out Outcome, tagged bool, tagErr error) {
	if r.History == nil {
		return
	}
	record := db.Record{
		Title:     out.Options.Title,
		VideoID:   out.VideoID,
		SourceURL: y2mate.WatchURL(out.VideoID),
		Format:    r.Config.Format,
		Quality:   out.Quality,
		Mode:      out.Options.Mode.String(),
		FilePath:  out.Result.Path,
		FileSize:  out.Result.Bytes,
		Renamed:   out.Result.Renamed,
		Tagged:    tagged,
	}
	if tagErr != nil {
		record.TagError = tagErr.Error()
	}
	if _, err := r.History.Save(record); err != nil {
		r.Logger.Warn("history not recorded", zap.Error(err))
	}
}
