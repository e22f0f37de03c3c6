package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lvcoi/y2mate-dl/internal/app"
	"github.com/lvcoi/y2mate-dl/internal/downloader"
	"github.com/lvcoi/y2mate-dl/internal/logging"
)

// qualityFlag distinguishes "not given" from an explicit value.
type qualityFlag struct {
	value *int
}

func (q *qualityFlag) String() string {
	if q == nil || q.value == nil {
		return ""
	}
	return strconv.Itoa(*q.value)
}

func (q *qualityFlag) Set(raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid quality %q: %w", raw, err)
	}
	q.value = &v
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	var cfg app.Config
	var quality qualityFlag
	var verbose, debug, showVersion bool
	var progress, onDuplicate string

	flag.StringVar(&cfg.Format, "f", "mp3", "output format: m4a, mp3, mp4")
	flag.StringVar(&cfg.Format, "format", "mp3", "output format: m4a, mp3, mp4")
	flag.Var(&quality, "q", "preferred quality (closest available is used)")
	flag.Var(&quality, "quality", "preferred quality (closest available is used)")
	flag.BoolVar(&cfg.ListOnly, "list", false, "only show the available formats and qualities")
	flag.BoolVar(&cfg.ListFormatOnly, "list-format", false, "with -list, show only the chosen format")
	flag.BoolVar(&cfg.CurrentDir, "cd", false, "save files in the current directory")
	flag.BoolVar(&cfg.MP3Convert, "mp3-convert", false, "use the MP3 converter service (requires -f mp3)")
	flag.BoolVar(&verbose, "v", false, "show process status")
	flag.BoolVar(&verbose, "verbose", false, "show process status")
	flag.BoolVar(&debug, "d", false, "show debug info, including HTTP exchanges")
	flag.BoolVar(&debug, "debug", false, "show debug info, including HTTP exchanges")
	flag.StringVar(&progress, "progress", "auto", "progress display: auto, tui, bar, plain")
	flag.StringVar(&onDuplicate, "on-duplicate", "prompt", "existing file policy: prompt, overwrite, rename")
	flag.StringVar(&cfg.HistoryPath, "history", envOr("Y2MATE_HISTORY_DB", ""), "record downloads in this SQLite database")
	flag.IntVar(&cfg.HistoryList, "history-list", 0, "print the N most recent history entries and exit")
	flag.BoolVar(&cfg.NoTags, "no-tags", false, "do not write the title into the saved file")
	flag.IntVar(&cfg.ResolveAttempts, "resolve-attempts", app.DefaultResolveAttempts, "restart resolution at most this many times (0 = no limit)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), app.Project.Banner())
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] <url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("%s %s\n", app.Project.Title, app.Project.Version)
		return
	}

	cfg.URL = flag.Arg(0)
	cfg.Quality = quality.value
	cfg.Dirs = downloader.Dirs{
		Audio: envOr("Y2MATE_AUDIO_FOLDER", ""),
		Video: envOr("Y2MATE_VIDEO_FOLDER", "./"),
	}

	mode, err := downloader.ParseProgressMode(progress)
	if err != nil {
		fail(err)
	}
	policy, err := downloader.ParseDuplicatePolicy(onDuplicate)
	if err != nil {
		fail(err)
	}
	cfg.Download = downloader.Options{Progress: mode, OnDuplicate: policy}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, app.ErrNoURL) {
			flag.Usage()
		}
		fail(err)
	}

	logger, err := logging.New(logging.Level(verbose, debug))
	if err != nil {
		fail(err)
	}
	code := run(cfg, logger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg app.Config, logger *zap.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return downloader.ExitCode(err)
	}
	defer runner.Close()

	if cfg.HistoryList > 0 {
		if err := runner.ListHistory(); err != nil {
			runner.Printer.Failed(err)
			return downloader.ExitCode(err)
		}
		return 0
	}

	if _, err := runner.Run(ctx); err != nil {
		if downloader.CategoryOf(err) == downloader.CategoryInterrupted {
			logger.Info("task cancelled by user")
		}
		if !downloader.IsReported(err) {
			runner.Printer.Failed(err)
		}
		return downloader.ExitCode(err)
	}
	return 0
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(downloader.ExitCode(err))
}
