// Package main scans an audio file or a library directory once and prints
// the extracted track tables as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/listenupapp/cuescan/internal/domain"
	"github.com/listenupapp/cuescan/internal/logger"
	"github.com/listenupapp/cuescan/internal/scanner"
	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/internal/sidecar"
	"github.com/listenupapp/cuescan/internal/store"
	"github.com/listenupapp/cuescan/internal/store/sqlite"
)

type options struct {
	catalog  string
	charset  string
	ffprobe  string
	logLevel string
	workers  int
	timeout  time.Duration
	force    bool
	progress bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "cuescan: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (options, string, error) {
	var opts options

	fs := flag.NewFlagSet("cuescan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: cuescan [flags] <file-or-directory>")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.catalog, "catalog", "", "Catalog database to update; empty means print only")
	fs.StringVar(&opts.charset, "cue-charset", "", "Fallback charset for non-UTF-8 sidecar cuesheets")
	fs.StringVar(&opts.ffprobe, "ffprobe-path", "", "ffprobe binary for APE and WavPack")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.IntVar(&opts.workers, "workers", 0, "Analysis workers; 0 means one per CPU")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Abort the scan after this long; 0 disables")
	fs.BoolVar(&opts.force, "force", false, "Re-analyze files the catalog already has")
	fs.BoolVar(&opts.progress, "progress", false, "Report progress on stderr")

	if err := fs.Parse(args); err != nil {
		return opts, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, "", fmt.Errorf("expected one path, got %d", fs.NArg())
	}
	return opts, fs.Arg(0), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, target, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Writer: stderr,
		Level:  logger.ParseLevel(opts.logLevel),
	})

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	osFs := afero.NewOsFs()
	locator, err := sidecar.NewLocator(osFs, opts.charset, log.Logger)
	if err != nil {
		return err
	}

	var fallback audio.Reader
	if probe := audio.NewFFprobeReader(opts.ffprobe); probe.Available() {
		fallback = probe
	}
	reader := audio.NewNativeReader(log.Logger, fallback)

	// The scanner treats a nil store as a dry run. It must be an untyped
	// nil, not a nil *sqlite.Store.
	var st store.Store
	if opts.catalog != "" {
		db, err := sqlite.Open(opts.catalog, log.Logger)
		if err != nil {
			return err
		}
		defer db.Close()
		st = db
	}

	s := scanner.NewScanner(st,
		scanner.NewWalker(osFs, log.Logger),
		scanner.NewAnalyzer(reader, locator, log.Logger),
		scanner.NewDiffer(log.Logger, locator.ModTime),
		log.Logger,
	)

	info, err := osFs.Stat(target)
	if err != nil {
		return err
	}

	scanOpts := scanner.ScanOptions{
		Workers: opts.workers,
		Force:   opts.force,
	}

	var files []*domain.AudioFile
	if info.IsDir() {
		if opts.progress {
			scanOpts.OnProgress = func(p *scanner.Progress) {
				fmt.Fprintf(stderr, "[%s] %d/%d %s\n", p.Phase, p.Current, p.Total, p.CurrentItem)
			}
		}
		result, err := s.Scan(ctx, target, scanOpts)
		if err != nil {
			return err
		}
		files = result.Items
		log.Info("scan complete",
			"files", result.Files,
			"added", result.Added,
			"updated", result.Updated,
			"removed", result.Removed,
			"unchanged", result.Unchanged,
			"errors", result.Errors,
		)
	} else {
		f, err := s.ScanFile(ctx, target, scanOpts)
		if err != nil {
			return err
		}
		files = []*domain.AudioFile{f}
	}

	if files == nil {
		files = []*domain.AudioFile{}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}
