package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/claude/loadprogress/internal/config"
	"github.com/claude/loadprogress/internal/ingest"
	"github.com/claude/loadprogress/internal/ingest/alpha"
	"github.com/claude/loadprogress/internal/logging"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/queue"
	"github.com/claude/loadprogress/internal/storage"
	"github.com/claude/loadprogress/internal/tracker"
	"github.com/claude/loadprogress/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	file := flag.String("file", "", "path to an Alpha Progression CSV export (required)")
	serverURL := flag.String("server", "", "upload to a LoadProgress server instead of the local store")
	apiKey := flag.String("api-key", os.Getenv("LOADPROGRESS_AUTH_API_KEY"), "API key for -server mode")
	dryRun := flag.Bool("dry-run", false, "parse and validate without storing anything")
	warmups := flag.Bool("warmups", false, "import warmup sets as well")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("loadprogress-import", Version)
		return
	}

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Usage: loadprogress-import -file export.csv [-config config.yaml | -server URL] [-dry-run] [-warmups]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reading export:", err)
		os.Exit(1)
	}

	opts := alpha.Options{IncludeWarmups: *warmups, DryRun: *dryRun}
	ctx := context.Background()

	var result *ingest.Result
	if *serverURL != "" {
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		log.Info("uploading export", "server", *serverURL, "file", *file, "dry_run", *dryRun)
		result, err = upload.NewClient(*serverURL, *apiKey).ImportAlpha(ctx, data, opts)
	} else {
		result, err = importLocal(ctx, *configPath, data, opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "import failed:", err)
		os.Exit(1)
	}

	printResult(result)
}

// importLocal runs the import against the store named in the config file.
func importLocal(ctx context.Context, configPath string, data []byte, opts alpha.Options) (result *ingest.Result, err error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, logCloser := logging.New(cfg.Logging)
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	m := metrics.NewManager(cfg.Metrics.Namespace, "import", prometheus.NewRegistry())
	pub := queue.New(queue.DefaultSize, log, nil)
	defer pub.Close()

	svc := tracker.Build(store, pub, m, log, time.Local, tracker.WithRetentionMonths(cfg.Retention.Months))
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading data: %w", err)
	}

	if opts.DryRun {
		log.Info("DRY RUN mode: nothing will be written to the store")
	}
	return alpha.NewProvider(svc, opts, log.With("component", "alpha")).Import(ctx, bytes.NewReader(data))
}

func printResult(r *ingest.Result) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	if r.DryRun {
		fmt.Println("  (dry run, nothing stored)")
	}
	fmt.Printf("  Sessions:          %d\n", r.Sessions)
	fmt.Printf("  Sets received:     %d\n", r.SetsReceived)
	fmt.Printf("  Sets imported:     %d\n", r.SetsImported)
	fmt.Printf("  Sets skipped:      %d (already stored)\n", r.SetsSkipped)
	fmt.Printf("  Sets rejected:     %d\n", r.SetsRejected)
	fmt.Printf("  Warmups skipped:   %d\n", r.WarmupsSkipped)
	fmt.Printf("  Records achieved:  %d\n", r.RecordsAchieved)

	if len(r.ExercisesCreated) > 0 {
		fmt.Printf("\n  Exercises created:\n")
		for _, name := range r.ExercisesCreated {
			fmt.Printf("    - %s\n", name)
		}
	}
	if len(r.Errors) > 0 {
		fmt.Printf("\n  Errors:\n")
		for _, e := range r.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
	fmt.Println()
}
