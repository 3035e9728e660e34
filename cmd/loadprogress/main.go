package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"

	"github.com/claude/loadprogress/internal/backup"
	"github.com/claude/loadprogress/internal/config"
	"github.com/claude/loadprogress/internal/logging"
	"github.com/claude/loadprogress/internal/mcp"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/queue"
	"github.com/claude/loadprogress/internal/scheduler"
	"github.com/claude/loadprogress/internal/server"
	"github.com/claude/loadprogress/internal/storage"
	"github.com/claude/loadprogress/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	migrateOnly := flag.Bool("migrate-only", false, "open the store (running migrations for postgres) and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("loadprogress", Version)
		return
	}

	if err := run(*configPath, *envPath, *migrateOnly); err != nil {
		fmt.Fprintln(os.Stderr, "loadprogress:", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string, migrateOnly bool) (err error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, logCloser := logging.New(cfg.Logging)
	defer func() { err = multierr.Append(err, logCloser.Close()) }()
	log.Info("LoadProgress starting", "version", Version, "backend", cfg.Storage.Backend)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager(cfg.Metrics.Namespace, "", reg)

	pub := queue.New(queue.DefaultSize, log.With("component", "queue"), m.CounterQueueDropped.Inc)
	defer pub.Close()

	svc := tracker.Build(store, pub, m, log, time.Local, tracker.WithRetentionMonths(cfg.Retention.Months))
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	if n, err := svc.CleanupRetention(ctx); err != nil {
		log.Warn("startup retention cleanup failed", "error", err)
	} else if n > 0 {
		log.Info("startup retention cleanup", "deleted", n)
	}

	backups := backup.New(store, cfg.Backup.Dir, log.With("component", "backup"), m)

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = reg
	}
	srv := server.New(svc, backups, m, gatherer, cfg.Auth.APIKey, log)
	srv.MountMCP(mcp.NewHTTPHandler(mcp.New(mcp.NewLocal(svc), Version, log.With("component", "mcp"))))

	sched := scheduler.New(log.With("component", "scheduler"))
	if err := sched.Add(scheduler.JobRetention, cfg.Retention.Schedule, scheduler.RetentionJob(svc, log)); err != nil {
		return err
	}
	autoBackup := func() bool { return svc.Settings.Get().AutoBackupEnabled }
	if err := sched.Add(scheduler.JobBackup, cfg.Backup.Schedule, scheduler.BackupJob(backups, autoBackup, log)); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	listener, tsCloser, err := listen(cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, tsCloser.Close()) }()

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		return fmt.Errorf("serving: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}

// listen opens a tsnet listener when tailscale is enabled, otherwise a plain
// TCP listener on the configured address.
func listen(cfg *config.Config, log *slog.Logger) (net.Listener, io.Closer, error) {
	if !cfg.Tailscale.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("listening on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "plain http")
		return ln, nopCloser{}, nil
	}

	ts := &tsnet.Server{
		Hostname: cfg.Tailscale.Hostname,
		Dir:      cfg.Tailscale.StateDir,
		AuthKey:  cfg.Tailscale.AuthKey,
	}
	if err := ts.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting tsnet: %w", err)
	}
	ln, err := ts.Listen("tcp", ":80")
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("tsnet listen: %w", err), ts.Close())
	}
	log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	return ln, ts, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
