package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/statusmonitor/internal/config"
	"github.com/hamed0406/statusmonitor/internal/httpapi"
	"github.com/hamed0406/statusmonitor/internal/logging"
	"github.com/hamed0406/statusmonitor/internal/probe"
	"github.com/hamed0406/statusmonitor/internal/query"
	"github.com/hamed0406/statusmonitor/internal/repo"
	"github.com/hamed0406/statusmonitor/internal/repo/file"
	"github.com/hamed0406/statusmonitor/internal/repo/memory"
	pg "github.com/hamed0406/statusmonitor/internal/repo/postgres"
	"github.com/hamed0406/statusmonitor/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "statusmonitor:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		logger.Error("targets_load_failed", zap.String("file", cfg.TargetsFile), zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openStateStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("state_backend_failed", zap.Error(err))
		return err
	}
	defer closeBackend()

	state := memory.New(targets, cfg.HistoryCapacity)
	persister := repo.NewPersister(logger, backend, state.TargetNames(), state.Capacity())
	state.Restore(persister.Load(ctx))

	mon := scheduler.NewMonitor(
		logger,
		state,
		probe.NewHTTPChecker(cfg.DNSDiagnostics),
		persister,
		cfg.CheckInterval,
		cfg.MaxConcurrentChecks,
	)

	api := httpapi.NewServer(logger, query.NewService(state))
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Router(httpapi.RouterOptions{
			APIKeys:        cfg.PublicAPIKeys,
			AllowedOrigins: cfg.AllowedOrigins,
			RatePerMin:     cfg.PublicRPM,
			Burst:          cfg.PublicBurst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mon.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.Int("targets", len(targets)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()

	// The monitor has stopped; retry the last committed state once in case
	// the final cycle's save failed.
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Append(err, persister.Save(sctx, state.Snapshot()))

	if err != nil {
		logger.Error("shutdown_with_errors", zap.Error(err))
		return err
	}
	logger.Info("shutdown_complete")
	return nil
}

// openStateStore picks Postgres when DATABASE_URL is set and the JSON state
// file otherwise.
func openStateStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.StateStore, func(), error) {
	if cfg.DatabaseURL != "" {
		st, err := pg.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return st, st.Close, nil
	}
	logger.Info("file_state_ready", zap.String("path", cfg.StateFile))
	return file.New(cfg.StateFile), func() {}, nil
}
