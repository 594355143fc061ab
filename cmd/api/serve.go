package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pkordes/tagstore/internal/config"
	"github.com/pkordes/tagstore/internal/middleware"
	"github.com/pkordes/tagstore/internal/repo"
	"github.com/pkordes/tagstore/internal/service"
	"github.com/pkordes/tagstore/internal/store"
)

func newServeCmd(cfg *config.Config, logger **slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *cfg, *logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ----------------------------------------------------------
	tags, closeRepo, err := openRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	tagStore := store.New(tags,
		store.WithContainer(cfg.TagsContainer),
		store.WithDefaultActor(cfg.DefaultPrincipal),
		store.WithLogger(logger),
	)
	svc := service.NewTagService(tagStore, logger)

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, svc, logger, metrics),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "driver", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Graceful shutdown: wait for a signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// openRepo connects the engine selected by STORE_DRIVER. The returned func
// releases it.
func openRepo(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.TagRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverBadger:
		bcfg := repo.DefaultBadgerConfig(cfg.BadgerPath)
		if cfg.BadgerInMemory {
			bcfg = repo.InMemoryBadgerConfig()
		}
		bcfg.Logger = logger
		db, err := repo.OpenBadger(bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger: %w", err)
		}
		logger.Info("badger store opened", "path", bcfg.Path, "in_memory", bcfg.InMemory)
		return repo.NewBadgerTagRepo(db), func() {
			if err := db.Close(); err != nil {
				logger.Error("close badger", "error", err)
			}
		}, nil

	default:
		// New() does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info("database connection established")
		return repo.NewTagRepo(pool, logger), pool.Close, nil
	}
}
