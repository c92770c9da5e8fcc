package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/jumppath/internal/config"
	"github.com/udisondev/jumppath/internal/db"
	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/level"
	"github.com/udisondev/jumppath/internal/pathfinder"
	"github.com/udisondev/jumppath/internal/server"
)

const ConfigPath = "config/pathfinder.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv(config.EnvPath); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadPathfinder(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("pathfinder starting",
		"log_level", cfg.LogLevel,
		"workers", cfg.Workers,
		"listen", cfg.Listen.Address)

	graph, err := loadGraph(ctx, cfg)
	if err != nil {
		return err
	}

	pf := pathfinder.New(pathfinder.Options{
		Workers:   cfg.Workers,
		Filtered:  cfg.Filtered,
		QueueSize: cfg.QueueSize,
	})
	pf.SetGraph(graph)

	character := cfg.Character.Settings()
	srv := server.New(pf, server.Config{DefaultCharacter: &character})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pf.Start(gctx)
	})

	g.Go(func() error {
		return pf.Run(gctx, cfg.ResultFlushInterval)
	})

	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Listen.Address)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := pf.Stats()
	slog.Info("pathfinder stopped",
		"requests", stats.Requests,
		"completed", stats.Completed,
		"no_path", stats.NoPath,
		"dropped", stats.Dropped)
	return nil
}

// loadGraph reads the static grid from the database when enabled. A missing
// grid is built from the level map and stored for the next start.
func loadGraph(ctx context.Context, cfg config.Pathfinder) (*gridmap.Graph, error) {
	if !cfg.Database.Enabled {
		return levelGraph(cfg)
	}

	dsn := cfg.Database.DSN()
	if _, err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	repo := db.NewGridRepository(database.Pool())
	graph, err := repo.Load(ctx, cfg.Database.GridName)
	if err == nil {
		return graph, nil
	}
	if !errors.Is(err, db.ErrGridNotFound) {
		return nil, fmt.Errorf("loading grid: %w", err)
	}

	graph, err = levelGraph(cfg)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, cfg.Database.GridName, graph); err != nil {
		return nil, fmt.Errorf("saving grid: %w", err)
	}
	slog.Info("grid stored in database", "grid", cfg.Database.GridName)
	return graph, nil
}

func levelGraph(cfg config.Pathfinder) (*gridmap.Graph, error) {
	if cfg.Level.Path == "" {
		slog.Warn("no level configured, starting with an empty grid")
		return gridmap.New(gridmap.NewStep(cfg.Grid.StepX, cfg.Grid.StepY)), nil
	}

	dir, name := filepath.Split(cfg.Level.Path)
	if dir == "" {
		dir = "."
	}
	lvl, err := level.LoadTMX(os.DirFS(dir), name, level.Options{
		CollisionLayer:        cfg.Level.CollisionLayer,
		UntraversableProperty: cfg.Level.UntraversableProperty,
	})
	if err != nil {
		return nil, fmt.Errorf("loading level: %w", err)
	}
	return lvl.Graph(), nil
}
