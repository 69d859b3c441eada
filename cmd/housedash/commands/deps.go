package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/housedash/internal/dashboard"
	"github.com/wonny/housedash/internal/dataset"
	"github.com/wonny/housedash/internal/forecast"
	"github.com/wonny/housedash/internal/ranking"
	"github.com/wonny/housedash/pkg/config"
	"github.com/wonny/housedash/pkg/httputil"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

// deps is the wired pipeline shared by every command
type deps struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *dataset.Store
	metrics *telemetry.Metrics
	service *dashboard.Service
}

// buildDeps loads config, reads the dataset and wires the dashboard service.
// A missing or unreadable dataset is fatal.
func buildDeps(ctx context.Context) (*deps, error) {
	// 1. Load config
	cfg, err := config.LoadWithOverrides(configFile, datasetPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Metrics (nil = disabled)
	var m *telemetry.Metrics
	if cfg.MetricsEnabled {
		m = telemetry.New()
	}

	// 4. Load dataset
	client := httputil.New(cfg, log)
	if cfg.HTTPMaxRetries == 0 {
		client.DisableRetry()
	} else {
		client.WithRetry(cfg.HTTPMaxRetries, time.Second)
	}
	if cfg.HTTPRateLimit > 0 {
		client.WithRateLimit(cfg.HTTPRateLimit, 1)
	}
	loader := dataset.NewLoader(client, cfg.Dataset.MetadataColumns, log)
	store := dataset.NewStore(loader, cfg.Dataset.Path)

	table, err := store.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.Dataset.Path, err)
	}
	q := table.Quality()
	m.SetDataset(q.Observations, q.Regions, q.PriceCoverage)

	// 5. Wire pipeline
	svc := dashboard.NewService(
		store,
		ranking.NewRanker(cfg.Ranking.Size, log),
		forecast.NewForecaster(cfg.Forecast, log),
		m,
		log,
	)

	return &deps{
		cfg:     cfg,
		log:     log,
		store:   store,
		metrics: m,
		service: svc,
	}, nil
}
