package jobs

import (
	"context"

	"github.com/wonny/housedash/internal/dataset"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

// Reloader swaps in a freshly loaded table
type Reloader interface {
	Reload(ctx context.Context) (*dataset.Table, error)
}

// ReloadJob re-reads the dataset source. On failure the previous table stays live.
type ReloadJob struct {
	store    Reloader
	schedule string
	metrics  *telemetry.Metrics
	logger   *logger.Logger
}

// NewReloadJob creates a new reload job. m may be nil.
func NewReloadJob(store Reloader, schedule string, m *telemetry.Metrics, log *logger.Logger) *ReloadJob {
	return &ReloadJob{
		store:    store,
		schedule: schedule,
		metrics:  m,
		logger:   log,
	}
}

// Name returns the job name
func (j *ReloadJob) Name() string {
	return "dataset_reload"
}

// Schedule returns the cron schedule
func (j *ReloadJob) Schedule() string {
	return j.schedule
}

// Run reloads the table and refreshes the dataset gauges
func (j *ReloadJob) Run(ctx context.Context) error {
	table, err := j.store.Reload(ctx)
	j.metrics.ObserveReload(err)
	if err != nil {
		return err
	}

	q := table.Quality()
	j.metrics.SetDataset(q.Observations, q.Regions, q.PriceCoverage)

	j.logger.WithFields(map[string]interface{}{
		"source":    table.Source(),
		"regions":   q.Regions,
		"loaded_at": table.LoadedAt(),
	}).Info("Dataset reloaded")
	return nil
}
