package jobs

import (
	"context"
	"errors"

	"github.com/wonny/housedash/internal/dataset"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

// ErrUnusableDataset is returned when the loaded table cannot drive the dashboard
var ErrUnusableDataset = errors.New("dataset has no usable prices")

// TableSource provides the current table snapshot
type TableSource interface {
	Current() (*dataset.Table, error)
}

// QualityJob publishes a coverage snapshot of the loaded table
type QualityJob struct {
	tables   TableSource
	schedule string
	metrics  *telemetry.Metrics
	logger   *logger.Logger
}

// NewQualityJob creates a new quality job. m may be nil.
func NewQualityJob(tables TableSource, schedule string, m *telemetry.Metrics, log *logger.Logger) *QualityJob {
	return &QualityJob{
		tables:   tables,
		schedule: schedule,
		metrics:  m,
		logger:   log,
	}
}

// Name returns the job name
func (j *QualityJob) Name() string {
	return "dataset_quality"
}

// Schedule returns the cron schedule
func (j *QualityJob) Schedule() string {
	return j.schedule
}

// Run computes the snapshot and updates the dataset gauges
func (j *QualityJob) Run(ctx context.Context) error {
	table, err := j.tables.Current()
	if err != nil {
		return err
	}

	q := table.Quality()
	j.metrics.SetDataset(q.Observations, q.Regions, q.PriceCoverage)

	log := j.logger.WithFields(map[string]interface{}{
		"source":         q.Source,
		"regions":        q.Regions,
		"observations":   q.Observations,
		"missing_dates":  q.MissingDates,
		"missing_prices": q.MissingPrices,
		"coverage":       q.PriceCoverage,
	})

	if !q.IsUsable() {
		log.Error("Dataset quality check failed")
		return ErrUnusableDataset
	}
	if len(q.UnpricedRegions) > 0 {
		log.Warnf("%d regions without any price", len(q.UnpricedRegions))
		return nil
	}

	log.Info("Dataset quality snapshot")
	return nil
}
