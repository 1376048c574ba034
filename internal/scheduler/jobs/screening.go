package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// DailyRunner runs the combined daily screening pass
type DailyRunner interface {
	RunDaily(ctx context.Context) ([]*contracts.Report, error)
}

// Refresher runs a single screener and persists its snapshot
type Refresher interface {
	Refresh(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error)
}

// DailyScreenJob runs magic formula, value scan and piotroski once per day
// ⭐ SSOT: 일일 스크리닝 스케줄은 이 Job에서만
type DailyScreenJob struct {
	runner   DailyRunner
	schedule string
	logger   *logger.Logger
}

// NewDailyScreenJob creates a new daily screening job
func NewDailyScreenJob(runner DailyRunner, schedule string, log *logger.Logger) *DailyScreenJob {
	return &DailyScreenJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *DailyScreenJob) Name() string {
	return "daily_screen"
}

// Schedule returns the cron schedule
func (j *DailyScreenJob) Schedule() string {
	return j.schedule
}

// Run executes the daily screening pass
func (j *DailyScreenJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled daily screening")

	reports, err := j.runner.RunDaily(ctx)
	if err != nil {
		return fmt.Errorf("daily screening: %w", err)
	}

	fields := make(map[string]interface{}, len(reports))
	for _, r := range reports {
		fields[string(r.Screener)] = r.Len()
	}
	j.logger.WithFields(fields).Info("Daily screening completed")

	return nil
}

// RefreshJob reruns one screener on its own schedule
type RefreshJob struct {
	refresher Refresher
	screener  contracts.ScreenerID
	schedule  string
	logger    *logger.Logger
}

// NewRefreshJob creates a job that refreshes a single screener
func NewRefreshJob(refresher Refresher, id contracts.ScreenerID, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		screener:  id,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh_" + string(j.screener)
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the screener and persists the snapshot
func (j *RefreshJob) Run(ctx context.Context) error {
	report, err := j.refresher.Refresh(ctx, j.screener)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", j.screener, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"screener": string(j.screener),
		"outcome":  string(report.Outcome),
		"results":  report.Len(),
	}).Info("Screener refreshed")

	return nil
}
