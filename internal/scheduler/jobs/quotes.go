package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// QuoteAttacher refreshes the live quotes carried by reports
type QuoteAttacher interface {
	AttachQuotes(ctx context.Context, reports ...*contracts.Report)
}

// QuoteRefreshJob re-prices the saved snapshots between screening runs
type QuoteRefreshJob struct {
	store    contracts.SnapshotStore
	quotes   QuoteAttacher
	schedule string
	logger   *logger.Logger
}

// NewQuoteRefreshJob creates a new quote refresh job
func NewQuoteRefreshJob(store contracts.SnapshotStore, quotes QuoteAttacher, schedule string, log *logger.Logger) *QuoteRefreshJob {
	return &QuoteRefreshJob{
		store:    store,
		quotes:   quotes,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *QuoteRefreshJob) Name() string {
	return "quote_refresh"
}

// Schedule returns the cron schedule
func (j *QuoteRefreshJob) Schedule() string {
	return j.schedule
}

// Run loads every snapshot, refreshes its quotes and saves it back
func (j *QuoteRefreshJob) Run(ctx context.Context) error {
	reports := make([]*contracts.Report, 0, len(contracts.AllScreeners))
	for _, id := range contracts.AllScreeners {
		r, err := j.store.Latest(ctx, id)
		if err != nil {
			return fmt.Errorf("load %s snapshot: %w", id, err)
		}
		if r == nil || r.Len() == 0 {
			continue
		}
		reports = append(reports, r)
	}

	if len(reports) == 0 {
		j.logger.Debug("No snapshots to re-price")
		return nil
	}

	// 한 번의 quote 요청으로 모든 스냅샷 갱신
	j.quotes.AttachQuotes(ctx, reports...)

	for _, r := range reports {
		if err := j.store.Save(ctx, r); err != nil {
			return fmt.Errorf("save %s snapshot: %w", r.Screener, err)
		}
	}

	j.logger.WithField("snapshots", len(reports)).Debug("Snapshot quotes refreshed")
	return nil
}
