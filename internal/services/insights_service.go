package services

import (
	"context"
	"fmt"

	"fiscal/internal/bills"
	"fiscal/internal/cache"
	"fiscal/internal/core"
	"fiscal/internal/ledger"
	"fiscal/internal/log"
	"fiscal/internal/report"
)

// InsightsService serves the derived views. Results are memoized by the
// ledger and bill book versions plus the reference date, so a new append
// changes the key instead of invalidating entries.
type InsightsService struct {
	ledger     *ledger.Store
	book       *bills.Book
	opts       report.Options
	dashboards *cache.Memo[report.Dashboard]
	insights   *cache.Memo[report.Insights]
	logger     *log.Logger
}

func NewInsightsService(
	store *ledger.Store,
	book *bills.Book,
	opts report.Options,
	dashboards cache.Cache[report.Dashboard],
	insights cache.Cache[report.Insights],
	logger *log.Logger,
) *InsightsService {
	return &InsightsService{
		ledger:     store,
		book:       book,
		opts:       opts,
		dashboards: cache.NewMemo(dashboards),
		insights:   cache.NewMemo(insights),
		logger:     logger.WithComponent(log.ComponentAnalytics),
	}
}

func key(ledgerVersion, bookVersion uint64, now core.Date, window int) string {
	return fmt.Sprintf("%d:%d:%s:%d", ledgerVersion, bookVersion, now, window)
}

func (s *InsightsService) Dashboard(ctx context.Context, now core.Date) (report.Dashboard, error) {
	if err := now.Validate(); err != nil {
		return report.Dashboard{}, err
	}
	txs, lv := s.ledger.Snapshot()
	reminders, bv := s.book.Snapshot()
	return s.dashboards.Do(key(lv, bv, now, s.opts.TrendWindow), func() (report.Dashboard, error) {
		s.logger.DebugContext(ctx, "Computing dashboard", "date", now, log.FieldVersion, lv, log.FieldOperation, log.OpCompute)
		return report.BuildDashboard(txs, reminders, now, s.opts), nil
	})
}

// Insights computes the insights page over window months. A zero window uses
// the configured trend window.
func (s *InsightsService) Insights(ctx context.Context, now core.Date, window int) (report.Insights, error) {
	if err := now.Validate(); err != nil {
		return report.Insights{}, err
	}
	opts := s.opts
	if window != 0 {
		if !report.ValidWindow(window) {
			return report.Insights{}, fmt.Errorf("%w: %d", report.ErrUnsupportedWindow, window)
		}
		opts.TrendWindow = window
	}
	txs, lv := s.ledger.Snapshot()
	return s.insights.Do(key(lv, 0, now, opts.TrendWindow), func() (report.Insights, error) {
		s.logger.DebugContext(ctx, "Computing insights", "date", now, "window", opts.TrendWindow, log.FieldVersion, lv, log.FieldOperation, log.OpCompute)
		return report.BuildInsights(txs, now, opts), nil
	})
}
