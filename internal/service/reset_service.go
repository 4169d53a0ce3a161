package service

import (
	"context"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
)

// CounterWiper enumerates and deletes counter rows.
type CounterWiper interface {
	ListKeys(ctx context.Context) ([]string, error)
	DeleteKeys(ctx context.Context, keys []string) error
}

// ReportWiper enumerates and deletes report rows across all dates.
type ReportWiper interface {
	ListIDs(ctx context.Context) ([]string, error)
	DeleteIDs(ctx context.Context, ids []string) error
}

// ResetSummary reports how much the wipe removed.
type ResetSummary struct {
	CountersDeleted int `json:"countersDeleted"`
	ReportsDeleted  int `json:"reportsDeleted"`
}

// ResetService performs the passcode-gated bulk wipe: every analytics
// counter, then every daily report, deleted in fixed-size batches. There is
// no rollback; a failure partway leaves earlier batches gone and the
// operator re-runs the reset.
type ResetService struct {
	auth      *AuthService
	counters  CounterWiper
	reports   ReportWiper
	cache     *CacheService
	feed      ChangeNotifier
	batchSize int
	logger    *zap.Logger
}

// NewResetService constructs a reset service. batchSize is clamped to the
// store's per-batch operation ceiling.
func NewResetService(auth *AuthService, counters CounterWiper, reports ReportWiper,
	cache *CacheService, feed ChangeNotifier, batchSize int, logger *zap.Logger) *ResetService {
	if batchSize <= 0 || batchSize > 400 {
		batchSize = 400
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResetService{
		auth:      auth,
		counters:  counters,
		reports:   reports,
		cache:     cache,
		feed:      feed,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Reset wipes all persisted analytics state. A wrong passcode leaves
// everything untouched.
func (s *ResetService) Reset(ctx context.Context, passcode string) (*ResetSummary, error) {
	if !s.auth.CheckResetPasscode(passcode) {
		return nil, appErrors.ErrResetForbidden
	}

	summary := &ResetSummary{}

	keys, err := s.counters.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	for _, batch := range chunk(keys, s.batchSize) {
		if err := s.counters.DeleteKeys(ctx, batch); err != nil {
			return summary, err
		}
		summary.CountersDeleted += len(batch)
	}

	ids, err := s.reports.ListIDs(ctx)
	if err != nil {
		return summary, err
	}
	for _, batch := range chunk(ids, s.batchSize) {
		if err := s.reports.DeleteIDs(ctx, batch); err != nil {
			return summary, err
		}
		summary.ReportsDeleted += len(batch)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "analytics:*")
	}
	if s.feed != nil {
		if err := s.feed.Publish(ctx); err != nil {
			s.logger.Warn("failed to publish analytics change", zap.Error(err))
		}
	}

	s.logger.Info("analytics reset completed",
		zap.Int("counters_deleted", summary.CountersDeleted),
		zap.Int("reports_deleted", summary.ReportsDeleted))
	return summary, nil
}

func chunk(items []string, size int) [][]string {
	if len(items) == 0 {
		return nil
	}
	var batches [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
