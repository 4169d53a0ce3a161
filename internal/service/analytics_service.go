package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/models"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/export"
)

const lifetimeCacheKey = "analytics:lifetime"

// CounterReader reads the persisted counter collection.
type CounterReader interface {
	ListAll(ctx context.Context) ([]models.CounterRow, error)
}

// ReportReader reads daily report rows for range replay.
type ReportReader interface {
	ListByDate(ctx context.Context, date string) ([]models.Report, error)
}

// AnalyticsService serves the two read modes. Lifetime reads the live
// counter collection (cache-aside, full snapshot); range replays raw daily
// report rows between two dates into an in-memory accumulation that is never
// persisted. Both feed the same filter/sort/limit pipeline.
type AnalyticsService struct {
	counters CounterReader
	reports  ReportReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(counters CounterReader, reports ReportReader,
	cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{counters: counters, reports: reports, cache: cache, metrics: metrics, logger: logger}
}

// Lifetime returns the full counter snapshot. The boolean indicates whether
// data originated from cache. Filtering never happens at the store level so
// rows holding only one of the two counters are always included.
func (s *AnalyticsService) Lifetime(ctx context.Context) ([]models.CounterRow, bool, error) {
	var cached []models.CounterRow
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, lifetimeCacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	rows, err := s.counters.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveDBQuery("analytics_lifetime", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, lifetimeCacheKey, rows, 0); err != nil {
			s.logger.Warn("cache lifetime snapshot", zap.Error(err))
		}
	}
	return rows, false, nil
}

// Range replays every daily report between from and to (inclusive calendar
// days) into a derived counter map. The result is independent of the order
// days are fetched in; nothing here is written back to the store.
func (s *AnalyticsService) Range(ctx context.Context, from, to string) ([]models.CounterRow, error) {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, to)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to date precedes from date")
	}

	acc := make(map[string]*models.CounterRow)
	var order []string

	touch := func(e models.ReportEntry) *models.CounterRow {
		key := e.EntityKey()
		row, ok := acc[key]
		if !ok {
			row = &models.CounterRow{
				EntityKey: key,
				StudentID: e.StudentID,
				FullName:  e.FullName,
				SlotID:    e.SlotID,
				Grade:     e.Grade,
			}
			acc[key] = row
			order = append(order, key)
		}
		return row
	}

	queryStart := time.Now()
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		reports, err := s.reports.ListByDate(ctx, day.Format(models.DateLayout))
		if err != nil {
			return nil, err
		}
		for _, report := range reports {
			for _, e := range report.Absent {
				touch(e).MissedCount++
			}
			for _, e := range report.Late {
				touch(e).LateCount++
			}
		}
	}
	s.metrics.ObserveDBQuery("analytics_range", time.Since(queryStart))

	rows := make([]models.CounterRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *acc[key])
	}
	return rows, nil
}

// ApplyPipeline runs the shared filter -> search -> sort -> limit pipeline.
// The sort is stable so ties keep their arrival order.
func ApplyPipeline(rows []models.CounterRow, q models.AnalyticsQuery) []models.CounterRow {
	out := make([]models.CounterRow, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, row := range rows {
		if q.Grade != nil && (row.Grade == nil || *row.Grade != *q.Grade) {
			continue
		}
		if search != "" {
			name := strings.ToLower(row.FullName)
			slotID := strings.ToLower(row.SlotID)
			if !strings.Contains(name, search) && !strings.Contains(slotID, search) {
				continue
			}
		}
		out = append(out, row)
	}

	sortKey := q.SortKey
	if sortKey != models.SortByLate {
		sortKey = models.SortByMissed
	}
	sort.SliceStable(out, func(i, j int) bool {
		if sortKey == models.SortByLate {
			return out[i].LateCount > out[j].LateCount
		}
		return out[i].MissedCount > out[j].MissedCount
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// ExportCSV renders counter rows as a CSV download.
func (s *AnalyticsService) ExportCSV(rows []models.CounterRow) ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"entityKey", "fullName", "slotId", "grade", "missedCount", "lateCount"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		grade := ""
		if row.Grade != nil {
			grade = strconv.Itoa(*row.Grade)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"entityKey":   row.EntityKey,
			"fullName":    row.FullName,
			"slotId":      row.SlotID,
			"grade":       grade,
			"missedCount": strconv.Itoa(row.MissedCount),
			"lateCount":   strconv.Itoa(row.LateCount),
		})
	}
	return export.NewCSVExporter().Render(dataset)
}
