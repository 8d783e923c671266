package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fountain-monitor/internal/core/cache"
	"fountain-monitor/internal/domain"
)

var snapshotsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "statistics_snapshots_total", Help: "Statistics computations by outcome"},
	[]string{"outcome"},
)

func init() { prometheus.MustRegister(snapshotsTotal) }

const minYear = 1900

// Statistics computes radon summaries from upstream analyses and serves the
// persisted snapshots.
type Statistics struct {
	source   domain.AnalysisSource
	store    domain.StatisticsStore
	cache    *cache.Cache // optional; snapshots are immutable so entries never go stale
	cacheTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

type StatisticsOption func(*Statistics)

func WithSnapshotCache(c *cache.Cache, ttl time.Duration) StatisticsOption {
	return func(s *Statistics) { s.cache, s.cacheTTL = c, ttl }
}

// WithClock replaces time.Now, which decides "today" and the current year.
func WithClock(now func() time.Time) StatisticsOption {
	return func(s *Statistics) { s.now = now }
}

func NewStatistics(source domain.AnalysisSource, store domain.StatisticsStore, l *zap.Logger, opts ...StatisticsOption) *Statistics {
	s := &Statistics{source: source, store: store, log: l, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today is the current calendar date in UTC.
func (s *Statistics) Today() time.Time { return domain.DateOf(s.now()) }

// Create summarizes every analysis taken on date (all of them when date is nil)
// and persists the snapshot. Nothing is written when the source fails or no
// analysis matches.
func (s *Statistics) Create(ctx context.Context, date *time.Time) (*domain.Statistics, error) {
	st, err := s.create(ctx, date)
	snapshotsTotal.WithLabelValues(outcomeOf(err)).Inc()
	return st, err
}

func (s *Statistics) create(ctx context.Context, date *time.Time) (*domain.Statistics, error) {
	all, err := s.source.ListWaterAnalyses(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch analyses: %w", err)
	}

	records := all
	if date != nil {
		records = make([]domain.WaterAnalysis, 0, len(all))
		for _, a := range all {
			if domain.SameDay(a.Date, *date) {
				records = append(records, a)
			}
		}
	}

	st, err := Summarize(records)
	if err != nil {
		if date != nil {
			return nil, fmt.Errorf("%w: %s", err, date.Format(time.DateOnly))
		}
		return nil, err
	}
	if date != nil {
		d := domain.DateOf(*date)
		st.Date = &d
	}
	if err := s.store.Create(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("statistics snapshot persisted",
		zap.Int64("id", st.ID),
		zap.Int("total_analyses", st.TotalAnalyses),
		zap.Float64("average", st.AverageRadonLevel),
	)
	return st, nil
}

// Summarize computes average, min, max and count in one pass. min and max are
// seeded from the first record.
func Summarize(records []domain.WaterAnalysis) (*domain.Statistics, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoDataForPeriod
	}
	first := records[0].RadonConcentration
	sum, lo, hi := 0.0, first, first
	for _, r := range records {
		v := r.RadonConcentration
		sum += v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return &domain.Statistics{
		AverageRadonLevel: sum / float64(len(records)),
		MaxRadonLevel:     hi,
		MinRadonLevel:     lo,
		TotalAnalyses:     len(records),
	}, nil
}

func (s *Statistics) Get(ctx context.Context, id int64) (*domain.Statistics, error) {
	load := func(ctx context.Context) (*domain.Statistics, error) {
		st, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return nil, fmt.Errorf("%w: statistics %d", domain.ErrNotFound, id)
		}
		return st, nil
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, "statistics:"+strconv.FormatInt(id, 10), s.cacheTTL, load)
}

// Month returns this year's snapshots dated in month.
func (s *Statistics) Month(ctx context.Context, month int) ([]domain.Statistics, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month out of range: %d", domain.ErrInvalidParameter, month)
	}
	from := time.Date(s.now().Year(), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return s.store.ListBetween(ctx, from, from.AddDate(0, 1, 0))
}

// Year returns the snapshots dated in year, which must lie in [1900, current year].
func (s *Statistics) Year(ctx context.Context, year int) ([]domain.Statistics, error) {
	if year < minYear || year > s.now().Year() {
		return nil, fmt.Errorf("%w: year out of range: %d", domain.ErrInvalidParameter, year)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.store.ListBetween(ctx, from, from.AddDate(1, 0, 0))
}

func (s *Statistics) List(ctx context.Context, offset, limit int) ([]domain.Statistics, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.List(ctx, max(offset, 0), limit)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, domain.ErrNoDataForPeriod):
		return "no_data"
	case errors.Is(err, domain.ErrSourceUnavailable), errors.Is(err, domain.ErrSourceError):
		return "source_failed"
	}
	return "failed"
}
