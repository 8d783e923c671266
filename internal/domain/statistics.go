package domain

import (
	"context"
	"time"
)

// Statistics is an immutable summary of radon readings.
// A nil Date means the snapshot covers every analysis regardless of day.
type Statistics struct {
	ID                int64      `json:"id"`
	AverageRadonLevel float64    `json:"averageRadonLevel"`
	MaxRadonLevel     float64    `json:"maxRadonLevel"`
	MinRadonLevel     float64    `json:"minRadonLevel"`
	TotalAnalyses     int        `json:"totalAnalyses"`
	Date              *time.Time `json:"date"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// StatisticsStore is append-only: snapshots are created and read, never changed.
type StatisticsStore interface {
	// Create assigns the snapshot ID.
	Create(ctx context.Context, s *Statistics) error
	// FindByID returns (nil, nil) when absent.
	FindByID(ctx context.Context, id int64) (*Statistics, error)
	// ListBetween returns dated snapshots with from <= date < to, oldest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]Statistics, error)
	List(ctx context.Context, offset, limit int) ([]Statistics, int64, error)
}
