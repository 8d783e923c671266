package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fountain-monitor/internal/domain"
)

type StatisticsRepo struct{ db *gorm.DB }

func NewStatisticsRepo(db *gorm.DB) *StatisticsRepo { return &StatisticsRepo{db: db} }

var _ domain.StatisticsStore = (*StatisticsRepo)(nil)

func (r *StatisticsRepo) Create(ctx context.Context, s *domain.Statistics) error {
	m := StatisticsModel{
		AverageRadonLevel: s.AverageRadonLevel,
		MaxRadonLevel:     s.MaxRadonLevel,
		MinRadonLevel:     s.MinRadonLevel,
		TotalAnalyses:     s.TotalAnalyses,
		Date:              s.Date,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return persistErr("create statistics", err)
	}
	s.ID = m.ID
	s.CreatedAt = m.CreatedAt
	return nil
}

func (r *StatisticsRepo) FindByID(ctx context.Context, id int64) (*domain.Statistics, error) {
	var m StatisticsModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("find statistics", err)
	}
	s := m.toDomain()
	return &s, nil
}

func (r *StatisticsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Statistics, error) {
	var ms []StatisticsModel
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date, id").
		Find(&ms).Error
	if err != nil {
		return nil, persistErr("list statistics", err)
	}
	return toDomainStats(ms), nil
}

func (r *StatisticsRepo) List(ctx context.Context, offset, limit int) ([]domain.Statistics, int64, error) {
	q := r.db.WithContext(ctx).Model(&StatisticsModel{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persistErr("count statistics", err)
	}
	var ms []StatisticsModel
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, persistErr("list statistics", err)
	}
	return toDomainStats(ms), total, nil
}

func toDomainStats(ms []StatisticsModel) []domain.Statistics {
	out := make([]domain.Statistics, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].toDomain())
	}
	return out
}
