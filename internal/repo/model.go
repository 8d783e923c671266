package repo

import (
	"time"

	"gorm.io/gorm"

	"fountain-monitor/internal/domain"
)

type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(32)"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:64;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null;default:Manager;index"`
	// ordered favorite resource ids
	Favorites []int64 `gorm:"serializer:json;type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) toDomain() *domain.User {
	favs := m.Favorites
	if favs == nil {
		favs = []int64{}
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Favorites:    favs,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func userModelOf(u *domain.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Favorites:    u.Favorites,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type StatisticsModel struct {
	ID                int64 `gorm:"primaryKey;autoIncrement"`
	AverageRadonLevel float64
	MaxRadonLevel     float64
	MinRadonLevel     float64
	TotalAnalyses     int
	Date              *time.Time `gorm:"type:date;index"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
}

func (StatisticsModel) TableName() string { return "statistics" }

func (m *StatisticsModel) toDomain() domain.Statistics {
	return domain.Statistics{
		ID:                m.ID,
		AverageRadonLevel: m.AverageRadonLevel,
		MaxRadonLevel:     m.MaxRadonLevel,
		MinRadonLevel:     m.MinRadonLevel,
		TotalAnalyses:     m.TotalAnalyses,
		Date:              m.Date,
		CreatedAt:         m.CreatedAt,
	}
}

// AutoMigrate creates or updates the tables owned by this package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &StatisticsModel{})
}
