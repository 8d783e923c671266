package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fountain-monitor/internal/domain"
	"fountain-monitor/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserDirectory = (*UserRepo)(nil)

func (r *UserRepo) first(ctx context.Context, q string, arg any) (*domain.User, error) {
	var m UserModel
	err := r.db.WithContext(ctx).Where(q, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("find user", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, persistErr("count users", err)
	}
	return n > 0, nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	m := userModelOf(u)
	if m.Favorites == nil {
		m.Favorites = []int64{}
	}
	var err error
	if m.ID == "" {
		m.ID = utils.NewID()
		err = r.db.WithContext(ctx).Create(m).Error
	} else {
		err = r.db.WithContext(ctx).Save(m).Error
	}
	if err != nil {
		if isDupKey(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, persistErr("save user", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var ms []UserModel
	if err := r.db.WithContext(ctx).Order("created_at").Find(&ms).Error; err != nil {
		return nil, persistErr("list users", err)
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].toDomain())
	}
	return out, nil
}
