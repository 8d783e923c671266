package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"fountain-monitor/internal/domain"
	"fountain-monitor/pkg/utils"
)

// MemoryUserRepo is a process-local UserDirectory used with db.driver=memory and in tests.
// It hands out copies so callers never alias stored state.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	now     func() time.Time

	// FailSave, when set, is returned from Save without storing anything.
	FailSave error
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

var _ domain.UserDirectory = (*MemoryUserRepo)(nil)

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *MemoryUserRepo) Save(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return nil, persistErr("save user", r.FailSave)
	}

	if owner, ok := r.byEmail[u.Email]; ok && owner != u.ID {
		return nil, domain.ErrEmailTaken
	}

	c := u.Clone()
	if c.Favorites == nil {
		c.Favorites = []int64{}
	}
	now := r.now()
	if c.ID == "" {
		c.ID = utils.NewID()
		c.CreatedAt = now
	} else if prev, ok := r.byID[c.ID]; ok {
		c.CreatedAt = prev.CreatedAt
		if prev.Email != c.Email {
			delete(r.byEmail, prev.Email)
		}
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	r.byID[c.ID] = c
	r.byEmail[c.Email] = c.ID
	return c.Clone(), nil
}

func (r *MemoryUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u.Clone())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryStatisticsRepo is a process-local StatisticsStore.
type MemoryStatisticsRepo struct {
	mu     sync.RWMutex
	items  []domain.Statistics // id order
	nextID int64
	now    func() time.Time
}

func NewMemoryStatisticsRepo() *MemoryStatisticsRepo {
	return &MemoryStatisticsRepo{nextID: 1, now: time.Now}
}

var _ domain.StatisticsStore = (*MemoryStatisticsRepo)(nil)

func (r *MemoryStatisticsRepo) Create(_ context.Context, s *domain.Statistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	s.CreatedAt = r.now()
	r.nextID++
	r.items = append(r.items, copyStats(*s))
	return nil
}

func (r *MemoryStatisticsRepo) FindByID(_ context.Context, id int64) (*domain.Statistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.items {
		if r.items[i].ID == id {
			s := copyStats(r.items[i])
			return &s, nil
		}
	}
	return nil, nil
}

func (r *MemoryStatisticsRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.Statistics, error) {
	r.mu.RLock()
	var out []domain.Statistics
	for _, s := range r.items {
		if s.Date == nil || s.Date.Before(from) || !s.Date.Before(to) {
			continue
		}
		out = append(out, copyStats(s))
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(*out[j].Date) })
	return out, nil
}

func (r *MemoryStatisticsRepo) List(_ context.Context, offset, limit int) ([]domain.Statistics, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := int64(len(r.items))
	offset, limit = max(offset, 0), max(limit, 0)
	out := make([]domain.Statistics, 0, limit)
	for i := len(r.items) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyStats(r.items[i]))
	}
	return out, total, nil
}

func copyStats(s domain.Statistics) domain.Statistics {
	if s.Date != nil {
		d := *s.Date
		s.Date = &d
	}
	return s
}
