package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fountain-monitor/internal/core/lock"
	"fountain-monitor/internal/domain"
	"fountain-monitor/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Users struct {
	dir    domain.UserDirectory
	locker lock.Locker
	log    *zap.Logger
}

// NewUsers shares locker with Favorites so profile writes and favorite
// mutations of one user are serialized on the same key.
func NewUsers(dir domain.UserDirectory, locker lock.Locker, l *zap.Logger) *Users {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &Users{dir: dir, locker: locker, log: l}
}

// userKey is the lock key guarding every read-modify-write of a user record.
func userKey(id string) string { return "user:" + id }

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string // empty means Manager
}

func (s *Users) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidParameter)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	taken, err := s.dir.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u, err := s.dir.Save(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Favorites:    []int64{},
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *Users) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.dir.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Users) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.dir.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return u, nil
}

// UpdateInput carries profile changes. Empty fields are left as they are.
// ID must repeat the id being updated.
type UpdateInput struct {
	ID       string
	Name     string
	Email    string
	Password string
}

// Update changes name, email or password. The role never changes.
func (s *Users) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	if in.ID != id {
		return nil, fmt.Errorf("%w: ids do not match", domain.ErrInvalidParameter)
	}
	unlock, err := s.locker.Lock(ctx, userKey(id))
	if err != nil {
		return nil, fmt.Errorf("lock user %s: %w", id, err)
	}
	defer unlock()

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" && email != u.Email {
		other, err := s.dir.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != u.ID {
			return nil, domain.ErrEmailTaken
		}
		u.Email = email
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	return s.dir.Save(ctx, u)
}

// ListByRole fails with ErrUserNotFound when no user has role.
func (s *Users) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	all, err := s.dir.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.User
	for _, u := range all {
		if u.Role == role {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no users with role %s", domain.ErrUserNotFound, role)
	}
	return out, nil
}

func (s *Users) List(ctx context.Context) ([]domain.User, error) {
	return s.dir.FindAll(ctx)
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
