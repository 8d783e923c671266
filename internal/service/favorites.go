package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fountain-monitor/internal/core/lock"
	"fountain-monitor/internal/domain"
)

// Favorites is the per-user ledger of bookmarked upstream resources.
//
// Every operation runs the same precondition chain: the user exists, the
// user's role may hold favorites of the requested category, and (for
// mutations) the resource resolves upstream. Mutations of one user's set are
// serialized through the Locker; different users never contend.
type Favorites struct {
	users       domain.UserDirectory
	source      domain.AnalysisSource
	locker      lock.Locker
	log         *zap.Logger
	concurrency int
}

func NewFavorites(users domain.UserDirectory, source domain.AnalysisSource, locker lock.Locker, l *zap.Logger, concurrency int) *Favorites {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &Favorites{
		users:       users,
		source:      source,
		locker:      locker,
		log:         l,
		concurrency: max(1, concurrency),
	}
}

// Add bookmarks resourceID for the user and returns the freshly resolved resource.
// Adding an id that is already present does not duplicate it.
func (f *Favorites) Add(ctx context.Context, userID string, cat domain.Category, resourceID int64) (*domain.Resource, error) {
	return f.mutate(ctx, userID, cat, resourceID, (*domain.User).AddFavorite, "favorite added")
}

// Remove drops resourceID from the user's favorites. Removing an absent id is
// not an error; the resolved resource is returned either way.
func (f *Favorites) Remove(ctx context.Context, userID string, cat domain.Category, resourceID int64) (*domain.Resource, error) {
	return f.mutate(ctx, userID, cat, resourceID, (*domain.User).RemoveFavorite, "favorite removed")
}

func (f *Favorites) mutate(
	ctx context.Context,
	userID string,
	cat domain.Category,
	resourceID int64,
	apply func(*domain.User, int64) bool,
	msg string,
) (*domain.Resource, error) {
	unlock, err := f.locker.Lock(ctx, userKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock favorites of %s: %w", userID, err)
	}
	defer unlock()

	u, err := f.gate(ctx, userID, cat)
	if err != nil {
		return nil, err
	}
	res, err := f.resolve(ctx, cat, resourceID)
	if err != nil {
		return nil, err
	}
	if !apply(u, resourceID) {
		return res, nil
	}
	if _, err := f.users.Save(ctx, u); err != nil {
		return nil, err
	}
	f.log.Info(msg,
		zap.String("user_id", userID),
		zap.String("category", string(cat)),
		zap.Int64("resource_id", resourceID),
		zap.Int("count", len(u.Favorites)),
	)
	return res, nil
}

// List resolves every favorite of the user in stored order. The first failed
// resolution aborts the whole call.
func (f *Favorites) List(ctx context.Context, userID string, cat domain.Category) ([]domain.Resource, error) {
	u, err := f.gate(ctx, userID, cat)
	if err != nil {
		return nil, err
	}
	return f.resolveAll(ctx, cat, u.Favorites)
}

// ListFirst resolves at most n favorites in insertion order. Ids past n are never resolved.
func (f *Favorites) ListFirst(ctx context.Context, userID string, cat domain.Category, n int) ([]domain.Resource, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", domain.ErrInvalidParameter, n)
	}
	u, err := f.gate(ctx, userID, cat)
	if err != nil {
		return nil, err
	}
	ids := u.Favorites
	if len(ids) > n {
		ids = ids[:n]
	}
	return f.resolveAll(ctx, cat, ids)
}

// IsFavorite reports membership. A resource the upstream does not know is a
// parameter error rather than false.
func (f *Favorites) IsFavorite(ctx context.Context, userID string, cat domain.Category, resourceID int64) (bool, error) {
	u, err := f.gate(ctx, userID, cat)
	if err != nil {
		return false, err
	}
	if _, err := f.resolve(ctx, cat, resourceID); err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return false, fmt.Errorf("%w: %s %d does not exist", domain.ErrInvalidParameter, cat, resourceID)
		}
		return false, err
	}
	return u.HasFavorite(resourceID), nil
}

// gate loads the user and checks that its role holds favorites of cat.
func (f *Favorites) gate(ctx context.Context, userID string, cat domain.Category) (*domain.User, error) {
	u, err := f.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	if allowed, ok := u.Role.FavoriteCategory(); !ok || allowed != cat {
		return nil, fmt.Errorf("%w: %s users cannot hold %s favorites", domain.ErrRoleNotAccepted, u.Role, cat)
	}
	return u, nil
}

func (f *Favorites) resolve(ctx context.Context, cat domain.Category, id int64) (*domain.Resource, error) {
	switch cat {
	case domain.CategoryFountain:
		fo, err := f.source.GetFountain(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.Resource{Category: cat, ID: id, Fountain: fo}, nil
	case domain.CategoryAnalysis:
		a, err := f.source.GetWaterAnalysis(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.Resource{Category: cat, ID: id, Analysis: a}, nil
	}
	return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidParameter, cat)
}

// resolveAll resolves ids with bounded concurrency, keeping input order.
func (f *Favorites) resolveAll(ctx context.Context, cat domain.Category, ids []int64) ([]domain.Resource, error) {
	out := make([]domain.Resource, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			r, err := f.resolve(gctx, cat, id)
			if err != nil {
				return err
			}
			out[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
