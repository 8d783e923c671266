package domain

import (
	"context"
	"slices"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Favorites    []int64   `json:"favorites"` // insertion order
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasFavorite reports whether id is already in the user's favorites.
func (u *User) HasFavorite(id int64) bool { return slices.Contains(u.Favorites, id) }

// AddFavorite appends id unless present. It reports whether the set changed.
func (u *User) AddFavorite(id int64) bool {
	if u.HasFavorite(id) {
		return false
	}
	u.Favorites = append(u.Favorites, id)
	return true
}

// RemoveFavorite drops id if present. It reports whether the set changed.
func (u *User) RemoveFavorite(id int64) bool {
	i := slices.Index(u.Favorites, id)
	if i < 0 {
		return false
	}
	u.Favorites = slices.Delete(u.Favorites, i, i+1)
	return true
}

// Clone returns a copy whose favorites slice does not alias the receiver's.
func (u *User) Clone() *User {
	c := *u
	c.Favorites = slices.Clone(u.Favorites)
	return &c
}

// UserDirectory is the authoritative store of user identity, role and favorites.
// Find* methods return (nil, nil) when nothing matches.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Save creates the user when ID is empty, otherwise overwrites it.
	// A duplicate email fails with ErrEmailTaken, backend failures with ErrPersistence.
	Save(ctx context.Context, u *User) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]User, error)
}
