package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleManager Role = "Manager"
	RoleTester  Role = "Tester"
	RoleClient  Role = "Client"
)

// ParseRole accepts role names case-insensitively. An empty string yields RoleManager.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manager":
		return RoleManager, nil
	case "tester":
		return RoleTester, nil
	case "client":
		return RoleClient, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidParameter, s)
}

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleTester || r == RoleClient
}

// Category is the kind of externally owned resource a favorite points at.
type Category string

const (
	CategoryFountain Category = "fountain"
	CategoryAnalysis Category = "analysis"
)

var favoriteCategory = map[Role]Category{
	RoleClient: CategoryFountain,
	RoleTester: CategoryAnalysis,
}

// FavoriteCategory returns the resource category role may hold favorites of.
// Managers hold none.
func (r Role) FavoriteCategory() (Category, bool) {
	c, ok := favoriteCategory[r]
	return c, ok
}
