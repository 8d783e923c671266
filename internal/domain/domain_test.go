package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"":         RoleManager,
		"Manager":  RoleManager,
		" tester ": RoleTester,
		"CLIENT":   RoleClient,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
		require.True(t, got.Valid())
	}

	_, err := ParseRole("admin")
	require.ErrorIs(t, err, ErrInvalidParameter)
	require.False(t, Role("admin").Valid())
}

func TestFavoriteCategory(t *testing.T) {
	c, ok := RoleClient.FavoriteCategory()
	require.True(t, ok)
	require.Equal(t, CategoryFountain, c)

	c, ok = RoleTester.FavoriteCategory()
	require.True(t, ok)
	require.Equal(t, CategoryAnalysis, c)

	_, ok = RoleManager.FavoriteCategory()
	require.False(t, ok)
}

func TestUserFavorites(t *testing.T) {
	u := &User{}
	require.True(t, u.AddFavorite(3))
	require.True(t, u.AddFavorite(7))
	require.False(t, u.AddFavorite(3))
	require.Equal(t, []int64{3, 7}, u.Favorites)

	c := u.Clone()
	require.True(t, c.RemoveFavorite(3))
	require.False(t, c.RemoveFavorite(3))
	require.Equal(t, []int64{7}, c.Favorites)
	require.Equal(t, []int64{3, 7}, u.Favorites)
	require.True(t, u.HasFavorite(3))
}

func TestDates(t *testing.T) {
	at := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), DateOf(at))
	require.True(t, SameDay(at, DateOf(at)))
	require.False(t, SameDay(at, at.Add(time.Minute)))
}

func TestSourceErrorMatchesSentinel(t *testing.T) {
	var err error = &SourceError{StatusCode: 500, Op: "list"}
	require.ErrorIs(t, err, ErrSourceError)
	require.False(t, errors.Is(err, ErrSourceUnavailable))
	require.ErrorIs(t, ErrEmailTaken, ErrInvalidParameter)
}
