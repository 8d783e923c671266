package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
	require.NotContains(t, a, "-")
}

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", h)
	require.True(t, CheckPassword("s3cret", h))
	require.False(t, CheckPassword("wrong", h))
}
