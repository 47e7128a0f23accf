package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuarterBounds(t *testing.T) {
	t.Run("mid quarter", func(t *testing.T) {
		start, end := QuarterBounds(NewDate(2024, 5, 31))
		require.Equal(t, NewDate(2024, 4, 1), start)
		require.Equal(t, NewDate(2024, 6, 30), end)
		require.Equal(t, "2024 Q2", QuarterLabel(start))
	})
	t.Run("last quarter", func(t *testing.T) {
		start, end := QuarterBounds(NewDate(2023, 12, 31))
		require.Equal(t, NewDate(2023, 10, 1), start)
		require.Equal(t, NewDate(2023, 12, 31), end)
	})
}

func TestInWindow(t *testing.T) {
	start := NewDate(2024, 1, 31)
	end := NewDate(2024, 3, 31)

	require.True(t, InWindow(start, start, end))
	require.True(t, InWindow(end.Add(15*time.Hour), start, end))
	require.False(t, InWindow(NewDate(2024, 4, 30), start, end))
	require.False(t, InWindow(NewDate(2023, 12, 31), start, end))
}
