package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	require.Equal(t, 7.3, Round(7.26, 1))
	require.Equal(t, 3.14, Round(3.14159, 2))
	require.Equal(t, 10.0, Round(9.96, 1))
	require.True(t, math.IsInf(Round(math.Inf(1), 1), 1))
}

func TestFinite(t *testing.T) {
	require.True(t, Finite(1))
	require.False(t, Finite(math.NaN()))
	require.False(t, Finite(math.Inf(-1)))
}
