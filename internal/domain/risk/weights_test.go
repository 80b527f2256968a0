package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupsAreCaseInsensitiveWithNeutralDefault(t *testing.T) {
	table := DefaultTable()

	require.Equal(t, 1.5, table.TimeMultiplier("NIGHT"))
	require.Equal(t, 1.5, table.CommodityMultiplier(" Electronics "))
	require.Equal(t, 1.35, table.StateMultiplier("ca"))
	require.Equal(t, 1.0, table.CommodityMultiplier("unobtainium"))
	require.Equal(t, 1.0, table.StateMultiplier("ZZ"))
	require.Equal(t, 1.0, table.WeatherMultiplier(""))
}

func TestValueTiers(t *testing.T) {
	table := DefaultTable()

	cases := map[float64]float64{
		0:         1.0,
		99_999:    1.0,
		100_000:   1.1,
		249_999:   1.1,
		250_000:   1.25,
		500_000:   1.4,
		999_999:   1.4,
		1_000_000: 1.6,
		5_000_000: 1.6,
		// Values falling between inclusive bounds stay neutral.
		99_999.5: 1.0,
	}
	for value, want := range cases {
		require.Equal(t, want, table.ValueMultiplier(value), "value %v", value)
	}
}

func TestRouteLengthTiers(t *testing.T) {
	table := DefaultTable()

	require.Equal(t, 1.0, table.RouteLengthMultiplier(0))
	require.Equal(t, 1.0, table.RouteLengthMultiplier(499))
	require.Equal(t, 1.1, table.RouteLengthMultiplier(804.7))
	require.Equal(t, 1.25, table.RouteLengthMultiplier(1200))
	require.Equal(t, 1.4, table.RouteLengthMultiplier(2500))
}

func TestCorridorsFor(t *testing.T) {
	table := DefaultTable()

	names := func(cs []Corridor) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	require.Equal(t, []string{"I-10 LA to Houston", "I-35 Texas Corridor"}, names(table.CorridorsFor([]string{"tx"})))
	require.Equal(t, []string{"I-10 LA to Houston"}, names(table.CorridorsFor([]string{"CA", "AZ"})))
	require.Empty(t, table.CorridorsFor([]string{"TX", "OK"}))
	require.Empty(t, table.CorridorsFor(nil))
}

func TestClamp(t *testing.T) {
	require.Equal(t, MinScore, Clamp(0.2))
	require.Equal(t, MaxScore, Clamp(42))
	require.Equal(t, 6.5, Clamp(6.5))
}
