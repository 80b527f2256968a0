package risk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/pkg/geo"
)

var ruralKansas = geo.Point{Lat: 38.5, Lon: -98.0}

func TestCalculateDefaultContext(t *testing.T) {
	a := NewScorer(nil).Calculate(ruralKansas, DefaultContext(), nil)

	// 3.0 base x 1.1 january x 1.1 basic truck stop.
	require.Equal(t, 3.6, a.Score)
	require.Equal(t, LevelModerate, a.Level)
	require.Equal(t, 3.0, a.Factors.BaseCrimeRate)
	require.Equal(t, 0.69, a.Confidence)
	require.Empty(t, a.Warnings)
}

func TestCalculateUsesMetroBaseRate(t *testing.T) {
	dallas := geo.Point{Lat: 32.7767, Lon: -96.7970}
	a := NewScorer(nil).Calculate(dallas, DefaultContext(), nil)

	require.Equal(t, 5.0, a.Factors.BaseCrimeRate)
	require.Equal(t, 6.1, a.Score)

	override := 2.0
	b := NewScorer(nil).Calculate(dallas, DefaultContext(), &override)
	require.Equal(t, 2.0, b.Factors.BaseCrimeRate)
	require.Equal(t, 2.4, b.Score)
}

func TestCalculateClampsAndWarnsInOrder(t *testing.T) {
	rc := Context{
		TimeOfDay:       "night",
		DayOfWeek:       "saturday",
		Month:           "december",
		Season:          "christmas_week",
		Commodity:       "electronics",
		CargoValue:      2_000_000,
		LocationType:    "abandoned_area",
		State:           "CA",
		Weather:         "severe_storm",
		Event:           "riot",
		Traffic:         "standstill",
		AccidentHistory: "very_high",
	}
	a := NewScorer(nil).Calculate(geo.Point{Lat: 34.05, Lon: -118.25}, rc, nil)

	require.Equal(t, MaxScore, a.Score)
	require.Equal(t, LevelCritical, a.Level)
	require.Equal(t, 0.87, a.Confidence)
	require.Len(t, a.Warnings, 7)
	require.Contains(t, a.Warnings[0], "HIGH ALERT: Major event (riot)")
	require.Contains(t, a.Warnings[1], "Night travel with high-value cargo")
	require.Contains(t, a.Warnings[2], "Weather condition (severe_storm)")
	require.Contains(t, a.Warnings[3], "stationary target")
	require.Contains(t, a.Warnings[4], "Location type (abandoned_area)")
	require.Contains(t, a.Warnings[5], "State (CA)")
	require.Contains(t, a.Warnings[6], "Commodity (electronics)")
}

func TestCalculateFloorsAtMinimum(t *testing.T) {
	rc := DefaultContext()
	rc.Month = "february"
	rc.LocationType = "shipper_facility"
	rc.Commodity = "lumber"
	low := 0.5

	a := NewScorer(nil).Calculate(ruralKansas, rc, &low)
	require.Equal(t, MinScore, a.Score)
	require.Equal(t, LevelLow, a.Level)
}

func TestCalculateIsMonotonicInEachFactor(t *testing.T) {
	scorer := NewScorer(nil)
	base := DefaultContext()
	baseline := scorer.Calculate(ruralKansas, base, nil).Score

	riskier := []func(Context) Context{
		func(c Context) Context { c.TimeOfDay = "night"; return c },
		func(c Context) Context { c.Commodity = "pharmaceuticals"; return c },
		func(c Context) Context { c.CargoValue = 600_000; return c },
		func(c Context) Context { c.State = "TX"; return c },
		func(c Context) Context { c.Event = "civil_unrest"; return c },
		func(c Context) Context { c.Traffic = "heavy"; return c },
	}
	for i, mutate := range riskier {
		score := scorer.Calculate(ruralKansas, mutate(base), nil).Score
		require.Greater(t, score, baseline, "mutation %d", i)
	}

	safer := base
	safer.LocationType = "distribution_center"
	require.Less(t, scorer.Calculate(ruralKansas, safer, nil).Score, baseline)
}

func TestCalculateIsDeterministic(t *testing.T) {
	scorer := NewScorer(nil)
	rc := DefaultContext().WithState("GA")
	first := scorer.Calculate(ruralKansas, rc, nil)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, scorer.Calculate(ruralKansas, rc, nil))
	}
}

func TestBaseCrimeRate(t *testing.T) {
	require.Equal(t, 5.5, BaseCrimeRate(geo.Point{Lat: 34.2, Lon: -118.0}))
	require.Equal(t, 5.0, BaseCrimeRate(geo.Point{Lat: 41.88, Lon: -87.63}))
	require.Equal(t, DefaultBaseCrimeRate, BaseCrimeRate(ruralKansas))
}
