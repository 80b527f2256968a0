package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	dallas := Point{Lat: 32.7767, Lon: -96.7970}
	chicago := Point{Lat: 41.8781, Lon: -87.6298}

	d := Haversine(dallas, chicago)
	require.InDelta(t, 804.66, d, 0.05)
	require.InDelta(t, d, Haversine(chicago, dallas), 1e-9)
	require.Zero(t, Haversine(dallas, dallas))
}

func TestHaversineMatchesClassicFormula(t *testing.T) {
	a := Point{Lat: 34.05, Lon: -118.25}
	b := Point{Lat: 29.76, Lon: -95.37}

	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	want := EarthRadiusMiles * 2 * math.Asin(math.Sqrt(h))

	require.InDelta(t, want, Haversine(a, b), 1e-6)
}

func TestLerp(t *testing.T) {
	a := Point{Lat: 30, Lon: -100}
	b := Point{Lat: 40, Lon: -90}
	require.Equal(t, a, Lerp(a, b, 0))
	require.Equal(t, b, Lerp(a, b, 1))
	require.Equal(t, Point{Lat: 35, Lon: -95}, Lerp(a, b, 0.5))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Point{Lat: 32.7, Lon: -96.8}.Validate())
	require.Error(t, Point{Lat: 91, Lon: 0}.Validate())
	require.Error(t, Point{Lat: 0, Lon: -181}.Validate())
	require.Error(t, Point{Lat: math.NaN(), Lon: 0}.Validate())
}

func TestBoxContains(t *testing.T) {
	box := Box{MinLat: 25.8, MaxLat: 36.5, MinLon: -106.6, MaxLon: -93.5}
	require.True(t, box.Contains(Point{Lat: 32.7767, Lon: -96.7970}))
	require.True(t, box.Contains(Point{Lat: 25.8, Lon: -93.5}))
	require.False(t, box.Contains(Point{Lat: 41.8, Lon: -87.6}))
}
