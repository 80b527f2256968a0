package risk

import (
	"math"

	"github.com/yanqian/safetravels/pkg/geo"
)

// DefaultBaseCrimeRate applies outside every known metro area.
const DefaultBaseCrimeRate = 3.0

type metroArea struct {
	name   string
	center geo.Point
	radius float64 // degrees, applied to lat and lon independently
	rate   float64
}

// Placeholder metro table; the first matching square wins.
var metroAreas = []metroArea{
	{name: "Los Angeles", center: geo.Point{Lat: 34.05, Lon: -118.25}, radius: 0.5, rate: 5.5},
	{name: "Dallas", center: geo.Point{Lat: 32.78, Lon: -96.80}, radius: 0.3, rate: 5.0},
	{name: "Houston", center: geo.Point{Lat: 29.76, Lon: -95.37}, radius: 0.4, rate: 4.5},
	{name: "Atlanta", center: geo.Point{Lat: 33.75, Lon: -84.39}, radius: 0.3, rate: 4.5},
	{name: "Chicago", center: geo.Point{Lat: 41.88, Lon: -87.63}, radius: 0.3, rate: 5.0},
	{name: "Miami", center: geo.Point{Lat: 25.76, Lon: -80.19}, radius: 0.4, rate: 5.0},
	{name: "New York", center: geo.Point{Lat: 40.71, Lon: -74.01}, radius: 0.3, rate: 4.0},
	{name: "Philadelphia", center: geo.Point{Lat: 39.95, Lon: -75.17}, radius: 0.3, rate: 4.0},
	{name: "Charlotte", center: geo.Point{Lat: 35.23, Lon: -80.84}, radius: 0.3, rate: 3.5},
	{name: "Memphis", center: geo.Point{Lat: 35.15, Lon: -90.05}, radius: 0.3, rate: 4.0},
}

// BaseCrimeRate looks up the base rate for p from the metro table.
func BaseCrimeRate(p geo.Point) float64 {
	for _, m := range metroAreas {
		if math.Abs(p.Lat-m.center.Lat) < m.radius && math.Abs(p.Lon-m.center.Lon) < m.radius {
			return m.rate
		}
	}
	return DefaultBaseCrimeRate
}
