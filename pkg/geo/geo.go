// Package geo holds the small amount of spherical geometry the engine needs.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// EarthRadiusMiles is the mean Earth radius used for every distance.
const EarthRadiusMiles = 3958.8

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate rejects coordinates that are not finite or fall outside the globe.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return apperrors.InvalidInput("coordinates must be finite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return apperrors.InvalidInput(fmt.Sprintf("latitude %.4f out of range", p.Lat))
	}
	if p.Lon < -180 || p.Lon > 180 {
		return apperrors.InvalidInput(fmt.Sprintf("longitude %.4f out of range", p.Lon))
	}
	return nil
}

// Haversine returns the great-circle distance between a and b in miles.
func Haversine(a, b Point) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return angle.Radians() * EarthRadiusMiles
}

// Lerp interpolates linearly in lat/lon space. It is not a great-circle
// interpolation; route sampling relies on that simplification.
func Lerp(a, b Point, fraction float64) Point {
	return Point{
		Lat: a.Lat + fraction*(b.Lat-a.Lat),
		Lon: a.Lon + fraction*(b.Lon-a.Lon),
	}
}

// Offset moves p by the given degree deltas.
func Offset(p Point, dLat, dLon float64) Point {
	return Point{Lat: p.Lat + dLat, Lon: p.Lon + dLon}
}

// Box is an axis-aligned lat/lon rectangle with inclusive bounds.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
