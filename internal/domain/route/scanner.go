package route

import (
	"fmt"
	"time"

	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/util"
)

const (
	// DefaultSampleInterval is the spacing between samples in miles.
	DefaultSampleInterval = 20.0
	// MaxSegments caps the number of samples per route. Samples beyond the
	// cap are dropped from the tail of the route.
	MaxSegments = 100

	segmentWarningLimit = 2
	emptyRouteRisk      = 5.0
	redSegmentWeight    = 2.0
)

type stateBox struct {
	code string
	box  geo.Box
}

// Coarse rectangles; the first match wins and unmatched points resolve to "".
var stateBoxes = []stateBox{
	{code: "CA", box: geo.Box{MinLat: 32.5, MaxLat: 42.0, MinLon: -124.5, MaxLon: -114.0}},
	{code: "TX", box: geo.Box{MinLat: 25.8, MaxLat: 36.5, MinLon: -106.6, MaxLon: -93.5}},
	{code: "FL", box: geo.Box{MinLat: 24.5, MaxLat: 31.0, MinLon: -87.6, MaxLon: -80.0}},
	{code: "IL", box: geo.Box{MinLat: 36.9, MaxLat: 42.5, MinLon: -91.5, MaxLon: -87.0}},
	{code: "GA", box: geo.Box{MinLat: 30.3, MaxLat: 35.0, MinLon: -85.6, MaxLon: -80.8}},
	{code: "AZ", box: geo.Box{MinLat: 31.3, MaxLat: 37.0, MinLon: -114.8, MaxLon: -109.0}},
	{code: "NM", box: geo.Box{MinLat: 31.3, MaxLat: 37.0, MinLon: -109.0, MaxLon: -103.0}},
	{code: "OK", box: geo.Box{MinLat: 33.6, MaxLat: 37.0, MinLon: -103.0, MaxLon: -94.4}},
}

// StateAt resolves a two letter state code from the coarse rectangles.
func StateAt(p geo.Point) string {
	for _, s := range stateBoxes {
		if s.box.Contains(p) {
			return s.code
		}
	}
	return ""
}

// Scanner samples straight-line routes and scores each sample. It is safe
// for concurrent use.
type Scanner struct {
	scorer *risk.Scorer
	now    func() time.Time
}

// NewScanner builds a scanner on top of scorer.
func NewScanner(scorer *risk.Scorer) *Scanner {
	if scorer == nil {
		scorer = risk.NewScorer(nil)
	}
	return &Scanner{scorer: scorer, now: func() time.Time { return time.Now().UTC() }}
}

type sample struct {
	point geo.Point
	mile  float64
}

// Scan analyzes the straight line from origin to destination. A
// non-positive interval falls back to DefaultSampleInterval. rc is
// used as given; its State is replaced per sample.
func (s *Scanner) Scan(origin, destination geo.Point, rc risk.Context, interval float64) Analysis {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	total := geo.Haversine(origin, destination)
	samples, truncated := interpolate(origin, destination, total, interval)

	segments := make([]Segment, 0, len(samples))
	var states []string
	seen := make(map[string]struct{})
	for i, smp := range samples {
		state := StateAt(smp.point)
		if state != "" {
			if _, ok := seen[state]; !ok {
				seen[state] = struct{}{}
				states = append(states, state)
			}
		}
		a := s.scorer.Calculate(smp.point, rc.WithState(state), nil)
		warnings := a.Warnings
		if len(warnings) > segmentWarningLimit {
			warnings = warnings[:segmentWarningLimit]
		}
		segments = append(segments, Segment{
			Index:      i + 1,
			Latitude:   smp.point.Lat,
			Longitude:  smp.point.Lon,
			MileMarker: smp.mile,
			State:      state,
			Score:      a.Score,
			Level:      a.Level,
			Zone:       ZoneFor(a.Score),
			Warnings:   warnings,
		})
	}

	red := GroupZones(segments, ZoneRed)
	yellow := GroupZones(segments, ZoneYellow)
	overall := overallRisk(segments, s.scorer.Table().RouteLengthMultiplier(total))

	return Analysis{
		Origin:          origin,
		Destination:     destination,
		TotalMiles:      util.Round(total, 1),
		SampleInterval:  interval,
		OverallRisk:     overall,
		OverallLevel:    risk.LevelFor(overall),
		Segments:        segments,
		RedZones:        red,
		YellowZones:     yellow,
		Recommendations: recommendations(overall, len(red), len(yellow), total),
		Corridors:       s.scorer.Table().CorridorsFor(states),
		Truncated:       truncated,
		AnalyzedAt:      s.now(),
	}
}

// interpolate spaces samples evenly in lat/lon space. A zero-length route
// yields a single sample.
func interpolate(origin, destination geo.Point, total, interval float64) ([]sample, bool) {
	if total == 0 {
		return []sample{{point: origin}}, false
	}
	n := max(2, int(total/interval)+1)
	truncated := false
	count := n
	if count > MaxSegments {
		count = MaxSegments
		truncated = true
	}
	out := make([]sample, 0, count)
	for i := 0; i < count; i++ {
		fraction := float64(i) / float64(n-1)
		out = append(out, sample{
			point: geo.Lerp(origin, destination, fraction),
			mile:  fraction * total,
		})
	}
	return out, truncated
}

// GroupZones collects maximal runs of segments of the given type.
func GroupZones(segments []Segment, zone ZoneType) []Zone {
	var (
		zones []Zone
		run   []Segment
	)
	for _, seg := range segments {
		if seg.Zone == zone {
			run = append(run, seg)
			continue
		}
		if len(run) > 0 {
			zones = append(zones, newZone(run, zone))
			run = nil
		}
	}
	if len(run) > 0 {
		zones = append(zones, newZone(run, zone))
	}
	return zones
}

func newZone(run []Segment, zone ZoneType) Zone {
	peak := run[0].Score
	for _, seg := range run[1:] {
		peak = max(peak, seg.Score)
	}
	start, end := run[0].MileMarker, run[len(run)-1].MileMarker
	z := Zone{
		Type:      zone,
		StartMile: start,
		EndMile:   end,
		PeakRisk:  peak,
		Center:    run[len(run)/2].Point(),
	}
	if zone == ZoneRed {
		z.Description = fmt.Sprintf("High-risk zone from mile %.0f to %.0f", start, end)
		z.RecommendedAction = "Avoid stopping in this area. Proceed through quickly if possible."
	} else {
		z.Description = fmt.Sprintf("Caution zone from mile %.0f to %.0f", start, end)
		z.RecommendedAction = "Maintain awareness. Stop only at secured locations."
	}
	return z
}

// overallRisk weights red segments double, then applies the exposure
// multiplier for the route length.
func overallRisk(segments []Segment, lengthMultiplier float64) float64 {
	avg := emptyRouteRisk
	if len(segments) > 0 {
		var sum, weight float64
		for _, seg := range segments {
			w := 1.0
			if seg.Zone == ZoneRed {
				w = redSegmentWeight
			}
			sum += seg.Score * w
			weight += w
		}
		avg = util.Round(sum/weight, 1)
	}
	return util.Round(min(avg*lengthMultiplier, risk.MaxScore), 1)
}

func recommendations(overall float64, redZones, yellowZones int, totalMiles float64) []string {
	var out []string
	switch {
	case overall >= 8.0:
		out = append(out, "CRITICAL ROUTE: Consider alternative routing or additional security.")
	case overall >= 6.0:
		out = append(out, "HIGH RISK ROUTE: Plan stops carefully and maintain communication.")
	}
	if redZones > 0 {
		out = append(out, fmt.Sprintf("%d RED ZONE(S) detected. Avoid stopping in these areas.", redZones))
	}
	if yellowZones > 3 {
		out = append(out, "Multiple caution zones. Stay alert throughout the route.")
	}
	switch {
	case totalMiles > 1000:
		out = append(out, "Long haul (1000+ miles). Plan multiple secured rest stops.")
	case totalMiles > 500:
		out = append(out, "Regional haul. Plan at least one secured rest stop.")
	}
	return append(out, "Keep dispatch informed of your location and any unusual activity.")
}
