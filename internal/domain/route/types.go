package route

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/util"
)

// ZoneType colours a sampled segment for route purposes.
type ZoneType int

const (
	ZoneGreen ZoneType = iota
	ZoneYellow
	ZoneRed
)

// Route thresholds. These are independent of the risk level bands.
const (
	RedZoneThreshold    = 7.0
	YellowZoneThreshold = 5.0
)

// ZoneFor classifies a segment score.
func ZoneFor(score float64) ZoneType {
	switch {
	case score >= RedZoneThreshold:
		return ZoneRed
	case score >= YellowZoneThreshold:
		return ZoneYellow
	default:
		return ZoneGreen
	}
}

func (z ZoneType) String() string {
	switch z {
	case ZoneRed:
		return "red"
	case ZoneYellow:
		return "yellow"
	default:
		return "green"
	}
}

func (z ZoneType) MarshalJSON() ([]byte, error) {
	return json.Marshal(z.String())
}

func (z *ZoneType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch strings.ToLower(raw) {
	case "red":
		*z = ZoneRed
	case "yellow":
		*z = ZoneYellow
	case "green":
		*z = ZoneGreen
	default:
		return fmt.Errorf("unknown zone type %q", raw)
	}
	return nil
}

// Segment is one sampled point along the route.
type Segment struct {
	Index      int        `json:"segment_id"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	MileMarker float64    `json:"mile_marker"`
	State      string     `json:"state,omitempty"`
	Score      float64    `json:"risk_score"`
	Level      risk.Level `json:"risk_level"`
	Zone       ZoneType   `json:"zone_type"`
	Warnings   []string   `json:"warnings"`
}

// Point returns the segment coordinates.
func (s Segment) Point() geo.Point {
	return geo.Point{Lat: s.Latitude, Lon: s.Longitude}
}

func (s Segment) MarshalJSON() ([]byte, error) {
	type alias Segment
	out := alias(s)
	out.Latitude = util.Round(s.Latitude, 4)
	out.Longitude = util.Round(s.Longitude, 4)
	out.MileMarker = util.Round(s.MileMarker, 1)
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return json.Marshal(out)
}

// NearbyStop is a compact safe stop reference attached to a red zone.
type NearbyStop struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Tier          string  `json:"tier"`
	SecurityScore int     `json:"security_score"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Zone is a maximal run of consecutive same-coloured segments.
type Zone struct {
	Type              ZoneType     `json:"zone_type"`
	StartMile         float64      `json:"start_mile"`
	EndMile           float64      `json:"end_mile"`
	PeakRisk          float64      `json:"peak_risk"`
	Center            geo.Point    `json:"center"`
	Description       string       `json:"description"`
	RecommendedAction string       `json:"recommended_action"`
	NearbyStops       []NearbyStop `json:"nearby_safe_stops"`
}

// LengthMiles is the distance covered by the zone.
func (z Zone) LengthMiles() float64 {
	return z.EndMile - z.StartMile
}

func (z Zone) MarshalJSON() ([]byte, error) {
	type alias Zone
	out := alias(z)
	out.StartMile = util.Round(z.StartMile, 1)
	out.EndMile = util.Round(z.EndMile, 1)
	out.Center = geo.Point{Lat: util.Round(z.Center.Lat, 4), Lon: util.Round(z.Center.Lon, 4)}
	if out.NearbyStops == nil {
		out.NearbyStops = []NearbyStop{}
	}
	return json.Marshal(struct {
		alias
		LengthMiles float64 `json:"length_miles"`
	}{alias: out, LengthMiles: util.Round(z.LengthMiles(), 1)})
}

// Analysis is the result of scanning one route.
type Analysis struct {
	Origin          geo.Point       `json:"origin"`
	Destination     geo.Point       `json:"destination"`
	TotalMiles      float64         `json:"total_miles"`
	SampleInterval  float64         `json:"sample_interval_miles"`
	OverallRisk     float64         `json:"overall_risk"`
	OverallLevel    risk.Level      `json:"overall_level"`
	Segments        []Segment       `json:"segments"`
	RedZones        []Zone          `json:"red_zones"`
	YellowZones     []Zone          `json:"yellow_zones"`
	Recommendations []string        `json:"recommendations"`
	Corridors       []risk.Corridor `json:"risky_corridors"`
	Truncated       bool            `json:"truncated"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
}

func (a Analysis) MarshalJSON() ([]byte, error) {
	type alias Analysis
	out := alias(a)
	if out.Segments == nil {
		out.Segments = []Segment{}
	}
	if out.RedZones == nil {
		out.RedZones = []Zone{}
	}
	if out.YellowZones == nil {
		out.YellowZones = []Zone{}
	}
	if out.Corridors == nil {
		out.Corridors = []risk.Corridor{}
	}
	return json.Marshal(struct {
		alias
		SegmentCount    int `json:"segment_count"`
		RedZoneCount    int `json:"red_zone_count"`
		YellowZoneCount int `json:"yellow_zone_count"`
	}{
		alias:           out,
		SegmentCount:    len(a.Segments),
		RedZoneCount:    len(a.RedZones),
		YellowZoneCount: len(a.YellowZones),
	})
}
