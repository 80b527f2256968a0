package proximity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/util"
)

// Alert distances in miles, checked from nearest to farthest.
const (
	CriticalMiles = 50.0
	WarningMiles  = 100.0
	CautionMiles  = 200.0

	DefaultSpeedMPH = 55.0
)

// AlertLevel grades how close the driver is to the nearest red zone.
type AlertLevel int

const (
	AlertSafe AlertLevel = iota
	AlertCaution
	AlertWarning
	AlertCritical
)

var alertNames = map[AlertLevel]string{
	AlertSafe:     "safe",
	AlertCaution:  "caution",
	AlertWarning:  "warning",
	AlertCritical: "critical",
}

// AlertLevelFor maps a distance to its alert band.
func AlertLevelFor(miles float64) AlertLevel {
	switch {
	case miles <= CriticalMiles:
		return AlertCritical
	case miles <= WarningMiles:
		return AlertWarning
	case miles <= CautionMiles:
		return AlertCaution
	default:
		return AlertSafe
	}
}

func (l AlertLevel) String() string {
	if name, ok := alertNames[l]; ok {
		return name
	}
	return "unknown"
}

func (l AlertLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *AlertLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for level, name := range alertNames {
		if strings.EqualFold(name, raw) {
			*l = level
			return nil
		}
	}
	return fmt.Errorf("unknown alert level %q", raw)
}

// ZoneRef is the part of a red zone the monitor needs. Its JSON shape
// matches route.Zone so analysis output can be posted back unchanged.
type ZoneRef struct {
	Center      geo.Point `json:"center"`
	StartMile   float64   `json:"start_mile"`
	EndMile     float64   `json:"end_mile"`
	PeakRisk    float64   `json:"peak_risk"`
	Description string    `json:"description"`
}

// FromRouteZones converts analysed red zones into monitor input.
func FromRouteZones(zones []route.Zone) []ZoneRef {
	out := make([]ZoneRef, 0, len(zones))
	for _, z := range zones {
		out = append(out, ZoneRef{
			Center:      z.Center,
			StartMile:   z.StartMile,
			EndMile:     z.EndMile,
			PeakRisk:    z.PeakRisk,
			Description: z.Description,
		})
	}
	return out
}

// Alert is the proximity verdict for one position. DistanceMiles and
// EstimatedMinutes are +Inf when unknown and serialise as null.
type Alert struct {
	ShouldAlert       bool       `json:"should_alert"`
	Level             AlertLevel `json:"alert_level"`
	DistanceMiles     float64    `json:"distance_miles"`
	EstimatedMinutes  float64    `json:"estimated_minutes"`
	ZoneName          string     `json:"zone_name"`
	Message           string     `json:"message"`
	RecommendedAction string     `json:"recommended_action"`
}

func (a Alert) MarshalJSON() ([]byte, error) {
	type alias Alert
	return json.Marshal(struct {
		alias
		DistanceMiles    *float64 `json:"distance_miles"`
		EstimatedMinutes *float64 `json:"estimated_minutes"`
	}{
		alias:            alias(a),
		DistanceMiles:    finiteRounded(a.DistanceMiles, 1),
		EstimatedMinutes: finiteRounded(a.EstimatedMinutes, 0),
	})
}

// Countdown is the dashboard view of an alert.
type Countdown struct {
	Status          string   `json:"status"`
	Color           string   `json:"color"`
	MilesToZone     *float64 `json:"miles_to_zone"`
	ETAMinutes      *float64 `json:"eta_minutes"`
	ZoneDescription *string  `json:"zone_description"`
	Alert           *Alert   `json:"alert"`
}

func finiteRounded(v float64, places int) *float64 {
	if !util.Finite(v) {
		return nil
	}
	r := util.Round(v, places)
	return &r
}
