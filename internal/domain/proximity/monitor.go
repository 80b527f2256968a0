package proximity

import (
	"fmt"
	"math"

	"github.com/yanqian/safetravels/pkg/geo"
)

const defaultZoneName = "High-risk zone ahead"

// Check finds the nearest red zone centre and grades the distance.
// A speed of zero yields an unknown (+Inf) ETA.
func Check(current geo.Point, zones []ZoneRef, speedMPH float64) Alert {
	if len(zones) == 0 {
		return safeAlert()
	}

	nearest := math.Inf(1)
	var zone ZoneRef
	for _, z := range zones {
		if d := geo.Haversine(current, z.Center); d < nearest {
			nearest = d
			zone = z
		}
	}

	level := AlertLevelFor(nearest)
	eta := math.Inf(1)
	if speedMPH > 0 {
		eta = nearest / speedMPH * 60
	}
	name := zone.Description
	if name == "" {
		name = defaultZoneName
	}
	return Alert{
		ShouldAlert:       level != AlertSafe,
		Level:             level,
		DistanceMiles:     nearest,
		EstimatedMinutes:  eta,
		ZoneName:          name,
		Message:           alertMessage(level, nearest, eta, name),
		RecommendedAction: recommendedAction(level),
	}
}

// CountdownFor renders the 200-mile countdown for an alert.
func CountdownFor(a Alert) Countdown {
	if !a.ShouldAlert {
		return Countdown{Status: "CLEAR", Color: "green"}
	}
	c := Countdown{
		MilesToZone:     finiteRounded(a.DistanceMiles, 1),
		ETAMinutes:      finiteRounded(a.EstimatedMinutes, 0),
		ZoneDescription: &a.ZoneName,
		Alert:           &a,
	}
	switch a.Level {
	case AlertCaution:
		c.Status, c.Color = "APPROACHING", "yellow"
	case AlertWarning:
		c.Status, c.Color = "WARNING", "orange"
	default:
		c.Status, c.Color = "DANGER", "red"
	}
	return c
}

func safeAlert() Alert {
	return Alert{
		Level:             AlertSafe,
		DistanceMiles:     math.Inf(1),
		EstimatedMinutes:  math.Inf(1),
		Message:           "No Red Zones detected on your route.",
		RecommendedAction: recommendedAction(AlertSafe),
	}
}

func alertMessage(level AlertLevel, miles, eta float64, zone string) string {
	when := "ETA unknown"
	if !math.IsInf(eta, 0) {
		when = fmt.Sprintf("~%.0f min", eta)
	}
	switch level {
	case AlertCritical:
		return fmt.Sprintf("CRITICAL: Entering %s in %.0f miles (%s). Find secure parking NOW.", zone, miles, when)
	case AlertWarning:
		return fmt.Sprintf("WARNING: %s in %.0f miles (%s). Plan your stop soon.", zone, miles, when)
	case AlertCaution:
		return fmt.Sprintf("HEADS UP: %s in %.0f miles (%s). Monitor for safe stops.", zone, miles, when)
	default:
		return "Route is clear of Red Zones."
	}
}

func recommendedAction(level AlertLevel) string {
	switch level {
	case AlertCritical:
		return "IMMEDIATE ACTION: Find secured truck stop or distribution center. Do NOT stop in unsecured areas."
	case AlertWarning:
		return "Plan your next stop at a secured location before entering the zone. Check find_safe_stops for options."
	case AlertCaution:
		return "Begin monitoring for safe stopping options. Review zone details and consider timing your drive to pass through during daylight."
	default:
		return "Continue on planned route."
	}
}
