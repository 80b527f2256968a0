package stops

import (
	"math"
	"strings"
)

// DefaultScoringHour is used when no hour is supplied; it is a daytime hour.
const DefaultScoringHour = 12

// Physical security, verified tags first and brand inference second.
const (
	bonusGatedVerified    = 25
	bonusGatedInferred    = 5
	bonusGuardsVerified   = 20
	bonusCCTVVerified     = 15
	bonusCCTVInferred     = 5
	bonusLightingVerified = 10
	bonusLightingInferred = 3
)

// Location and crime history.
const (
	bonusNoTheftHistory = 18
	bonusLowStateRisk   = 8
	bonusHighwayAccess  = 6
	bonusNearbyPolice   = 3
)

// Operational.
const (
	bonusMajorBrand       = 8
	bonusStaffed24h       = 7
	bonusHighDriverRating = 5
)

const (
	penaltyPoorLighting  = 6
	penaltyNoCCTV        = 3
	penaltyIsolated      = 5
	penaltyHighCrime     = 5
	penaltyHotState      = 5
	hotspotPenaltyFactor = 3

	nightGuardsBonus   = 2
	nightSecurityBonus = 3

	isolatedParkingSpaces = 30
	hotStateMultiplier    = 1.2
)

var majorBrands = []string{"Pilot", "Love's", "Flying J", "TA", "Petro", "Sapp", "Buc-ee", "QuikTrip"}

// IsMajorBrand matches the stop name against the brand allow-list. The
// match is a case-sensitive substring test.
func IsMajorBrand(name string) bool {
	for _, b := range majorBrands {
		if strings.Contains(name, b) {
			return true
		}
	}
	return false
}

// IsNight reports whether hour falls in the 22:00-05:59 window.
func IsNight(hour int) bool {
	return hour >= 22 || hour < 6
}

// ScoreStop computes the additive 0-100 security score of a catalog stop
// and its tier. cat supplies hotspot and state data and may be nil.
func ScoreStop(stop CatalogStop, cat *Catalog, hour int) (int, Tier) {
	score := 0
	security := stop.SecurityLevel()
	major := IsMajorBrand(stop.Name)

	switch {
	case stop.HasAmenity("gated_parking"):
		score += bonusGatedVerified
	case major:
		score += bonusGatedInferred
	}
	if stop.HasAmenity("security_guards") {
		score += bonusGuardsVerified
	}
	switch {
	case stop.HasAmenity("cctv", "cameras"):
		score += bonusCCTVVerified
	case security == "high":
		score += bonusCCTVInferred
	}
	switch {
	case stop.HasAmenity("lighting_good"):
		score += bonusLightingVerified
	case major:
		score += bonusLightingInferred
	}

	switch history := stop.HistoricalRisk(); {
	case history <= 2:
		score += bonusNoTheftHistory
	case history <= 3:
		noTheft := float64(bonusNoTheftHistory)
		score += int(noTheft * 0.8)
	case history <= 5:
		score += int(bonusNoTheftHistory * 0.5)
	}

	stateRisk := cat.StateRiskLevel(stop.State)
	switch stateRisk {
	case "LOW":
		score += bonusLowStateRisk
	case "MODERATE":
		score += bonusLowStateRisk / 2
	}

	switch {
	case strings.HasPrefix(stop.Highway, "I-"):
		score += bonusHighwayAccess
	case strings.HasPrefix(stop.Highway, "US-"):
		score += bonusHighwayAccess / 2
	}

	// Police proximity and driver ratings are inferred from the brand.
	if major {
		score += bonusNearbyPolice + bonusMajorBrand + bonusHighDriverRating
	}
	if major || security == "high" {
		score += bonusStaffed24h
	}

	if hotspot, ok := cat.Hotspot(stop.State, stop.City); ok {
		score -= int(math.Round(hotspot.RiskScore * hotspotPenaltyFactor))
	} else if cat.StateMultiplier(stop.State) > hotStateMultiplier {
		score -= penaltyHotState
	}

	if security == "none" {
		score -= penaltyNoCCTV
	}
	if (security == "none" || security == "low") && strings.Contains(stop.Name, "Rest Area") {
		score -= penaltyPoorLighting
	}
	if stop.ParkingSpaces < isolatedParkingSpaces && !major {
		score -= penaltyIsolated
	}
	if stateRisk == "CRITICAL" {
		score -= penaltyHighCrime
	}

	if IsNight(hour) {
		if stop.HasAmenity("security_guards") {
			score += nightGuardsBonus
		}
		if security == "high" {
			score += nightSecurityBonus
		}
	}

	score = max(0, min(score, 100))
	return score, TierFor(score)
}
