package stops

import (
	"encoding/json"
	"time"

	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/util"
)

// Availability statuses reported by realtime feeds.
const (
	StatusAvailable = "AVAILABLE"
	StatusCrowded   = "CROWDED"
	StatusFull      = "FULL"
	StatusUnknown   = "UNKNOWN"
)

// Stop sources.
const (
	SourceCatalog = "catalog"
	SourcePlaces  = "places"
)

// Availability is the realtime parking state of one stop.
type Availability struct {
	Status    string     `json:"status"`
	Available *int       `json:"available"`
	Total     *int       `json:"total,omitempty"`
	Source    string     `json:"source,omitempty"`
	Live      bool       `json:"is_live"`
	UpdatedAt *time.Time `json:"last_updated,omitempty"`
}

// SafeStop is a stop scored for one query. Distance and realtime fields
// are relative to that query and must not be reused for another origin.
type SafeStop struct {
	ID              string       `json:"stop_id"`
	Name            string       `json:"name"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	Location        geo.Point    `json:"location"`
	Highway         string       `json:"highway"`
	DistanceMiles   float64      `json:"distance_miles"`
	SecurityScore   int          `json:"security_score"`
	Tier            Tier         `json:"tier"`
	SecurityLevel   string       `json:"security_level"`
	HasFuel         bool         `json:"has_fuel"`
	HasShowers      bool         `json:"has_showers"`
	HasFood         bool         `json:"has_food"`
	HasGuards       bool         `json:"has_guards"`
	HasGatedParking bool         `json:"has_gated_parking"`
	HasCCTV         bool         `json:"has_cctv"`
	ParkingSpaces   int          `json:"parking_spaces"`
	AreaRiskLevel   string       `json:"area_risk_level"`
	Rating          float64      `json:"rating"`
	ReviewCount     int          `json:"review_count"`
	PhotoURL        string       `json:"photo_url,omitempty"`
	Source          string       `json:"source"`
	Realtime        Availability `json:"realtime"`
}

func (s SafeStop) MarshalJSON() ([]byte, error) {
	type alias SafeStop
	out := alias(s)
	out.DistanceMiles = util.Round(s.DistanceMiles, 1)
	return json.Marshal(out)
}

// Place is a result from an external places search.
type Place struct {
	PlaceID     string   `json:"place_id"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      float64  `json:"rating"`
	UserRatings int      `json:"user_ratings_total"`
	Types       []string `json:"types"`
	PhotoURL    string   `json:"photo_url,omitempty"`
}

// Emergency stop kinds.
const (
	EmergencyTruckStop = "truck_stop"
	EmergencyPolice    = "police_station"
)

// EmergencyStop is a place a driver can go to for help.
type EmergencyStop struct {
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	DistanceMiles float64   `json:"distance_miles"`
	Location      geo.Point `json:"location"`
	Phone         string    `json:"phone,omitempty"`
}

func (e EmergencyStop) MarshalJSON() ([]byte, error) {
	type alias EmergencyStop
	out := alias(e)
	out.DistanceMiles = util.Round(e.DistanceMiles, 1)
	return json.Marshal(out)
}

// Query is a nearby stop search. Zero radius, limit and tier use the
// defaults (50 mi, 10, Level 3). Hour selects day or night scoring.
type Query struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusMiles float64 `json:"radius_miles"`
	MinTier     Tier    `json:"min_tier"`
	RequireFuel bool    `json:"require_fuel"`
	Limit       int     `json:"limit"`
	Hour        *int    `json:"hour,omitempty"`
}

// FuelQuery searches stops that sell fuel.
type FuelQuery struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusMiles float64 `json:"radius_miles"`
}

// EmergencyQuery looks for help around a position.
type EmergencyQuery struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Direction is the side a driver approaches a zone from.
type Direction string

const (
	FromNorth Direction = "north"
	FromSouth Direction = "south"
	FromEast  Direction = "east"
	FromWest  Direction = "west"
)

// BeforeZoneQuery searches for stops ahead of a red zone.
type BeforeZoneQuery struct {
	ZoneLatitude  float64   `json:"zone_latitude"`
	ZoneLongitude float64   `json:"zone_longitude"`
	Approach      Direction `json:"approach_direction"`
	BufferMiles   float64   `json:"buffer_miles"`
}

// Break types for HOS planning.
const (
	BreakQuick     = "quick"
	BreakOvernight = "overnight"
)

// HOSRequest asks for a break recommendation.
type HOSRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	HoursDriven float64 `json:"hours_driven"`
	BreakType   string  `json:"break_type"`
}

// HOS statuses.
const (
	HOSSafe   = "SAFE"
	HOSUnsafe = "UNSAFE"
)

// HOSResponse is a break recommendation. UNSAFE means no stop met the
// overnight tier floor.
type HOSResponse struct {
	Status               string     `json:"status"`
	Urgency              string     `json:"urgency"`
	Message              string     `json:"message"`
	Warning              string     `json:"warning,omitempty"`
	HoursDriven          float64    `json:"hours_driven"`
	HoursRemaining       float64    `json:"hours_remaining"`
	BreakType            string     `json:"break_type"`
	RecommendedStops     []SafeStop `json:"recommended_stops"`
	FallbackOptions      []SafeStop `json:"fallback_options,omitempty"`
	SafetyRecommendation string     `json:"safety_recommendation,omitempty"`
}
