package stops

import "strings"

// DefaultStateRiskLevel applies to states missing from the catalog.
const DefaultStateRiskLevel = "MODERATE"

// CatalogStop is one static truck stop record.
type CatalogStop struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Highway       string   `json:"highway"`
	Amenities     []string `json:"amenities"`
	Security      string   `json:"security"`
	RiskScore     *float64 `json:"risk_score,omitempty"`
	ParkingSpaces int      `json:"parking_spaces"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
}

// HasAmenity reports whether any of names is tagged on the stop.
func (s CatalogStop) HasAmenity(names ...string) bool {
	for _, a := range s.Amenities {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

// SecurityLevel is the coarse security field, "none" when absent.
func (s CatalogStop) SecurityLevel() string {
	if s.Security == "" {
		return "none"
	}
	return s.Security
}

// HistoricalRisk is the 1-10 theft history score, 5 when absent.
func (s CatalogStop) HistoricalRisk() float64 {
	if s.RiskScore == nil {
		return 5
	}
	return *s.RiskScore
}

// Hotspot is a city with documented organised cargo theft.
type Hotspot struct {
	RiskScore float64 `json:"risk_score"`
	Notes     string  `json:"notes,omitempty"`
}

// StateProfile carries the crime risk band of one state.
type StateProfile struct {
	RiskLevel string `json:"risk_level"`
}

// Catalog is an immutable snapshot of the stop data set. Hotspots are
// keyed "ST-City".
type Catalog struct {
	Version          string                  `json:"version,omitempty"`
	TruckStops       []CatalogStop           `json:"truck_stops"`
	Hotspots         map[string]Hotspot      `json:"hotspots"`
	StateMultipliers map[string]float64      `json:"state_risk_multipliers"`
	States           map[string]StateProfile `json:"states"`
}

// EmptyCatalog has no stops and neutral lookups.
func EmptyCatalog() *Catalog {
	return &Catalog{}
}

// StateRiskLevel returns LOW, MODERATE, HIGH or CRITICAL for a state.
func (c *Catalog) StateRiskLevel(code string) string {
	if c == nil {
		return DefaultStateRiskLevel
	}
	if p, ok := c.States[strings.ToUpper(code)]; ok && p.RiskLevel != "" {
		return strings.ToUpper(p.RiskLevel)
	}
	return DefaultStateRiskLevel
}

// StateMultiplier is the cargo theft multiplier for a state, 1.0 if unknown.
func (c *Catalog) StateMultiplier(code string) float64 {
	if c == nil {
		return 1.0
	}
	if v, ok := c.StateMultipliers[strings.ToUpper(code)]; ok {
		return v
	}
	return 1.0
}

// Hotspot looks up the city-level hotspot for a stop.
func (c *Catalog) Hotspot(state, city string) (Hotspot, bool) {
	if c == nil {
		return Hotspot{}, false
	}
	h, ok := c.Hotspots[state+"-"+city]
	return h, ok
}

// CatalogProvider hands out the current catalog snapshot. Implementations
// must return a non-nil catalog that callers treat as read only.
type CatalogProvider interface {
	Current() *Catalog
}

// StaticCatalog serves a fixed snapshot.
type StaticCatalog struct {
	catalog *Catalog
}

// NewStaticCatalog wraps c; nil yields the empty catalog.
func NewStaticCatalog(c *Catalog) *StaticCatalog {
	if c == nil {
		c = EmptyCatalog()
	}
	return &StaticCatalog{catalog: c}
}

// Current implements CatalogProvider.
func (s *StaticCatalog) Current() *Catalog {
	return s.catalog
}
