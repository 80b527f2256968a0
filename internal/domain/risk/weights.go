package risk

import (
	"math"
	"strings"
)

// WeightsVersion identifies the revision of the multiplier tables.
const WeightsVersion = "2026.01"

// Score bounds and level cut points.
const (
	MinScore = 1.0
	MaxScore = 10.0

	thresholdLow      = 3.0
	thresholdModerate = 5.0
	thresholdHigh     = 7.0
)

// Bucket maps an inclusive numeric range to a multiplier.
type Bucket struct {
	Name       string
	Min        float64
	Max        float64
	Multiplier float64
}

func (b Bucket) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Corridor is a named interstate corridor with a documented theft history.
type Corridor struct {
	Name       string   `json:"name"`
	States     []string `json:"states"`
	Multiplier float64  `json:"multiplier"`
}

// Table is the full set of factor weights. Tables are never mutated after
// construction, so a *Table is safe to share between goroutines.
type Table struct {
	Version     string
	Time        map[string]float64
	Day         map[string]float64
	Month       map[string]float64
	Season      map[string]float64
	Commodity   map[string]float64
	Location    map[string]float64
	State       map[string]float64
	Weather     map[string]float64
	Event       map[string]float64
	Traffic     map[string]float64
	Accident    map[string]float64
	ValueTiers  []Bucket
	LengthTiers []Bucket
	Corridors   []Corridor
}

// DefaultTable returns the production weights.
func DefaultTable() *Table {
	return &Table{
		Version: WeightsVersion,
		Time: map[string]float64{
			"night":   1.5,
			"evening": 1.25,
			"day":     1.0,
		},
		Day: map[string]float64{
			"monday":    1.0,
			"tuesday":   1.0,
			"wednesday": 1.0,
			"thursday":  1.05,
			"friday":    1.15,
			"saturday":  1.2,
			"sunday":    1.1,
		},
		Month: map[string]float64{
			"january":   1.1,
			"february":  1.0,
			"march":     1.0,
			"april":     1.0,
			"may":       1.0,
			"june":      1.1,
			"july":      1.1,
			"august":    1.2,
			"september": 1.15,
			"october":   1.1,
			"november":  1.3,
			"december":  1.4,
		},
		Season: map[string]float64{
			"black_friday_week": 1.5,
			"holiday_peak":      1.4,
			"christmas_week":    1.45,
			"new_years_week":    1.3,
			"back_to_school":    1.2,
			"summer":            1.1,
			"normal":            1.0,
		},
		Commodity: map[string]float64{
			"electronics":          1.5,
			"pharmaceuticals":      1.45,
			"consumer_electronics": 1.5,
			"computers":            1.45,
			"phones":               1.4,
			"alcohol":              1.3,
			"tobacco":              1.3,
			"automotive_parts":     1.25,
			"appliances":           1.2,
			"clothing":             1.2,
			"footwear":             1.2,
			"household_goods":      1.1,
			"cosmetics":            1.15,
			"tools":                1.1,
			"food_beverage":        1.0,
			"produce":              0.95,
			"raw_materials":        0.9,
			"lumber":               0.85,
			"general":              1.0,
		},
		Location: map[string]float64{
			"random_roadside":     1.6,
			"unsecured_lot":       1.5,
			"abandoned_area":      1.7,
			"rest_area":           1.3,
			"truck_stop_basic":    1.1,
			"industrial_area":     1.2,
			"truck_stop_secured":  0.8,
			"truck_stop_premium":  0.7,
			"distribution_center": 0.6,
			"shipper_facility":    0.5,
		},
		State: map[string]float64{
			"CA": 1.35,
			"TX": 1.3,
			"FL": 1.25,
			"IL": 1.2,
			"GA": 1.2,
			"NJ": 1.15,
			"PA": 1.1,
			"TN": 1.1,
			"AZ": 1.1,
			"NM": 1.05,
		},
		Weather: map[string]float64{
			"severe_storm": 1.35,
			"storm":        1.25,
			"heavy_rain":   1.15,
			"fog":          1.2,
			"snow":         1.15,
			"ice":          1.2,
			"extreme_heat": 1.05,
			"clear":        1.0,
			"cloudy":       1.0,
			"light_rain":   1.0,
		},
		Event: map[string]float64{
			"civil_unrest":         2.0,
			"riot":                 2.0,
			"major_protest":        1.6,
			"emergency_evacuation": 1.5,
			"large_event":          1.3,
			"festival":             1.25,
			"convention":           1.2,
			"holiday":              1.15,
			"construction":         1.1,
			"none":                 1.0,
		},
		Traffic: map[string]float64{
			"standstill": 1.5,
			"severe":     1.4,
			"heavy":      1.25,
			"moderate":   1.1,
			"light":      1.0,
			"free_flow":  0.95,
		},
		Accident: map[string]float64{
			"very_high": 1.4,
			"high":      1.25,
			"moderate":  1.1,
			"low":       1.0,
			"very_low":  0.95,
		},
		// Ranges are inclusive and evaluated in order. Fractional values that
		// fall between two integer bounds match no tier and resolve to 1.0.
		ValueTiers: []Bucket{
			{Name: "ultra_high", Min: 1_000_000, Max: math.Inf(1), Multiplier: 1.6},
			{Name: "very_high", Min: 500_000, Max: 999_999, Multiplier: 1.4},
			{Name: "high", Min: 250_000, Max: 499_999, Multiplier: 1.25},
			{Name: "moderate", Min: 100_000, Max: 249_999, Multiplier: 1.1},
			{Name: "standard", Min: 0, Max: 99_999, Multiplier: 1.0},
		},
		LengthTiers: []Bucket{
			{Name: "cross_country", Min: 1500, Max: math.Inf(1), Multiplier: 1.4},
			{Name: "long_haul", Min: 1000, Max: 1499, Multiplier: 1.25},
			{Name: "regional", Min: 500, Max: 999, Multiplier: 1.1},
			{Name: "short_haul", Min: 0, Max: 499, Multiplier: 1.0},
		},
		Corridors: []Corridor{
			{Name: "I-10 LA to Houston", States: []string{"CA", "AZ", "NM", "TX"}, Multiplier: 1.4},
			{Name: "I-95 East Coast", States: []string{"FL", "GA", "SC", "NC", "VA", "MD", "NJ", "NY"}, Multiplier: 1.3},
			{Name: "I-35 Texas Corridor", States: []string{"TX"}, Multiplier: 1.25},
			{Name: "I-5 West Coast", States: []string{"CA", "OR", "WA"}, Multiplier: 1.2},
			{Name: "I-80 Northern Route", States: []string{"CA", "NV", "UT", "WY", "NE", "IA", "IL", "IN", "OH", "PA", "NJ"}, Multiplier: 1.15},
		},
	}
}

func lookup(table map[string]float64, key string) float64 {
	if v, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return v
	}
	return 1.0
}

// TimeMultiplier resolves a time-of-day category.
func (t *Table) TimeMultiplier(v string) float64 { return lookup(t.Time, v) }

// DayMultiplier resolves a lowercase weekday name.
func (t *Table) DayMultiplier(v string) float64 { return lookup(t.Day, v) }

// MonthMultiplier resolves a lowercase month name.
func (t *Table) MonthMultiplier(v string) float64 { return lookup(t.Month, v) }

// SeasonMultiplier resolves a named special period.
func (t *Table) SeasonMultiplier(v string) float64 { return lookup(t.Season, v) }

// CommodityMultiplier resolves a cargo category.
func (t *Table) CommodityMultiplier(v string) float64 { return lookup(t.Commodity, v) }

// LocationMultiplier resolves a stop category.
func (t *Table) LocationMultiplier(v string) float64 { return lookup(t.Location, v) }

// WeatherMultiplier resolves a weather condition.
func (t *Table) WeatherMultiplier(v string) float64 { return lookup(t.Weather, v) }

// EventMultiplier resolves a local disturbance.
func (t *Table) EventMultiplier(v string) float64 { return lookup(t.Event, v) }

// TrafficMultiplier resolves a traffic condition.
func (t *Table) TrafficMultiplier(v string) float64 { return lookup(t.Traffic, v) }

// AccidentMultiplier resolves an accident-history band.
func (t *Table) AccidentMultiplier(v string) float64 { return lookup(t.Accident, v) }

// StateMultiplier resolves a two-letter state code, case-insensitively.
func (t *Table) StateMultiplier(code string) float64 {
	if v, ok := t.State[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return v
	}
	return 1.0
}

// ValueMultiplier buckets a declared cargo value.
func (t *Table) ValueMultiplier(amount float64) float64 {
	return bucketMultiplier(t.ValueTiers, amount)
}

// RouteLengthMultiplier buckets total trip miles into an exposure multiplier.
func (t *Table) RouteLengthMultiplier(miles float64) float64 {
	return bucketMultiplier(t.LengthTiers, miles)
}

func bucketMultiplier(buckets []Bucket, v float64) float64 {
	for _, b := range buckets {
		if b.contains(v) {
			return b.Multiplier
		}
	}
	return 1.0
}

// CorridorsFor returns the corridors that contain every given state.
// An empty state list matches nothing.
func (t *Table) CorridorsFor(states []string) []Corridor {
	if len(states) == 0 {
		return nil
	}
	var out []Corridor
	for _, c := range t.Corridors {
		members := make(map[string]struct{}, len(c.States))
		for _, s := range c.States {
			members[s] = struct{}{}
		}
		all := true
		for _, s := range states {
			if _, ok := members[strings.ToUpper(s)]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, c)
		}
	}
	return out
}

// Clamp bounds a raw score to [MinScore, MaxScore].
func Clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}
