package risk

import (
	"fmt"

	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/util"
)

const (
	confidenceBase = 0.65
	confidenceStep = 0.02
	confidenceCap  = 0.95
)

// FactorBreakdown records the multiplier applied for each factor.
type FactorBreakdown struct {
	BaseCrimeRate   float64 `json:"base_crime_rate"`
	TimeOfDay       float64 `json:"time_of_day"`
	DayOfWeek       float64 `json:"day_of_week"`
	Month           float64 `json:"month"`
	Season          float64 `json:"season"`
	Commodity       float64 `json:"commodity"`
	CargoValue      float64 `json:"cargo_value"`
	LocationType    float64 `json:"location_type"`
	State           float64 `json:"state"`
	Weather         float64 `json:"weather"`
	Event           float64 `json:"event"`
	Traffic         float64 `json:"traffic"`
	AccidentHistory float64 `json:"accident_history"`
}

// product multiplies the base rate by all twelve factor multipliers.
func (f FactorBreakdown) product(base float64) float64 {
	return base *
		f.TimeOfDay *
		f.DayOfWeek *
		f.Month *
		f.Season *
		f.Commodity *
		f.CargoValue *
		f.LocationType *
		f.State *
		f.Weather *
		f.Event *
		f.Traffic *
		f.AccidentHistory
}

// Assessment is the result of scoring a single location.
type Assessment struct {
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Score      float64         `json:"risk_score"`
	Level      Level           `json:"risk_level"`
	Factors    FactorBreakdown `json:"factors"`
	Confidence float64         `json:"confidence"`
	Warnings   []string        `json:"warnings"`
}

// Scorer computes point assessments from a weight table. It holds no
// mutable state.
type Scorer struct {
	table *Table
}

// NewScorer builds a scorer over table, falling back to DefaultTable.
func NewScorer(table *Table) *Scorer {
	if table == nil {
		table = DefaultTable()
	}
	return &Scorer{table: table}
}

// Table exposes the weights the scorer was built with.
func (s *Scorer) Table() *Table {
	return s.table
}

// Calculate scores p under rc. A nil baseRate is resolved from the metro table.
// Callers are expected to have validated rc; Calculate itself never fails.
func (s *Scorer) Calculate(p geo.Point, rc Context, baseRate *float64) Assessment {
	base := BaseCrimeRate(p)
	if baseRate != nil {
		base = *baseRate
	}

	t := s.table
	factors := FactorBreakdown{
		TimeOfDay:       t.TimeMultiplier(rc.TimeOfDay),
		DayOfWeek:       t.DayMultiplier(rc.DayOfWeek),
		Month:           t.MonthMultiplier(rc.Month),
		Season:          t.SeasonMultiplier(rc.Season),
		Commodity:       t.CommodityMultiplier(rc.Commodity),
		CargoValue:      t.ValueMultiplier(rc.CargoValue),
		LocationType:    t.LocationMultiplier(rc.LocationType),
		State:           t.StateMultiplier(rc.State),
		Weather:         t.WeatherMultiplier(rc.Weather),
		Event:           t.EventMultiplier(rc.Event),
		Traffic:         t.TrafficMultiplier(rc.Traffic),
		AccidentHistory: t.AccidentMultiplier(rc.AccidentHistory),
	}
	score := util.Round(Clamp(factors.product(base)), 1)
	factors.BaseCrimeRate = util.Round(base, 2)

	return Assessment{
		Latitude:   p.Lat,
		Longitude:  p.Lon,
		Score:      score,
		Level:      LevelFor(score),
		Factors:    factors,
		Confidence: confidence(factors),
		Warnings:   warnings(rc, factors),
	}
}

// confidence grows with every factor that moved away from neutral. Season
// is not counted; it usually restates the month.
func confidence(f FactorBreakdown) float64 {
	set := 0
	for _, v := range []float64{
		f.TimeOfDay, f.DayOfWeek, f.Month, f.Commodity, f.CargoValue,
		f.LocationType, f.State, f.Weather, f.Event, f.Traffic, f.AccidentHistory,
	} {
		if v != 1.0 {
			set++
		}
	}
	c := confidenceBase + confidenceStep*float64(set)
	if c > confidenceCap {
		c = confidenceCap
	}
	return util.Round(c, 2)
}

// warnings are emitted in display priority order.
func warnings(rc Context, f FactorBreakdown) []string {
	out := make([]string, 0, 4)
	if f.Event >= 1.5 {
		out = append(out, fmt.Sprintf("HIGH ALERT: Major event (%s) significantly increases theft risk. Consider avoiding this area.", rc.Event))
	}
	if f.TimeOfDay >= 1.5 && f.CargoValue >= 1.25 {
		out = append(out, "Night travel with high-value cargo is extremely risky. Consider secured overnight parking.")
	}
	if f.Weather >= 1.2 {
		out = append(out, fmt.Sprintf("Weather condition (%s) may delay emergency response and reduce visibility.", rc.Weather))
	}
	if f.Traffic >= 1.3 {
		out = append(out, "Heavy traffic or standstill conditions make the truck a stationary target. Find secure parking if stuck.")
	}
	if f.LocationType >= 1.4 {
		out = append(out, fmt.Sprintf("Location type (%s) is high-risk. Seek secured truck stop if possible.", rc.LocationType))
	}
	if f.State >= 1.2 {
		out = append(out, fmt.Sprintf("State (%s) is a documented cargo theft hotspot. Maintain heightened awareness.", rc.State))
	}
	if f.Commodity >= 1.4 {
		out = append(out, fmt.Sprintf("Commodity (%s) is a high-value theft target. Consider additional security measures.", rc.Commodity))
	}
	return out
}
