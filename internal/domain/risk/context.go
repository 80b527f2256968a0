package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// Context is the situational input to a score. It is a value type; callers
// build a fresh one per call.
type Context struct {
	TimeOfDay       string  `json:"time_of_day"`
	DayOfWeek       string  `json:"day_of_week"`
	Month           string  `json:"month"`
	Season          string  `json:"season"`
	Commodity       string  `json:"commodity"`
	CargoValue      float64 `json:"cargo_value"`
	LocationType    string  `json:"location_type"`
	State           string  `json:"state"`
	Weather         string  `json:"weather"`
	Event           string  `json:"event"`
	Traffic         string  `json:"traffic"`
	AccidentHistory string  `json:"accident_history"`
}

// DefaultContext is a daytime Monday in January with general cargo.
func DefaultContext() Context {
	return Context{
		TimeOfDay:       "day",
		DayOfWeek:       "monday",
		Month:           "january",
		Season:          "normal",
		Commodity:       "general",
		CargoValue:      50000,
		LocationType:    "truck_stop_basic",
		State:           "",
		Weather:         "clear",
		Event:           "none",
		Traffic:         "light",
		AccidentHistory: "low",
	}
}

// WithDefaults fills empty categorical fields from DefaultContext.
// CargoValue is left untouched; zero is a legitimate declared value.
func (c Context) WithDefaults() Context {
	d := DefaultContext()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&c.TimeOfDay, d.TimeOfDay)
	fill(&c.DayOfWeek, d.DayOfWeek)
	fill(&c.Month, d.Month)
	fill(&c.Season, d.Season)
	fill(&c.Commodity, d.Commodity)
	fill(&c.LocationType, d.LocationType)
	fill(&c.Weather, d.Weather)
	fill(&c.Event, d.Event)
	fill(&c.Traffic, d.Traffic)
	fill(&c.AccidentHistory, d.AccidentHistory)
	return c
}

// WithState returns a copy of c scoped to the given state code.
func (c Context) WithState(code string) Context {
	c.State = code
	return c
}

// Validate rejects numeric inputs the model cannot interpret.
func (c Context) Validate() error {
	if math.IsNaN(c.CargoValue) || math.IsInf(c.CargoValue, 0) {
		return apperrors.InvalidInput("cargo_value must be a finite number")
	}
	if c.CargoValue < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("cargo_value cannot be negative (got %.2f)", c.CargoValue))
	}
	return nil
}

// ContextAt derives the temporal factors from t and leaves the rest at their defaults.
func ContextAt(t time.Time) Context {
	c := DefaultContext()
	c.TimeOfDay = TimeCategory(t.Hour())
	c.DayOfWeek = strings.ToLower(t.Weekday().String())
	c.Month = strings.ToLower(t.Month().String())
	c.Season = SeasonFor(t)
	return c
}

// TimeCategory buckets an hour: night from 22:00 to 04:59, evening from 17:00.
func TimeCategory(hour int) string {
	switch {
	case hour >= 22 || hour < 5:
		return "night"
	case hour >= 17:
		return "evening"
	default:
		return "day"
	}
}

// SeasonFor names the special period t falls in. Earlier rules win.
func SeasonFor(t time.Time) string {
	month, day := t.Month(), t.Day()
	switch {
	case month == time.November && day >= 22 && day <= 28:
		return "black_friday_week"
	case month == time.December && day >= 20 && day <= 26:
		return "christmas_week"
	case (month == time.December && day >= 27) || (month == time.January && day <= 3):
		return "new_years_week"
	case month == time.December && day >= 15:
		return "holiday_peak"
	case month == time.August || (month == time.September && day <= 15):
		return "back_to_school"
	case month >= time.June && month <= time.August:
		return "summer"
	default:
		return "normal"
	}
}
