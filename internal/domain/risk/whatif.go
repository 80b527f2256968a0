package risk

import (
	"fmt"
	"time"

	"github.com/yanqian/safetravels/pkg/util"
)

// Departure multipliers are deliberately separate from the point-score
// tables: they model hour-level variation for trip planning.
var (
	hourlyDeparture = [24]float64{
		1.4, 1.5, 1.6, 1.6, 1.5, 1.4, // 00-05
		1.1, 1.0, 0.9, 0.9, 0.9, 1.0, // 06-11
		1.0, 1.0, 1.0, 1.1, 1.1, 1.2, // 12-17
		1.2, 1.3, 1.3, 1.4, 1.4, 1.4, // 18-23
	}
	// Monday first.
	weekdayDeparture = [7]float64{0.95, 0.95, 1.0, 1.0, 1.15, 1.20, 1.05}
	// January first.
	monthDeparture = [12]float64{1.0, 0.95, 0.95, 1.0, 1.0, 1.05, 1.05, 1.0, 1.05, 1.10, 1.20, 1.25}
)

// DepartureMultipliers are the factors applied for one departure hour.
type DepartureMultipliers struct {
	TimeOfDay float64 `json:"time_of_day"`
	DayOfWeek float64 `json:"day_of_week"`
	Month     float64 `json:"month"`
	Combined  float64 `json:"combined"`
}

// DepartureRisk is the adjusted risk for departing at a given hour.
type DepartureRisk struct {
	BaseRisk       float64              `json:"base_risk"`
	AdjustedRisk   float64              `json:"adjusted_risk"`
	Level          Level                `json:"risk_level"`
	Color          string               `json:"risk_color"`
	DepartureTime  string               `json:"departure_time"`
	DepartureHour  int                  `json:"departure_hour"`
	Multipliers    DepartureMultipliers `json:"multipliers"`
	Recommendation string               `json:"recommendation"`
}

// ProfileStats summarizes a 24-hour profile.
type ProfileStats struct {
	MinRisk     float64 `json:"min_risk"`
	MinRiskHour int     `json:"min_risk_hour"`
	MaxRisk     float64 `json:"max_risk"`
	MaxRiskHour int     `json:"max_risk_hour"`
	RiskRange   float64 `json:"risk_range"`
}

// DepartureProfile is the risk for each hour of one day.
type DepartureProfile struct {
	Hours          []DepartureRisk `json:"hourly_profile"`
	Statistics     ProfileStats    `json:"statistics"`
	BestDeparture  string          `json:"best_departure_time"`
	WorstDeparture string          `json:"worst_departure_time"`
}

// RiskAtDeparture adjusts baseRisk for an hour (0-23), weekday (Monday=0)
// and month (1-12). The result is capped at MaxScore.
func RiskAtDeparture(baseRisk float64, hour, weekday, month int) DepartureRisk {
	hourMult := 1.0
	if hour >= 0 && hour < len(hourlyDeparture) {
		hourMult = hourlyDeparture[hour]
	}
	dayMult := 1.0
	if weekday >= 0 && weekday < len(weekdayDeparture) {
		dayMult = weekdayDeparture[weekday]
	}
	monthMult := 1.0
	if month >= 1 && month <= len(monthDeparture) {
		monthMult = monthDeparture[month-1]
	}
	combined := hourMult * dayMult * monthMult
	adjusted := util.Round(min(MaxScore, baseRisk*combined), 1)
	level := LevelFor(adjusted)

	return DepartureRisk{
		BaseRisk:      util.Round(baseRisk, 1),
		AdjustedRisk:  adjusted,
		Level:         level,
		Color:         levelColor(level),
		DepartureTime: clockLabel(hour),
		DepartureHour: hour,
		Multipliers: DepartureMultipliers{
			TimeOfDay: util.Round(hourMult, 2),
			DayOfWeek: util.Round(dayMult, 2),
			Month:     util.Round(monthMult, 2),
			Combined:  util.Round(combined, 2),
		},
		Recommendation: departureAdvice(level, hour),
	}
}

// ProfileForDay computes all 24 departure hours. Ties keep the earliest hour.
func ProfileForDay(baseRisk float64, weekday, month int) DepartureProfile {
	profile := DepartureProfile{Hours: make([]DepartureRisk, 0, 24)}
	for hour := 0; hour < 24; hour++ {
		profile.Hours = append(profile.Hours, RiskAtDeparture(baseRisk, hour, weekday, month))
	}
	minIdx, maxIdx := 0, 0
	for i, h := range profile.Hours {
		if h.AdjustedRisk < profile.Hours[minIdx].AdjustedRisk {
			minIdx = i
		}
		if h.AdjustedRisk > profile.Hours[maxIdx].AdjustedRisk {
			maxIdx = i
		}
	}
	lo, hi := profile.Hours[minIdx].AdjustedRisk, profile.Hours[maxIdx].AdjustedRisk
	profile.Statistics = ProfileStats{
		MinRisk:     lo,
		MinRiskHour: minIdx,
		MaxRisk:     hi,
		MaxRiskHour: maxIdx,
		RiskRange:   util.Round(hi-lo, 1),
	}
	profile.BestDeparture = clockLabel(minIdx)
	profile.WorstDeparture = clockLabel(maxIdx)
	return profile
}

// MondayIndex converts Go's Sunday-first weekday to a Monday-first index.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func clockLabel(hour int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

func levelColor(level Level) string {
	switch level {
	case LevelLow:
		return "#22c55e"
	case LevelModerate:
		return "#f59e0b"
	case LevelHigh:
		return "#ef4444"
	default:
		return "#7c2d12"
	}
}

func departureAdvice(level Level, hour int) string {
	switch level {
	case LevelCritical:
		if hour >= 2 && hour <= 5 {
			return "Avoid departing at this time. Night hours have highest theft risk."
		}
		return "High risk time. Consider alternative departure time."
	case LevelHigh:
		return "Elevated risk. Take extra precautions if departing now."
	case LevelModerate:
		return "Moderate risk. Standard precautions recommended."
	default:
		return "Good time to depart. Lower risk window."
	}
}
