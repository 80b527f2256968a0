package risk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the human-readable band of a risk score.
type Level int

const (
	LevelLow Level = iota + 1
	LevelModerate
	LevelHigh
	LevelCritical
)

var levelNames = map[Level]string{
	LevelLow:      "low",
	LevelModerate: "moderate",
	LevelHigh:     "high",
	LevelCritical: "critical",
}

// LevelFor maps a score to its band: <=3 low, <=5 moderate, <=7 high, else critical.
func LevelFor(score float64) Level {
	switch {
	case score <= thresholdLow:
		return LevelLow
	case score <= thresholdModerate:
		return LevelModerate
	case score <= thresholdHigh:
		return LevelHigh
	default:
		return LevelCritical
	}
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the level as its lowercase name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the lowercase names produced by MarshalJSON.
func (l *Level) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for level, name := range levelNames {
		if strings.EqualFold(name, raw) {
			*l = level
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", raw)
}
