package stops

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier classifies a stop's security adequacy. Lower values are safer;
// TierUnset is only used for "no minimum" in queries.
type Tier int

const (
	TierUnset Tier = iota
	TierLevel1
	TierLevel2
	TierLevel3
	TierAvoid
)

// Tier cut points on the 0-100 security score.
const (
	Level1MinScore = 85
	Level2MinScore = 65
	Level3MinScore = 45
)

// TierFor buckets a security score.
func TierFor(score int) Tier {
	switch {
	case score >= Level1MinScore:
		return TierLevel1
	case score >= Level2MinScore:
		return TierLevel2
	case score >= Level3MinScore:
		return TierLevel3
	default:
		return TierAvoid
	}
}

// AtLeast reports whether t is as safe as min or safer.
func (t Tier) AtLeast(min Tier) bool {
	if min == TierUnset {
		return true
	}
	return t != TierUnset && t <= min
}

func (t Tier) String() string {
	switch t {
	case TierLevel1:
		return "Level 1"
	case TierLevel2:
		return "Level 2"
	case TierLevel3:
		return "Level 3"
	case TierAvoid:
		return "Avoid"
	default:
		return ""
	}
}

// ParseTier accepts "Level 2", "level_2", "2" and "avoid". An empty string
// is TierUnset.
func ParseTier(raw string) (Tier, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", " ", "", "-", "").Replace(key)
	switch key {
	case "":
		return TierUnset, nil
	case "level1", "1":
		return TierLevel1, nil
	case "level2", "2":
		return TierLevel2, nil
	case "level3", "3":
		return TierLevel3, nil
	case "avoid", "4":
		return TierAvoid, nil
	}
	return TierUnset, fmt.Errorf("unknown tier %q", raw)
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTier(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
