package stops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func risk(v float64) *float64 { return &v }

func TestScoreStopTierBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		stop  CatalogStop
		score int
		tier  Tier
	}{
		{
			name: "level one at 85",
			stop: CatalogStop{
				Name: "Secure Haven", State: "OK", Security: "none", RiskScore: risk(3), ParkingSpaces: 40,
				Amenities: []string{"gated_parking", "security_guards", "cctv", "lighting_good"},
			},
			score: 85, tier: TierLevel1,
		},
		{
			name: "level two at 65",
			stop: CatalogStop{
				Name: "Guarded Lot", State: "OK", Security: "medium", RiskScore: risk(2), ParkingSpaces: 10,
				Highway: "US-75", Amenities: []string{"gated_parking", "security_guards"},
			},
			score: 65, tier: TierLevel2,
		},
		{
			name: "level three at 45",
			stop: CatalogStop{
				Name: "Basic Stop", State: "OK", Security: "none", RiskScore: risk(2), ParkingSpaces: 10,
				Highway: "I-35", Amenities: []string{"cctv", "lighting_good"},
			},
			score: 45, tier: TierLevel3,
		},
		{
			name: "avoid at 44",
			stop: CatalogStop{
				Name: "Sketchy Lot", State: "OK", Security: "none", RiskScore: risk(2), ParkingSpaces: 40,
				Amenities: []string{"cctv", "lighting_good"},
			},
			score: 44, tier: TierAvoid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, tier := ScoreStop(tc.stop, nil, DefaultScoringHour)
			require.Equal(t, tc.score, score)
			require.Equal(t, tc.tier, tier)
		})
	}
}

func TestScoreStopHotspotAndStatePenalties(t *testing.T) {
	cat := &Catalog{
		Hotspots:         map[string]Hotspot{"TX-Dallas": {RiskScore: 7}},
		StateMultipliers: map[string]float64{"TX": 1.3},
		States:           map[string]StateProfile{"TX": {RiskLevel: "CRITICAL"}},
	}
	pilot := CatalogStop{
		Name: "Pilot Travel Center", City: "Dallas", State: "TX", Highway: "I-20",
		Security: "high", RiskScore: risk(3), ParkingSpaces: 120, Amenities: []string{"fuel", "showers"},
	}

	score, tier := ScoreStop(pilot, cat, DefaultScoringHour)
	require.Equal(t, 30, score)
	require.Equal(t, TierAvoid, tier)

	pilot.City = "Waco"
	score, tier = ScoreStop(pilot, cat, DefaultScoringHour)
	require.Equal(t, 46, score)
	require.Equal(t, TierLevel3, tier)
}

func TestScoreStopNightBonus(t *testing.T) {
	stop := CatalogStop{
		Name: "Night Watch", State: "OK", Security: "high", ParkingSpaces: 50,
		Amenities: []string{"security_guards"},
	}
	day, _ := ScoreStop(stop, nil, 12)
	night, _ := ScoreStop(stop, nil, 23)
	early, _ := ScoreStop(stop, nil, 5)
	morning, _ := ScoreStop(stop, nil, 6)

	require.Equal(t, day+5, night)
	require.Equal(t, night, early)
	require.Equal(t, day, morning)
}

func TestScoreStopRestAreaPenalties(t *testing.T) {
	stop := CatalogStop{Name: "I-35 Rest Area", Security: "low", Highway: "I-35", ParkingSpaces: 20}
	score, tier := ScoreStop(stop, nil, DefaultScoringHour)
	// history 9 + moderate state 4 + interstate 6 - lighting 6 - isolated 5
	require.Equal(t, 8, score)
	require.Equal(t, TierAvoid, tier)
}

func TestScoreStopIsDeterministicAndClamped(t *testing.T) {
	stop := CatalogStop{
		Name: "Love's Travel Stop", State: "OK", Highway: "I-40", Security: "high", RiskScore: risk(1), ParkingSpaces: 200,
		Amenities: []string{"gated_parking", "security_guards", "cctv", "lighting_good"},
	}
	first, tier := ScoreStop(stop, nil, 2)
	require.Equal(t, 100, first)
	require.Equal(t, TierLevel1, tier)
	for i := 0; i < 3; i++ {
		again, _ := ScoreStop(stop, nil, 3)
		require.Equal(t, first, again)
	}

	floor, tier := ScoreStop(CatalogStop{Name: "Rest Area", Security: "none", RiskScore: risk(9)}, &Catalog{
		States: map[string]StateProfile{"CA": {RiskLevel: "critical"}},
	}, 12)
	require.Equal(t, 0, floor)
	require.Equal(t, TierAvoid, tier)
}

func TestTierOrderingAndParsing(t *testing.T) {
	require.True(t, TierLevel1.AtLeast(TierLevel2))
	require.True(t, TierLevel2.AtLeast(TierLevel2))
	require.False(t, TierLevel3.AtLeast(TierLevel2))
	require.True(t, TierAvoid.AtLeast(TierAvoid))
	require.True(t, TierAvoid.AtLeast(TierUnset))

	for raw, want := range map[string]Tier{"Level 1": TierLevel1, "level_2": TierLevel2, "3": TierLevel3, "AVOID": TierAvoid, "": TierUnset} {
		got, err := ParseTier(raw)
		require.NoError(t, err)
		require.Equal(t, want, got, raw)
	}
	_, err := ParseTier("level 9")
	require.Error(t, err)
}
