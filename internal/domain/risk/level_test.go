package risk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForBoundaries(t *testing.T) {
	require.Equal(t, LevelLow, LevelFor(1.0))
	require.Equal(t, LevelLow, LevelFor(3.0))
	require.Equal(t, LevelModerate, LevelFor(3.1))
	require.Equal(t, LevelModerate, LevelFor(5.0))
	require.Equal(t, LevelHigh, LevelFor(5.1))
	require.Equal(t, LevelHigh, LevelFor(7.0))
	require.Equal(t, LevelCritical, LevelFor(7.1))
	require.Equal(t, LevelCritical, LevelFor(10))
}

func TestLevelJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Level Level `json:"level"`
	}{Level: LevelHigh})
	require.NoError(t, err)
	require.JSONEq(t, `{"level":"high"}`, string(raw))

	var decoded Level
	require.NoError(t, json.Unmarshal([]byte(`"CRITICAL"`), &decoded))
	require.Equal(t, LevelCritical, decoded)
	require.Error(t, json.Unmarshal([]byte(`"purple"`), &decoded))
	require.Equal(t, "unknown", Level(0).String())
}
