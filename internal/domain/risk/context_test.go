package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

func TestTimeCategory(t *testing.T) {
	require.Equal(t, "night", TimeCategory(0))
	require.Equal(t, "night", TimeCategory(4))
	require.Equal(t, "day", TimeCategory(5))
	require.Equal(t, "day", TimeCategory(16))
	require.Equal(t, "evening", TimeCategory(17))
	require.Equal(t, "evening", TimeCategory(21))
	require.Equal(t, "night", TimeCategory(22))
}

func TestSeasonFor(t *testing.T) {
	date := func(m time.Month, d int) time.Time {
		return time.Date(2025, m, d, 12, 0, 0, 0, time.UTC)
	}

	require.Equal(t, "black_friday_week", SeasonFor(date(time.November, 25)))
	require.Equal(t, "normal", SeasonFor(date(time.November, 29)))
	require.Equal(t, "holiday_peak", SeasonFor(date(time.December, 16)))
	require.Equal(t, "christmas_week", SeasonFor(date(time.December, 24)))
	require.Equal(t, "new_years_week", SeasonFor(date(time.December, 30)))
	require.Equal(t, "new_years_week", SeasonFor(date(time.January, 2)))
	require.Equal(t, "normal", SeasonFor(date(time.January, 4)))
	require.Equal(t, "back_to_school", SeasonFor(date(time.August, 10)))
	require.Equal(t, "back_to_school", SeasonFor(date(time.September, 15)))
	require.Equal(t, "normal", SeasonFor(date(time.September, 16)))
	require.Equal(t, "summer", SeasonFor(date(time.July, 4)))
}

func TestContextAt(t *testing.T) {
	rc := ContextAt(time.Date(2024, time.November, 29, 23, 30, 0, 0, time.UTC))

	require.Equal(t, "night", rc.TimeOfDay)
	require.Equal(t, "friday", rc.DayOfWeek)
	require.Equal(t, "november", rc.Month)
	require.Equal(t, "normal", rc.Season)
	require.Equal(t, "general", rc.Commodity)
	require.Equal(t, 50000.0, rc.CargoValue)
}

func TestWithDefaultsFillsBlanksOnly(t *testing.T) {
	rc := Context{Commodity: "electronics", Weather: "  "}.WithDefaults()

	require.Equal(t, "electronics", rc.Commodity)
	require.Equal(t, "clear", rc.Weather)
	require.Equal(t, "day", rc.TimeOfDay)
	require.Zero(t, rc.CargoValue)
	require.Empty(t, rc.State)
}

func TestContextValidate(t *testing.T) {
	require.NoError(t, DefaultContext().Validate())

	rc := DefaultContext()
	rc.CargoValue = -1
	require.True(t, apperrors.IsCode(rc.Validate(), apperrors.CodeInvalidInput))

	rc.CargoValue = math.NaN()
	require.True(t, apperrors.IsCode(rc.Validate(), apperrors.CodeInvalidInput))
}
