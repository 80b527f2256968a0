package risk

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
	"github.com/yanqian/safetravels/pkg/metrics"
)

func newTestService(now time.Time) *service {
	return &service{
		scorer:   NewScorer(nil),
		recorder: metrics.NewNoop(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return now },
	}
}

func TestServiceAssess(t *testing.T) {
	svc := newTestService(time.Now())

	req := NewAssessRequest()
	require.NoError(t, json.Unmarshal([]byte(`{"latitude":38.5,"longitude":-98.0,"commodity":"electronics"}`), &req))

	a, err := svc.Assess(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1.5, a.Factors.Commodity)
	require.Equal(t, 1.1, a.Factors.LocationType)
	require.Equal(t, 5.4, a.Score)
	require.Equal(t, LevelHigh, a.Level)
}

func TestServiceAssessRejectsInvalidInput(t *testing.T) {
	svc := newTestService(time.Now())

	req := NewAssessRequest()
	req.Latitude = 120
	_, err := svc.Assess(context.Background(), req)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	req = NewAssessRequest()
	req.CargoValue = -10
	_, err = svc.Assess(context.Background(), req)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	req = NewAssessRequest()
	rate := math.Inf(1)
	req.BaseCrimeRate = &rate
	_, err = svc.Assess(context.Background(), req)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceQuickCheckUsesClock(t *testing.T) {
	// Monday night during black friday week.
	svc := newTestService(time.Date(2024, time.November, 25, 23, 0, 0, 0, time.UTC))
	value := 300_000.0

	resp, err := svc.QuickCheck(context.Background(), QuickRequest{
		Latitude:   38.5,
		Longitude:  -98.0,
		Commodity:  "electronics",
		CargoValue: &value,
	})
	require.NoError(t, err)
	require.Equal(t, "night", resp.TimeOfDay)
	require.Equal(t, "black_friday_week", resp.Season)
	require.Equal(t, MaxScore, resp.Score)
	require.Equal(t, LevelCritical, resp.Level)
	require.LessOrEqual(t, len(resp.Warnings), quickWarningLimit)
	require.Contains(t, resp.Warnings[0], "Night travel")
}

func TestServiceWhatIf(t *testing.T) {
	// A Wednesday in April, both neutral.
	svc := newTestService(time.Date(2025, time.April, 9, 10, 0, 0, 0, time.UTC))

	hour := 2
	resp, err := svc.WhatIf(context.Background(), WhatIfRequest{Latitude: 32.7, Longitude: -96.8, BaseRisk: 5, Hour: &hour})
	require.NoError(t, err)
	require.NotNil(t, resp.Departure)
	require.Nil(t, resp.Profile)
	require.Equal(t, 8.0, resp.Departure.AdjustedRisk)

	resp, err = svc.WhatIf(context.Background(), WhatIfRequest{Latitude: 32.7, Longitude: -96.8, BaseRisk: 5})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	require.Equal(t, "8:00 AM", resp.Profile.BestDeparture)

	bad := 24
	_, err = svc.WhatIf(context.Background(), WhatIfRequest{Latitude: 32.7, Longitude: -96.8, BaseRisk: 5, Hour: &bad})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	month := 13
	_, err = svc.WhatIf(context.Background(), WhatIfRequest{Latitude: 32.7, Longitude: -96.8, BaseRisk: 5, Month: &month})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
