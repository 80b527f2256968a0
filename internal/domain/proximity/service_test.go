package proximity

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/metrics"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

func newTestService() Service {
	return NewService(metrics.NewNoop(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr[T any](v T) *T { return &v }

func TestServiceCheckDefaultsSpeed(t *testing.T) {
	svc := newTestService()

	alert, err := svc.Check(context.Background(), CheckRequest{
		Latitude:  34.5,
		Longitude: -95.5,
		RedZones:  []ZoneRef{oklahomaZone},
	})
	require.NoError(t, err)
	require.Equal(t, AlertCaution, alert.Level)
	require.InDelta(t, alert.DistanceMiles/DefaultSpeedMPH*60, alert.EstimatedMinutes, 1e-9)
}

func TestServiceCheckZeroSpeed(t *testing.T) {
	svc := newTestService()

	alert, err := svc.Check(context.Background(), CheckRequest{
		Latitude:  35.7,
		Longitude: -95.2,
		RedZones:  []ZoneRef{oklahomaZone},
		SpeedMPH:  ptr(0.0),
	})
	require.NoError(t, err)
	require.True(t, math.IsInf(alert.EstimatedMinutes, 1))
}

func TestServiceCheckRejectsInvalidInput(t *testing.T) {
	svc := newTestService()
	cases := map[string]CheckRequest{
		"latitude":      {Latitude: 91, Longitude: -95},
		"negativeSpeed": {Latitude: 35, Longitude: -95, SpeedMPH: ptr(-10.0)},
		"nanSpeed":      {Latitude: 35, Longitude: -95, SpeedMPH: ptr(math.NaN())},
		"zoneCenter": {Latitude: 35, Longitude: -95, RedZones: []ZoneRef{
			{Center: geo.Point{Lat: 36, Lon: -200}},
		}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Check(context.Background(), req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestServiceCountdown(t *testing.T) {
	svc := newTestService()

	view, err := svc.Countdown(context.Background(), CheckRequest{
		Latitude:  35.7,
		Longitude: -95.2,
		RedZones:  []ZoneRef{oklahomaZone},
		SpeedMPH:  ptr(65.0),
	})
	require.NoError(t, err)
	require.Equal(t, "DANGER", view.Status)
	require.Equal(t, 23.6, *view.MilesToZone)
	require.Equal(t, 22.0, *view.ETAMinutes)

	empty, err := svc.Countdown(context.Background(), CheckRequest{Latitude: 35.7, Longitude: -95.2})
	require.NoError(t, err)
	require.Equal(t, "CLEAR", empty.Status)
}
