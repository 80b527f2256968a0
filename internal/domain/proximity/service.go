package proximity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/metrics"
	"github.com/yanqian/safetravels/pkg/util"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// Service monitors a driver's position against known red zones.
type Service interface {
	Check(ctx context.Context, req CheckRequest) (Alert, error)
	Countdown(ctx context.Context, req CheckRequest) (Countdown, error)
}

// CheckRequest carries the current position and the zones ahead.
// SpeedMPH defaults to 55 when omitted.
type CheckRequest struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RedZones  []ZoneRef `json:"red_zones"`
	SpeedMPH  *float64  `json:"speed_mph,omitempty"`
}

type service struct {
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewService wires the proximity monitor.
func NewService(recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		recorder: recorder,
		logger:   logger.With("component", "proximity.service"),
	}
}

func (s *service) Check(ctx context.Context, req CheckRequest) (Alert, error) {
	current := geo.Point{Lat: req.Latitude, Lon: req.Longitude}
	if err := current.Validate(); err != nil {
		return Alert{}, err
	}
	speed := DefaultSpeedMPH
	if req.SpeedMPH != nil {
		speed = *req.SpeedMPH
		if !util.Finite(speed) || speed < 0 {
			return Alert{}, apperrors.InvalidInput("speed_mph must be a non-negative finite number")
		}
	}
	for i, z := range req.RedZones {
		if err := z.Center.Validate(); err != nil {
			return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("red_zones[%d].center is invalid", i), err)
		}
	}

	alert := Check(current, req.RedZones, speed)
	if alert.ShouldAlert {
		s.recorder.RecordProximityAlert(ctx, alert.Level.String())
		s.logger.Info("red zone ahead", "level", alert.Level.String(), "distance_miles", util.Round(alert.DistanceMiles, 1), "zone", alert.ZoneName)
	}
	return alert, nil
}

func (s *service) Countdown(ctx context.Context, req CheckRequest) (Countdown, error) {
	alert, err := s.Check(ctx, req)
	if err != nil {
		return Countdown{}, err
	}
	return CountdownFor(alert), nil
}
