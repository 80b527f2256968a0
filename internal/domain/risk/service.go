package risk

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/metrics"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

const quickWarningLimit = 3

// Service exposes point assessment and departure planning.
type Service interface {
	Assess(ctx context.Context, req AssessRequest) (Assessment, error)
	QuickCheck(ctx context.Context, req QuickRequest) (QuickResponse, error)
	WhatIf(ctx context.Context, req WhatIfRequest) (WhatIfResponse, error)
}

// AssessRequest scores a single location. The embedded Context is flattened
// in JSON; decode into NewAssessRequest() so omitted fields keep defaults.
type AssessRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Context
	BaseCrimeRate *float64 `json:"base_crime_rate,omitempty"`
}

// NewAssessRequest returns a request pre-filled with DefaultContext.
func NewAssessRequest() AssessRequest {
	return AssessRequest{Context: DefaultContext()}
}

// QuickRequest scores a location as of now.
type QuickRequest struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Commodity  string   `json:"commodity"`
	CargoValue *float64 `json:"cargo_value,omitempty"`
}

// QuickResponse is the trimmed result of a quick check.
type QuickResponse struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Score      float64  `json:"risk_score"`
	Level      Level    `json:"risk_level"`
	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings"`
	TimeOfDay  string   `json:"time_of_day"`
	Season     string   `json:"season"`
}

// WhatIfRequest asks how departure time changes a base risk. Without Hour
// the full 24-hour profile is returned.
type WhatIfRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	BaseRisk  float64 `json:"base_risk"`
	Hour      *int    `json:"hour,omitempty"`
	Weekday   *int    `json:"weekday,omitempty"`
	Month     *int    `json:"month,omitempty"`
}

// WhatIfResponse carries either Departure or Profile.
type WhatIfResponse struct {
	Location  geo.Point         `json:"location"`
	BaseRisk  float64           `json:"base_risk"`
	Departure *DepartureRisk    `json:"departure,omitempty"`
	Profile   *DepartureProfile `json:"profile,omitempty"`
}

type service struct {
	scorer   *Scorer
	recorder *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the risk domain.
func NewService(scorer *Scorer, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	return &service{
		scorer:   scorer,
		recorder: recorder,
		logger:   logger.With("component", "risk.service"),
		now:      time.Now,
	}
}

func (s *service) Assess(ctx context.Context, req AssessRequest) (Assessment, error) {
	p := geo.Point{Lat: req.Latitude, Lon: req.Longitude}
	if err := p.Validate(); err != nil {
		return Assessment{}, err
	}
	rc := req.Context.WithDefaults()
	if err := rc.Validate(); err != nil {
		return Assessment{}, err
	}
	if req.BaseCrimeRate != nil {
		if b := *req.BaseCrimeRate; math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
			return Assessment{}, apperrors.InvalidInput("base_crime_rate must be a non-negative finite number")
		}
	}

	a := s.scorer.Calculate(p, rc, req.BaseCrimeRate)
	s.recorder.RecordAssessment(ctx, a.Level.String())
	s.logger.Debug("risk assessed", "lat", p.Lat, "lon", p.Lon, "score", a.Score, "level", a.Level.String())
	return a, nil
}

func (s *service) QuickCheck(ctx context.Context, req QuickRequest) (QuickResponse, error) {
	rc := ContextAt(s.now())
	if req.Commodity != "" {
		rc.Commodity = req.Commodity
	}
	if req.CargoValue != nil {
		rc.CargoValue = *req.CargoValue
	}

	a, err := s.Assess(ctx, AssessRequest{Latitude: req.Latitude, Longitude: req.Longitude, Context: rc})
	if err != nil {
		return QuickResponse{}, err
	}
	warnings := a.Warnings
	if len(warnings) > quickWarningLimit {
		warnings = warnings[:quickWarningLimit]
	}
	return QuickResponse{
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
		Score:      a.Score,
		Level:      a.Level,
		Confidence: a.Confidence,
		Warnings:   warnings,
		TimeOfDay:  rc.TimeOfDay,
		Season:     rc.Season,
	}, nil
}

func (s *service) WhatIf(ctx context.Context, req WhatIfRequest) (WhatIfResponse, error) {
	p := geo.Point{Lat: req.Latitude, Lon: req.Longitude}
	if err := p.Validate(); err != nil {
		return WhatIfResponse{}, err
	}
	if math.IsNaN(req.BaseRisk) || math.IsInf(req.BaseRisk, 0) || req.BaseRisk < 0 {
		return WhatIfResponse{}, apperrors.InvalidInput("base_risk must be a non-negative finite number")
	}

	now := s.now()
	weekday := MondayIndex(now.Weekday())
	if req.Weekday != nil {
		if *req.Weekday < 0 || *req.Weekday > 6 {
			return WhatIfResponse{}, apperrors.InvalidInput(fmt.Sprintf("weekday must be 0-6 (got %d)", *req.Weekday))
		}
		weekday = *req.Weekday
	}
	month := int(now.Month())
	if req.Month != nil {
		if *req.Month < 1 || *req.Month > 12 {
			return WhatIfResponse{}, apperrors.InvalidInput(fmt.Sprintf("month must be 1-12 (got %d)", *req.Month))
		}
		month = *req.Month
	}

	resp := WhatIfResponse{Location: p, BaseRisk: req.BaseRisk}
	if req.Hour != nil {
		if *req.Hour < 0 || *req.Hour > 23 {
			return WhatIfResponse{}, apperrors.InvalidInput(fmt.Sprintf("hour must be 0-23 (got %d)", *req.Hour))
		}
		d := RiskAtDeparture(req.BaseRisk, *req.Hour, weekday, month)
		resp.Departure = &d
	} else {
		profile := ProfileForDay(req.BaseRisk, weekday, month)
		resp.Profile = &profile
	}
	s.logger.Debug("what-if computed", "lat", p.Lat, "lon", p.Lon, "base_risk", req.BaseRisk, "single_hour", req.Hour != nil)
	return resp, nil
}
