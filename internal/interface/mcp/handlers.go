package mcp

import (
	"context"

	"github.com/yanqian/safetravels/internal/domain/proximity"
	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
	apperrors "github.com/yanqian/safetravels/pkg/errors"
	"github.com/yanqian/safetravels/pkg/geo"
)

// --- Input/Output types ---

// AssessInput defines parameters for assess_location_risk. Omitted
// context fields keep their defaults.
type AssessInput struct {
	Latitude        float64  `json:"latitude" jsonschema:"GPS latitude, e.g. 32.7767 for Dallas"`
	Longitude       float64  `json:"longitude" jsonschema:"GPS longitude, e.g. -96.7970 for Dallas"`
	TimeOfDay       string   `json:"time_of_day,omitempty" jsonschema:"day, evening or night"`
	DayOfWeek       string   `json:"day_of_week,omitempty" jsonschema:"lowercase weekday, e.g. friday"`
	Month           string   `json:"month,omitempty" jsonschema:"lowercase month, e.g. december"`
	Season          string   `json:"season,omitempty" jsonschema:"normal, holiday_peak, black_friday_week, christmas_week, new_years_week, back_to_school or summer"`
	Commodity       string   `json:"commodity,omitempty" jsonschema:"cargo type, e.g. electronics or pharmaceuticals"`
	CargoValue      *float64 `json:"cargo_value,omitempty" jsonschema:"declared cargo value in USD"`
	LocationType    string   `json:"location_type,omitempty" jsonschema:"stop type, e.g. truck_stop_secured or rest_area"`
	State           string   `json:"state,omitempty" jsonschema:"two-letter state code"`
	Weather         string   `json:"weather,omitempty" jsonschema:"clear, fog, heavy_rain, snow and so on"`
	Event           string   `json:"event,omitempty" jsonschema:"local disturbance, e.g. none or civil_unrest"`
	Traffic         string   `json:"traffic,omitempty" jsonschema:"free_flow, light, moderate, heavy, severe or standstill"`
	AccidentHistory string   `json:"accident_history,omitempty" jsonschema:"very_low, low, moderate, high or very_high"`
}

// QuickInput defines parameters for quick_risk_check.
type QuickInput struct {
	Latitude   float64  `json:"latitude" jsonschema:"GPS latitude"`
	Longitude  float64  `json:"longitude" jsonschema:"GPS longitude"`
	Commodity  string   `json:"commodity,omitempty" jsonschema:"cargo type (default general)"`
	CargoValue *float64 `json:"cargo_value,omitempty" jsonschema:"cargo value in USD (default 50000)"`
}

// WhatIfInput defines parameters for what_if_departure.
type WhatIfInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"GPS latitude"`
	Longitude float64 `json:"longitude" jsonschema:"GPS longitude"`
	BaseRisk  float64 `json:"base_risk" jsonschema:"risk score to project, 1-10"`
	Hour      *int    `json:"hour,omitempty" jsonschema:"departure hour 0-23; omit for a 24-hour profile"`
	Weekday   *int    `json:"weekday,omitempty" jsonschema:"0 for Monday through 6 for Sunday"`
	Month     *int    `json:"month,omitempty" jsonschema:"1-12"`
}

// RouteInput defines parameters for analyze_route.
type RouteInput struct {
	OriginLat      float64  `json:"origin_lat" jsonschema:"starting point latitude"`
	OriginLon      float64  `json:"origin_lon" jsonschema:"starting point longitude"`
	DestinationLat float64  `json:"destination_lat" jsonschema:"ending point latitude"`
	DestinationLon float64  `json:"destination_lon" jsonschema:"ending point longitude"`
	Commodity      string   `json:"commodity,omitempty" jsonschema:"cargo type"`
	CargoValue     *float64 `json:"cargo_value,omitempty" jsonschema:"cargo value in USD"`
	TimeOfDay      string   `json:"time_of_day,omitempty" jsonschema:"expected travel time: day, evening or night"`
	Month          string   `json:"month,omitempty" jsonschema:"travel month"`
	SampleInterval float64  `json:"sample_interval_miles,omitempty" jsonschema:"miles between samples (default 20)"`
}

// NearbyInput defines parameters for find_safe_stops_nearby.
type NearbyInput struct {
	Latitude    float64 `json:"latitude" jsonschema:"current GPS latitude"`
	Longitude   float64 `json:"longitude" jsonschema:"current GPS longitude"`
	RadiusMiles float64 `json:"radius_miles,omitempty" jsonschema:"search radius (default 50)"`
	MinTier     string  `json:"min_security_tier,omitempty" jsonschema:"level_1, level_2, level_3 or avoid (default level_3)"`
	RequireFuel bool    `json:"require_fuel,omitempty" jsonschema:"only stops with diesel"`
	Limit       int     `json:"limit,omitempty" jsonschema:"maximum stops (default 5)"`
}

// FuelInput defines parameters for find_fuel_stops_nearby.
type FuelInput struct {
	Latitude    float64 `json:"latitude" jsonschema:"current GPS latitude"`
	Longitude   float64 `json:"longitude" jsonschema:"current GPS longitude"`
	RadiusMiles float64 `json:"radius_miles,omitempty" jsonschema:"search radius (default 50)"`
}

// EmergencyInput defines parameters for find_emergency_stops.
type EmergencyInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"current GPS latitude"`
	Longitude float64 `json:"longitude" jsonschema:"current GPS longitude"`
}

// BeforeZoneInput defines parameters for find_stops_before_zone.
type BeforeZoneInput struct {
	ZoneLatitude  float64 `json:"zone_latitude" jsonschema:"red zone center latitude"`
	ZoneLongitude float64 `json:"zone_longitude" jsonschema:"red zone center longitude"`
	Approach      string  `json:"approach_direction,omitempty" jsonschema:"north, south, east or west (default south)"`
	BufferMiles   float64 `json:"buffer_miles,omitempty" jsonschema:"miles short of the zone (default 30)"`
}

// HOSInput defines parameters for get_hos_stop_recommendation.
type HOSInput struct {
	Latitude    float64 `json:"latitude" jsonschema:"current GPS latitude"`
	Longitude   float64 `json:"longitude" jsonschema:"current GPS longitude"`
	HoursDriven float64 `json:"hours_driven" jsonschema:"hours driven in the current shift (max 10)"`
	BreakType   string  `json:"break_type,omitempty" jsonschema:"quick (30 minutes) or overnight (10 hours)"`
}

// ZoneInput is one red zone as returned by analyze_route.
type ZoneInput struct {
	Center      geo.Point `json:"center" jsonschema:"zone center"`
	StartMile   float64   `json:"start_mile,omitempty"`
	EndMile     float64   `json:"end_mile,omitempty"`
	PeakRisk    float64   `json:"peak_risk,omitempty"`
	Description string    `json:"description,omitempty" jsonschema:"zone name shown to the driver"`
}

// ProximityInput defines parameters for check_red_zone_proximity.
type ProximityInput struct {
	Latitude  float64     `json:"latitude" jsonschema:"current GPS latitude"`
	Longitude float64     `json:"longitude" jsonschema:"current GPS longitude"`
	RedZones  []ZoneInput `json:"red_zones,omitempty" jsonschema:"red zones from analyze_route"`
	SpeedMPH  *float64    `json:"speed_mph,omitempty" jsonschema:"current speed (default 55)"`
}

// StopsOutput lists stops with a count.
type StopsOutput struct {
	Stops []stops.SafeStop `json:"stops"`
	Count int              `json:"count"`
}

// EmergencyOutput lists emergency options with a count.
type EmergencyOutput struct {
	Options []stops.EmergencyStop `json:"options"`
	Count   int                   `json:"count"`
}

// ProximityOutput pairs the alert with its countdown rendering.
type ProximityOutput struct {
	Alert     proximity.Alert     `json:"alert"`
	Countdown proximity.Countdown `json:"countdown"`
}

// mcpDefaultStopLimit matches what agents expect from find_safe_stops_nearby.
const mcpDefaultStopLimit = 5

// --- Handlers ---

func (s *Server) assessLocationRisk(ctx context.Context, in AssessInput) (risk.Assessment, error) {
	req := risk.NewAssessRequest()
	req.Latitude, req.Longitude = in.Latitude, in.Longitude
	overlay(&req.Context.TimeOfDay, in.TimeOfDay)
	overlay(&req.Context.DayOfWeek, in.DayOfWeek)
	overlay(&req.Context.Month, in.Month)
	overlay(&req.Context.Season, in.Season)
	overlay(&req.Context.Commodity, in.Commodity)
	overlay(&req.Context.LocationType, in.LocationType)
	overlay(&req.Context.State, in.State)
	overlay(&req.Context.Weather, in.Weather)
	overlay(&req.Context.Event, in.Event)
	overlay(&req.Context.Traffic, in.Traffic)
	overlay(&req.Context.AccidentHistory, in.AccidentHistory)
	if in.CargoValue != nil {
		req.Context.CargoValue = *in.CargoValue
	}
	return s.riskSvc.Assess(ctx, req)
}

func (s *Server) quickRiskCheck(ctx context.Context, in QuickInput) (risk.QuickResponse, error) {
	return s.riskSvc.QuickCheck(ctx, risk.QuickRequest{
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Commodity:  in.Commodity,
		CargoValue: in.CargoValue,
	})
}

func (s *Server) whatIfDeparture(ctx context.Context, in WhatIfInput) (risk.WhatIfResponse, error) {
	return s.riskSvc.WhatIf(ctx, risk.WhatIfRequest{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		BaseRisk:  in.BaseRisk,
		Hour:      in.Hour,
		Weekday:   in.Weekday,
		Month:     in.Month,
	})
}

func (s *Server) analyzeRoute(ctx context.Context, in RouteInput) (route.Analysis, error) {
	rc := risk.DefaultContext()
	overlay(&rc.Commodity, in.Commodity)
	overlay(&rc.TimeOfDay, in.TimeOfDay)
	overlay(&rc.Month, in.Month)
	if in.CargoValue != nil {
		rc.CargoValue = *in.CargoValue
	}
	return s.routeSvc.Analyze(ctx, route.Request{
		Origin:         geo.Point{Lat: in.OriginLat, Lon: in.OriginLon},
		Destination:    geo.Point{Lat: in.DestinationLat, Lon: in.DestinationLon},
		Context:        &rc,
		SampleInterval: in.SampleInterval,
	})
}

func (s *Server) findSafeStops(ctx context.Context, in NearbyInput) (StopsOutput, error) {
	tier, err := stops.ParseTier(in.MinTier)
	if err != nil {
		return StopsOutput{}, apperrors.Wrap(apperrors.CodeInvalidInput, "min_security_tier is invalid", err)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = mcpDefaultStopLimit
	}
	results, err := s.stopsSvc.Nearby(ctx, stops.Query{
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		RadiusMiles: in.RadiusMiles,
		MinTier:     tier,
		RequireFuel: in.RequireFuel,
		Limit:       limit,
	})
	if err != nil {
		return StopsOutput{}, err
	}
	return stopsOutput(results), nil
}

func (s *Server) findFuelStops(ctx context.Context, in FuelInput) (StopsOutput, error) {
	results, err := s.stopsSvc.Fuel(ctx, stops.FuelQuery{
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		RadiusMiles: in.RadiusMiles,
	})
	if err != nil {
		return StopsOutput{}, err
	}
	return stopsOutput(results), nil
}

func (s *Server) findEmergencyStops(ctx context.Context, in EmergencyInput) (EmergencyOutput, error) {
	results, err := s.stopsSvc.Emergency(ctx, stops.EmergencyQuery{Latitude: in.Latitude, Longitude: in.Longitude})
	if err != nil {
		return EmergencyOutput{}, err
	}
	if results == nil {
		results = []stops.EmergencyStop{}
	}
	return EmergencyOutput{Options: results, Count: len(results)}, nil
}

func (s *Server) findStopsBeforeZone(ctx context.Context, in BeforeZoneInput) (StopsOutput, error) {
	results, err := s.stopsSvc.BeforeZone(ctx, stops.BeforeZoneQuery{
		ZoneLatitude:  in.ZoneLatitude,
		ZoneLongitude: in.ZoneLongitude,
		Approach:      stops.Direction(in.Approach),
		BufferMiles:   in.BufferMiles,
	})
	if err != nil {
		return StopsOutput{}, err
	}
	return stopsOutput(results), nil
}

func (s *Server) hosRecommendation(ctx context.Context, in HOSInput) (stops.HOSResponse, error) {
	return s.stopsSvc.HOS(ctx, stops.HOSRequest{
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		HoursDriven: in.HoursDriven,
		BreakType:   in.BreakType,
	})
}

func (s *Server) checkProximity(ctx context.Context, in ProximityInput) (ProximityOutput, error) {
	req := proximity.CheckRequest{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		SpeedMPH:  in.SpeedMPH,
	}
	for _, z := range in.RedZones {
		req.RedZones = append(req.RedZones, proximity.ZoneRef{
			Center:      z.Center,
			StartMile:   z.StartMile,
			EndMile:     z.EndMile,
			PeakRisk:    z.PeakRisk,
			Description: z.Description,
		})
	}
	alert, err := s.proximitySvc.Check(ctx, req)
	if err != nil {
		return ProximityOutput{}, err
	}
	return ProximityOutput{Alert: alert, Countdown: proximity.CountdownFor(alert)}, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func stopsOutput(results []stops.SafeStop) StopsOutput {
	if results == nil {
		results = []stops.SafeStop{}
	}
	return StopsOutput{Stops: results, Count: len(results)}
}
