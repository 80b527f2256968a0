package stops

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/metrics"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// Service finds and ranks safe stops.
type Service interface {
	Nearby(ctx context.Context, q Query) ([]SafeStop, error)
	Fuel(ctx context.Context, q FuelQuery) ([]SafeStop, error)
	Emergency(ctx context.Context, q EmergencyQuery) ([]EmergencyStop, error)
	BeforeZone(ctx context.Context, q BeforeZoneQuery) ([]SafeStop, error)
	HOS(ctx context.Context, req HOSRequest) (HOSResponse, error)
	StopsBeforeZone(ctx context.Context, zoneCenter, origin geo.Point, limit int) ([]route.NearbyStop, error)
}

// PlacesSearcher backfills sparse catalog areas from an external source.
type PlacesSearcher interface {
	SearchNearby(ctx context.Context, center geo.Point, radiusMiles float64, keyword string) ([]Place, error)
}

// AvailabilityProvider reports realtime parking for a stop.
type AvailabilityProvider interface {
	Status(ctx context.Context, stopID, state string) (Availability, error)
}

// Config tunes the finder.
type Config struct {
	DefaultRadiusMiles float64
	DefaultLimit       int
	// FallbackThreshold triggers the places search when fewer catalog
	// stops survive the filters.
	FallbackThreshold int
	FallbackTimeout   time.Duration
	FallbackKeyword   string
}

// DefaultConfig mirrors the production settings.
func DefaultConfig() Config {
	return Config{
		DefaultRadiusMiles: 50,
		DefaultLimit:       10,
		FallbackThreshold:  3,
		FallbackTimeout:    5 * time.Second,
		FallbackKeyword:    "truck stop",
	}
}

const (
	emergencyRadiusMiles   = 100.0
	emergencyStopLimit     = 3
	emergencyResultLimit   = 5
	policeOffsetDegrees    = 0.15
	policeDistanceMiles    = 15.0
	beforeZoneBufferMiles  = 30.0
	beforeZoneLimit        = 5
	milesPerDegreeLat      = 69.0
	milesPerDegreeLon      = 55.0
	hosShiftHours          = 10.0
	hosWarningHours        = 8.0
	overnightRadiusMiles   = 100.0
	quickRadiusMiles       = 50.0
	hosStopLimit           = 5
	hosFallbackRadiusMiles = 150.0
	hosFallbackLimit       = 3
)

type service struct {
	cfg      Config
	catalog  CatalogProvider
	places   PlacesSearcher
	realtime AvailabilityProvider
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewService wires up stop search. places and realtime are optional.
func NewService(cfg Config, catalog CatalogProvider, places PlacesSearcher, realtime AvailabilityProvider, recorder *metrics.Recorder, logger *slog.Logger) Service {
	defaults := DefaultConfig()
	if cfg.DefaultRadiusMiles <= 0 {
		cfg.DefaultRadiusMiles = defaults.DefaultRadiusMiles
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = defaults.FallbackThreshold
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = defaults.FallbackTimeout
	}
	if cfg.FallbackKeyword == "" {
		cfg.FallbackKeyword = defaults.FallbackKeyword
	}
	if catalog == nil {
		catalog = NewStaticCatalog(nil)
	}
	return &service{
		cfg:      cfg,
		catalog:  catalog,
		places:   places,
		realtime: realtime,
		recorder: recorder,
		logger:   logger.With("component", "stops.service"),
	}
}

func (s *service) Nearby(ctx context.Context, q Query) (results []SafeStop, err error) {
	center := geo.Point{Lat: q.Latitude, Lon: q.Longitude}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	radius, err := s.radius(q.RadiusMiles)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	minTier := q.MinTier
	if minTier == TierUnset {
		minTier = TierLevel3
	}
	hour := DefaultScoringHour
	if q.Hour != nil {
		if *q.Hour < 0 || *q.Hour > 23 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("hour must be 0-23 (got %d)", *q.Hour))
		}
		hour = *q.Hour
	}

	ctx, end := s.recorder.StartSpan(ctx, "stops.nearby",
		attribute.Float64("lat", center.Lat),
		attribute.Float64("lon", center.Lon),
		attribute.Float64("radius_miles", radius),
	)
	defer func() { end(err) }()

	cat := s.catalog.Current()
	for _, entry := range cat.TruckStops {
		p := geo.Point{Lat: entry.Latitude, Lon: entry.Longitude}
		distance := geo.Haversine(center, p)
		if distance > radius {
			continue
		}
		score, tier := ScoreStop(entry, cat, hour)
		if !tier.AtLeast(minTier) {
			continue
		}
		if q.RequireFuel && !entry.HasAmenity("fuel") {
			continue
		}
		results = append(results, fromCatalog(entry, cat, distance, score, tier))
	}

	if len(results) < s.cfg.FallbackThreshold {
		results = append(results, s.fallback(ctx, center, radius, minTier, q.RequireFuel)...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	})
	if len(results) > limit {
		results = results[:limit]
	}
	s.enrich(ctx, results)

	s.recorder.RecordStopSearch(ctx, len(results))
	s.logger.Debug("stop search finished", "lat", center.Lat, "lon", center.Lon, "radius", radius, "results", len(results))
	return results, nil
}

func (s *service) radius(r float64) (float64, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0, apperrors.InvalidInput("radius_miles must be a non-negative finite number")
	}
	if r == 0 {
		return s.cfg.DefaultRadiusMiles, nil
	}
	return r, nil
}

// fallback never fails the search; errors are logged and counted.
func (s *service) fallback(ctx context.Context, center geo.Point, radius float64, minTier Tier, requireFuel bool) []SafeStop {
	if s.places == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FallbackTimeout)
	defer cancel()

	places, err := s.places.SearchNearby(ctx, center, radius, s.cfg.FallbackKeyword)
	if err != nil {
		s.recorder.RecordPlacesFallback(ctx, "error")
		s.logger.Warn("places fallback failed", "error", err)
		return nil
	}
	s.recorder.RecordPlacesFallback(ctx, "ok")

	out := make([]SafeStop, 0, len(places))
	for _, place := range places {
		stop := fromPlace(place, center)
		if !stop.Tier.AtLeast(minTier) {
			continue
		}
		if requireFuel && !stop.HasFuel {
			continue
		}
		out = append(out, stop)
	}
	s.logger.Info("places fallback added stops", "found", len(places), "kept", len(out))
	return out
}

// enrich fills realtime data in place. Failures leave the stop UNKNOWN.
func (s *service) enrich(ctx context.Context, results []SafeStop) {
	if s.realtime == nil {
		return
	}
	for i := range results {
		status, err := s.realtime.Status(ctx, results[i].ID, results[i].State)
		if err != nil {
			s.recorder.RecordRealtimeFailure(ctx, results[i].State)
			s.logger.Warn("realtime lookup failed", "stop", results[i].Name, "error", err)
			continue
		}
		if status.Status == "" {
			status.Status = StatusUnknown
		}
		results[i].Realtime = status
	}
}

func fromCatalog(entry CatalogStop, cat *Catalog, distance float64, score int, tier Tier) SafeStop {
	name := entry.Name
	if name == "" {
		name = "Unknown"
	}
	return SafeStop{
		ID:              strconv.Itoa(entry.ID),
		Name:            name,
		City:            entry.City,
		State:           entry.State,
		Location:        geo.Point{Lat: entry.Latitude, Lon: entry.Longitude},
		Highway:         entry.Highway,
		DistanceMiles:   distance,
		SecurityScore:   score,
		Tier:            tier,
		SecurityLevel:   entry.SecurityLevel(),
		HasFuel:         entry.HasAmenity("fuel"),
		HasShowers:      entry.HasAmenity("showers"),
		HasFood:         entry.HasAmenity("food", "restaurant"),
		HasGuards:       entry.HasAmenity("security_guards"),
		HasGatedParking: entry.HasAmenity("gated_parking"),
		HasCCTV:         entry.HasAmenity("cctv", "cameras"),
		ParkingSpaces:   entry.ParkingSpaces,
		AreaRiskLevel:   cat.StateRiskLevel(entry.State),
		Rating:          entry.Rating,
		ReviewCount:     entry.ReviewCount,
		Source:          SourceCatalog,
		Realtime:        Availability{Status: StatusUnknown},
	}
}

// fromPlace maps an external result onto a stop with a best-effort score
// derived from its star rating.
func fromPlace(place Place, center geo.Point) SafeStop {
	// Flat-earth approximation; fallback results are coarse anyway.
	distance := math.Sqrt(math.Pow(place.Latitude-center.Lat, 2)+math.Pow(place.Longitude-center.Lon, 2)) * milesPerDegreeLat

	tier := TierLevel3
	if place.Rating > 4.0 {
		tier = TierLevel2
	}
	hasFuel, hasFood := false, false
	for _, t := range place.Types {
		switch t {
		case "gas_station":
			hasFuel = true
		case "restaurant", "food":
			hasFood = true
		}
	}
	return SafeStop{
		ID:            placeID(place),
		Name:          "[Google] " + place.Name,
		City:          "Unknown",
		State:         "Unknown",
		Location:      geo.Point{Lat: place.Latitude, Lon: place.Longitude},
		Highway:       "Nearby",
		DistanceMiles: distance,
		SecurityScore: int(place.Rating*15) + 20,
		Tier:          tier,
		SecurityLevel: "medium",
		HasFuel:       hasFuel,
		HasFood:       hasFood,
		AreaRiskLevel: "unknown",
		Rating:        place.Rating,
		ReviewCount:   place.UserRatings,
		PhotoURL:      place.PhotoURL,
		Source:        SourcePlaces,
		Realtime:      Availability{Status: StatusUnknown},
	}
}

// placeID is stable across calls for the same external place.
func placeID(place Place) string {
	if place.PlaceID != "" {
		return "places-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(place.PlaceID)).String()
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%.6f|%.6f", place.Name, place.Latitude, place.Longitude)
	return "places-" + strconv.FormatUint(h.Sum64(), 16)
}

func (s *service) Fuel(ctx context.Context, q FuelQuery) ([]SafeStop, error) {
	return s.Nearby(ctx, Query{
		Latitude:    q.Latitude,
		Longitude:   q.Longitude,
		RadiusMiles: q.RadiusMiles,
		RequireFuel: true,
		Limit:       s.cfg.DefaultLimit,
	})
}

func (s *service) Emergency(ctx context.Context, q EmergencyQuery) ([]EmergencyStop, error) {
	stops, err := s.Nearby(ctx, Query{
		Latitude:    q.Latitude,
		Longitude:   q.Longitude,
		RadiusMiles: emergencyRadiusMiles,
		MinTier:     TierLevel1,
		Limit:       emergencyStopLimit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]EmergencyStop, 0, len(stops)+1)
	for _, stop := range stops {
		out = append(out, EmergencyStop{
			Type:          EmergencyTruckStop,
			Name:          stop.Name + " (Secured)",
			DistanceMiles: stop.DistanceMiles,
			Location:      stop.Location,
		})
	}
	// TODO: replace the placeholder patrol station with a police station dataset.
	out = append(out, EmergencyStop{
		Type:          EmergencyPolice,
		Name:          "Highway Patrol Station",
		DistanceMiles: policeDistanceMiles,
		Location:      geo.Offset(geo.Point{Lat: q.Latitude, Lon: q.Longitude}, policeOffsetDegrees, 0),
		Phone:         "911",
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMiles < out[j].DistanceMiles
	})
	if len(out) > emergencyResultLimit {
		out = out[:emergencyResultLimit]
	}
	return out, nil
}

// ApproachDirection names the side of zone that from lies on, using the
// dominant axis.
func ApproachDirection(from, zone geo.Point) Direction {
	dLat, dLon := from.Lat-zone.Lat, from.Lon-zone.Lon
	if math.Abs(dLat) >= math.Abs(dLon) {
		if dLat < 0 {
			return FromSouth
		}
		return FromNorth
	}
	if dLon < 0 {
		return FromWest
	}
	return FromEast
}

// searchPointBefore moves the search centre back along the approach so
// results lie on the driver's side of the zone.
func searchPointBefore(zone geo.Point, approach Direction, buffer float64) geo.Point {
	switch approach {
	case FromSouth:
		return geo.Offset(zone, -buffer/milesPerDegreeLat, 0)
	case FromNorth:
		return geo.Offset(zone, buffer/milesPerDegreeLat, 0)
	case FromWest:
		return geo.Offset(zone, 0, -buffer/milesPerDegreeLon)
	case FromEast:
		return geo.Offset(zone, 0, buffer/milesPerDegreeLon)
	default:
		return zone
	}
}

func (s *service) BeforeZone(ctx context.Context, q BeforeZoneQuery) ([]SafeStop, error) {
	zone := geo.Point{Lat: q.ZoneLatitude, Lon: q.ZoneLongitude}
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	buffer := q.BufferMiles
	if math.IsNaN(buffer) || math.IsInf(buffer, 0) || buffer < 0 {
		return nil, apperrors.InvalidInput("buffer_miles must be a non-negative finite number")
	}
	if buffer == 0 {
		buffer = beforeZoneBufferMiles
	}
	approach := q.Approach
	if approach == "" {
		approach = FromSouth
	}
	search := searchPointBefore(zone, approach, buffer)
	return s.Nearby(ctx, Query{
		Latitude:    search.Lat,
		Longitude:   search.Lon,
		RadiusMiles: buffer,
		MinTier:     TierLevel2,
		Limit:       beforeZoneLimit,
	})
}

func (s *service) StopsBeforeZone(ctx context.Context, zoneCenter, origin geo.Point, limit int) ([]route.NearbyStop, error) {
	found, err := s.BeforeZone(ctx, BeforeZoneQuery{
		ZoneLatitude:  zoneCenter.Lat,
		ZoneLongitude: zoneCenter.Lon,
		Approach:      ApproachDirection(origin, zoneCenter),
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]route.NearbyStop, 0, len(found))
	for _, stop := range found {
		out = append(out, route.NearbyStop{
			ID:            stop.ID,
			Name:          stop.Name,
			City:          stop.City,
			State:         stop.State,
			Latitude:      stop.Location.Lat,
			Longitude:     stop.Location.Lon,
			Tier:          stop.Tier.String(),
			SecurityScore: stop.SecurityScore,
			DistanceMiles: geo.Haversine(zoneCenter, stop.Location),
		})
	}
	return out, nil
}

func (s *service) HOS(ctx context.Context, req HOSRequest) (HOSResponse, error) {
	if math.IsNaN(req.HoursDriven) || math.IsInf(req.HoursDriven, 0) || req.HoursDriven < 0 {
		return HOSResponse{}, apperrors.InvalidInput("hours_driven must be a non-negative finite number")
	}
	breakType := req.BreakType
	if breakType == "" {
		breakType = BreakQuick
	}
	if breakType != BreakQuick && breakType != BreakOvernight {
		return HOSResponse{}, apperrors.InvalidInput(fmt.Sprintf("break_type must be %q or %q", BreakQuick, BreakOvernight))
	}

	resp := HOSResponse{
		Status:         HOSSafe,
		HoursDriven:    req.HoursDriven,
		HoursRemaining: max(0, hosShiftHours-req.HoursDriven),
		BreakType:      breakType,
	}
	switch {
	case req.HoursDriven >= hosShiftHours:
		resp.Urgency = "critical"
		resp.Message = "HOS LIMIT: You MUST stop for a 10-hour break."
	case req.HoursDriven >= hosWarningHours:
		resp.Urgency = "warning"
		resp.Message = "Plan your 10-hour break soon (2 hours remaining)."
	default:
		resp.Urgency = "info"
		resp.Message = fmt.Sprintf("%.1f hours remaining in shift.", hosShiftHours-req.HoursDriven)
	}

	minTier, radius := TierLevel3, quickRadiusMiles
	if breakType == BreakOvernight {
		minTier, radius = TierLevel2, overnightRadiusMiles
	}
	found, err := s.Nearby(ctx, Query{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RadiusMiles: radius,
		MinTier:     minTier,
		Limit:       hosStopLimit,
	})
	if err != nil {
		return HOSResponse{}, err
	}
	resp.RecommendedStops = found
	if resp.RecommendedStops == nil {
		resp.RecommendedStops = []SafeStop{}
	}
	if len(found) > 0 || breakType != BreakOvernight {
		return resp, nil
	}

	fallback, err := s.Nearby(ctx, Query{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RadiusMiles: hosFallbackRadiusMiles,
		MinTier:     TierAvoid,
		Limit:       hosFallbackLimit,
	})
	if err != nil {
		return HOSResponse{}, err
	}
	resp.Status = HOSUnsafe
	resp.Warning = "No Level 2+ stops within 100 miles. Consider motel or Level 3 with extreme caution."
	resp.FallbackOptions = fallback
	resp.SafetyRecommendation = "Safety risk > HOS violation risk. Find secure location."
	s.logger.Warn("no safe overnight stop", "lat", req.Latitude, "lon", req.Longitude, "fallbacks", len(fallback))
	return resp, nil
}

var _ route.StopLocator = (*service)(nil)
