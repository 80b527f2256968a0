package route

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/metrics"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

const zoneStopLimit = 3

// Service exposes route analysis.
type Service interface {
	Analyze(ctx context.Context, req Request) (Analysis, error)
}

// Request describes one route to analyze. A nil Context is derived from
// the current time.
type Request struct {
	Origin         geo.Point     `json:"origin"`
	Destination    geo.Point     `json:"destination"`
	Context        *risk.Context `json:"context,omitempty"`
	SampleInterval float64       `json:"sample_interval_miles,omitempty"`
}

// Cache stores finished analyses.
type Cache interface {
	Get(ctx context.Context, key string) (Analysis, bool, error)
	Set(ctx context.Context, key string, analysis Analysis, ttl time.Duration) error
}

// StopLocator finds safe stops a driver can reach before entering a zone.
type StopLocator interface {
	StopsBeforeZone(ctx context.Context, zoneCenter geo.Point, heading geo.Point, limit int) ([]NearbyStop, error)
}

// Config tunes the route service.
type Config struct {
	CacheTTL time.Duration
	// SampleInterval applies when a request leaves the interval unset.
	SampleInterval float64
}

type service struct {
	cfg      Config
	scanner  *Scanner
	cache    Cache
	locator  StopLocator
	recorder *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up route analysis. cache and locator may be nil.
func NewService(cfg Config, scanner *Scanner, cache Cache, locator StopLocator, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		scanner:  scanner,
		cache:    cache,
		locator:  locator,
		recorder: recorder,
		logger:   logger.With("component", "route.service"),
		now:      time.Now,
	}
}

func (s *service) Analyze(ctx context.Context, req Request) (analysis Analysis, err error) {
	if err := req.Origin.Validate(); err != nil {
		return Analysis{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid origin", err)
	}
	if err := req.Destination.Validate(); err != nil {
		return Analysis{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid destination", err)
	}
	if math.IsNaN(req.SampleInterval) || math.IsInf(req.SampleInterval, 0) {
		return Analysis{}, apperrors.InvalidInput("sample_interval_miles must be finite")
	}
	interval := req.SampleInterval
	if interval <= 0 {
		interval = s.cfg.SampleInterval
	}
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	var rc risk.Context
	if req.Context != nil {
		rc = req.Context.WithDefaults()
	} else {
		rc = risk.ContextAt(s.now())
	}
	if err := rc.Validate(); err != nil {
		return Analysis{}, err
	}

	ctx, end := s.recorder.StartSpan(ctx, "route.analyze",
		attribute.Float64("origin.lat", req.Origin.Lat),
		attribute.Float64("origin.lon", req.Origin.Lon),
		attribute.Float64("destination.lat", req.Destination.Lat),
		attribute.Float64("destination.lon", req.Destination.Lon),
	)
	defer func() { end(err) }()

	key := cacheKey(req.Origin, req.Destination, rc, interval)
	if cached, ok := s.lookup(ctx, key); ok {
		s.recorder.RecordRouteCacheHit(ctx)
		return cached, nil
	}

	started := time.Now()
	analysis = s.scanner.Scan(req.Origin, req.Destination, rc, interval)
	s.attachStops(ctx, &analysis)
	s.recorder.RecordRouteScan(ctx, analysis.OverallLevel.String(), len(analysis.Segments), time.Since(started))
	s.logger.Info("route analyzed",
		"total_miles", analysis.TotalMiles,
		"segments", len(analysis.Segments),
		"overall_risk", analysis.OverallRisk,
		"red_zones", len(analysis.RedZones),
		"truncated", analysis.Truncated,
	)
	if analysis.Truncated {
		s.logger.Warn("route sampling truncated", "max_segments", MaxSegments, "total_miles", analysis.TotalMiles)
	}

	s.store(ctx, key, analysis)
	return analysis, nil
}

func (s *service) lookup(ctx context.Context, key string) (Analysis, bool) {
	if s.cache == nil {
		return Analysis{}, false
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("route cache lookup failed", "error", err)
		return Analysis{}, false
	}
	return cached, ok
}

func (s *service) store(ctx context.Context, key string, analysis Analysis) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, analysis, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("route cache store failed", "error", err)
	}
}

// attachStops is best effort; a failing locator leaves the zone without stops.
func (s *service) attachStops(ctx context.Context, analysis *Analysis) {
	if s.locator == nil {
		return
	}
	for i := range analysis.RedZones {
		zone := &analysis.RedZones[i]
		stops, err := s.locator.StopsBeforeZone(ctx, zone.Center, analysis.Origin, zoneStopLimit)
		if err != nil {
			s.logger.Warn("zone stop lookup failed", "zone", zone.Description, "error", err)
			continue
		}
		if len(stops) > zoneStopLimit {
			stops = stops[:zoneStopLimit]
		}
		zone.NearbyStops = stops
	}
}

type cacheKeyInput struct {
	Origin      geo.Point    `json:"o"`
	Destination geo.Point    `json:"d"`
	Context     risk.Context `json:"c"`
	Interval    float64      `json:"i"`
}

func cacheKey(origin, destination geo.Point, rc risk.Context, interval float64) string {
	payload, _ := json.Marshal(cacheKeyInput{Origin: origin, Destination: destination, Context: rc, Interval: interval})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
