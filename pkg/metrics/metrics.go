// Package metrics records engine activity through OpenTelemetry.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// InstrumentationName identifies the meter and tracer.
	InstrumentationName = "github.com/yanqian/safetravels"
	// InstrumentationVersion is bumped with the weight tables.
	InstrumentationVersion = "2026.01"
)

// Names of the exported instruments.
var Names = struct {
	RiskAssessments  string
	RouteScans       string
	RouteScanLatency string
	StopSearches     string
	PlacesFallbacks  string
	RealtimeFailures string
	ProximityAlerts  string
	RouteCacheHits   string
}{
	RiskAssessments:  "safetravels.risk.assessments",
	RouteScans:       "safetravels.route.scans",
	RouteScanLatency: "safetravels.route.scan.duration",
	StopSearches:     "safetravels.stops.searches",
	PlacesFallbacks:  "safetravels.stops.places_fallbacks",
	RealtimeFailures: "safetravels.stops.realtime_failures",
	ProximityAlerts:  "safetravels.proximity.alerts",
	RouteCacheHits:   "safetravels.route.cache_hits",
}

// Recorder bundles the instruments. A nil *Recorder is valid and records nothing.
type Recorder struct {
	tracer           trace.Tracer
	riskAssessments  metric.Int64Counter
	routeScans       metric.Int64Counter
	routeScanLatency metric.Float64Histogram
	stopSearches     metric.Int64Counter
	placesFallbacks  metric.Int64Counter
	realtimeFailures metric.Int64Counter
	proximityAlerts  metric.Int64Counter
	routeCacheHits   metric.Int64Counter
}

// New creates the instruments on the given providers.
func New(mp metric.MeterProvider, tp trace.TracerProvider) (*Recorder, error) {
	meter := mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(InstrumentationVersion))
	r := &Recorder{
		tracer: tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(InstrumentationVersion)),
	}

	var err error
	if r.riskAssessments, err = meter.Int64Counter(Names.RiskAssessments,
		metric.WithDescription("Point risk assessments by level"),
		metric.WithUnit("{assessment}")); err != nil {
		return nil, err
	}
	if r.routeScans, err = meter.Int64Counter(Names.RouteScans,
		metric.WithDescription("Route scans by overall level"),
		metric.WithUnit("{scan}")); err != nil {
		return nil, err
	}
	if r.routeScanLatency, err = meter.Float64Histogram(Names.RouteScanLatency,
		metric.WithDescription("Duration of route scans"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if r.stopSearches, err = meter.Int64Counter(Names.StopSearches,
		metric.WithDescription("Safe stop searches"),
		metric.WithUnit("{search}")); err != nil {
		return nil, err
	}
	if r.placesFallbacks, err = meter.Int64Counter(Names.PlacesFallbacks,
		metric.WithDescription("External places fallback attempts by outcome"),
		metric.WithUnit("{call}")); err != nil {
		return nil, err
	}
	if r.realtimeFailures, err = meter.Int64Counter(Names.RealtimeFailures,
		metric.WithDescription("Failed realtime availability lookups"),
		metric.WithUnit("{call}")); err != nil {
		return nil, err
	}
	if r.proximityAlerts, err = meter.Int64Counter(Names.ProximityAlerts,
		metric.WithDescription("Red zone proximity checks by alert level"),
		metric.WithUnit("{alert}")); err != nil {
		return nil, err
	}
	if r.routeCacheHits, err = meter.Int64Counter(Names.RouteCacheHits,
		metric.WithDescription("Route analyses served from cache"),
		metric.WithUnit("{hit}")); err != nil {
		return nil, err
	}
	return r, nil
}

// NewNoop returns a recorder backed by no-op providers.
func NewNoop() *Recorder {
	r, err := New(metricnoop.NewMeterProvider(), tracenoop.NewTracerProvider())
	if err != nil {
		return nil
	}
	return r
}

// RecordAssessment counts a point assessment.
func (r *Recorder) RecordAssessment(ctx context.Context, level string) {
	if r == nil {
		return
	}
	r.riskAssessments.Add(ctx, 1, metric.WithAttributes(attribute.String("level", level)))
}

// RecordRouteScan counts a scan and its latency.
func (r *Recorder) RecordRouteScan(ctx context.Context, level string, segments int, d time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("level", level), attribute.Int("segments", segments))
	r.routeScans.Add(ctx, 1, attrs)
	r.routeScanLatency.Record(ctx, float64(d.Microseconds())/1000.0, metric.WithAttributes(attribute.String("level", level)))
}

// RecordRouteCacheHit counts an analysis served from cache.
func (r *Recorder) RecordRouteCacheHit(ctx context.Context) {
	if r == nil {
		return
	}
	r.routeCacheHits.Add(ctx, 1)
}

// RecordStopSearch counts a stop search and its result size.
func (r *Recorder) RecordStopSearch(ctx context.Context, results int) {
	if r == nil {
		return
	}
	r.stopSearches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("empty", results == 0)))
}

// RecordPlacesFallback counts a fallback attempt; outcome is ok, error or skipped.
func (r *Recorder) RecordPlacesFallback(ctx context.Context, outcome string) {
	if r == nil {
		return
	}
	r.placesFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRealtimeFailure counts a failed availability lookup.
func (r *Recorder) RecordRealtimeFailure(ctx context.Context, state string) {
	if r == nil {
		return
	}
	r.realtimeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}

// RecordProximityAlert counts a proximity check result.
func (r *Recorder) RecordProximityAlert(ctx context.Context, level string) {
	if r == nil {
		return
	}
	r.proximityAlerts.Add(ctx, 1, metric.WithAttributes(attribute.String("level", level)))
}

// StartSpan opens a span; the returned end func records err when non-nil.
func (r *Recorder) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if r == nil {
		return ctx, func(error) {}
	}
	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
