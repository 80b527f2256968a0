package stops

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/pkg/geo"
	"github.com/yanqian/safetravels/pkg/metrics"
)

var dallas = geo.Point{Lat: 32.7767, Lon: -96.7970}

func north(deg float64) (float64, float64) {
	return dallas.Lat + deg, dallas.Lon
}

func fixtureCatalog() *Catalog {
	at := func(s CatalogStop, deg float64) CatalogStop {
		s.Latitude, s.Longitude = north(deg)
		return s
	}
	return &Catalog{
		TruckStops: []CatalogStop{
			at(CatalogStop{
				ID: 1, Name: "Secure Haven", State: "OK", Security: "none", RiskScore: risk(3), ParkingSpaces: 40,
				Amenities: []string{"gated_parking", "security_guards", "cctv", "lighting_good", "fuel"},
			}, 0.3),
			at(CatalogStop{
				ID: 2, Name: "Guarded Lot", State: "OK", Security: "medium", RiskScore: risk(2), ParkingSpaces: 10,
				Highway: "US-75", Amenities: []string{"gated_parking", "security_guards"},
			}, 0.1),
			at(CatalogStop{
				ID: 3, Name: "Basic Stop", State: "OK", Security: "none", RiskScore: risk(2), ParkingSpaces: 10,
				Highway: "I-35", Amenities: []string{"cctv", "lighting_good", "fuel"},
			}, 0.5),
			at(CatalogStop{
				ID: 4, Name: "Sketchy Lot", State: "OK", Security: "none", RiskScore: risk(2), ParkingSpaces: 40,
				Amenities: []string{"cctv", "lighting_good"},
			}, 0.2),
			at(CatalogStop{
				ID: 5, Name: "Far Fortress", State: "OK", Security: "none", RiskScore: risk(3), ParkingSpaces: 40,
				Amenities: []string{"gated_parking", "security_guards", "cctv", "lighting_good"},
			}, 1.0),
		},
	}
}

type stubPlaces struct {
	places []Place
	err    error
	calls  int
}

func (s *stubPlaces) SearchNearby(_ context.Context, _ geo.Point, _ float64, _ string) ([]Place, error) {
	s.calls++
	return s.places, s.err
}

type stubRealtime struct {
	failFor map[string]bool
	calls   []string
}

func (s *stubRealtime) Status(_ context.Context, stopID, _ string) (Availability, error) {
	s.calls = append(s.calls, stopID)
	if s.failFor[stopID] {
		return Availability{}, errors.New("feed down")
	}
	free := 12
	return Availability{Status: StatusAvailable, Available: &free, Live: true}, nil
}

func newTestService(cat *Catalog, places PlacesSearcher, realtime AvailabilityProvider) Service {
	return NewService(DefaultConfig(), NewStaticCatalog(cat), places, realtime, metrics.NewNoop(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func names(stops []SafeStop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.Name)
	}
	return out
}

func TestNearbyDefaultsSortAndFilter(t *testing.T) {
	places := &stubPlaces{}
	svc := newTestService(fixtureCatalog(), places, nil)

	got, err := svc.Nearby(context.Background(), Query{Latitude: dallas.Lat, Longitude: dallas.Lon})
	require.NoError(t, err)
	require.Equal(t, []string{"Guarded Lot", "Secure Haven", "Basic Stop"}, names(got))
	require.Zero(t, places.calls)

	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, got[i-1].DistanceMiles, got[i].DistanceMiles)
	}
	for _, s := range got {
		require.True(t, s.Tier.AtLeast(TierLevel3))
		require.Equal(t, StatusUnknown, s.Realtime.Status)
	}
}

func TestNearbyMinTierAndFuel(t *testing.T) {
	svc := newTestService(fixtureCatalog(), nil, nil)
	ctx := context.Background()

	all, err := svc.Nearby(ctx, Query{Latitude: dallas.Lat, Longitude: dallas.Lon, MinTier: TierAvoid})
	require.NoError(t, err)
	require.Equal(t, []string{"Guarded Lot", "Sketchy Lot", "Secure Haven", "Basic Stop"}, names(all))

	secure, err := svc.Nearby(ctx, Query{Latitude: dallas.Lat, Longitude: dallas.Lon, MinTier: TierLevel1, RadiusMiles: 100})
	require.NoError(t, err)
	require.Equal(t, []string{"Secure Haven", "Far Fortress"}, names(secure))

	fuel, err := svc.Fuel(ctx, FuelQuery{Latitude: dallas.Lat, Longitude: dallas.Lon})
	require.NoError(t, err)
	require.Equal(t, []string{"Secure Haven", "Basic Stop"}, names(fuel))
}

func TestNearbyFallbackBackfillsSparseAreas(t *testing.T) {
	places := &stubPlaces{places: []Place{
		{PlaceID: "abc", Name: "Corner Fuel", Latitude: dallas.Lat + 0.05, Longitude: dallas.Lon, Rating: 4.5, Types: []string{"gas_station"}},
		{PlaceID: "def", Name: "Dusty Lot", Latitude: dallas.Lat + 0.02, Longitude: dallas.Lon, Rating: 3.5},
	}}
	svc := newTestService(fixtureCatalog(), places, nil)

	got, err := svc.Nearby(context.Background(), Query{Latitude: dallas.Lat, Longitude: dallas.Lon, MinTier: TierLevel2})
	require.NoError(t, err)
	require.Equal(t, 1, places.calls)
	require.Equal(t, []string{"[Google] Corner Fuel", "Guarded Lot", "Secure Haven"}, names(got))

	fallback := got[0]
	require.Equal(t, SourcePlaces, fallback.Source)
	require.Equal(t, 87, fallback.SecurityScore)
	require.Equal(t, TierLevel2, fallback.Tier)
	require.True(t, fallback.HasFuel)
	require.InDelta(t, 3.45, fallback.DistanceMiles, 0.001)

	again, err := svc.Nearby(context.Background(), Query{Latitude: dallas.Lat, Longitude: dallas.Lon, MinTier: TierLevel2})
	require.NoError(t, err)
	require.Equal(t, fallback.ID, again[0].ID)
}

func TestNearbyToleratesExternalFailures(t *testing.T) {
	places := &stubPlaces{err: errors.New("quota exceeded")}
	realtime := &stubRealtime{failFor: map[string]bool{"2": true}}
	svc := newTestService(fixtureCatalog(), places, realtime)

	got, err := svc.Nearby(context.Background(), Query{Latitude: dallas.Lat, Longitude: dallas.Lon, MinTier: TierLevel2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"Guarded Lot", "Secure Haven"}, names(got))
	require.Equal(t, 1, places.calls)
	require.Equal(t, []string{"2", "1"}, realtime.calls)
	require.Equal(t, StatusUnknown, got[0].Realtime.Status)
	require.Equal(t, StatusAvailable, got[1].Realtime.Status)
	require.Equal(t, 12, *got[1].Realtime.Available)
}

func TestNearbyEnrichesOnlyTruncatedResults(t *testing.T) {
	realtime := &stubRealtime{}
	svc := newTestService(fixtureCatalog(), nil, realtime)

	got, err := svc.Nearby(context.Background(), Query{Latitude: dallas.Lat, Longitude: dallas.Lon, MinTier: TierAvoid, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"2"}, realtime.calls)
}

func TestNearbyEmptyCatalogIsNotAnError(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	got, err := svc.Nearby(context.Background(), Query{Latitude: dallas.Lat, Longitude: dallas.Lon})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestNearbyRejectsInvalidInput(t *testing.T) {
	svc := newTestService(fixtureCatalog(), nil, nil)
	ctx := context.Background()

	_, err := svc.Nearby(ctx, Query{Latitude: 95, Longitude: 0})
	require.Error(t, err)
	_, err = svc.Nearby(ctx, Query{Latitude: dallas.Lat, Longitude: dallas.Lon, RadiusMiles: -1})
	require.Error(t, err)
	hour := 30
	_, err = svc.Nearby(ctx, Query{Latitude: dallas.Lat, Longitude: dallas.Lon, Hour: &hour})
	require.Error(t, err)
}

func TestEmergency(t *testing.T) {
	svc := newTestService(fixtureCatalog(), nil, nil)

	got, err := svc.Emergency(context.Background(), EmergencyQuery{Latitude: dallas.Lat, Longitude: dallas.Lon})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, EmergencyPolice, got[0].Type)
	require.Equal(t, "911", got[0].Phone)
	require.InDelta(t, dallas.Lat+0.15, got[0].Location.Lat, 1e-9)
	require.Equal(t, "Secure Haven (Secured)", got[1].Name)
	require.Equal(t, "Far Fortress (Secured)", got[2].Name)
}

func TestBeforeZone(t *testing.T) {
	svc := newTestService(fixtureCatalog(), nil, nil)
	zoneLat, zoneLon := north(0.5)

	got, err := svc.BeforeZone(context.Background(), BeforeZoneQuery{ZoneLatitude: zoneLat, ZoneLongitude: zoneLon, Approach: FromSouth})
	require.NoError(t, err)
	require.Equal(t, []string{"Guarded Lot", "Secure Haven"}, names(got))

	nearby, err := svc.StopsBeforeZone(context.Background(), geo.Point{Lat: zoneLat, Lon: zoneLon}, dallas, 1)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	require.Equal(t, "Guarded Lot", nearby[0].Name)
	require.Equal(t, "Level 2", nearby[0].Tier)
	require.InDelta(t, 27.6, nearby[0].DistanceMiles, 0.2)
}

func TestApproachDirection(t *testing.T) {
	zone := geo.Point{Lat: 35, Lon: -97}
	require.Equal(t, FromSouth, ApproachDirection(geo.Point{Lat: 32, Lon: -96}, zone))
	require.Equal(t, FromNorth, ApproachDirection(geo.Point{Lat: 40, Lon: -97}, zone))
	require.Equal(t, FromWest, ApproachDirection(geo.Point{Lat: 35, Lon: -105}, zone))
	require.Equal(t, FromEast, ApproachDirection(geo.Point{Lat: 36, Lon: -90}, zone))
}

func TestHOS(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(fixtureCatalog(), nil, nil)

	resp, err := svc.HOS(ctx, HOSRequest{Latitude: dallas.Lat, Longitude: dallas.Lon, HoursDriven: 8.5, BreakType: BreakOvernight})
	require.NoError(t, err)
	require.Equal(t, HOSSafe, resp.Status)
	require.Equal(t, "warning", resp.Urgency)
	require.Equal(t, 1.5, resp.HoursRemaining)
	require.Equal(t, []string{"Guarded Lot", "Secure Haven", "Far Fortress"}, names(resp.RecommendedStops))

	resp, err = svc.HOS(ctx, HOSRequest{Latitude: dallas.Lat, Longitude: dallas.Lon, HoursDriven: 3})
	require.NoError(t, err)
	require.Equal(t, "info", resp.Urgency)
	require.Equal(t, "7.0 hours remaining in shift.", resp.Message)
	require.Equal(t, BreakQuick, resp.BreakType)

	_, err = svc.HOS(ctx, HOSRequest{Latitude: dallas.Lat, Longitude: dallas.Lon, HoursDriven: -1})
	require.Error(t, err)
	_, err = svc.HOS(ctx, HOSRequest{Latitude: dallas.Lat, Longitude: dallas.Lon, BreakType: "nap"})
	require.Error(t, err)
}

func TestHOSOvernightWithoutSafeStops(t *testing.T) {
	cat := fixtureCatalog()
	cat.TruckStops = []CatalogStop{cat.TruckStops[2], cat.TruckStops[3]}
	svc := newTestService(cat, nil, nil)

	resp, err := svc.HOS(context.Background(), HOSRequest{Latitude: dallas.Lat, Longitude: dallas.Lon, HoursDriven: 11, BreakType: BreakOvernight})
	require.NoError(t, err)
	require.Equal(t, HOSUnsafe, resp.Status)
	require.Equal(t, "critical", resp.Urgency)
	require.Zero(t, resp.HoursRemaining)
	require.Empty(t, resp.RecommendedStops)
	require.Equal(t, []string{"Sketchy Lot", "Basic Stop"}, names(resp.FallbackOptions))
	require.NotEmpty(t, resp.SafetyRecommendation)
}
