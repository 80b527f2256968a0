package routecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/pkg/geo"
)

func sampleAnalysis() route.Analysis {
	scanner := route.NewScanner(nil)
	return scanner.Scan(
		geo.Point{Lat: 32.7767, Lon: -96.797},
		geo.Point{Lat: 29.7604, Lon: -95.3698},
		risk.DefaultContext(),
		route.DefaultSampleInterval,
	)
}

func TestMemoryStoreGetSet(t *testing.T) {
	store := NewMemoryStore(0)
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)

	a := sampleAnalysis()
	require.NoError(t, store.Set(context.Background(), "k", a, time.Minute))
	got, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, a, got)

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, store.Len())
}

func TestMemoryStoreNoTTL(t *testing.T) {
	store := NewMemoryStore(0)
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(context.Background(), "k", route.Analysis{TotalMiles: 10}, 0))
	now = now.Add(365 * 24 * time.Hour)
	got, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 10.0, got.TotalMiles)
}

func TestMemoryStoreEvictsClosestToExpiry(t *testing.T) {
	store := NewMemoryStore(2)
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "soon", route.Analysis{TotalMiles: 1}, time.Minute))
	require.NoError(t, store.Set(ctx, "later", route.Analysis{TotalMiles: 2}, time.Hour))
	require.NoError(t, store.Set(ctx, "new", route.Analysis{TotalMiles: 3}, time.Hour))

	require.Equal(t, 2, store.Len())
	_, ok, _ := store.Get(ctx, "soon")
	require.False(t, ok)
	_, ok, _ = store.Get(ctx, "later")
	require.True(t, ok)

	// Overwriting an existing key never evicts.
	require.NoError(t, store.Set(ctx, "new", route.Analysis{TotalMiles: 4}, time.Hour))
	require.Equal(t, 2, store.Len())
}

func TestMemoryStorePurgesExpiredBeforeEvicting(t *testing.T) {
	store := NewMemoryStore(2)
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", route.Analysis{}, time.Minute))
	require.NoError(t, store.Set(ctx, "b", route.Analysis{}, time.Hour))
	now = now.Add(5 * time.Minute)
	require.NoError(t, store.Set(ctx, "c", route.Analysis{}, time.Hour))

	_, ok, _ := store.Get(ctx, "b")
	require.True(t, ok)
	_, ok, _ = store.Get(ctx, "c")
	require.True(t, ok)
}

func TestAnalysisEncodingSurvivesCache(t *testing.T) {
	a := sampleAnalysis()
	payload, err := encodeAnalysis(a)
	require.NoError(t, err)

	decoded, err := decodeAnalysis(payload)
	require.NoError(t, err)
	require.Equal(t, a.TotalMiles, decoded.TotalMiles)
	require.Equal(t, a.OverallRisk, decoded.OverallRisk)
	require.Equal(t, a.OverallLevel, decoded.OverallLevel)
	require.Len(t, decoded.Segments, len(a.Segments))
	require.Equal(t, a.Segments[1].Zone, decoded.Segments[1].Zone)
	require.Equal(t, a.Segments[1].Level, decoded.Segments[1].Level)
	require.Equal(t, a.Corridors, decoded.Corridors)
	require.Len(t, decoded.RedZones, len(a.RedZones))
	require.True(t, a.AnalyzedAt.Equal(decoded.AnalyzedAt))

	_, err = decodeAnalysis("{")
	require.Error(t, err)
}

func TestValkeyEntryKey(t *testing.T) {
	require.Equal(t, "route:analysis:abc", NewValkeyStore(nil, "").entryKey("abc"))
	require.Equal(t, "fleet:analysis:abc", NewValkeyStore(nil, "fleet").entryKey("abc"))
}
