package google

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/pkg/geo"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

type stubSearcher struct {
	places []stops.Place
	err    error
	calls  int
}

func (s *stubSearcher) SearchNearby(context.Context, geo.Point, float64, string) ([]stops.Place, error) {
	s.calls++
	return s.places, s.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	next := &stubSearcher{err: errors.New("timeout")}
	b := NewBreakerSearcher(next, BreakerConfig{MaxFailures: 2, OpenTimeout: time.Hour}, newTestLogger())

	for i := 0; i < 2; i++ {
		_, err := b.SearchNearby(context.Background(), geo.Point{}, 10, "truck stop")
		require.EqualError(t, err, "timeout")
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.SearchNearby(context.Background(), geo.Point{}, 10, "truck stop")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 2, next.calls)
}

func TestBreakerPassesResults(t *testing.T) {
	next := &stubSearcher{places: []stops.Place{{PlaceID: "p1", Name: "Stop"}}}
	b := NewBreakerSearcher(next, BreakerConfig{}, newTestLogger())

	places, err := b.SearchNearby(context.Background(), geo.Point{}, 10, "truck stop")
	require.NoError(t, err)
	require.Equal(t, next.places, places)
	require.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerIgnoresMissingKey(t *testing.T) {
	next := &stubSearcher{err: ErrNotConfigured}
	b := NewBreakerSearcher(next, BreakerConfig{MaxFailures: 1}, newTestLogger())

	for i := 0; i < 3; i++ {
		_, err := b.SearchNearby(context.Background(), geo.Point{}, 10, "truck stop")
		require.ErrorIs(t, err, ErrNotConfigured)
	}
	require.Equal(t, gobreaker.StateClosed, b.State())
	require.Equal(t, 3, next.calls)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
