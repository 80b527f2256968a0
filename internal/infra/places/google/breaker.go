package google

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/pkg/geo"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// BreakerConfig controls when the fallback is skipped.
type BreakerConfig struct {
	// MaxFailures consecutive errors open the circuit.
	MaxFailures uint32
	// OpenTimeout is how long calls are skipped before a probe.
	OpenTimeout time.Duration
	// Interval resets the failure counts while closed; zero never resets.
	Interval time.Duration
}

// BreakerSearcher skips the wrapped searcher after repeated failures.
type BreakerSearcher struct {
	next    stops.PlacesSearcher
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerSearcher wraps next.
func NewBreakerSearcher(next stops.PlacesSearcher, cfg BreakerConfig, logger *slog.Logger) *BreakerSearcher {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	logger = logger.With("component", "places.breaker")
	maxFailures := cfg.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-places",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerSearcher{next: next, breaker: cb}
}

// SearchNearby implements stops.PlacesSearcher.
func (b *BreakerSearcher) SearchNearby(ctx context.Context, center geo.Point, radiusMiles float64, keyword string) ([]stops.Place, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.SearchNearby(ctx, center, radiusMiles, keyword)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.Wrap(apperrors.CodeUpstream, "places search temporarily skipped", err)
		}
		return nil, err
	}
	places, _ := result.([]stops.Place)
	return places, nil
}

// State reports the breaker state for diagnostics.
func (b *BreakerSearcher) State() gobreaker.State {
	return b.breaker.State()
}

var _ stops.PlacesSearcher = (*BreakerSearcher)(nil)
