package realtime

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/safetravels/internal/domain/stops"
)

// Feed sources for the Availability.Source field.
const (
	SourceTPIMS      = "MAASTO_TPIMS"
	SourceTxDOT      = "TxDOT"
	SourceHistorical = "historical_prediction"
)

const (
	crowdedBelow        = 5
	historicalCapacity  = 50
	tpimsMinCapacity    = 20
	tpimsCapacityJitter = 81
)

// maastoStates publish truck parking through the TPIMS network.
var maastoStates = map[string]struct{}{
	"OH": {}, "KY": {}, "IN": {}, "MI": {}, "MN": {}, "WI": {}, "IA": {}, "KS": {},
}

// StatusFor classifies free spaces: none is FULL, under five is CROWDED.
func StatusFor(available int) string {
	switch {
	case available <= 0:
		return stops.StatusFull
	case available < crowdedBelow:
		return stops.StatusCrowded
	default:
		return stops.StatusAvailable
	}
}

// Feed reports parking for one region.
type Feed interface {
	Name() string
	Availability(ctx context.Context, stopID, state string) (stops.Availability, error)
}

// Random is the subset of *rand.Rand the simulations draw from.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// lockedRandom serialises access to a shared generator.
type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}

// NewRandom returns a goroutine safe generator seeded from the runtime.
func NewRandom() Random {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Options configure an Aggregator.
type Options struct {
	// Simulate enables the time-of-day prediction for states without a
	// live feed. When false those stops stay UNKNOWN.
	Simulate bool
	Random   Random
	Now      func() time.Time
	// TPIMS overrides the live Midwest feed.
	TPIMS Feed
}

// Aggregator routes availability lookups to regional feeds.
type Aggregator struct {
	tpims      Feed
	txdot      Feed
	historical *HistoricalFeed
	simulate   bool
	logger     *slog.Logger
}

// NewAggregator wires the regional feeds.
func NewAggregator(opts Options, logger *slog.Logger) *Aggregator {
	if opts.Random == nil {
		opts.Random = NewRandom()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	historical := &HistoricalFeed{random: opts.Random, now: opts.Now}
	tpims := opts.TPIMS
	if tpims == nil {
		tpims = &TPIMSFeed{random: opts.Random, now: opts.Now}
	}
	return &Aggregator{
		tpims:      tpims,
		txdot:      &TxDOTFeed{historical: historical},
		historical: historical,
		simulate:   opts.Simulate,
		logger:     logger.With("component", "realtime.aggregator"),
	}
}

// Status implements stops.AvailabilityProvider.
func (a *Aggregator) Status(ctx context.Context, stopID, state string) (stops.Availability, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if _, ok := maastoStates[state]; ok {
		status, err := a.tpims.Availability(ctx, stopID, state)
		if err == nil {
			return status, nil
		}
		a.logger.Warn("tpims feed failed, using prediction", "state", state, "error", err)
		return a.predict(ctx, stopID, state)
	}
	if state == "TX" {
		if !a.simulate {
			return unknown(), nil
		}
		return a.txdot.Availability(ctx, stopID, state)
	}
	return a.predict(ctx, stopID, state)
}

func (a *Aggregator) predict(ctx context.Context, stopID, state string) (stops.Availability, error) {
	if !a.simulate {
		return unknown(), nil
	}
	return a.historical.Availability(ctx, stopID, state)
}

var _ stops.AvailabilityProvider = (*Aggregator)(nil)

func unknown() stops.Availability {
	return stops.Availability{Status: stops.StatusUnknown}
}

func availability(available, total int, source string, live bool, at time.Time) stops.Availability {
	updated := at.UTC()
	return stops.Availability{
		Status:    StatusFor(available),
		Available: &available,
		Total:     &total,
		Source:    source,
		Live:      live,
		UpdatedAt: &updated,
	}
}
