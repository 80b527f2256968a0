package realtime

import (
	"context"
	"time"

	"github.com/yanqian/safetravels/internal/domain/stops"
)

// TPIMSFeed stands in for the MAASTO truck parking network. Stop ids are
// not yet mapped to TPIMS site ids, so counts are drawn per call.
type TPIMSFeed struct {
	random Random
	now    func() time.Time
}

func (f *TPIMSFeed) Name() string { return SourceTPIMS }

func (f *TPIMSFeed) Availability(_ context.Context, _, _ string) (stops.Availability, error) {
	total := tpimsMinCapacity + f.random.IntN(tpimsCapacityJitter)
	taken := f.random.IntN(total + 1)
	return availability(total-taken, total, SourceTPIMS, true, f.now()), nil
}

// TxDOTFeed has no public endpoint yet and predicts from history.
type TxDOTFeed struct {
	historical *HistoricalFeed
}

func (f *TxDOTFeed) Name() string { return SourceTxDOT }

func (f *TxDOTFeed) Availability(ctx context.Context, stopID, state string) (stops.Availability, error) {
	return f.historical.Availability(ctx, stopID, state)
}

// HistoricalFeed predicts occupancy from the hour of day: lots fill
// overnight and empty out during the day.
type HistoricalFeed struct {
	random Random
	now    func() time.Time
}

func (f *HistoricalFeed) Name() string { return SourceHistorical }

func (f *HistoricalFeed) Availability(_ context.Context, _, _ string) (stops.Availability, error) {
	now := f.now()
	low, span := fullnessRange(now.Hour())
	fullness := low + span*f.random.Float64()
	available := int(historicalCapacity * (1 - fullness))
	return availability(available, historicalCapacity, SourceHistorical, false, now), nil
}

// fullnessRange is the occupancy band for an hour as (min, width).
func fullnessRange(hour int) (float64, float64) {
	switch {
	case hour >= 22 || hour < 5:
		return 0.8, 0.2
	case hour >= 17:
		return 0.5, 0.4
	default:
		return 0.1, 0.4
	}
}

var (
	_ Feed = (*TPIMSFeed)(nil)
	_ Feed = (*TxDOTFeed)(nil)
	_ Feed = (*HistoricalFeed)(nil)
)
