package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/yanqian/safetravels/internal/domain/stops"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// Store holds the active catalog snapshot. Readers never block; a reload
// swaps in a whole new snapshot.
type Store struct {
	current atomic.Pointer[stops.Catalog]
	logger  *slog.Logger
}

// NewStore starts with initial, or the empty catalog when nil.
func NewStore(initial *stops.Catalog, logger *slog.Logger) *Store {
	s := &Store{logger: logger.With("component", "catalog.store")}
	s.Swap(initial)
	return s
}

// Current implements stops.CatalogProvider.
func (s *Store) Current() *stops.Catalog {
	return s.current.Load()
}

// Swap replaces the snapshot.
func (s *Store) Swap(c *stops.Catalog) {
	if c == nil {
		c = stops.EmptyCatalog()
	}
	s.current.Store(c)
}

// Reload loads from src and swaps on success; the previous snapshot stays
// active on failure.
func (s *Store) Reload(ctx context.Context, src Source) error {
	c, err := src.Load(ctx)
	if err != nil {
		s.logger.Error("catalog reload failed", "source", src.Name(), "error", err)
		return apperrors.Wrap(apperrors.CodeCatalogUnavailable, "catalog reload failed", err)
	}
	s.Swap(c)
	s.logger.Info("catalog loaded", "source", src.Name(), "version", c.Version, "stops", len(c.TruckStops))
	return nil
}

// LoadFirst tries each source in order and keeps the first that loads.
// When none do the store keeps the empty catalog and the last error is
// returned for the caller to log.
func (s *Store) LoadFirst(ctx context.Context, sources ...Source) error {
	var lastErr error
	for _, src := range sources {
		if src == nil {
			continue
		}
		if err := s.Reload(ctx, src); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

var _ stops.CatalogProvider = (*Store)(nil)
