package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/pkg/geo"
)

// maxCatalogBytes caps how much of a catalog document is read.
const maxCatalogBytes = 32 << 20

// Source produces a fresh catalog snapshot.
type Source interface {
	Name() string
	Load(ctx context.Context) (*stops.Catalog, error)
}

// Parse decodes a catalog document. Stops with unusable coordinates are
// dropped and lookup keys are normalised to upper-case state codes.
func Parse(r io.Reader) (*stops.Catalog, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(data) > maxCatalogBytes {
		return nil, fmt.Errorf("catalog exceeds %d bytes", maxCatalogBytes)
	}
	var c stops.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	kept := c.TruckStops[:0]
	for _, s := range c.TruckStops {
		if (geo.Point{Lat: s.Latitude, Lon: s.Longitude}).Validate() != nil {
			continue
		}
		s.State = strings.ToUpper(strings.TrimSpace(s.State))
		kept = append(kept, s)
	}
	c.TruckStops = kept

	if len(c.Hotspots) > 0 {
		hotspots := make(map[string]stops.Hotspot, len(c.Hotspots))
		for key, h := range c.Hotspots {
			hotspots[normaliseHotspotKey(key)] = h
		}
		c.Hotspots = hotspots
	}
	if len(c.StateMultipliers) > 0 {
		multipliers := make(map[string]float64, len(c.StateMultipliers))
		for code, m := range c.StateMultipliers {
			multipliers[strings.ToUpper(code)] = m
		}
		c.StateMultipliers = multipliers
	}
	if len(c.States) > 0 {
		states := make(map[string]stops.StateProfile, len(c.States))
		for code, p := range c.States {
			states[strings.ToUpper(code)] = p
		}
		c.States = states
	}
	return &c, nil
}

// normaliseHotspotKey upper-cases the state prefix of "ST-City".
func normaliseHotspotKey(key string) string {
	state, city, ok := strings.Cut(key, "-")
	if !ok {
		return key
	}
	return strings.ToUpper(state) + "-" + city
}

// FileSource reads the catalog from local disk.
type FileSource struct {
	Path string
}

// NewFileSource builds a FileSource.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "file:" + s.Path
}

// Load implements Source.
func (s *FileSource) Load(_ context.Context) (*stops.Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

var _ Source = (*FileSource)(nil)
