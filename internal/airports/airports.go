package airports

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"

	"github.com/flycharts/flycharts/pkg/logger"
)

// Size categories, coarse to fine. The zoom-visibility bands key off these.
const (
	SizeSmall  = 1
	SizeMedium = 2
	SizeLarge  = 3
)

// Zoom band boundaries for airport marker visibility
const (
	// Below this zoom only large airports are shown
	LowZoomLimit = 6.0
	// Between LowZoomLimit and this zoom, large and medium airports are shown.
	// At or above it, everything is shown.
	MidZoomLimit = 9.0
)

// Airport is a single record from the airports.json resource
type Airport struct {
	Code string  `json:"code"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Size int     `json:"size"`
}

// Point returns the airport location as an orb point (lon/lat order)
func (a Airport) Point() orb.Point {
	return orb.Point{a.Lng, a.Lat}
}

// MinSizeForZoom returns the smallest airport size category visible at the
// given zoom level
func MinSizeForZoom(zoom float64) int {
	switch {
	case zoom < LowZoomLimit:
		return SizeLarge
	case zoom < MidZoomLimit:
		return SizeMedium
	default:
		return SizeSmall
	}
}

// Index holds the loaded airport list and answers visibility queries
type Index struct {
	airports []Airport
	logger   *logger.Logger
}

// Load reads the airports.json resource and builds an index
func Load(path string, log *logger.Logger) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read airports resource: %w", err)
	}
	return Parse(data, log)
}

// Parse builds an index from raw airports.json bytes
func Parse(data []byte, log *logger.Logger) (*Index, error) {
	var airports []Airport
	if err := json.Unmarshal(data, &airports); err != nil {
		return nil, fmt.Errorf("failed to parse airports resource: %w", err)
	}

	for i, a := range airports {
		if a.Code == "" {
			return nil, fmt.Errorf("airport record %d has no code", i)
		}
		if a.Size < SizeSmall {
			airports[i].Size = SizeSmall
		}
	}

	idx := &Index{
		airports: airports,
		logger:   log.Named("airports"),
	}
	idx.logger.Info("Loaded airport records", logger.Int("count", len(airports)))
	return idx, nil
}

// Empty returns an index with no airports
func Empty() *Index {
	return &Index{logger: logger.NewNop()}
}

// All returns every loaded airport
func (idx *Index) All() []Airport {
	out := make([]Airport, len(idx.airports))
	copy(out, idx.airports)
	return out
}

// Count returns the number of loaded airports
func (idx *Index) Count() int {
	return len(idx.airports)
}

// VisibleAtZoom returns the airports whose size category passes the zoom
// band rule
func (idx *Index) VisibleAtZoom(zoom float64) []Airport {
	minSize := MinSizeForZoom(zoom)
	out := make([]Airport, 0, len(idx.airports))
	for _, a := range idx.airports {
		if a.Size >= minSize {
			out = append(out, a)
		}
	}
	return out
}

// Visible returns the airports passing the zoom band rule that also fall
// inside the given bound
func (idx *Index) Visible(zoom float64, bound orb.Bound) []Airport {
	minSize := MinSizeForZoom(zoom)
	out := make([]Airport, 0)
	for _, a := range idx.airports {
		if a.Size < minSize {
			continue
		}
		if !bound.Contains(a.Point()) {
			continue
		}
		out = append(out, a)
	}
	return out
}
