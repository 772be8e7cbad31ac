package dashboard

import (
	"fmt"
	"sync"

	"github.com/flycharts/flycharts/internal/airports"
	"github.com/flycharts/flycharts/internal/layers"
	"github.com/flycharts/flycharts/internal/sim"
)

// AircraftMarker is the single own-aircraft marker on the map. RotationDeg
// is the icon rotation: the artwork points east, so rotation is heading
// minus 90 degrees.
type AircraftMarker struct {
	Lat         float64
	Lon         float64
	RotationDeg float64
}

// DisplayFields are the instrument readouts shown next to the map
type DisplayFields struct {
	Altitude      float64
	Heading       float64
	GroundSpeed   float64
	AircraftTitle string
	Callsign      string
}

// MapView owns the map session state: center, zoom, the single base layer,
// the optional labels overlay, the airport marker set, and the aircraft
// marker. At most one base layer and one overlay are attached at any time;
// the previous pair is removed before a new one is attached.
type MapView struct {
	mu sync.Mutex

	index     *airports.Index
	centerLat float64
	centerLon float64
	zoom      float64

	base    *layers.Source
	overlay *layers.Source

	markers  []airports.Airport
	aircraft *AircraftMarker
	fields   DisplayFields
}

// NewMapView creates a map view centered on the default region with the
// given base layer attached
func NewMapView(index *airports.Index, lat, lon, zoom float64, base layers.ID) (*MapView, error) {
	v := &MapView{
		index:     index,
		centerLat: lat,
		centerLon: lon,
		zoom:      zoom,
	}
	if err := v.SetBaseLayer(base); err != nil {
		return nil, err
	}
	return v, nil
}

// Zoom returns the current zoom level
func (v *MapView) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetZoom changes the zoom level and recomputes the airport marker set
func (v *MapView) SetZoom(zoom float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = zoom
	v.recomputeMarkers()
}

// SetBaseLayer switches the base layer. The current base and overlay are
// removed first, then the new source is attached and the marker set is
// recomputed.
func (v *MapView) SetBaseLayer(id layers.ID) error {
	source, ok := layers.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown layer: %s", id)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Remove before add keeps the at-most-one invariant
	v.base = nil
	v.overlay = nil

	v.base = &source
	if source.LabelsURL != "" {
		overlay := source
		v.overlay = &overlay
	}

	v.recomputeMarkers()
	return nil
}

// BaseLayer returns the currently attached base layer
func (v *MapView) BaseLayer() *layers.Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.base == nil {
		return nil
	}
	base := *v.base
	return &base
}

// Overlay returns the currently attached labels overlay, if any
func (v *MapView) Overlay() *layers.Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.overlay == nil {
		return nil
	}
	overlay := *v.overlay
	return &overlay
}

// Markers returns the current airport marker set
func (v *MapView) Markers() []airports.Airport {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]airports.Airport, len(v.markers))
	copy(out, v.markers)
	return out
}

// UpdateAircraft moves the aircraft marker and refreshes the instrument
// readouts from a position sample
func (v *MapView) UpdateAircraft(pos sim.PositionReading) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.aircraft = &AircraftMarker{
		Lat:         pos.Latitude,
		Lon:         pos.Longitude,
		RotationDeg: markerRotation(pos.Heading),
	}
	v.fields = DisplayFields{
		Altitude:      pos.Altitude,
		Heading:       pos.Heading,
		GroundSpeed:   pos.GroundSpeed,
		AircraftTitle: pos.AircraftTitle,
		Callsign:      pos.ATCID,
	}
}

// Aircraft returns the aircraft marker, or nil when no position has been
// applied yet
func (v *MapView) Aircraft() *AircraftMarker {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.aircraft == nil {
		return nil
	}
	marker := *v.aircraft
	return &marker
}

// Fields returns the current instrument readouts
func (v *MapView) Fields() DisplayFields {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fields
}

// recomputeMarkers replaces the whole marker set from the zoom band rule.
// Caller holds the lock.
func (v *MapView) recomputeMarkers() {
	v.markers = nil
	if v.index != nil {
		v.markers = v.index.VisibleAtZoom(v.zoom)
	}
}

// markerRotation converts a heading to the icon rotation. The aircraft
// artwork points east (90 degrees).
func markerRotation(heading float64) float64 {
	rotation := heading - 90
	for rotation < 0 {
		rotation += 360
	}
	for rotation >= 360 {
		rotation -= 360
	}
	return rotation
}
