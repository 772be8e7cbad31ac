package dashboard

import (
	"testing"

	"github.com/flycharts/flycharts/internal/airports"
	"github.com/flycharts/flycharts/internal/layers"
	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/pkg/logger"
)

func testAirportIndex(t *testing.T) *airports.Index {
	t.Helper()
	data := []byte(`[
		{"code": "KSEA", "lat": 47.449, "lng": -122.309, "size": 3},
		{"code": "KBFI", "lat": 47.53, "lng": -122.302, "size": 2},
		{"code": "KRNT", "lat": 47.4931, "lng": -122.2157, "size": 1}
	]`)
	idx, err := airports.Parse(data, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to parse test airports: %v", err)
	}
	return idx
}

func newTestView(t *testing.T, zoom float64) *MapView {
	t.Helper()
	view, err := NewMapView(testAirportIndex(t), 47.449, -122.309, zoom, layers.Street)
	if err != nil {
		t.Fatalf("NewMapView failed: %v", err)
	}
	return view
}

func TestNewMapViewUnknownLayer(t *testing.T) {
	if _, err := NewMapView(testAirportIndex(t), 0, 0, 7, "bogus"); err == nil {
		t.Error("expected error for unknown layer")
	}
}

func TestZoomBandsReplaceMarkers(t *testing.T) {
	view := newTestView(t, 4)

	if got := len(view.Markers()); got != 1 {
		t.Errorf("markers at zoom 4 = %d, want 1", got)
	}

	view.SetZoom(7)
	if got := len(view.Markers()); got != 2 {
		t.Errorf("markers at zoom 7 = %d, want 2", got)
	}

	view.SetZoom(10)
	if got := len(view.Markers()); got != 3 {
		t.Errorf("markers at zoom 10 = %d, want 3", got)
	}

	// Zooming back out replaces the whole set, nothing lingers
	view.SetZoom(4)
	markers := view.Markers()
	if len(markers) != 1 {
		t.Fatalf("markers after zooming back out = %d, want 1", len(markers))
	}
	if markers[0].Code != "KSEA" {
		t.Errorf("remaining marker = %s, want KSEA", markers[0].Code)
	}
}

func TestBaseLayerSwitching(t *testing.T) {
	view := newTestView(t, 7)

	base := view.BaseLayer()
	if base == nil || base.ID != layers.Street {
		t.Fatalf("initial base layer = %v, want street", base)
	}
	if view.Overlay() != nil {
		t.Error("street layer should have no labels overlay")
	}

	if err := view.SetBaseLayer(layers.Hybrid); err != nil {
		t.Fatalf("SetBaseLayer failed: %v", err)
	}
	base = view.BaseLayer()
	if base == nil || base.ID != layers.Hybrid {
		t.Fatalf("base layer after switch = %v, want hybrid", base)
	}
	if view.Overlay() == nil {
		t.Error("hybrid layer should attach a labels overlay")
	}

	// Switching back removes the overlay along with the old base
	if err := view.SetBaseLayer(layers.Satellite); err != nil {
		t.Fatalf("SetBaseLayer failed: %v", err)
	}
	if view.Overlay() != nil {
		t.Error("satellite layer should not keep the previous overlay")
	}
	if got := view.BaseLayer().ID; got != layers.Satellite {
		t.Errorf("base layer = %s, want satellite", got)
	}
}

func TestSetBaseLayerUnknownKeepsCurrent(t *testing.T) {
	view := newTestView(t, 7)

	if err := view.SetBaseLayer("bogus"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if got := view.BaseLayer().ID; got != layers.Street {
		t.Errorf("base layer after failed switch = %s, want street", got)
	}
}

func TestMarkerRotation(t *testing.T) {
	tests := []struct {
		heading float64
		want    float64
	}{
		{90, 0},   // East-pointing artwork needs no rotation when flying east
		{0, 270},  // North
		{180, 90}, // South
		{270, 180},
		{45, 315},
	}

	for _, tc := range tests {
		if got := markerRotation(tc.heading); got != tc.want {
			t.Errorf("markerRotation(%v) = %v, want %v", tc.heading, got, tc.want)
		}
	}
}

func TestUpdateAircraft(t *testing.T) {
	view := newTestView(t, 7)

	if view.Aircraft() != nil {
		t.Fatal("aircraft marker should be nil before any update")
	}

	view.UpdateAircraft(sim.PositionReading{
		Latitude:      47.6,
		Longitude:     -122.3,
		Altitude:      1000,
		Heading:       90,
		GroundSpeed:   120,
		AircraftTitle: "Cessna 172",
		ATCID:         "N172FC",
	})

	marker := view.Aircraft()
	if marker == nil {
		t.Fatal("aircraft marker missing after update")
	}
	if marker.Lat != 47.6 || marker.Lon != -122.3 {
		t.Errorf("marker position = %v/%v", marker.Lat, marker.Lon)
	}
	if marker.RotationDeg != 0 {
		t.Errorf("marker rotation = %v, want 0 for heading 90", marker.RotationDeg)
	}

	fields := view.Fields()
	if fields.Altitude != 1000 {
		t.Errorf("altitude field = %v, want 1000", fields.Altitude)
	}
	if fields.Heading != 90 {
		t.Errorf("heading field = %v, want 90", fields.Heading)
	}
	if fields.Callsign != "N172FC" {
		t.Errorf("callsign field = %q, want N172FC", fields.Callsign)
	}
}
