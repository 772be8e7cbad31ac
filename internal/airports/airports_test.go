package airports

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/flycharts/flycharts/pkg/logger"
)

func TestMinSizeForZoom(t *testing.T) {
	tests := []struct {
		zoom float64
		want int
	}{
		{3, SizeLarge},
		{5.9, SizeLarge},
		{6, SizeMedium},
		{7, SizeMedium},
		{8.9, SizeMedium},
		{9, SizeSmall},
		{12, SizeSmall},
	}

	for _, tc := range tests {
		if got := MinSizeForZoom(tc.zoom); got != tc.want {
			t.Errorf("MinSizeForZoom(%v) = %d, want %d", tc.zoom, got, tc.want)
		}
	}
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	data := []byte(`[
		{"code": "KSEA", "lat": 47.449, "lng": -122.309, "size": 3},
		{"code": "KBFI", "lat": 47.53, "lng": -122.302, "size": 2},
		{"code": "KRNT", "lat": 47.4931, "lng": -122.2157, "size": 1},
		{"code": "KPDX", "lat": 45.5887, "lng": -122.5975, "size": 3}
	]`)
	idx, err := Parse(data, logger.NewNop())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return idx
}

func TestVisibleAtZoom(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		zoom float64
		want int
	}{
		{4, 2},  // Only the two large airports
		{7, 3},  // Large and medium
		{10, 4}, // Everything
	}

	for _, tc := range tests {
		got := idx.VisibleAtZoom(tc.zoom)
		if len(got) != tc.want {
			t.Errorf("VisibleAtZoom(%v) returned %d airports, want %d", tc.zoom, len(got), tc.want)
		}
	}
}

func TestVisibleWithBound(t *testing.T) {
	idx := testIndex(t)

	// Bound covering the Seattle area but not Portland
	bound := orb.Bound{
		Min: orb.Point{-123.0, 47.0},
		Max: orb.Point{-122.0, 48.0},
	}

	got := idx.Visible(4, bound)
	if len(got) != 1 {
		t.Fatalf("Visible(4, seattle) returned %d airports, want 1", len(got))
	}
	if got[0].Code != "KSEA" {
		t.Errorf("Visible(4, seattle) = %s, want KSEA", got[0].Code)
	}

	got = idx.Visible(10, bound)
	if len(got) != 3 {
		t.Errorf("Visible(10, seattle) returned %d airports, want 3", len(got))
	}
}

func TestParseRejectsMissingCode(t *testing.T) {
	data := []byte(`[{"code": "", "lat": 1, "lng": 2, "size": 3}]`)
	if _, err := Parse(data, logger.NewNop()); err == nil {
		t.Error("expected error for airport with empty code")
	}
}

func TestParseClampsSize(t *testing.T) {
	data := []byte(`[{"code": "KXYZ", "lat": 1, "lng": 2, "size": 0}]`)
	idx, err := Parse(data, logger.NewNop())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := idx.All()[0].Size; got != SizeSmall {
		t.Errorf("size = %d, want clamped to %d", got, SizeSmall)
	}
}

func TestPointOrder(t *testing.T) {
	a := Airport{Code: "KSEA", Lat: 47.449, Lng: -122.309}
	p := a.Point()
	if p.Lon() != a.Lng || p.Lat() != a.Lat {
		t.Errorf("Point() = %v, want lon/lat %v/%v", p, a.Lng, a.Lat)
	}
}
