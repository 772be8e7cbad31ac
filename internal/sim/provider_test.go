package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/flycharts/flycharts/internal/config"
)

func newTestProvider() *SimulatedProvider {
	return NewSimulatedProvider(
		config.SimLinkConfig{
			InitialAltitudeFt: 3500,
			InitialHeadingDeg: 90,
			InitialSpeedKts:   120,
		},
		config.StationConfig{
			Latitude:  47.449,
			Longitude: -122.309,
		},
	)
}

func TestReadRequiresOpen(t *testing.T) {
	p := newTestProvider()
	if _, err := p.Read(context.Background()); err == nil {
		t.Error("expected error reading a closed provider")
	}
}

func TestDeadReckoningEastbound(t *testing.T) {
	p := newTestProvider()

	// Heading 090 at 120 kts for one hour covers 120 NM due east:
	// longitude increases, latitude stays put
	p.advance(3600)

	if p.lon <= -122.309 {
		t.Errorf("eastbound flight did not move east: lon = %v", p.lon)
	}
	if math.Abs(p.lat-47.449) > 0.01 {
		t.Errorf("eastbound flight drifted in latitude: lat = %v", p.lat)
	}

	// 120 NM east at 47.4N is 120 / (60*cos(lat)) degrees of longitude
	wantDelta := 120.0 / (60 * math.Cos(47.449*math.Pi/180))
	gotDelta := p.lon - (-122.309)
	if math.Abs(gotDelta-wantDelta) > 0.05 {
		t.Errorf("longitude delta = %v, want about %v", gotDelta, wantDelta)
	}
}

func TestDeadReckoningNorthbound(t *testing.T) {
	p := newTestProvider()
	if err := p.SetControls(0, 60, 0); err != nil {
		t.Fatalf("SetControls failed: %v", err)
	}

	// 60 kts due north for an hour is 60 NM, one degree of latitude
	p.advance(3600)

	if math.Abs(p.lat-48.449) > 0.01 {
		t.Errorf("northbound flight lat = %v, want about 48.449", p.lat)
	}
}

func TestAltitudeClampsAtGround(t *testing.T) {
	p := newTestProvider()
	if err := p.SetControls(90, 120, -3000); err != nil {
		t.Fatalf("SetControls failed: %v", err)
	}

	// 3500 ft at -3000 fpm reaches the ground in just over a minute
	p.advance(120)

	if p.altitude != 0 {
		t.Errorf("altitude = %v, want clamped to 0", p.altitude)
	}
	if p.verticalRate != 0 {
		t.Errorf("vertical rate = %v, want zeroed at ground level", p.verticalRate)
	}
}

func TestSetControlsValidation(t *testing.T) {
	p := newTestProvider()

	tests := []struct {
		name                  string
		heading, speed, vrate float64
	}{
		{"negative heading", -1, 100, 0},
		{"heading 360", 360, 100, 0},
		{"negative speed", 90, -5, 0},
		{"speed too high", 90, 501, 0},
		{"climb too steep", 90, 100, 3001},
		{"descent too steep", 90, 100, -3001},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := p.SetControls(tc.heading, tc.speed, tc.vrate); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := p.SetControls(359, 500, 3000); err != nil {
		t.Errorf("boundary values rejected: %v", err)
	}
}

func TestReadReportsMagneticHeading(t *testing.T) {
	p := newTestProvider()
	if err := p.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	reading, err := p.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	variation := MagneticVariation(reading.Latitude, reading.Longitude, reading.Altitude, time.Now().UTC())
	want := normalizeHeading(reading.TrueHeading - variation)
	if math.Abs(reading.Heading-want) > 0.001 {
		t.Errorf("magnetic heading = %v, want %v (variation %v)", reading.Heading, want, variation)
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359, 359},
		{360, 0},
		{-90, 270},
		{450, 90},
	}

	for _, tc := range tests {
		if got := normalizeHeading(tc.in); got != tc.want {
			t.Errorf("normalizeHeading(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
