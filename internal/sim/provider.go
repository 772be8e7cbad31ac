package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"

	"github.com/flycharts/flycharts/internal/config"
)

// Provider is a source of aircraft position readings. Open establishes the
// link to the simulator, Read returns the current sample.
type Provider interface {
	Open(ctx context.Context) error
	Read(ctx context.Context) (*PositionReading, error)
	Close() error
}

// NewProvider builds the provider selected by configuration
func NewProvider(cfg config.SimLinkConfig, station config.StationConfig) Provider {
	switch cfg.Provider {
	case "simulated":
		return NewSimulatedProvider(cfg, station)
	default:
		return &unavailableProvider{}
	}
}

// unavailableProvider is installed when no simulator integration is
// configured; every connect attempt fails with a descriptive message.
type unavailableProvider struct{}

func (p *unavailableProvider) Open(ctx context.Context) error {
	return fmt.Errorf("simulator link library not installed")
}

func (p *unavailableProvider) Read(ctx context.Context) (*PositionReading, error) {
	return nil, fmt.Errorf("simulator link not available")
}

func (p *unavailableProvider) Close() error { return nil }

// SimulatedProvider produces readings from a dead-reckoned flight so the
// system can run without a real simulator attached
type SimulatedProvider struct {
	mu sync.Mutex

	lat          float64
	lon          float64
	altitude     float64
	trueHeading  float64
	speed        float64
	verticalRate float64
	title        string
	callsign     string

	open       bool
	lastUpdate time.Time
}

// NewSimulatedProvider creates a simulated flight starting over the
// configured station
func NewSimulatedProvider(cfg config.SimLinkConfig, station config.StationConfig) *SimulatedProvider {
	title := cfg.AircraftTitle
	if title == "" {
		title = "Cessna 172"
	}
	callsign := cfg.Callsign
	if callsign == "" {
		callsign = "N172FC"
	}
	return &SimulatedProvider{
		lat:          station.Latitude,
		lon:          station.Longitude,
		altitude:     cfg.InitialAltitudeFt,
		trueHeading:  cfg.InitialHeadingDeg,
		speed:        cfg.InitialSpeedKts,
		verticalRate: cfg.InitialVerticalFPM,
		title:        title,
		callsign:     callsign,
	}
}

func (p *SimulatedProvider) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.lastUpdate = time.Now().UTC()
	return nil
}

func (p *SimulatedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

// Read advances the dead-reckoned flight and returns the current sample
func (p *SimulatedProvider) Read(ctx context.Context) (*PositionReading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return nil, fmt.Errorf("provider not open")
	}

	now := time.Now().UTC()
	deltaTime := now.Sub(p.lastUpdate).Seconds()
	if deltaTime > 0 {
		p.advance(deltaTime)
		p.lastUpdate = now
	}

	magHeading := normalizeHeading(p.trueHeading - MagneticVariation(p.lat, p.lon, p.altitude, now))

	return &PositionReading{
		Latitude:      p.lat,
		Longitude:     p.lon,
		Altitude:      p.altitude,
		Heading:       magHeading,
		TrueHeading:   p.trueHeading,
		Airspeed:      p.speed,
		GroundSpeed:   p.speed, // Simplified: assume no wind
		VerticalSpeed: p.verticalRate,
		AircraftTitle: p.title,
		ATCID:         p.callsign,
		Timestamp:     now,
	}, nil
}

// SetControls updates the target flight parameters
func (p *SimulatedProvider) SetControls(heading, speed, verticalRate float64) error {
	if heading < 0 || heading >= 360 {
		return fmt.Errorf("invalid heading: %.1f (must be 0-359)", heading)
	}
	if speed < 0 || speed > 500 {
		return fmt.Errorf("invalid speed: %.1f (0-500 knots)", speed)
	}
	if verticalRate < -3000 || verticalRate > 3000 {
		return fmt.Errorf("invalid vertical rate: %.0f (-3000 to +3000 fpm)", verticalRate)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.trueHeading = heading
	p.speed = speed
	p.verticalRate = verticalRate
	return nil
}

// advance moves the aircraft using dead reckoning. Caller holds the lock.
func (p *SimulatedProvider) advance(deltaTime float64) {
	// Convert heading to radians (0° = North, clockwise)
	// Aviation: 0°=North, 90°=East; Math: 0°=East, 90°=North
	// Conversion: math_angle = 90° - aviation_heading
	headingRad := (90 - p.trueHeading) * math.Pi / 180

	// Distance traveled (speed in knots, time in seconds)
	distanceNM := p.speed * deltaTime / 3600

	// 1 degree latitude ≈ 60 nautical miles
	// 1 degree longitude ≈ 60 * cos(latitude) nautical miles
	latChange := distanceNM * math.Sin(headingRad) / 60
	lonChange := distanceNM * math.Cos(headingRad) / (60 * math.Cos(p.lat*math.Pi/180))

	p.lat += latChange
	p.lon += lonChange

	// Vertical rate is in feet per minute
	p.altitude += p.verticalRate * deltaTime / 60

	if p.altitude < 0 {
		p.altitude = 0
		p.verticalRate = 0 // Stop descent at ground level
	}
}

// MagneticVariation calculates the magnetic declination for a given
// position and time. Returns declination in degrees (+East, -West).
func MagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	altM := altFt * 0.3048

	loc := egm96.NewLocationGeodetic(lat, lon, altM)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Return 0 for safety if calculation fails
		return 0.0
	}

	return mag.D()
}

func normalizeHeading(h float64) float64 {
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	return h
}
