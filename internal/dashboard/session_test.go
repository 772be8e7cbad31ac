package dashboard

import (
	"context"
	"testing"

	"github.com/flycharts/flycharts/internal/config"
	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/pkg/logger"
)

func newTestSession(t *testing.T, serverURL string) *Session {
	t.Helper()

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: 5500, Host: "127.0.0.1"},
		Dashboard: config.DashboardConfig{AutoUpdate: true, ServerURL: serverURL},
		Map:       config.MapConfig{DefaultLat: 47.449, DefaultLon: -122.309, DefaultZoom: 7},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config validation failed: %v", err)
	}

	session, err := NewSession(cfg, testAirportIndex(t), logger.NewNop())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return session
}

func TestSessionAppliesPositionEvents(t *testing.T) {
	session := newTestSession(t, "")

	session.handleEvent(PositionUpdated{Position: sim.PositionReading{
		Latitude:  47.5,
		Longitude: -122.3,
		Heading:   180,
		Altitude:  2500,
	}})

	marker := session.View().Aircraft()
	if marker == nil {
		t.Fatal("aircraft marker missing after position event")
	}
	if marker.Lat != 47.5 {
		t.Errorf("marker lat = %v, want 47.5", marker.Lat)
	}
	if got := session.View().Fields().Altitude; got != 2500 {
		t.Errorf("altitude field = %v, want 2500", got)
	}
}

func TestSessionIgnoresPositionsWhenAutoUpdateOff(t *testing.T) {
	session := newTestSession(t, "")

	session.handleEvent(PositionUpdated{Position: sim.PositionReading{Latitude: 47.5, Altitude: 1000}})
	if got := session.View().Fields().Altitude; got != 1000 {
		t.Fatalf("altitude field = %v, want 1000", got)
	}

	session.Link().SetAutoUpdate(false)
	session.handleEvent(PositionUpdated{Position: sim.PositionReading{Latitude: 48.0, Altitude: 9999}})

	// Nothing moved: the toggle gates application, not delivery
	if got := session.View().Fields().Altitude; got != 1000 {
		t.Errorf("altitude field = %v, want unchanged 1000", got)
	}
	if got := session.View().Aircraft().Lat; got != 47.5 {
		t.Errorf("marker lat = %v, want unchanged 47.5", got)
	}

	session.Link().SetAutoUpdate(true)
	session.handleEvent(PositionUpdated{Position: sim.PositionReading{Latitude: 48.0, Altitude: 4000}})
	if got := session.View().Fields().Altitude; got != 4000 {
		t.Errorf("altitude field = %v, want 4000 after re-enable", got)
	}
}

func TestSessionStatusLineOnEvents(t *testing.T) {
	ts := newLinkTestServer()
	defer ts.server.Close()

	session := newTestSession(t, ts.server.URL)
	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer session.Disconnect(context.Background())

	session.handleEvent(StatusChanged{Status: sim.StatusReport{Connected: true}})
	if status := session.Status(); status.Text != "Connected" || status.Error {
		t.Errorf("status after connected report = %+v", status)
	}

	session.handleEvent(LinkError{Message: "update loop error"})
	if status := session.Status(); status.Text != "update loop error" || !status.Error {
		t.Errorf("status after link error = %+v", status)
	}
}

func TestSessionIgnoresUpwardStatusClaims(t *testing.T) {
	session := newTestSession(t, "")

	// The live link is down; a server report claiming the sim session is
	// up must not flip the status line to connected
	session.handleEvent(StatusChanged{Status: sim.StatusReport{Connected: true}})
	if status := session.Status(); status.Text != "Disconnected" || status.Error {
		t.Errorf("status after upward claim = %+v", status)
	}

	session.handleEvent(StatusChanged{Status: sim.StatusReport{Connected: false}})
	if status := session.Status(); status.Text != "Disconnected" || status.Error {
		t.Errorf("status after downward report = %+v", status)
	}
}
