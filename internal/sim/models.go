package sim

import (
	"encoding/json"
	"time"
)

// State is the connection state of the simulator link
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// PositionReading is a single aircraft position sample from the simulator.
// Heading is magnetic, matching what the simulator instruments report;
// TrueHeading carries the declination-corrected value.
type PositionReading struct {
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Altitude      float64   `json:"altitude"`
	Heading       float64   `json:"heading"`
	TrueHeading   float64   `json:"true_heading"`
	Airspeed      float64   `json:"airspeed"`
	GroundSpeed   float64   `json:"ground_speed"`
	VerticalSpeed float64   `json:"vertical_speed"`
	AircraftTitle string    `json:"aircraft_title"`
	ATCID         string    `json:"atc_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// ToMap converts the reading into the generic payload shape carried by
// WebSocket messages
func (p *PositionReading) ToMap() map[string]any {
	data, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// ConnectResult is the response shape for connect/disconnect requests
type ConnectResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Connected bool      `json:"connected"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusReport is the response shape for status requests
type StatusReport struct {
	Connected    bool             `json:"connected"`
	Available    bool             `json:"simconnect_available"`
	LastPosition *PositionReading `json:"last_position"`
	Timestamp    time.Time        `json:"timestamp"`
}

// ToMap converts the result into a WebSocket payload
func (r *ConnectResult) ToMap() map[string]any {
	return map[string]any{
		"success":   r.Success,
		"message":   r.Message,
		"connected": r.Connected,
		"timestamp": r.Timestamp.Format(time.RFC3339),
	}
}

// ToMap converts the report into a WebSocket payload
func (s *StatusReport) ToMap() map[string]any {
	out := map[string]any{
		"connected":            s.Connected,
		"simconnect_available": s.Available,
		"timestamp":            s.Timestamp.Format(time.RFC3339),
	}
	if s.LastPosition != nil {
		out["last_position"] = s.LastPosition.ToMap()
	} else {
		out["last_position"] = nil
	}
	return out
}
