package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/pkg/logger"
)

// LiveLink is the persistent push channel to the server. It drives the
// connect/disconnect requests and delivers push events as tagged variants
// on the Events channel.
//
// The state machine is disconnected -> connecting -> connected; any
// failure, and disconnect itself, land back in disconnected.
type LiveLink struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *logger.Logger

	mu         sync.Mutex
	state      sim.State
	autoUpdate bool
	conn       *websocket.Conn

	events chan Event
}

// NewLiveLink creates a live link client for the given server base URL
func NewLiveLink(serverURL string, requestTimeout, handshakeTimeout time.Duration, log *logger.Logger) *LiveLink {
	wsURL := strings.Replace(serverURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL = strings.TrimSuffix(wsURL, "/") + "/ws"

	return &LiveLink{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		wsURL:   wsURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		logger: log.Named("live-link"),
		state:  sim.StateDisconnected,
		events: make(chan Event, 64),
	}
}

// Events returns the push event channel
func (l *LiveLink) Events() <-chan Event {
	return l.events
}

// State returns the current link state
func (l *LiveLink) State() sim.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Connected reports whether the live link is established
func (l *LiveLink) Connected() bool {
	return l.State() == sim.StateConnected
}

// SetAutoUpdate toggles whether received position data is applied. The
// toggle never changes the connection state.
func (l *LiveLink) SetAutoUpdate(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.autoUpdate = enabled
}

// AutoUpdate reports whether received position data is applied
func (l *LiveLink) AutoUpdate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.autoUpdate
}

// Connect issues the connect request and opens the push channel. On any
// failure the state returns to disconnected and the error carries the
// server's message.
func (l *LiveLink) Connect(ctx context.Context) error {
	l.mu.Lock()
	if l.state != sim.StateDisconnected {
		state := l.state
		l.mu.Unlock()
		return fmt.Errorf("connect requested while %s", state)
	}
	l.state = sim.StateConnecting
	l.mu.Unlock()

	var result sim.ConnectResult
	if err := l.post(ctx, "/api/simconnect/connect", &result); err != nil {
		l.setState(sim.StateDisconnected)
		l.emit(LinkError{Message: fmt.Sprintf("Connect request failed: %v", err)})
		return fmt.Errorf("connect request failed: %w", err)
	}

	if !result.Success {
		l.setState(sim.StateDisconnected)
		l.emit(LinkError{Message: result.Message})
		return fmt.Errorf("connect refused: %s", result.Message)
	}

	conn, _, err := l.dialer.DialContext(ctx, l.wsURL, nil)
	if err != nil {
		l.setState(sim.StateDisconnected)
		l.emit(LinkError{Message: fmt.Sprintf("Push channel failed: %v", err)})
		return fmt.Errorf("failed to open push channel: %w", err)
	}

	l.mu.Lock()
	l.conn = conn
	l.state = sim.StateConnected
	l.mu.Unlock()

	go l.readLoop(conn)

	l.logger.Info("Live link connected", logger.String("url", l.wsURL))
	return nil
}

// Disconnect issues the disconnect request and closes the push channel.
// The state always ends up disconnected, whatever the server said, so a
// manual retry starts from a clean slate.
func (l *LiveLink) Disconnect(ctx context.Context) error {
	var result sim.ConnectResult
	if err := l.post(ctx, "/api/simconnect/disconnect", &result); err != nil {
		// Best effort: log and keep going
		l.logger.Warn("Disconnect request failed", logger.Error(err))
	}

	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.state = sim.StateDisconnected
	l.mu.Unlock()

	l.logger.Info("Live link disconnected")
	return nil
}

// RequestPosition asks the server for an immediate position push
func (l *LiveLink) RequestPosition() error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("live link not connected")
	}

	msg := map[string]any{"type": "request_position"}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send position request: %w", err)
	}
	return nil
}

// CheckStatus polls the link status endpoint and emits a StatusChanged
// event. If the server reports the session down while we believe it is up,
// the local state drops to disconnected.
func (l *LiveLink) CheckStatus(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/api/simconnect/status", nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.logger.Warn("Status check failed", logger.Error(err))
		return
	}
	defer resp.Body.Close()

	var status sim.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		l.logger.Warn("Failed to parse status response", logger.Error(err))
		return
	}

	l.mu.Lock()
	if !status.Connected && l.state == sim.StateConnected {
		l.state = sim.StateDisconnected
		if l.conn != nil {
			l.conn.Close()
			l.conn = nil
		}
	}
	l.mu.Unlock()

	l.emit(StatusChanged{Status: status})
}

// readLoop receives push messages and converts them into tagged events
func (l *LiveLink) readLoop(conn *websocket.Conn) {
	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			l.mu.Lock()
			lost := l.state == sim.StateConnected && l.conn == conn
			if lost {
				l.state = sim.StateDisconnected
				l.conn = nil
			}
			l.mu.Unlock()

			if lost {
				l.logger.Warn("Live link lost", logger.Error(err))
				l.emit(LinkError{Message: "Live link lost"})
			}
			return
		}

		switch msg.Type {
		case "simconnect_status":
			var status sim.StatusReport
			if err := json.Unmarshal(msg.Data, &status); err != nil {
				l.logger.Warn("Failed to parse status event", logger.Error(err))
				continue
			}
			l.emit(StatusChanged{Status: status})

		case "aircraft_position_update":
			var pos sim.PositionReading
			if err := json.Unmarshal(msg.Data, &pos); err != nil {
				l.logger.Warn("Failed to parse position event", logger.Error(err))
				continue
			}
			l.emit(PositionUpdated{Position: pos})

		case "error":
			var payload struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				payload.Message = "unknown error"
			}
			l.emit(LinkError{Message: payload.Message})

		default:
			l.logger.Debug("Unhandled push event", logger.String("type", msg.Type))
		}
	}
}

// post performs a POST with an empty body and decodes the JSON response
func (l *LiveLink) post(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func (l *LiveLink) setState(s sim.State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// emit delivers an event without blocking; if the consumer is behind, the
// event is dropped (last-write-wins display semantics make this safe)
func (l *LiveLink) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		l.logger.Warn("Event channel full, dropping event")
	}
}
