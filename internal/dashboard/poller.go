package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/flycharts/flycharts/pkg/logger"
)

// ConnectionGate reports whether the live link is up. While it is, the
// fallback poller skips its ticks to avoid duplicate updates.
type ConnectionGate interface {
	Connected() bool
}

// Poller is the fallback polling path: on a fixed period it issues two
// independent reads (position and aircraft type), logs the results, and
// swallows failures. There is no retry beyond the next natural tick.
type Poller struct {
	baseURL    string
	interval   time.Duration
	httpClient *http.Client
	gate       ConnectionGate
	logger     *logger.Logger
}

// NewPoller creates a new fallback poller
func NewPoller(baseURL string, interval, timeout time.Duration, gate ConnectionGate, log *logger.Logger) *Poller {
	return &Poller{
		baseURL:  baseURL,
		interval: interval,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		gate:   gate,
		logger: log.Named("poller"),
	}
}

// Run polls until the context is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Starting fallback poller",
		logger.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Fallback poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs a single poll cycle. It is a no-op while the live link is
// connected.
func (p *Poller) Tick(ctx context.Context) {
	if p.gate != nil && p.gate.Connected() {
		p.logger.Debug("Live link connected, skipping poll cycle")
		return
	}

	p.fetchPosition(ctx)
	p.fetchType(ctx)
}

// positionPayload is the legacy position response: either a reading or an
// error message, never both
type positionPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Error     string  `json:"error"`
}

type typePayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (p *Poller) fetchPosition(ctx context.Context) {
	var payload positionPayload
	if err := p.get(ctx, "/aircraft/position", &payload); err != nil {
		p.logger.Warn("Position poll failed", logger.Error(err))
		return
	}

	if payload.Error != "" {
		p.logger.Warn("Position poll returned error", logger.String("message", payload.Error))
		return
	}

	p.logger.Info("Polled aircraft position",
		logger.Float64("lat", payload.Latitude),
		logger.Float64("lon", payload.Longitude),
		logger.Float64("altitude", payload.Altitude))
}

func (p *Poller) fetchType(ctx context.Context) {
	var payload typePayload
	if err := p.get(ctx, "/aircraft/type", &payload); err != nil {
		p.logger.Warn("Aircraft type poll failed", logger.Error(err))
		return
	}

	if payload.Error != "" {
		p.logger.Warn("Aircraft type poll returned error", logger.String("message", payload.Error))
		return
	}

	p.logger.Info("Polled aircraft type", logger.String("type", payload.Type))
}

// get performs a single GET and decodes the JSON body into target. Error
// payloads come back with non-200 status codes, so the body is decoded
// regardless of status.
func (p *Poller) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}
