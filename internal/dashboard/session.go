package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flycharts/flycharts/internal/airports"
	"github.com/flycharts/flycharts/internal/config"
	"github.com/flycharts/flycharts/internal/layers"
	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/pkg/logger"
)

// StatusLine is the one-line connection status shown on the dashboard
type StatusLine struct {
	Text  string
	Error bool
}

// Session is a running dashboard: the map view, the live link, and the
// fallback poller, wired together. Run drives the event loop until the
// context is cancelled.
type Session struct {
	view   *MapView
	link   *LiveLink
	poller *Poller
	logger *logger.Logger

	statusInterval time.Duration

	mu     sync.Mutex
	status StatusLine
}

// NewSession builds a dashboard session from configuration
func NewSession(cfg *config.Config, index *airports.Index, log *logger.Logger) (*Session, error) {
	view, err := NewMapView(index,
		cfg.Map.DefaultLat,
		cfg.Map.DefaultLon,
		cfg.Map.DefaultZoom,
		layers.ID(cfg.Dashboard.DefaultLayer))
	if err != nil {
		return nil, fmt.Errorf("failed to create map view: %w", err)
	}

	link := NewLiveLink(cfg.Dashboard.ServerURL,
		time.Duration(cfg.Dashboard.RequestTimeoutSecs)*time.Second,
		time.Duration(cfg.Dashboard.HandshakeTimeoutSec)*time.Second,
		log)
	link.SetAutoUpdate(cfg.Dashboard.AutoUpdate)

	poller := NewPoller(cfg.Dashboard.ServerURL,
		time.Duration(cfg.Dashboard.PollIntervalSecs)*time.Second,
		time.Duration(cfg.Dashboard.RequestTimeoutSecs)*time.Second,
		link,
		log)

	return &Session{
		view:           view,
		link:           link,
		poller:         poller,
		logger:         log.Named("dashboard"),
		statusInterval: time.Duration(cfg.Dashboard.StatusIntervalSecs) * time.Second,
		status:         StatusLine{Text: "Disconnected"},
	}, nil
}

// View returns the session's map view
func (s *Session) View() *MapView {
	return s.view
}

// Link returns the session's live link
func (s *Session) Link() *LiveLink {
	return s.link
}

// Status returns the current status line
func (s *Session) Status() StatusLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Connect brings the live link up and updates the status line
func (s *Session) Connect(ctx context.Context) error {
	s.setStatus("Connecting...", false)
	if err := s.link.Connect(ctx); err != nil {
		s.setStatus(fmt.Sprintf("Connection failed: %v", err), true)
		return err
	}
	s.setStatus("Connected", false)
	return nil
}

// Disconnect tears the live link down and updates the status line
func (s *Session) Disconnect(ctx context.Context) error {
	if err := s.link.Disconnect(ctx); err != nil {
		s.setStatus(fmt.Sprintf("Disconnect failed: %v", err), true)
		return err
	}
	s.setStatus("Disconnected", false)
	return nil
}

// Run drives the session until the context is cancelled: the fallback
// poller, the periodic status check, and the live link event dispatch
// all run here.
func (s *Session) Run(ctx context.Context) {
	go s.poller.Run(ctx)

	statusTicker := time.NewTicker(s.statusInterval)
	defer statusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Dashboard session stopped")
			return
		case <-statusTicker.C:
			s.link.CheckStatus(ctx)
		case ev := <-s.link.Events():
			s.handleEvent(ev)
		}
	}
}

func (s *Session) handleEvent(ev Event) {
	switch e := ev.(type) {
	case StatusChanged:
		// A server claim of "up" only counts while our own link is up;
		// status checks reconcile downward, never upward
		if e.Status.Connected && s.link.Connected() {
			s.setStatus("Connected", false)
		} else if s.link.State() != sim.StateConnecting {
			s.setStatus("Disconnected", false)
		}
	case PositionUpdated:
		s.applyPositionUpdate(e)
	case LinkError:
		s.setStatus(e.Message, true)
		s.logger.Warn("Live link error", logger.String("message", e.Message))
	}
}

// applyPositionUpdate moves the aircraft marker, unless auto-update has
// been switched off
func (s *Session) applyPositionUpdate(e PositionUpdated) {
	if !s.link.AutoUpdate() {
		s.logger.Debug("Auto-update disabled, position update ignored")
		return
	}
	s.view.UpdateAircraft(e.Position)
}

func (s *Session) setStatus(text string, isError bool) {
	s.mu.Lock()
	s.status = StatusLine{Text: text, Error: isError}
	s.mu.Unlock()
}
