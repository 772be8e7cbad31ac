package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flycharts/flycharts/internal/websocket"
	"github.com/flycharts/flycharts/pkg/logger"
)

// Broadcaster pushes messages to all connected dashboard clients
type Broadcaster interface {
	Broadcast(message *websocket.Message)
}

// PositionStore persists position samples as they are pushed out
type PositionStore interface {
	Insert(reading *PositionReading) error
}

// Manager owns the simulator link session: connection state, the update
// loop, and the last known position. All state transitions go through it.
type Manager struct {
	provider    Provider
	available   bool
	interval    time.Duration
	broadcaster Broadcaster
	store       PositionStore
	logger      *logger.Logger

	mu           sync.RWMutex
	state        State
	lastPosition *PositionReading
	cancel       context.CancelFunc

	wg sync.WaitGroup
}

// NewManager creates a new simulator link manager. available reports
// whether a real provider is installed; when false every connect attempt
// fails with a message, mirroring a missing simulator integration.
func NewManager(provider Provider, available bool, interval time.Duration, broadcaster Broadcaster, store PositionStore, log *logger.Logger) *Manager {
	return &Manager{
		provider:    provider,
		available:   available,
		interval:    interval,
		broadcaster: broadcaster,
		store:       store,
		logger:      log.Named("sim-link"),
		state:       StateDisconnected,
	}
}

// State returns the current connection state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Connected reports whether the link is established
func (m *Manager) Connected() bool {
	return m.State() == StateConnected
}

// Connect establishes the simulator link. The transition is
// disconnected -> connecting -> connected; any failure drops back to
// disconnected with a message. Only one connect attempt can be in flight:
// the disconnected -> connecting step is a compare-and-set under the lock,
// so a concurrent request while another is mid-connect is refused.
func (m *Manager) Connect(ctx context.Context) ConnectResult {
	m.mu.Lock()

	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return m.result(true, "Already connected")
	case StateConnecting:
		m.mu.Unlock()
		return m.result(false, "Connect already in progress")
	}

	m.state = StateConnecting
	m.mu.Unlock()

	if !m.available {
		m.setState(StateDisconnected)
		res := m.result(false, "Simulator link library not installed")
		m.broadcastStatus()
		return res
	}

	if err := m.provider.Open(ctx); err != nil {
		m.logger.Error("Failed to open simulator link", logger.Error(err))
		m.setState(StateDisconnected)
		res := m.result(false, fmt.Sprintf("Failed to connect: %v", err))
		m.broadcastStatus()
		return res
	}

	// Test the link with a read before declaring it up
	reading, err := m.provider.Read(ctx)
	if err != nil {
		m.logger.Error("Simulator link test read failed", logger.Error(err))
		m.provider.Close()
		m.setState(StateDisconnected)
		res := m.result(false, fmt.Sprintf("Failed to connect: %v", err))
		m.broadcastStatus()
		return res
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	m.state = StateConnected
	m.lastPosition = reading
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.updateLoop(loopCtx)
	}()

	m.logger.Info("Simulator link connected")
	res := m.result(true, "Connected to simulator successfully")
	m.broadcastStatus()
	return res
}

// Disconnect tears down the simulator link. The state is forced to
// disconnected regardless of how the teardown goes, so the dashboard can
// always retry from a clean state.
func (m *Manager) Disconnect() ConnectResult {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	if err := m.provider.Close(); err != nil {
		m.logger.Error("Error closing simulator link", logger.Error(err))
	}

	m.mu.Lock()
	m.state = StateDisconnected
	m.lastPosition = nil
	m.mu.Unlock()

	m.logger.Info("Simulator link disconnected")
	res := m.result(true, "Disconnected successfully")
	m.broadcastStatus()
	return res
}

// Status returns the current link status including the last known position
func (m *Manager) Status() StatusReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return StatusReport{
		Connected:    m.state == StateConnected,
		Available:    m.available,
		LastPosition: m.lastPosition,
		Timestamp:    time.Now().UTC(),
	}
}

// CurrentPosition reads a fresh position sample. Fails when the link is
// down.
func (m *Manager) CurrentPosition(ctx context.Context) (*PositionReading, error) {
	if !m.Connected() {
		return nil, fmt.Errorf("no position data available")
	}

	reading, err := m.provider.Read(ctx)
	if err != nil {
		m.logger.Error("Failed to read aircraft position", logger.Error(err))
		return nil, fmt.Errorf("no position data available")
	}

	m.mu.Lock()
	m.lastPosition = reading
	m.mu.Unlock()

	return reading, nil
}

// LastPosition returns the most recent sample without touching the provider
func (m *Manager) LastPosition() *PositionReading {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastPosition
}

// updateLoop pushes position samples to all dashboard clients while the
// link is up
func (m *Manager) updateLoop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reading, err := m.provider.Read(ctx)
			if err != nil {
				m.logger.Error("Error in update loop", logger.Error(err))
				continue
			}

			m.mu.Lock()
			m.lastPosition = reading
			m.mu.Unlock()

			if m.broadcaster != nil {
				m.broadcaster.Broadcast(&websocket.Message{
					Type: websocket.MessageTypePositionUpdate,
					Data: reading.ToMap(),
				})
			}

			if m.store != nil {
				if err := m.store.Insert(reading); err != nil {
					m.logger.Warn("Failed to log position sample", logger.Error(err))
				}
			}
		}
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) result(success bool, message string) ConnectResult {
	return ConnectResult{
		Success:   success,
		Message:   message,
		Connected: m.Connected(),
		Timestamp: time.Now().UTC(),
	}
}

func (m *Manager) broadcastStatus() {
	if m.broadcaster == nil {
		return
	}
	status := m.Status()
	m.broadcaster.Broadcast(&websocket.Message{
		Type: websocket.MessageTypeSimStatus,
		Data: status.ToMap(),
	})
}
