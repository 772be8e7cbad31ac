package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/flycharts/flycharts/pkg/logger"
)

type staticGate struct {
	connected bool
}

func (g *staticGate) Connected() bool { return g.connected }

// countingServer records requests per path
type countingServer struct {
	mu     sync.Mutex
	counts map[string]int
	server *httptest.Server
}

func newCountingServer() *countingServer {
	cs := &countingServer{counts: make(map[string]int)}
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.counts[r.URL.Path]++
		cs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/aircraft/position":
			w.Write([]byte(`{"latitude": 47.449, "longitude": -122.309, "altitude": 3500}`))
		case "/aircraft/type":
			w.Write([]byte(`{"type": "Cessna 172"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}
	}))
	return cs
}

func (cs *countingServer) count(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.counts[path]
}

func TestTickFetchesBothEndpoints(t *testing.T) {
	cs := newCountingServer()
	defer cs.server.Close()

	p := NewPoller(cs.server.URL, time.Second, time.Second, &staticGate{connected: false}, logger.NewNop())
	p.Tick(context.Background())

	if got := cs.count("/aircraft/position"); got != 1 {
		t.Errorf("position requests = %d, want 1", got)
	}
	if got := cs.count("/aircraft/type"); got != 1 {
		t.Errorf("type requests = %d, want 1", got)
	}
}

func TestTickSkippedWhileLinkConnected(t *testing.T) {
	cs := newCountingServer()
	defer cs.server.Close()

	p := NewPoller(cs.server.URL, time.Second, time.Second, &staticGate{connected: true}, logger.NewNop())
	p.Tick(context.Background())
	p.Tick(context.Background())

	if got := cs.count("/aircraft/position"); got != 0 {
		t.Errorf("position requests while connected = %d, want 0", got)
	}
	if got := cs.count("/aircraft/type"); got != 0 {
		t.Errorf("type requests while connected = %d, want 0", got)
	}
}

func TestTickSurvivesErrorPayloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "No position data available"}`))
	}))
	defer server.Close()

	p := NewPoller(server.URL, time.Second, time.Second, &staticGate{}, logger.NewNop())
	// Error payloads are logged and swallowed; the tick must not panic
	p.Tick(context.Background())
}

func TestTickSurvivesServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewPoller(server.URL, time.Second, time.Second, &staticGate{}, logger.NewNop())
	p.Tick(context.Background())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cs := newCountingServer()
	defer cs.server.Close()

	p := NewPoller(cs.server.URL, 10*time.Millisecond, time.Second, &staticGate{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// Let a few ticks land, then cancel
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && cs.count("/aircraft/position") < 2 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}

	if cs.count("/aircraft/position") < 2 {
		t.Errorf("position requests = %d, want at least 2", cs.count("/aircraft/position"))
	}
}
