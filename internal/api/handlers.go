package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"github.com/flycharts/flycharts/internal/airports"
	"github.com/flycharts/flycharts/internal/config"
	"github.com/flycharts/flycharts/internal/layers"
	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/internal/storage/sqlite"
	"github.com/flycharts/flycharts/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	simManager *sim.Manager
	airports   *airports.Index
	positions  *sqlite.PositionStorage
	config     *config.Config
	logger     *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(simManager *sim.Manager, airportIndex *airports.Index, positions *sqlite.PositionStorage, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		simManager: simManager,
		airports:   airportIndex,
		positions:  positions,
		config:     cfg,
		logger:     log.Named("api-handler"),
	}
}

// HealthCheck reports backend and simulator link status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.simManager.Status()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":               "Backend running",
		"simconnect_available": status.Available,
		"simconnect_connected": status.Connected,
		"timestamp":            status.Timestamp.Format(time.RFC3339),
	})
}

// GetAircraftPosition is the legacy position endpoint: a bare position
// payload on success, an error payload with a 500 otherwise
func (h *Handler) GetAircraftPosition(w http.ResponseWriter, r *http.Request) {
	reading, err := h.simManager.CurrentPosition(r.Context())
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "No position data available",
		})
		return
	}
	respondJSON(w, http.StatusOK, reading)
}

// GetAircraftType is the legacy aircraft type endpoint
func (h *Handler) GetAircraftType(w http.ResponseWriter, r *http.Request) {
	reading, err := h.simManager.CurrentPosition(r.Context())
	if err != nil || reading.AircraftTitle == "" {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "No aircraft data available",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"type": reading.AircraftTitle,
	})
}

// GetAircraftPositionAPI returns the current position in a success envelope
func (h *Handler) GetAircraftPositionAPI(w http.ResponseWriter, r *http.Request) {
	reading, err := h.simManager.CurrentPosition(r.Context())
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "No position data available",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    reading,
	})
}

// GetAircraftHistory returns recently logged positions
func (h *Handler) GetAircraftHistory(w http.ResponseWriter, r *http.Request) {
	if h.positions == nil {
		respondError(w, http.StatusServiceUnavailable, "Position log not available")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	readings, err := h.positions.Recent(limit)
	if err != nil {
		h.logger.Error("Failed to query position history", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to query position history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":     len(readings),
		"positions": readings,
	})
}

// ConnectSimLink establishes the simulator link
func (h *Handler) ConnectSimLink(w http.ResponseWriter, r *http.Request) {
	result := h.simManager.Connect(r.Context())
	h.logger.Info("Simulator link connect requested",
		logger.Bool("success", result.Success),
		logger.String("message", result.Message))
	respondJSON(w, http.StatusOK, result)
}

// DisconnectSimLink tears down the simulator link (best effort)
func (h *Handler) DisconnectSimLink(w http.ResponseWriter, r *http.Request) {
	result := h.simManager.Disconnect()
	h.logger.Info("Simulator link disconnect requested",
		logger.Bool("success", result.Success))
	respondJSON(w, http.StatusOK, result)
}

// GetSimLinkStatus returns the current link status
func (h *Handler) GetSimLinkStatus(w http.ResponseWriter, r *http.Request) {
	status := h.simManager.Status()
	respondJSON(w, http.StatusOK, status)
}

// GetAirports returns airports filtered by zoom band and optional bounding
// box (lamin/lomin/lamax/lomax)
func (h *Handler) GetAirports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	zoom := airports.MidZoomLimit // Default: show everything
	if v := q.Get("zoom"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid zoom parameter")
			return
		}
		zoom = parsed
	}

	var result []airports.Airport
	if q.Get("lamin") != "" || q.Get("lomin") != "" || q.Get("lamax") != "" || q.Get("lomax") != "" {
		lamin, err1 := strconv.ParseFloat(q.Get("lamin"), 64)
		lomin, err2 := strconv.ParseFloat(q.Get("lomin"), 64)
		lamax, err3 := strconv.ParseFloat(q.Get("lamax"), 64)
		lomax, err4 := strconv.ParseFloat(q.Get("lomax"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			respondError(w, http.StatusBadRequest, "Invalid bounding box parameters")
			return
		}
		if lamin >= lamax || lomin >= lomax {
			respondError(w, http.StatusBadRequest, "Bounding box min must be less than max")
			return
		}
		bound := orb.Bound{Min: orb.Point{lomin, lamin}, Max: orb.Point{lomax, lamax}}
		result = h.airports.Visible(zoom, bound)
	} else {
		result = h.airports.VisibleAtZoom(zoom)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(result),
		"airports": result,
	})
}

// GetLayers returns the selectable base layer table
func (h *Handler) GetLayers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"layers": layers.Table(),
	})
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message})
}
