package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flycharts/flycharts/internal/config"
	"github.com/flycharts/flycharts/internal/websocket"
	"github.com/flycharts/flycharts/pkg/logger"
)

// Router assembles the HTTP routes for the server
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	config   *config.Config
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(handler *Handler, wsServer *websocket.Server, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:  handler,
		wsServer: wsServer,
		config:   cfg,
		logger:   log.Named("api-router"),
	}
}

// Routes returns the assembled route tree
func (r *Router) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(corsMiddleware(r.config.Server.CORSAllowedOrigins))

	mux.Get("/health", r.handler.HealthCheck)

	// Legacy endpoints (backward compatibility)
	mux.Get("/aircraft/position", r.handler.GetAircraftPosition)
	mux.Get("/aircraft/type", r.handler.GetAircraftType)

	mux.Route("/api", func(api chi.Router) {
		api.Route("/simconnect", func(sc chi.Router) {
			sc.Post("/connect", r.handler.ConnectSimLink)
			sc.Post("/disconnect", r.handler.DisconnectSimLink)
			sc.Get("/status", r.handler.GetSimLinkStatus)
		})
		api.Route("/aircraft", func(ac chi.Router) {
			ac.Get("/position", r.handler.GetAircraftPositionAPI)
			ac.Get("/history", r.handler.GetAircraftHistory)
		})
		api.Get("/airports", r.handler.GetAirports)
		api.Get("/layers", r.handler.GetLayers)
	})

	// WebSocket endpoint for push events
	mux.Get("/ws", r.wsServer.HandleConnection)

	// Suppress favicon requests
	mux.Get("/favicon.ico", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Static files for everything else
	staticHandler := NewStaticFileHandler(r.config.Server.StaticFilesDir, r.logger)
	mux.NotFound(staticHandler.ServeHTTP)

	return mux
}

// corsMiddleware applies the configured CORS policy
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool)
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
