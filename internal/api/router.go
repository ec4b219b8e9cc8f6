package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/config"
	"github.com/yegors/airportdb/internal/storage/sqlite"
	"github.com/yegors/airportdb/internal/websocket"
	"github.com/yegors/airportdb/pkg/logger"
)

// Router wires the HTTP API
type Router struct {
	handler *Handler
	metrics *airportdb.Metrics
	config  *config.Config
	logger  *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(db *airportdb.Database, indexStorage *sqlite.IndexStorage, wsServer *websocket.Server,
	metrics *airportdb.Metrics, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler: NewHandler(db, indexStorage, wsServer, log),
		metrics: metrics,
		config:  cfg,
		logger:  log.Named("api-router"),
	}
}

// Handler returns the API handlers, e.g. to back the WebSocket message handler
func (rt *Router) Handler() *Handler {
	return rt.handler
}

// Routes returns the router's http.Handler
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)

	h := rt.handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", h.GetHealth)

		r.Get("/airports/{ident}", h.GetAirport)
		r.Get("/airports/{ident}/runways/{rwy}", h.GetRunway)
		r.Get("/icao/{icao}", h.GetByICAO)
		r.Get("/iata/{iata}", h.GetByIATA)
		r.Get("/global/{icao}", h.GetGlobal)
		r.Get("/lookup", h.GetLookup)
		r.Get("/index", h.GetIndex)
		r.Get("/nearest", h.GetNearest)
		r.Get("/tatl", h.GetTATL)
		r.Get("/search", h.Search)

		r.Get("/tiles", h.GetTiles)
		r.Post("/tiles/load", h.LoadTiles)
		r.Post("/tiles/unload", h.UnloadTiles)

		r.Get("/load-limit", h.GetLoadLimit)
		r.Put("/load-limit", h.SetLoadLimit)
	})

	if h.wsServer != nil {
		r.Get("/ws", h.HandleWebSocket)
	}

	if rt.config == nil || rt.config.Metrics.Enabled {
		path := "/metrics"
		if rt.config != nil && rt.config.Metrics.Path != "" {
			path = rt.config.Metrics.Path
		}
		r.Handle(path, rt.metrics.Handler())
	}

	return r
}

// requestLogger logs each request through the component logger
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []logger.Field{
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("duration", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		}
		if ww.Status() >= http.StatusInternalServerError {
			rt.logger.Warn("HTTP request failed", fields...)
			return
		}
		rt.logger.Debug("HTTP request", fields...)
	})
}
