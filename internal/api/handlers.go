package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/internal/storage/sqlite"
	"github.com/yegors/airportdb/internal/websocket"
	"github.com/yegors/airportdb/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	db           *airportdb.Database
	indexStorage *sqlite.IndexStorage // nil when the mirror is disabled
	wsServer     *websocket.Server
	logger       *logger.Logger
	now          func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(db *airportdb.Database, indexStorage *sqlite.IndexStorage, wsServer *websocket.Server, log *logger.Logger) *Handler {
	return &Handler{
		db:           db,
		indexStorage: indexStorage,
		wsServer:     wsServer,
		logger:       log.Named("api-handler"),
		now:          time.Now,
	}
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	tx := h.db.Lock()
	response := map[string]any{
		"status":         "ok",
		"index_entries":  tx.IndexSize(),
		"airports":       tx.NumAirports(),
		"tiles":          len(tx.Tiles()),
		"airac_cycle":    tx.AIRACCycle(),
		"load_limit_nm":  newLoadLimitResponse(tx.LoadLimit()).NM,
		"search_enabled": h.indexStorage != nil,
	}
	tx.Unlock()

	if h.wsServer != nil {
		response["ws_clients"] = h.wsServer.ClientCount()
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetAirport returns a loaded airport by ident
func (h *Handler) GetAirport(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")
	if ident == "" {
		http.Error(w, "Missing airport ident", http.StatusBadRequest)
		return
	}

	tx := h.db.Lock()
	defer tx.Unlock()

	a, ok := tx.LookupByIdent(ident)
	if !ok {
		http.Error(w, "Airport not found", http.StatusNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, newAirportResponse(a, h.now()))
}

// GetRunway returns a single runway of an airport. The runway may be named
// by either end or by its joint ID.
func (h *Handler) GetRunway(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")
	rwyID := strings.ToUpper(chi.URLParam(r, "rwy"))

	tx := h.db.Lock()
	defer tx.Unlock()

	a, ok := tx.LookupByIdent(ident)
	if !ok {
		http.Error(w, "Airport not found", http.StatusNotFound)
		return
	}

	rwy, _, ok := tx.FindRunway(a, rwyID)
	if !ok {
		rwy, ok = a.FindRunwayByJointID(rwyID)
	}
	if !ok {
		http.Error(w, "Runway not found", http.StatusNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, newRunwayResponse(a, rwy, h.now()))
}

// GetByICAO returns every airport carrying an ICAO code
func (h *Handler) GetByICAO(w http.ResponseWriter, r *http.Request) {
	h.writeCodeMatches(w, chi.URLParam(r, "icao"), (*airportdb.Tx).LookupByICAO)
}

// GetByIATA returns every airport carrying an IATA code
func (h *Handler) GetByIATA(w http.ResponseWriter, r *http.Request) {
	h.writeCodeMatches(w, chi.URLParam(r, "iata"), (*airportdb.Tx).LookupByIATA)
}

func (h *Handler) writeCodeMatches(w http.ResponseWriter, code string,
	lookup func(*airportdb.Tx, string, func(*airportdb.Airport)) int) {
	if code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	tx := h.db.Lock()
	defer tx.Unlock()

	now := h.now()
	airports := make([]AirportResponse, 0)
	lookup(tx, strings.ToUpper(code), func(a *airportdb.Airport) {
		airports = append(airports, newAirportResponse(a, now))
	})
	if len(airports) == 0 {
		http.Error(w, "Airport not found", http.StatusNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count":    len(airports),
		"airports": airports,
	})
}

// GetGlobal returns the airport a global ICAO lookup resolves to
func (h *Handler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")

	tx := h.db.Lock()
	defer tx.Unlock()

	a, ok := tx.LookupGlobal(strings.ToUpper(icao))
	if !ok {
		http.Error(w, "Airport not found", http.StatusNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, newAirportResponse(a, h.now()))
}

// GetLookup looks an ident up within the tile containing lat/lon
func (h *Handler) GetLookup(w http.ResponseWriter, r *http.Request) {
	ident := r.URL.Query().Get("ident")
	if ident == "" {
		http.Error(w, "Missing ident parameter", http.StatusBadRequest)
		return
	}
	lat, lon, err := parseLatLon(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := h.db.Lock()
	defer tx.Unlock()

	a, ok := tx.Lookup(ident, lat, lon)
	if !ok {
		http.Error(w, "Airport not found", http.StatusNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, newAirportResponse(a, h.now()))
}

// GetIndex walks the global index in ident order
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaginationParams(r)

	entries := make([]AirportSummary, 0, limit)
	tx := h.db.Lock()
	i := 0
	total := tx.WalkIndex(func(e airportdb.IndexEntry) {
		if i >= offset && len(entries) < limit {
			entries = append(entries, newAirportSummary(e))
		}
		i++
	})
	tx.Unlock()

	WriteJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"offset":   offset,
		"count":    len(entries),
		"airports": entries,
	})
}

// GetNearest returns the airports within the load limit of lat/lon,
// closest first
func (h *Handler) GetNearest(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLon(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := h.db.Lock()
	defer tx.Unlock()
	WriteJSON(w, http.StatusOK, h.nearest(tx, lat, lon))
}

// nearest runs FindNearest and shapes the result; tx must be held
func (h *Handler) nearest(tx *airportdb.Tx, lat, lon float64) map[string]any {
	now := h.now()
	pos := geo.ToECEF(lat, lon, 0)

	found := tx.FindNearest(lat, lon)
	dist := make(map[string]float64, len(found))
	for _, a := range found {
		ref := a.RefPt
		dist[a.Ident] = geo.Dist(pos, geo.ToECEFFeet(ref.Lat, ref.Lon, ref.Elev)) / geo.NMToMeters
	}
	sort.SliceStable(found, func(i, j int) bool {
		return dist[found[i].Ident] < dist[found[j].Ident]
	})

	airports := make([]AirportResponse, 0, len(found))
	for _, a := range found {
		resp := newAirportResponse(a, now)
		resp.DistanceNM = finite(round1(dist[a.Ident]))
		airports = append(airports, resp)
	}

	return map[string]any{
		"lat":           lat,
		"lon":           lon,
		"load_limit_nm": newLoadLimitResponse(tx.LoadLimit()).NM,
		"count":         len(airports),
		"airports":      airports,
	}
}

// GetTATL returns an airport in the tile of lat/lon that publishes a
// transition altitude or level for the country of icao
func (h *Handler) GetTATL(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLon(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	icao := strings.ToUpper(r.URL.Query().Get("icao"))

	tx := h.db.Lock()
	defer tx.Unlock()

	a, ok := tx.MatchingAirportInTileWithTATL(lat, lon, icao)
	if !ok {
		http.Error(w, "No matching airport", http.StatusNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ident": a.Ident,
		"ta_ft": a.TA,
		"tl_ft": a.TL,
	})
}

// GetTiles lists the resident tiles
func (h *Handler) GetTiles(w http.ResponseWriter, r *http.Request) {
	tx := h.db.Lock()
	tiles := make([]TileResponse, 0)
	for _, k := range tx.Tiles() {
		tiles = append(tiles, TileResponse{
			Key:      k.String(),
			Lat:      k.Lat,
			Lon:      k.Lon,
			Airports: tx.TileAirports(k),
		})
	}
	tx.Unlock()

	WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(tiles),
		"tiles": tiles,
	})
}

// LoadTiles loads the 3x3 tile block around a position
func (h *Handler) LoadTiles(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePosition(w, r, false)
	if !ok {
		return
	}

	tx := h.db.Lock()
	tx.LoadNearestTiles(*req.Lat, *req.Lon)
	n := len(tx.Tiles())
	tx.Unlock()

	WriteJSON(w, http.StatusOK, map[string]any{"tiles": n})
}

// UnloadTiles drops tiles far from a position, or all tiles
func (h *Handler) UnloadTiles(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePosition(w, r, true)
	if !ok {
		return
	}

	tx := h.db.Lock()
	if req.All {
		tx.UnloadAll()
	} else {
		tx.UnloadDistantTiles(*req.Lat, *req.Lon)
	}
	n := len(tx.Tiles())
	tx.Unlock()

	WriteJSON(w, http.StatusOK, map[string]any{"tiles": n})
}

func (h *Handler) decodePosition(w http.ResponseWriter, r *http.Request, allowAll bool) (PositionRequest, bool) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if allowAll && req.All {
		return req, true
	}
	if req.Lat == nil || req.Lon == nil ||
		!airportdb.IsValidLat(*req.Lat) || !airportdb.IsValidLon(*req.Lon) {
		http.Error(w, "Invalid or missing lat/lon", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// GetLoadLimit returns the FindNearest radius
func (h *Handler) GetLoadLimit(w http.ResponseWriter, r *http.Request) {
	tx := h.db.Lock()
	limit := tx.LoadLimit()
	tx.Unlock()

	WriteJSON(w, http.StatusOK, newLoadLimitResponse(limit))
}

// SetLoadLimit changes the FindNearest radius
func (h *Handler) SetLoadLimit(w http.ResponseWriter, r *http.Request) {
	var req LoadLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var meters float64
	switch {
	case req.Meters != nil:
		meters = *req.Meters
	case req.NM != nil:
		meters = *req.NM * geo.NMToMeters
	default:
		http.Error(w, "Missing meters or nm", http.StatusBadRequest)
		return
	}
	if !(meters > 0) {
		http.Error(w, "Load limit must be positive", http.StatusBadRequest)
		return
	}

	tx := h.db.Lock()
	tx.SetLoadLimit(meters)
	tx.Unlock()

	h.logger.Info("Load limit changed", logger.Float64("meters", meters))
	WriteJSON(w, http.StatusOK, newLoadLimitResponse(meters))
}

// Search queries the SQLite mirror of the global index
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.indexStorage == nil {
		http.Error(w, "Search is disabled", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	limit, offset := parsePaginationParams(r)
	query := sqlite.SearchQuery{
		Region:      q.Get("region"),
		IdentPrefix: q.Get("ident"),
		Limit:       limit,
		Offset:      offset,
	}
	if s := q.Get("min_runway_ft"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "Invalid min_runway_ft parameter", http.StatusBadRequest)
			return
		}
		query.MinRunwayFt = n
	}

	entries, err := h.indexStorage.Search(query)
	if err != nil {
		h.logger.Error("Failed to search index mirror", logger.Error(err))
		http.Error(w, "Failed to search airports", http.StatusInternalServerError)
		return
	}

	airports := make([]AirportSummary, 0, len(entries))
	for _, e := range entries {
		airports = append(airports, newAirportSummary(e))
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"count":    len(airports),
		"airports": airports,
	})
}

// HandleWebSocket handles WebSocket connections
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleConnection(w, r)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Helper functions
func parsePaginationParams(r *http.Request) (int, int) {
	limit := 100 // Default limit
	offset := 0  // Default offset

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, 1000)
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}

func parseLatLon(r *http.Request) (float64, float64, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || !airportdb.IsValidLat(lat) {
		return 0, 0, errInvalidParam("lat")
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || !airportdb.IsValidLon(lon) {
		return 0, 0, errInvalidParam("lon")
	}
	return lat, lon, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid or missing " + string(e) + " parameter"
}
