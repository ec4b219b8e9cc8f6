package api

import (
	"fmt"

	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/websocket"
	"github.com/yegors/airportdb/pkg/logger"
)

// WebSocketHandler answers client messages on the WebSocket hub
type WebSocketHandler struct {
	handler *Handler
	logger  *logger.Logger
}

var _ websocket.MessageHandler = (*WebSocketHandler)(nil)

// NewWebSocketHandler creates a message handler backed by h
func NewWebSocketHandler(h *Handler, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		handler: h,
		logger:  log.Named("ws-handler"),
	}
}

// HandleMessage processes one client message
func (wh *WebSocketHandler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypePositionUpdate:
		return wh.handlePositionUpdate(client, data)
	default:
		return fmt.Errorf("unknown message type %q", messageType)
	}
}

// handlePositionUpdate moves the resident tile window to the reported
// position and replies with the airports in range
func (wh *WebSocketHandler) handlePositionUpdate(client *websocket.Client, data map[string]any) error {
	lat, okLat := data["lat"].(float64)
	lon, okLon := data["lon"].(float64)
	if !okLat || !okLon || !airportdb.IsValidLat(lat) || !airportdb.IsValidLon(lon) {
		return fmt.Errorf("position_update requires numeric lat and lon")
	}

	tx := wh.handler.db.Lock()
	tx.LoadNearestTiles(lat, lon)
	tx.UnloadDistantTiles(lat, lon)
	result := wh.handler.nearest(tx, lat, lon)
	tx.Unlock()

	wh.logger.Debug("Position update",
		logger.Float64("lat", lat),
		logger.Float64("lon", lon),
		logger.Any("count", result["count"]))

	if !client.SendMessage(&websocket.Message{
		Type: websocket.MessageTypeNearestAirports,
		Data: result,
	}) {
		wh.logger.Warn("Dropped nearest_airports reply, client queue full or closed")
	}
	return nil
}
