package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/pkg/logger"
)

// Message types exchanged with clients
const (
	MessageTypeTilesLoaded     = string(airportdb.EventTilesLoaded)
	MessageTypeTilesUnloaded   = string(airportdb.EventTilesUnloaded)
	MessageTypeCacheRebuilt    = string(airportdb.EventCacheRebuilt)
	MessageTypeCacheLoaded     = string(airportdb.EventCacheLoaded)
	MessageTypeNearestAirports = "nearest_airports"
	MessageTypePositionUpdate  = "position_update" // Client reports its position
	MessageTypeSubscribe       = "subscribe"       // Client selects lifecycle events
	MessageTypeError           = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// MessageHandler defines the interface for handling incoming WebSocket messages
type MessageHandler interface {
	HandleMessage(client *Client, messageType string, data map[string]any) error
}

// ClientFilters selects which broadcast lifecycle events a client receives
type ClientFilters struct {
	Events map[string]bool `json:"events"` // event type -> enabled
}

// Client represents a WebSocket client
type Client struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	mu        sync.Mutex
	closed    bool
	closeChan chan struct{}
	filters   *ClientFilters // Active filters for this client

	sendClosed bool // send is closed by the hub only
}

// Server is the WebSocket hub. It implements airportdb.EventSink.
type Server struct {
	clients        map[*Client]bool
	register       chan *Client
	unregister     chan *Client
	broadcast      chan *Message
	done           chan struct{}
	upgrader       websocket.Upgrader
	logger         *logger.Logger
	mu             sync.RWMutex
	messageHandler MessageHandler // Handler for incoming messages
}

var _ airportdb.EventSink = (*Server)(nil)

// NewServer creates a new WebSocket server
func NewServer(log *logger.Logger) *Server {
	return &Server{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		// Buffered so database events queued before Run starts are kept
		broadcast: make(chan *Message, 64),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		logger: log.Named("web-socket"),
	}
}

// SetMessageHandler sets the message handler for incoming WebSocket messages
func (s *Server) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}

// ClientCount returns the number of registered clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Run dispatches registrations and broadcasts until ctx is done
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting WebSocket server")

	for {
		select {
		case <-ctx.Done():
			close(s.done)
			s.closeAll()
			s.logger.Info("WebSocket server stopped")
			return nil

		case client := <-s.register:
			s.mu.Lock()
			s.clients[client] = true
			clientCount := len(s.clients)
			s.mu.Unlock()
			s.logger.Debug("Client registered", logger.Int("client_count", clientCount))

		case client := <-s.unregister:
			s.mu.Lock()
			s.removeLocked(client)
			clientCount := len(s.clients)
			s.mu.Unlock()
			s.logger.Debug("Client unregistered", logger.Int("client_count", clientCount))

		case message := <-s.broadcast:
			s.dispatch(message)
		}
	}
}

func (s *Server) dispatch(message *Message) {
	s.mu.RLock()
	clientsToRemove := make([]*Client, 0)
	for client := range s.clients {
		client.mu.Lock()
		closed := client.closed
		client.mu.Unlock()
		if closed {
			clientsToRemove = append(clientsToRemove, client)
			continue
		}

		if !client.wants(message.Type) {
			continue
		}

		select {
		case client.send <- message:
		default:
			// Channel is full, mark for removal
			clientsToRemove = append(clientsToRemove, client)
		}
	}
	s.mu.RUnlock()

	if len(clientsToRemove) > 0 {
		s.mu.Lock()
		for _, client := range clientsToRemove {
			s.removeLocked(client)
		}
		s.mu.Unlock()
	}
}

// removeLocked drops client from the hub; s.mu must be held
func (s *Server) removeLocked(client *Client) {
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	client.mu.Lock()
	if !client.sendClosed {
		client.sendClosed = true
		close(client.send)
	}
	client.closed = true
	client.mu.Unlock()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		s.removeLocked(client)
	}
}

// HandleConnection upgrades the request and registers the client
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling new WebSocket connection request",
		logger.String("remote_addr", r.RemoteAddr),
		logger.String("user_agent", r.UserAgent()))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection",
			logger.Error(err),
			logger.String("remote_addr", r.RemoteAddr))
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan *Message, 256),
		server:    s,
		closeChan: make(chan struct{}),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

// Broadcast queues a message for all connected clients. It never blocks;
// messages are dropped when the hub falls behind.
func (s *Server) Broadcast(message *Message) bool {
	select {
	case s.broadcast <- message:
		return true
	default:
		s.logger.Warn("Broadcast queue full, dropping message",
			logger.String("message_type", message.Type))
		return false
	}
}

// Publish forwards a database lifecycle event to all clients
func (s *Server) Publish(ev airportdb.Event) {
	s.logger.Debug("Publishing database event",
		logger.String("type", string(ev.Type)),
		logger.Int("tiles", len(ev.Tiles)))

	data := map[string]any{
		"airports": ev.Airports,
		"time":     ev.Time,
	}
	if len(ev.Tiles) > 0 {
		data["tiles"] = ev.Tiles
	}
	s.Broadcast(&Message{Type: string(ev.Type), Data: data})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.server.logger.Error("WebSocket read error", logger.Error(err))
			}
			return
		}

		var message Message
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			c.server.logger.Warn("Failed to parse WebSocket message", logger.Error(err))
			continue
		}

		c.server.logger.Debug("Received WebSocket message",
			logger.String("type", message.Type),
			logger.String("client", c.conn.RemoteAddr().String()))

		if message.Type == MessageTypeSubscribe {
			c.UpdateFilters(parseFilters(message.Data))
			continue
		}

		if c.server.messageHandler != nil {
			if err := c.server.messageHandler.HandleMessage(c, message.Type, message.Data); err != nil {
				c.server.logger.Warn("Failed to handle WebSocket message",
					logger.Error(err),
					logger.String("type", message.Type))
				c.SendMessage(&Message{
					Type: MessageTypeError,
					Data: map[string]any{"message": err.Error(), "request": message.Type},
				})
			}
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.server.logger.Error("Failed to marshal message", logger.Error(err))
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.closeChan:
			return
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.closeChan)
	c.conn.Close()
}

// SendMessage sends a message to this specific client
func (c *Client) SendMessage(message *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.sendClosed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		// Channel is full, drop message
		return false
	}
}

// UpdateFilters updates the client's active filters
func (c *Client) UpdateFilters(filters *ClientFilters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = filters
}

// wants reports whether a broadcast of messageType should reach c.
// Clients without filters receive everything.
func (c *Client) wants(messageType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters == nil || c.filters.Events == nil {
		return true
	}
	return c.filters.Events[messageType]
}

func parseFilters(data map[string]any) *ClientFilters {
	filters := &ClientFilters{Events: make(map[string]bool)}
	events, _ := data["events"].([]any)
	for _, e := range events {
		if name, ok := e.(string); ok {
			filters.Events[name] = true
		}
	}
	return filters
}
