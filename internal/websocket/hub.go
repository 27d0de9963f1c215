package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Tipos de evento enviados aos clientes de gráfico
const (
	EventConnection       = "connection"
	EventEstimatesUpdated = "estimates_updated"
	EventSamplesUpdated   = "samples_updated"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients by connection ID
	clients map[string]*Client

	// Inbound messages from the clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	// Logger
	logger *zerolog.Logger
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for now
		// In production, you should validate the origin
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Global(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient registers a new client
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client.ConnID] = client
	connections := len(h.clients)
	h.mutex.Unlock()

	// Track metrics
	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("conn_id", client.ConnID).
		Int("connections", connections).
		Msg("WebSocket client registered")

	// Send welcome message
	welcome := Message{
		Type:      EventConnection,
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	}
	client.SendMessage(welcome)
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client.ConnID]; ok {
		delete(h.clients, client.ConnID)
		close(client.Send)

		// Track metrics
		metrics.Get().DecrementWSConnection()

		h.logger.Info().
			Str("conn_id", client.ConnID).
			Int("remaining_connections", len(h.clients)).
			Msg("WebSocket client unregistered")
	}
}

// broadcastMessage broadcasts a message to all connected clients
func (h *Hub) broadcastMessage(message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for connID, client := range h.clients {
		select {
		case client.Send <- message:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("conn_id", connID).
				Msg("Failed to send message to client, closing connection")
			close(client.Send)
			delete(h.clients, connID)
		}
	}
}

// BroadcastEvent marshals an event and broadcasts it to all clients
func (h *Hub) BroadcastEvent(eventType string, data interface{}) {
	msg := Message{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", eventType).
			Msg("Failed to marshal broadcast event")
		return
	}

	h.broadcast <- payload
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
