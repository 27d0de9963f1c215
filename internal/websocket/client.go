package websocket

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	// Connection identification
	ConnID string

	// Hub reference
	Hub *Hub

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time
}

// ServeWS handles websocket requests from the peer
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		conn:        conn,
		Send:        make(chan []byte, 256),
		ConnID:      uuid.New().String()[:8],
		Hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("conn_id", c.ConnID).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}

		metrics.Get().IncrementWSMessageIn()

		// Handle incoming messages from client
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("conn_id", c.ConnID).
			Msg("Failed to unmarshal client message")
		return
	}

	switch msg.Type {
	case "ping":
		// Respond to ping with pong
		pong := Message{
			Type:      "pong",
			Timestamp: time.Now(),
		}
		c.SendMessage(pong)

	default:
		c.Hub.logger.Debug().
			Str("conn_id", c.ConnID).
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
	}
}

// SendMessage sends a message to this specific client
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("conn_id", c.ConnID).
			Msg("Failed to marshal message for client")
		return
	}

	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn().
			Str("conn_id", c.ConnID).
			Msg("Client send channel is full, closing connection")
		close(c.Send)
	}
}
