package websocket

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// newTestClient creates a client with a buffered channel, bypassing the
// websocket upgrade
func newTestClient(hub *Hub, connID string) *Client {
	return &Client{
		ConnID:      connID,
		Send:        make(chan []byte, 10),
		Hub:         hub,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
}

// drainWelcomeMessage drains the welcome message sent during client registration
func drainWelcomeMessage(client *Client) {
	select {
	case <-client.Send:
		// Welcome message drained
	case <-time.After(100 * time.Millisecond):
		// No welcome message (shouldn't happen)
	}
}

func TestRegisterSendsWelcomeMessage(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "conn1")

	hub.registerClient(client)

	select {
	case msg := <-client.Send:
		var welcome Message
		if err := json.Unmarshal(msg, &welcome); err != nil {
			t.Fatalf("Failed to unmarshal welcome message: %v", err)
		}
		if welcome.Type != EventConnection {
			t.Errorf("Expected type %q, got %q", EventConnection, welcome.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No welcome message received")
	}

	if hub.ClientCount() != 1 {
		t.Errorf("Client count should be 1, got %d", hub.ClientCount())
	}
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "conn1")

	hub.registerClient(client)
	drainWelcomeMessage(client)

	hub.unregisterClient(client)
	if hub.ClientCount() != 0 {
		t.Errorf("Client count should be 0 after unregister, got %d", hub.ClientCount())
	}

	// Unregistering twice must not panic (channel already closed)
	hub.unregisterClient(client)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = newTestClient(hub, fmt.Sprintf("conn%d", i))
		hub.register <- clients[i]
	}

	// Wait for all registrations to land before broadcasting
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	for _, c := range clients {
		drainWelcomeMessage(c)
	}

	hub.BroadcastEvent(EventSamplesUpdated, map[string]interface{}{
		"version": 3,
		"count":   2000,
	})

	for _, c := range clients {
		select {
		case msg := <-c.Send:
			var received Message
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("Failed to unmarshal broadcast: %v", err)
			}
			if received.Type != EventSamplesUpdated {
				t.Errorf("Expected type %q, got %q", EventSamplesUpdated, received.Type)
			}
			data, ok := received.Data.(map[string]interface{})
			if !ok {
				t.Fatalf("Unexpected data payload: %T", received.Data)
			}
			if data["version"] != float64(3) {
				t.Errorf("Expected version 3, got %v", data["version"])
			}
		case <-time.After(time.Second):
			t.Fatalf("Client %s did not receive broadcast", c.ConnID)
		}
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := &Client{
		ConnID: "slow",
		Send:   make(chan []byte), // unbuffered, nobody reading
		Hub:    hub,
	}

	hub.mutex.Lock()
	hub.clients[slow.ConnID] = slow
	hub.mutex.Unlock()

	hub.broadcastMessage([]byte(`{"type":"estimates_updated"}`))

	if hub.ClientCount() != 0 {
		t.Errorf("Slow client should have been dropped, count is %d", hub.ClientCount())
	}
}

// **Feature: estimate-histogram-api, Property 7: Broadcast fan-out**
// **Validates: Requirements 6.2, 6.3**
// Every registered client receives every broadcast event exactly once,
// regardless of how many clients are connected
func TestBroadcastFanOutProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("every client receives the broadcast", prop.ForAll(
		func(clientCount int, version int) bool {
			hub := NewHub()

			clients := make([]*Client, clientCount)
			for i := range clients {
				clients[i] = newTestClient(hub, fmt.Sprintf("conn%d", i))
				hub.registerClient(clients[i])
				drainWelcomeMessage(clients[i])
			}

			msg := Message{
				Type:      EventEstimatesUpdated,
				Data:      map[string]interface{}{"version": version},
				Timestamp: time.Now(),
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				return false
			}
			hub.broadcastMessage(payload)

			for _, c := range clients {
				select {
				case raw := <-c.Send:
					var received Message
					if err := json.Unmarshal(raw, &received); err != nil {
						return false
					}
					if received.Type != EventEstimatesUpdated {
						return false
					}
				case <-time.After(100 * time.Millisecond):
					return false
				}

				// No duplicate delivery
				select {
				case <-c.Send:
					return false
				default:
				}
			}
			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}
