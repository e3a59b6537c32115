// Package realtime is the live notification channel. Every connected client
// can join one or more rooms keyed by a user id; emitting to a user id pushes
// a frame to every client in that room. Nothing is queued: a user with no
// live connection simply misses the push.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/anonto42/nano-social/backend/pkg/logger"
)

// Frame is the envelope written to clients
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Emitter pushes an event to the live channel of one user
type Emitter interface {
	Emit(ctx context.Context, userID, event string, payload any) error
}

// Hub is the registry of live connections of this process
type Hub struct {
	clients map[string]*Client            // clientID -> client
	rooms   map[string]map[string]*Client // userID -> clientID -> client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	l := logger.L()
	l.Debug().Str("client_id", client.ID).Msg("client registered")
}

// Unregister removes the client from every room and closes its send queue.
// Calling it more than once is safe.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		for userID, members := range h.rooms {
			delete(members, client.ID)
			if len(members) == 0 {
				delete(h.rooms, userID)
			}
		}
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.mu.Unlock()
	l := logger.L()
	l.Debug().Str("client_id", client.ID).Msg("client unregistered")
}

// Join adds a registered client to the room of userID
func (h *Hub) Join(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if _, ok := h.rooms[userID]; !ok {
		h.rooms[userID] = make(map[string]*Client)
	}
	h.rooms[userID][client.ID] = client
	l := logger.L()
	l.Debug().Str("client_id", client.ID).Str(logger.FieldUserID, userID).Msg("client joined room")
}

func (h *Hub) Leave(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[userID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// RoomSize is the number of clients currently listening for userID
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver queues data on every client in the room of userID and returns how
// many clients accepted it. Clients whose queue is full are disconnected.
func (h *Hub) Deliver(userID string, data []byte) int {
	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for _, client := range h.rooms[userID] {
		select {
		case client.Send <- data:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		l := logger.L()
		l.Warn().Str("client_id", client.ID).Msg("send queue full, dropping client")
		h.Unregister(client)
	}
	return delivered
}

// sendDirect queues data on one client if it is still registered
func (h *Hub) sendDirect(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// Emit delivers to the clients connected to this process only
func (h *Hub) Emit(_ context.Context, userID, event string, payload any) error {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	h.Deliver(userID, data)
	return nil
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
