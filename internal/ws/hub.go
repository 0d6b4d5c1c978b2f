package ws

import (
	"encoding/json"
	"sync"
)

// envelope is the wire form of every server-to-client event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub is the room table of the relay: personal rooms are keyed by user
// id, chat rooms by chat id. Rooms only say who is listening; chat
// membership lives in storage.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[string]struct{}),
	}
}

func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	if _, ok := h.clientRooms[c]; !ok {
		h.clientRooms[c] = make(map[string]struct{})
	}
	h.clientRooms[c][room] = struct{}{}
}

func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
	if set, ok := h.clientRooms[c]; ok {
		delete(set, room)
	}
}

// Remove drops the client from every room it joined. Called once on
// disconnect.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.clientRooms[c] {
		h.leaveLocked(room, c)
	}
	delete(h.clientRooms, c)
}

func (h *Hub) leaveLocked(room string, c *Client) {
	if set, ok := h.rooms[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends an event to every connection in a room. Sends are
// non-blocking; a client whose buffer is full misses the event.
func (h *Hub) Broadcast(room, event string, payload any) {
	b, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.trySend(b)
	}
}

// NotifyUser implements service.Notifier: a user's personal room is
// just the room keyed by their id.
func (h *Hub) NotifyUser(userID, event string, payload any) {
	h.Broadcast(userID, event, payload)
}
