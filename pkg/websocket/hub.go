package websocket

import "sync"

// Hub tracks the rooms that currently have connected clients.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
	}
}

func (h *Hub) Join(roomID string, c *Client) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, exists := h.rooms[roomID]
	if !exists {
		room = NewRoom(roomID)
		h.rooms[roomID] = room
	}
	room.AddClient(c)
	return room
}

// Leave removes c from its room and drops the room once it is empty.
func (h *Hub) Leave(c *Client) {
	if c.Room == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.Room.RemoveClient(c) == 0 {
		delete(h.rooms, c.Room.ID)
	}
}

// Broadcast sends message to everyone in roomID and returns the number of
// clients it reached.
func (h *Hub) Broadcast(roomID string, message []byte) int {
	h.mu.Lock()
	room, exists := h.rooms[roomID]
	h.mu.Unlock()
	if !exists {
		return 0
	}
	return room.Broadcast(message)
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
