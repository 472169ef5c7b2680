package websocket

import (
	"log"
	"sync"
)

// Room is the set of clients watching one debate.
type Room struct {
	ID      string
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[*Client]struct{}),
	}
}

// Broadcast queues message for every client. A client whose buffer is full
// misses the message rather than stalling the room.
func (r *Room) Broadcast(message []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	sent := 0
	for client := range r.clients {
		select {
		case client.Send <- message:
			sent++
		default:
			log.Printf("Dropping message for slow client %s in room %s", client.ID, r.ID)
		}
	}
	return sent
}

func (r *Room) AddClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
	c.Room = r
	log.Printf("Client %s joined room %s", c.ID, r.ID)
}

// RemoveClient closes c.Send and reports how many clients remain.
func (r *Room) RemoveClient(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.Send)
		log.Printf("Client %s left room %s", c.ID, r.ID)
	}
	return len(r.clients)
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
