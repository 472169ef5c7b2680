package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
)

const sendBuffer = 16

// Upgrader accepts any origin; callers authenticate with a token before
// upgrading.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Room *Room
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}
