package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/internal/debate"
	"github.com/krishanu7/debate-backend/pkg/httpjson"
	wsPkg "github.com/krishanu7/debate-backend/pkg/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Authenticator validates the token passed in the query string.
type Authenticator interface {
	Authenticate(token string) (auth.Identity, error)
}

// DebateViewer loads the snapshot sent to a client when it connects.
type DebateViewer interface {
	Status(ctx context.Context, debateID string) (debate.StatusView, error)
}

type Handler struct {
	Hub     *wsPkg.Hub
	auth    Authenticator
	debates DebateViewer
}

func NewHandler(hub *wsPkg.Hub, authenticator Authenticator, debates DebateViewer) *Handler {
	return &Handler{
		Hub:     hub,
		auth:    authenticator,
		debates: debates,
	}
}

// ServeWS streams the events of debate {id}. The connection is read-only for
// clients; incoming messages are ignored.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r)
	}
	if token == "" {
		httpjson.Error(w, r, apperr.Authenticationf("token is required"))
		return
	}
	user, err := h.auth.Authenticate(token)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	debateID := r.PathValue("id")
	view, err := h.debates.Status(r.Context(), debateID)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	snapshot, err := json.Marshal(debate.Event{Type: "snapshot", DebateID: debateID, Data: view})
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}

	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade failed: %v", err)
		return
	}

	client := wsPkg.NewClient(user.UserID, conn)
	client.Send <- snapshot
	h.Hub.Join(debateID, client)

	log.Printf("User %s watching debate %s", user.Username, debateID)
	go h.read(client)
	go h.write(client)
}

func (h *Handler) read(c *wsPkg.Client) {
	defer func() {
		h.Hub.Leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Read error for client %s: %v", c.ID, err)
			}
			return
		}
	}
}

func (h *Handler) write(c *wsPkg.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Write error for client %s: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
