package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/krishanu7/debate-backend/internal/debate"
	wsPkg "github.com/krishanu7/debate-backend/pkg/websocket"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis channel debate events are published on.
const EventsChannel = "debate_events"

// Publisher publishes debate events to Redis so every backend instance can
// relay them to its own websocket clients.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Notify(ctx context.Context, e debate.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// HubNotifier delivers events straight to the local hub. It is used when no
// Redis is configured.
type HubNotifier struct {
	hub *wsPkg.Hub
}

func NewHubNotifier(hub *wsPkg.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(_ context.Context, e debate.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	deliver(n.hub, e.DebateID, e.Type, payload)
	return nil
}

func deliver(hub *wsPkg.Hub, debateID string, typ debate.EventType, payload []byte) {
	if n := hub.Broadcast(debateID, payload); n > 0 {
		log.Printf("Relayed %s for debate %s to %d clients", typ, debateID, n)
	}
}

// NotificationWorker relays events from Redis to websocket clients.
type NotificationWorker struct {
	RedisClient *redis.Client
	Hub         *wsPkg.Hub
}

func NewNotificationWorker(rdb *redis.Client, hub *wsPkg.Hub) *NotificationWorker {
	return &NotificationWorker{
		RedisClient: rdb,
		Hub:         hub,
	}
}

// Run blocks until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	log.Println("Notification worker starting...")
	pubsub := w.RedisClient.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Notification worker stopped")
				return
			}
			log.Printf("Notification pub/sub error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		var event struct {
			Type     debate.EventType `json:"type"`
			DebateID string           `json:"debateId"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Failed to unmarshal notification: %v", err)
			continue
		}
		if event.DebateID == "" {
			log.Printf("Ignoring notification without debate id: %s", msg.Payload)
			continue
		}
		deliver(w.Hub, event.DebateID, event.Type, []byte(msg.Payload))
	}
}
