package debate

import "context"

type EventType string

const (
	EventParticipantJoined EventType = "participant_joined"
	EventDebateStarted     EventType = "debate_started"
	EventArgumentSubmitted EventType = "argument_submitted"
	EventDebateCompleted   EventType = "debate_completed"
)

// Event is a lifecycle change pushed to live subscribers of a debate.
type Event struct {
	Type     EventType `json:"type"`
	DebateID string    `json:"debateId"`
	Data     any       `json:"data,omitempty"`
}

// Notifier fans events out to subscribers. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }

// NopNotifier drops every event.
var NopNotifier Notifier = nopNotifier{}
