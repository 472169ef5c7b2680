package debate

import (
	"slices"
	"time"

	"github.com/krishanu7/debate-backend/internal/scoring"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

const MaxParticipants = 2

type Participant struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Debate struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	Visibility   Visibility    `json:"visibility"`
	InviteCode   string        `json:"inviteCode,omitempty"`
	Status       Status        `json:"status"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
	StartedAt    *time.Time    `json:"startedAt,omitempty"`
}

func (d *Debate) HasParticipant(userID string) bool {
	return slices.ContainsFunc(d.Participants, func(p Participant) bool { return p.UserID == userID })
}

// Open reports whether the debate belongs in the lobby.
func (d *Debate) Open() bool {
	return d.Status != StatusCompleted && len(d.Participants) < MaxParticipants
}

func (d Debate) clone() Debate {
	d.Participants = slices.Clone(d.Participants)
	if d.StartedAt != nil {
		started := *d.StartedAt
		d.StartedAt = &started
	}
	return d
}

type Argument struct {
	ID             string    `json:"id"`
	DebateID       string    `json:"debateId"`
	AuthorID       string    `json:"userId"`
	AuthorUsername string    `json:"username"`
	Text           string    `json:"argumentText"`
	Sentiment      float64   `json:"sentiment"`
	Analyzed       bool      `json:"mlAnalysis"`
	CreatedAt      time.Time `json:"createdAt"`
	Seq            int64     `json:"-"`
}

// Submission is a stored argument plus a warning when the ML annotation
// could not be obtained.
type Submission struct {
	Argument
	Warning string `json:"warning,omitempty"`
}

type Result struct {
	DebateID            string         `json:"debateId"`
	LogicScore          float64        `json:"logicScore"`
	PersuasivenessScore float64        `json:"persuasivenessScore"`
	EngagementScore     float64        `json:"engagementScore"`
	Winner              string         `json:"winner"`
	WinnerID            string         `json:"winnerId,omitempty"`
	Source              scoring.Source `json:"source"`
	MLAnalysis          bool           `json:"mlAnalysis"`
	EvaluatedAt         time.Time      `json:"evaluatedAt"`
}

// StatusView is what the status endpoint returns.
type StatusView struct {
	ID           string     `json:"id"`
	Topic        string     `json:"topic"`
	Status       Status     `json:"status"`
	Visibility   Visibility `json:"visibility"`
	InviteCode   string     `json:"inviteCode,omitempty"`
	Participants []string   `json:"joinedUsers"`
	CanStart     bool       `json:"canStart"`
}
