package leaderboard

import (
	"math"
	"time"
)

const (
	InitialElo = 1500
	eloK       = 32
)

// Stats is a user's record across completed debates.
type Stats struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Draws     int       `json:"draws"`
	Elo       int       `json:"elo"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newStats(userID, username string) Stats {
	return Stats{UserID: userID, Username: username, Elo: InitialElo}
}

func (s Stats) Debates() int {
	return s.Wins + s.Losses + s.Draws
}

// Profile is the caller's own summary.
type Profile struct {
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Debates   int     `json:"debates"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Draws     int     `json:"draws"`
	WinRate   float64 `json:"winRate"`
	Elo       int     `json:"elo"`
	Arguments int     `json:"arguments"`
}

// applyOutcome updates both records. scoreA is 1 when a won, 0 when b won
// and 0.5 for a draw.
func applyOutcome(a, b *Stats, scoreA float64) {
	expectedA := 1 / (1 + math.Pow(10, float64(b.Elo-a.Elo)/400))
	expectedB := 1 / (1 + math.Pow(10, float64(a.Elo-b.Elo)/400))
	scoreB := 1 - scoreA

	a.Elo += int(math.Round(eloK * (scoreA - expectedA)))
	b.Elo += int(math.Round(eloK * (scoreB - expectedB)))

	switch scoreA {
	case 1:
		a.Wins++
		b.Losses++
	case 0:
		a.Losses++
		b.Wins++
	default:
		a.Draws++
		b.Draws++
	}
}
