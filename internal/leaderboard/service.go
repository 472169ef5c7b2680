package leaderboard

import (
	"context"
	"log"
	"time"

	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/internal/debate"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ArgumentCounter reports how many arguments a user has submitted.
type ArgumentCounter interface {
	CountArgumentsByAuthor(ctx context.Context, userID string) (int, error)
}

type Service struct {
	store     Store
	arguments ArgumentCounter
	now       func() time.Time
}

func NewService(store Store, arguments ArgumentCounter) *Service {
	return &Service{
		store:     store,
		arguments: arguments,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RecordOutcome applies a finished debate to both participants' records.
// An empty winnerID is a draw.
func (s *Service) RecordOutcome(ctx context.Context, participants []debate.Participant, winnerID string) error {
	if len(participants) != 2 {
		log.Printf("Skipping stats for debate with %d participants", len(participants))
		return nil
	}
	a := Player{UserID: participants[0].UserID, Username: participants[0].Username}
	b := Player{UserID: participants[1].UserID, Username: participants[1].Username}

	scoreA := 0.5
	switch winnerID {
	case a.UserID:
		scoreA = 1
	case b.UserID:
		scoreA = 0
	}

	var sa, sb Stats
	err := s.store.UpdatePair(ctx, a, b, s.now(), func(x, y *Stats) {
		applyOutcome(x, y, scoreA)
		sa, sb = *x, *y
	})
	if err != nil {
		return err
	}
	log.Printf("Updated stats: %s (elo=%d), %s (elo=%d)", a.Username, sa.Elo, b.Username, sb.Elo)
	return nil
}

func (s *Service) Top(ctx context.Context, limit int) ([]Stats, error) {
	if limit <= 0 || limit > MaxLimit {
		return nil, apperr.Validationf("limit must be between 1 and %d", MaxLimit)
	}
	return s.store.Top(ctx, limit)
}

func (s *Service) Profile(ctx context.Context, user auth.Identity) (Profile, error) {
	st, err := s.store.Get(ctx, user.UserID)
	if err != nil {
		return Profile{}, err
	}
	args, err := s.arguments.CountArgumentsByAuthor(ctx, user.UserID)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{
		UserID:    user.UserID,
		Username:  user.Username,
		Debates:   st.Debates(),
		Wins:      st.Wins,
		Losses:    st.Losses,
		Draws:     st.Draws,
		Elo:       st.Elo,
		Arguments: args,
	}
	if p.Debates > 0 {
		p.WinRate = float64(p.Wins) / float64(p.Debates)
	}
	return p, nil
}
