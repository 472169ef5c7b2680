package debate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/internal/scoring"
)

const inviteCodeAttempts = 5

// Scorer is the remote ML collaborator.
type Scorer interface {
	Analyze(ctx context.Context, text string) (float64, error)
	Finalize(ctx context.Context, samples []scoring.Sample) (scoring.Verdict, error)
}

// LocalScorer scores a debate without leaving the process.
type LocalScorer interface {
	Score(samples []scoring.Sample) scoring.Verdict
}

// StatsRecorder is told about every finished debate. winnerID is empty on a
// draw.
type StatsRecorder interface {
	RecordOutcome(ctx context.Context, participants []Participant, winnerID string) error
}

type Service struct {
	store    Store
	scorer   Scorer
	fallback LocalScorer
	notifier Notifier
	stats    StatsRecorder
	now      func() time.Time
}

func NewService(store Store, scorer Scorer, fallback LocalScorer, notifier Notifier, stats StatsRecorder) *Service {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &Service{
		store:    store,
		scorer:   scorer,
		fallback: fallback,
		notifier: notifier,
		stats:    stats,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, creator auth.Identity, topic string, visibility Visibility) (Debate, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Debate{}, apperr.Validationf("topic is required")
	}
	if visibility == "" {
		visibility = Public
	}
	if visibility != Public && visibility != Private {
		return Debate{}, apperr.Validationf("visibility must be public or private")
	}

	now := s.now()
	d := Debate{
		ID:           uuid.NewString(),
		Topic:        topic,
		Visibility:   visibility,
		Status:       StatusWaiting,
		Participants: []Participant{{UserID: creator.UserID, Username: creator.Username, JoinedAt: now}},
		CreatedAt:    now,
	}
	if visibility == Public {
		if err := s.store.CreateDebate(ctx, d); err != nil {
			return Debate{}, fmt.Errorf("failed to create debate: %w", err)
		}
		log.Printf("Debate %s created by %s", d.ID, creator.Username)
		return d, nil
	}

	for attempt := 1; ; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return Debate{}, fmt.Errorf("failed to generate invite code: %w", err)
		}
		d.InviteCode = code
		err = s.store.CreateDebate(ctx, d)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrInviteCodeTaken) || attempt == inviteCodeAttempts {
			return Debate{}, fmt.Errorf("failed to create debate: %w", err)
		}
		log.Printf("Invite code collision on attempt %d, retrying", attempt)
	}
	log.Printf("Private debate %s created by %s", d.ID, creator.Username)
	return d, nil
}

func (s *Service) ListOpen(ctx context.Context) ([]Debate, error) {
	return s.store.ListOpen(ctx)
}

func (s *Service) Join(ctx context.Context, debateID string, user auth.Identity) (Debate, error) {
	if err := checkID(debateID); err != nil {
		return Debate{}, err
	}
	return s.join(ctx, debateID, user)
}

func (s *Service) JoinByInviteCode(ctx context.Context, user auth.Identity, code string) (Debate, error) {
	code = normalizeInviteCode(code)
	if code == "" {
		return Debate{}, apperr.Validationf("inviteCode is required")
	}
	if !validInviteCode(code) {
		return Debate{}, apperr.NotFoundf("no private debate with that invite code")
	}
	d, err := s.store.FindByInviteCode(ctx, code)
	if err != nil {
		return Debate{}, err
	}
	return s.join(ctx, d.ID, user)
}

func (s *Service) join(ctx context.Context, debateID string, user auth.Identity) (Debate, error) {
	d, changed, err := s.store.Join(ctx, debateID, Participant{UserID: user.UserID, Username: user.Username}, s.now())
	if err != nil {
		return Debate{}, err
	}
	if !changed {
		return d, nil
	}
	log.Printf("User %s joined debate %s", user.Username, d.ID)
	s.notify(ctx, Event{Type: EventParticipantJoined, DebateID: d.ID, Data: user})
	if d.Status == StatusActive {
		s.notify(ctx, Event{Type: EventDebateStarted, DebateID: d.ID, Data: s.view(d)})
	}
	return d, nil
}

func (s *Service) Status(ctx context.Context, debateID string) (StatusView, error) {
	d, err := s.get(ctx, debateID)
	if err != nil {
		return StatusView{}, err
	}
	return s.view(d), nil
}

func (s *Service) view(d Debate) StatusView {
	names := make([]string, 0, len(d.Participants))
	for _, p := range d.Participants {
		names = append(names, p.Username)
	}
	return StatusView{
		ID:           d.ID,
		Topic:        d.Topic,
		Status:       d.Status,
		Visibility:   d.Visibility,
		InviteCode:   d.InviteCode,
		Participants: names,
		CanStart:     len(d.Participants) == MaxParticipants,
	}
}

// Submit stores an argument. A collaborator failure does not block the write;
// the argument is kept with a neutral sentiment and the submission carries a
// warning.
func (s *Service) Submit(ctx context.Context, debateID string, author auth.Identity, text string) (Submission, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Submission{}, apperr.Validationf("argumentText is required")
	}
	d, err := s.get(ctx, debateID)
	if err != nil {
		return Submission{}, err
	}
	if !d.HasParticipant(author.UserID) {
		return Submission{}, apperr.Authenticationf("you are not a participant in this debate")
	}
	if err := acceptsArguments(d.Status); err != nil {
		return Submission{}, err
	}

	a := Argument{
		ID:             uuid.NewString(),
		DebateID:       d.ID,
		AuthorID:       author.UserID,
		AuthorUsername: author.Username,
		Text:           text,
	}
	var warning string
	sentiment, err := s.scorer.Analyze(ctx, text)
	if err != nil {
		log.Printf("Sentiment analysis failed for debate %s: %v", d.ID, err)
		warning = "argument saved without ML analysis: scoring service unavailable"
	} else {
		a.Sentiment = sentiment
		a.Analyzed = true
	}
	a.CreatedAt = s.now()

	stored, err := s.store.AppendArgument(ctx, a)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to store argument: %w", err)
	}
	s.notify(ctx, Event{Type: EventArgumentSubmitted, DebateID: d.ID, Data: stored})
	return Submission{Argument: stored, Warning: warning}, nil
}

func (s *Service) Arguments(ctx context.Context, debateID string) ([]Argument, error) {
	if _, err := s.get(ctx, debateID); err != nil {
		return nil, err
	}
	return s.store.ListArguments(ctx, debateID)
}

// Finalize scores the debate once and closes it. The ML verdict is preferred;
// the local heuristic is used when the collaborator fails.
func (s *Service) Finalize(ctx context.Context, debateID string, requester auth.Identity) (Result, error) {
	d, err := s.get(ctx, debateID)
	if err != nil {
		return Result{}, err
	}
	if !d.HasParticipant(requester.UserID) {
		return Result{}, apperr.Authenticationf("you are not a participant in this debate")
	}
	if d.Status == StatusCompleted {
		return Result{}, apperr.Conflictf("debate is already completed")
	}
	args, err := s.store.ListArguments(ctx, d.ID)
	if err != nil {
		return Result{}, err
	}
	if len(args) == 0 {
		return Result{}, apperr.Validationf("cannot finalize a debate without arguments")
	}

	samples := make([]scoring.Sample, len(args))
	for i, a := range args {
		samples[i] = scoring.Sample{
			AuthorID:  a.AuthorID,
			Username:  a.AuthorUsername,
			Text:      a.Text,
			Sentiment: a.Sentiment,
			Analyzed:  a.Analyzed,
		}
	}
	verdict, err := s.scorer.Finalize(ctx, samples)
	if err != nil {
		log.Printf("ML finalize failed for debate %s, using fallback scoring: %v", d.ID, err)
		verdict = s.fallback.Score(samples)
	}

	r := Result{
		DebateID:            d.ID,
		LogicScore:          verdict.LogicScore,
		PersuasivenessScore: verdict.PersuasivenessScore,
		EngagementScore:     verdict.EngagementScore,
		Winner:              verdict.Winner,
		WinnerID:            verdict.WinnerID,
		Source:              verdict.Source,
		MLAnalysis:          verdict.Source == scoring.SourceML,
		EvaluatedAt:         s.now(),
	}
	if err := s.store.Complete(ctx, r); err != nil {
		return Result{}, err
	}
	log.Printf("Debate %s completed, winner: %s (%s)", d.ID, r.Winner, r.Source)

	if s.stats != nil {
		if err := s.stats.RecordOutcome(ctx, d.Participants, r.WinnerID); err != nil {
			log.Printf("Failed to record stats for debate %s: %v", d.ID, err)
		}
	}
	s.notify(ctx, Event{Type: EventDebateCompleted, DebateID: d.ID, Data: r})
	return r, nil
}

func (s *Service) Result(ctx context.Context, debateID string) (Result, error) {
	if err := checkID(debateID); err != nil {
		return Result{}, err
	}
	return s.store.GetResult(ctx, debateID)
}

func (s *Service) get(ctx context.Context, debateID string) (Debate, error) {
	if err := checkID(debateID); err != nil {
		return Debate{}, err
	}
	return s.store.GetDebate(ctx, debateID)
}

// checkID rejects ids that cannot name a debate before they reach the store.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFoundf("debate not found")
	}
	return nil
}

func (s *Service) notify(ctx context.Context, e Event) {
	if err := s.notifier.Notify(ctx, e); err != nil {
		log.Printf("Failed to publish %s for debate %s: %v", e.Type, e.DebateID, err)
	}
}
