package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/internal/scoring"
)

var (
	alice = auth.Identity{UserID: "11111111-1111-1111-1111-111111111111", Username: "alice"}
	bob   = auth.Identity{UserID: "22222222-2222-2222-2222-222222222222", Username: "bob"}
	carol = auth.Identity{UserID: "33333333-3333-3333-3333-333333333333", Username: "carol"}
)

type fakeScorer struct {
	mu           sync.Mutex
	analyzeErr   error
	sentiment    float64
	finalizeErr  error
	verdict      scoring.Verdict
	finalizeCall int

	// When set, Analyze signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeScorer) Analyze(context.Context, string) (float64, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analyzeErr != nil {
		return 0, f.analyzeErr
	}
	return f.sentiment, nil
}

func (f *fakeScorer) Finalize(context.Context, []scoring.Sample) (scoring.Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizeCall++
	if f.finalizeErr != nil {
		return scoring.Verdict{}, f.finalizeErr
	}
	return f.verdict, nil
}

type outcome struct {
	participants []Participant
	winnerID     string
}

type fakeStats struct {
	mu       sync.Mutex
	outcomes []outcome
	err      error
}

func (f *fakeStats) RecordOutcome(_ context.Context, participants []Participant, winnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome{participants, winnerID})
	return f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

var errUnavailable = apperr.Wrap(apperr.Collaborator, "scoring: unavailable", errors.New("connection refused"))

type testEnv struct {
	svc      *Service
	store    *MemoryStore
	scorer   *fakeScorer
	stats    *fakeStats
	notifier *recordingNotifier
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    NewMemoryStore(),
		scorer:   &fakeScorer{sentiment: 0.7},
		stats:    &fakeStats{},
		notifier: &recordingNotifier{},
	}
	env.svc = NewService(env.store, env.scorer, scoring.NewFallback(0.1, 42), env.notifier, env.stats)
	return env
}

// activeDebate creates a public debate by alice that bob has joined.
func (env *testEnv) activeDebate(t *testing.T) Debate {
	t.Helper()
	ctx := context.Background()
	d, err := env.svc.Create(ctx, alice, "Topic X", Public)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	d, err = env.svc.Join(ctx, d.ID, bob)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	return d
}

func inScoreRange(v float64) bool { return v >= 0.25 && v <= 0.95 }

func TestCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	d, err := env.svc.Create(ctx, alice, "  Cats vs dogs ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Topic != "Cats vs dogs" || d.Visibility != Public || d.Status != StatusWaiting || d.InviteCode != "" {
		t.Errorf("unexpected debate %+v", d)
	}
	if len(d.Participants) != 1 || d.Participants[0].UserID != alice.UserID {
		t.Errorf("creator should be the first participant, got %+v", d.Participants)
	}

	tests := []struct {
		name       string
		topic      string
		visibility Visibility
	}{
		{"empty topic", "", Public},
		{"blank topic", "   ", Public},
		{"unknown visibility", "Topic", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, alice, tt.topic, tt.visibility)
			if !apperr.Is(err, apperr.Validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPrivateDebateScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	d, err := env.svc.Create(ctx, alice, "Secret topic", Private)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !validInviteCode(d.InviteCode) {
		t.Fatalf("invalid invite code %q", d.InviteCode)
	}

	if _, err := env.svc.JoinByInviteCode(ctx, bob, "ZZZZZZ"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found for wrong code, got %v", err)
	}
	if _, err := env.svc.JoinByInviteCode(ctx, bob, "abc"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found for malformed code, got %v", err)
	}
	if _, err := env.svc.JoinByInviteCode(ctx, bob, " "); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation error for empty code, got %v", err)
	}

	joined, err := env.svc.JoinByInviteCode(ctx, bob, " "+strings.ToLower(d.InviteCode)+" ")
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if joined.Status != StatusActive || len(joined.Participants) != 2 || joined.StartedAt == nil {
		t.Errorf("expected active debate with two participants, got %+v", joined)
	}
}

type collidingStore struct {
	*MemoryStore
	collisions int
}

func (s *collidingStore) CreateDebate(ctx context.Context, d Debate) error {
	if s.collisions > 0 {
		s.collisions--
		return ErrInviteCodeTaken
	}
	return s.MemoryStore.CreateDebate(ctx, d)
}

func TestCreatePrivateRetriesInviteCollisions(t *testing.T) {
	store := &collidingStore{MemoryStore: NewMemoryStore(), collisions: 2}
	svc := NewService(store, &fakeScorer{}, scoring.NewFallback(0, 1), nil, nil)
	if _, err := svc.Create(context.Background(), alice, "T", Private); err != nil {
		t.Fatalf("expected success after collisions, got %v", err)
	}

	store.collisions = inviteCodeAttempts
	_, err := svc.Create(context.Background(), alice, "T", Private)
	if !errors.Is(err, ErrInviteCodeTaken) {
		t.Fatalf("expected invite code error after %d attempts, got %v", inviteCodeAttempts, err)
	}
}

func TestListOpen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, _ := env.svc.Create(ctx, alice, "first", Public)
	full := env.activeDebate(t)
	if _, err := env.svc.Create(ctx, alice, "hidden", Private); err != nil {
		t.Fatalf("create private: %v", err)
	}
	last, _ := env.svc.Create(ctx, bob, "last", Public)

	open, err := env.svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 || open[0].ID != first.ID || open[1].ID != last.ID {
		t.Fatalf("unexpected open debates %+v", open)
	}
	for _, d := range open {
		if d.ID == full.ID {
			t.Errorf("full debate %s listed as open", full.ID)
		}
	}
}

func TestJoin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d, _ := env.svc.Create(ctx, alice, "Topic", Public)

	again, err := env.svc.Join(ctx, d.ID, alice)
	if err != nil || len(again.Participants) != 1 || again.Status != StatusWaiting {
		t.Fatalf("rejoining creator should be a no-op, got %+v, %v", again, err)
	}

	active, err := env.svc.Join(ctx, d.ID, bob)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if active.Status != StatusActive {
		t.Errorf("expected active, got %s", active.Status)
	}
	if _, err := env.svc.Join(ctx, d.ID, bob); err != nil {
		t.Errorf("second join by bob should be a no-op, got %v", err)
	}
	if _, err := env.svc.Join(ctx, d.ID, carol); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("expected conflict for third participant, got %v", err)
	}
	if _, err := env.svc.Join(ctx, "not-a-uuid", carol); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected not found for bad id, got %v", err)
	}
	if _, err := env.svc.Join(ctx, "44444444-4444-4444-4444-444444444444", carol); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}

	want := []EventType{EventParticipantJoined, EventDebateStarted}
	if got := env.notifier.types(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	for round := 0; round < 20; round++ {
		env := newTestEnv()
		ctx := context.Background()
		d, _ := env.svc.Create(ctx, alice, "Race", Public)

		var wg sync.WaitGroup
		var mu sync.Mutex
		admitted := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user := auth.Identity{UserID: fmt.Sprintf("user-%d", i), Username: fmt.Sprintf("user%d", i)}
				if _, err := env.svc.Join(ctx, d.ID, user); err == nil {
					mu.Lock()
					admitted++
					mu.Unlock()
				} else if !apperr.Is(err, apperr.Conflict) {
					t.Errorf("unexpected join error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		got, _ := env.store.GetDebate(ctx, d.ID)
		if len(got.Participants) != MaxParticipants {
			t.Fatalf("expected %d participants, got %d", MaxParticipants, len(got.Participants))
		}
		if admitted != 1 {
			t.Fatalf("expected exactly one admitted joiner, got %d", admitted)
		}
	}
}

func TestStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d, _ := env.svc.Create(ctx, alice, "Topic", Public)

	view, err := env.svc.Status(ctx, d.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.CanStart || view.Status != StatusWaiting || len(view.Participants) != 1 {
		t.Errorf("unexpected view %+v", view)
	}

	env.svc.Join(ctx, d.ID, bob)
	view, _ = env.svc.Status(ctx, d.ID)
	if !view.CanStart || view.Participants[0] != "alice" || view.Participants[1] != "bob" {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestSubmit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	waiting, _ := env.svc.Create(ctx, alice, "Waiting", Public)
	d := env.activeDebate(t)

	sub, err := env.svc.Submit(ctx, d.ID, alice, "  Cats are independent. ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Text != "Cats are independent." || !sub.Analyzed || sub.Sentiment != 0.7 || sub.Warning != "" {
		t.Errorf("unexpected submission %+v", sub)
	}

	tests := []struct {
		name     string
		debateID string
		author   auth.Identity
		text     string
		kind     apperr.Kind
	}{
		{"empty text", d.ID, alice, " ", apperr.Validation},
		{"unknown debate", "44444444-4444-4444-4444-444444444444", alice, "x", apperr.NotFound},
		{"not a participant", d.ID, carol, "x", apperr.Authentication},
		{"not active", waiting.ID, alice, "x", apperr.Conflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Submit(ctx, tt.debateID, tt.author, tt.text)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestSubmitWithCollaboratorDown(t *testing.T) {
	env := newTestEnv()
	env.scorer.analyzeErr = errUnavailable
	ctx := context.Background()
	d := env.activeDebate(t)

	before, _ := env.svc.Arguments(ctx, d.ID)
	sub, err := env.svc.Submit(ctx, d.ID, bob, "Dogs are loyal.")
	if err != nil {
		t.Fatalf("submit should not fail when scoring is down: %v", err)
	}
	if sub.Analyzed || sub.Sentiment != 0 || sub.Warning == "" {
		t.Errorf("expected neutral unanalyzed argument with warning, got %+v", sub)
	}
	after, _ := env.svc.Arguments(ctx, d.ID)
	if len(after) != len(before)+1 {
		t.Errorf("argument log grew by %d, want 1", len(after)-len(before))
	}
}

func TestArgumentsOrdered(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.activeDebate(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	offsets := []int{3, 1, 1, 2, 0}
	i := 0
	env.svc.now = func() time.Time {
		ts := base.Add(time.Duration(offsets[i%len(offsets)]) * time.Second)
		i++
		return ts
	}
	for n := 0; n < len(offsets); n++ {
		author := alice
		if n%2 == 1 {
			author = bob
		}
		if _, err := env.svc.Submit(ctx, d.ID, author, fmt.Sprintf("argument %d", n)); err != nil {
			t.Fatalf("submit %d: %v", n, err)
		}
	}

	args, err := env.svc.Arguments(ctx, d.ID)
	if err != nil {
		t.Fatalf("arguments: %v", err)
	}
	if len(args) != len(offsets) {
		t.Fatalf("expected %d arguments, got %d", len(offsets), len(args))
	}
	for i := 1; i < len(args); i++ {
		prev, cur := args[i-1], args[i]
		if cur.CreatedAt.Before(prev.CreatedAt) {
			t.Fatalf("arguments out of order at %d: %v before %v", i, cur.CreatedAt, prev.CreatedAt)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.Seq < prev.Seq {
			t.Fatalf("ties not broken by insertion order at %d", i)
		}
	}
	if args[1].Text != "argument 1" || args[2].Text != "argument 2" {
		t.Errorf("equal timestamps should keep submission order, got %q then %q", args[1].Text, args[2].Text)
	}

	if _, err := env.svc.Arguments(ctx, "44444444-4444-4444-4444-444444444444"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestFinalizeWithCollaboratorDown(t *testing.T) {
	env := newTestEnv()
	env.scorer.analyzeErr = errUnavailable
	env.scorer.finalizeErr = errUnavailable
	ctx := context.Background()
	d := env.activeDebate(t)

	env.svc.Submit(ctx, d.ID, alice, "Cats keep themselves clean and need little space.")
	env.svc.Submit(ctx, d.ID, bob, "Dogs protect the house.")

	r, err := env.svc.Finalize(ctx, d.ID, alice)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if r.Source != scoring.SourceFallback || r.MLAnalysis {
		t.Errorf("expected fallback result, got %+v", r)
	}
	if r.Winner != "alice" && r.Winner != "bob" {
		t.Errorf("winner should be a participant, got %q", r.Winner)
	}
	for _, v := range []float64{r.LogicScore, r.PersuasivenessScore, r.EngagementScore} {
		if !inScoreRange(v) {
			t.Errorf("score %v out of range", v)
		}
	}

	status, _ := env.svc.Status(ctx, d.ID)
	if status.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", status.Status)
	}
	stored, err := env.svc.Result(ctx, d.ID)
	if err != nil || stored != r {
		t.Errorf("stored result %+v differs from returned %+v (%v)", stored, r, err)
	}
	if len(env.stats.outcomes) != 1 || env.stats.outcomes[0].winnerID != r.WinnerID {
		t.Errorf("unexpected recorded outcomes %+v", env.stats.outcomes)
	}
}

func TestFinalizeUsesMLVerdict(t *testing.T) {
	env := newTestEnv()
	env.scorer.verdict = scoring.Verdict{
		LogicScore: 0.8, PersuasivenessScore: 0.6, EngagementScore: 0.7,
		Winner: "bob", WinnerID: bob.UserID, Source: scoring.SourceML,
	}
	ctx := context.Background()
	d := env.activeDebate(t)
	env.svc.Submit(ctx, d.ID, alice, "one")

	r, err := env.svc.Finalize(ctx, d.ID, bob)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if r.Winner != "bob" || r.LogicScore != 0.8 || !r.MLAnalysis || r.Source != scoring.SourceML {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env := newTestEnv()
	env.scorer.verdict = scoring.Verdict{Winner: "alice", WinnerID: alice.UserID, Source: scoring.SourceML, LogicScore: 0.5}
	ctx := context.Background()
	d := env.activeDebate(t)
	env.svc.Submit(ctx, d.ID, alice, "one")

	first, err := env.svc.Finalize(ctx, d.ID, alice)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	env.scorer.verdict = scoring.Verdict{Winner: "bob", WinnerID: bob.UserID, Source: scoring.SourceML, LogicScore: 0.9}
	if _, err := env.svc.Finalize(ctx, d.ID, bob); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict on second finalize, got %v", err)
	}
	if _, err := env.svc.Join(ctx, d.ID, carol); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict joining a completed debate, got %v", err)
	}
	if _, err := env.svc.Join(ctx, d.ID, alice); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict when a participant rejoins a completed debate, got %v", err)
	}
	if _, err := env.svc.Submit(ctx, d.ID, alice, "late"); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict submitting to a completed debate, got %v", err)
	}
	stored, _ := env.svc.Result(ctx, d.ID)
	if stored != first {
		t.Errorf("result was rewritten: %+v, want %+v", stored, first)
	}
	if env.scorer.finalizeCall != 1 {
		t.Errorf("collaborator called %d times, want 1", env.scorer.finalizeCall)
	}
}

func TestSubmitLosesRaceWithFinalize(t *testing.T) {
	env := newTestEnv()
	env.scorer.finalizeErr = errUnavailable
	ctx := context.Background()
	d := env.activeDebate(t)
	if _, err := env.svc.Submit(ctx, d.ID, alice, "opening"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	env.scorer.started = make(chan struct{})
	env.scorer.release = make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := env.svc.Submit(ctx, d.ID, bob, "rebuttal still being analyzed")
		errc <- err
	}()
	<-env.scorer.started

	if _, err := env.svc.Finalize(ctx, d.ID, alice); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	close(env.scorer.release)

	if err := <-errc; !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict for a submit that finished after finalize, got %v", err)
	}
	args, err := env.svc.Arguments(ctx, d.ID)
	if err != nil {
		t.Fatalf("arguments: %v", err)
	}
	if len(args) != 1 {
		t.Errorf("completed debate has %d arguments, want the 1 that was scored", len(args))
	}
}

func TestConcurrentFinalizeStoresOneResult(t *testing.T) {
	env := newTestEnv()
	env.scorer.finalizeErr = errUnavailable
	ctx := context.Background()
	d := env.activeDebate(t)
	env.svc.Submit(ctx, d.ID, alice, "one")
	env.svc.Submit(ctx, d.ID, bob, "two")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			requester := alice
			if i%2 == 1 {
				requester = bob
			}
			_, err := env.svc.Finalize(ctx, d.ID, requester)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !apperr.Is(err, apperr.Conflict):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful finalize, got %d", succeeded)
	}
}

func TestFinalizeRejections(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.activeDebate(t)

	if _, err := env.svc.Finalize(ctx, d.ID, carol); !apperr.Is(err, apperr.Authentication) {
		t.Errorf("expected authentication error for outsider, got %v", err)
	}
	if _, err := env.svc.Finalize(ctx, "44444444-4444-4444-4444-444444444444", alice); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	_, err := env.svc.Finalize(ctx, d.ID, alice)
	if !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation error with zero arguments, got %v", err)
	}
	status, _ := env.svc.Status(ctx, d.ID)
	if status.Status != StatusActive {
		t.Errorf("status changed to %s", status.Status)
	}
	if _, err := env.svc.Result(ctx, d.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected no result, got %v", err)
	}
	if env.scorer.finalizeCall != 0 {
		t.Errorf("collaborator should not be called without arguments")
	}
}

func TestFinalizeSurvivesStatsFailure(t *testing.T) {
	env := newTestEnv()
	env.stats.err = errors.New("stats table missing")
	env.scorer.finalizeErr = errUnavailable
	ctx := context.Background()
	d := env.activeDebate(t)
	env.svc.Submit(ctx, d.ID, alice, "one")

	if _, err := env.svc.Finalize(ctx, d.ID, alice); err != nil {
		t.Fatalf("stats failure should not fail finalize: %v", err)
	}
	if _, err := env.svc.Result(ctx, d.ID); err != nil {
		t.Errorf("result missing: %v", err)
	}
}

func TestPublicDebateScenario(t *testing.T) {
	env := newTestEnv()
	env.scorer.analyzeErr = errUnavailable
	env.scorer.finalizeErr = errUnavailable
	ctx := context.Background()

	d, err := env.svc.Create(ctx, alice, "Topic X", Public)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.Join(ctx, d.ID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := env.svc.Submit(ctx, d.ID, alice, "A makes a point."); err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	if _, err := env.svc.Submit(ctx, d.ID, bob, "B makes a much longer counterpoint."); err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	r, err := env.svc.Finalize(ctx, d.ID, alice)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	view, _ := env.svc.Status(ctx, d.ID)
	if view.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", view.Status)
	}
	if r.Winner != "alice" && r.Winner != "bob" {
		t.Errorf("unexpected winner %q", r.Winner)
	}
	if !inScoreRange(r.LogicScore) || !inScoreRange(r.PersuasivenessScore) || !inScoreRange(r.EngagementScore) {
		t.Errorf("scores out of range: %+v", r)
	}

	want := []EventType{EventParticipantJoined, EventDebateStarted, EventArgumentSubmitted, EventArgumentSubmitted, EventDebateCompleted}
	if got := env.notifier.types(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}
