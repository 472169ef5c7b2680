package debate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/krishanu7/debate-backend/db"
	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/internal/scoring"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("TEST_DB_URL not set")
	}
	conn, err := db.Open(context.Background(), url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := conn.Exec("TRUNCATE stats, results, arguments, debate_participants, debates, users CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn
}

func TestPostgresStoreLifecycle(t *testing.T) {
	store := NewPostgresStore(openTestDB(t))
	scorer := &fakeScorer{finalizeErr: errUnavailable, analyzeErr: errUnavailable}
	svc := NewService(store, scorer, scoring.NewFallback(0, 7), nil, nil)
	ctx := context.Background()

	pub, err := svc.Create(ctx, alice, "Postgres topic", Public)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	priv, err := svc.Create(ctx, alice, "Private topic", Private)
	if err != nil {
		t.Fatalf("create private: %v", err)
	}

	open, err := svc.ListOpen(ctx)
	if err != nil || len(open) != 1 || open[0].ID != pub.ID {
		t.Fatalf("unexpected open debates %+v, %v", open, err)
	}
	if _, err := svc.JoinByInviteCode(ctx, bob, priv.InviteCode); err != nil {
		t.Fatalf("join private: %v", err)
	}

	joined, err := svc.Join(ctx, pub.ID, bob)
	if err != nil || joined.Status != StatusActive || len(joined.Participants) != 2 {
		t.Fatalf("unexpected join result %+v, %v", joined, err)
	}
	if _, err := svc.Join(ctx, pub.ID, carol); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	for i, author := range []auth.Identity{alice, bob, alice} {
		if _, err := svc.Submit(ctx, pub.ID, author, fmt.Sprintf("argument %d", i)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	args, err := svc.Arguments(ctx, pub.ID)
	if err != nil || len(args) != 3 || args[0].Text != "argument 0" || args[2].Text != "argument 2" {
		t.Fatalf("unexpected arguments %+v, %v", args, err)
	}
	if n, _ := store.CountArgumentsByAuthor(ctx, alice.UserID); n != 2 {
		t.Errorf("expected 2 arguments by alice, got %d", n)
	}

	r, err := svc.Finalize(ctx, pub.ID, alice)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := svc.Finalize(ctx, pub.ID, bob); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict on second finalize, got %v", err)
	}
	stored, err := svc.Result(ctx, pub.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if stored.Winner != r.Winner || stored.LogicScore != r.LogicScore || stored.Source != scoring.SourceFallback {
		t.Errorf("stored result %+v differs from %+v", stored, r)
	}
}

func TestPostgresConcurrentJoins(t *testing.T) {
	store := NewPostgresStore(openTestDB(t))
	svc := NewService(store, &fakeScorer{}, scoring.NewFallback(0, 7), nil, nil)
	ctx := context.Background()
	d, err := svc.Create(ctx, alice, "Race", Public)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := auth.Identity{UserID: fmt.Sprintf("user-%d", i), Username: fmt.Sprintf("user%d", i)}
			if _, err := svc.Join(ctx, d.ID, user); err != nil && !apperr.Is(err, apperr.Conflict) {
				t.Errorf("unexpected join error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetDebate(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Participants) != MaxParticipants || got.Status != StatusActive {
		t.Fatalf("unexpected debate after race %+v", got)
	}
}

func TestPostgresRejectsArgumentsAfterComplete(t *testing.T) {
	store := NewPostgresStore(openTestDB(t))
	scorer := &fakeScorer{finalizeErr: errUnavailable}
	svc := NewService(store, scorer, scoring.NewFallback(0, 7), nil, nil)
	ctx := context.Background()
	d, err := svc.Create(ctx, alice, "Late writes", Public)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Join(ctx, d.ID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.Submit(ctx, d.ID, alice, "opening"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	scorer.started = make(chan struct{})
	scorer.release = make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, d.ID, bob, "too late")
		errc <- err
	}()
	<-scorer.started
	if _, err := svc.Finalize(ctx, d.ID, alice); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	close(scorer.release)

	if err := <-errc; !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if args, _ := store.ListArguments(ctx, d.ID); len(args) != 1 {
		t.Errorf("expected 1 argument after complete, got %d", len(args))
	}
}
