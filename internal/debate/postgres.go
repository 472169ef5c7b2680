package debate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/scoring"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const debateColumns = "id, topic, visibility, COALESCE(invite_code, ''), status, created_at, started_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebate(row rowScanner) (Debate, error) {
	var d Debate
	var started sql.NullTime
	if err := row.Scan(&d.ID, &d.Topic, &d.Visibility, &d.InviteCode, &d.Status, &d.CreatedAt, &started); err != nil {
		return Debate{}, err
	}
	if started.Valid {
		d.StartedAt = &started.Time
	}
	return d, nil
}

func (s *PostgresStore) CreateDebate(ctx context.Context, d Debate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inviteCode sql.NullString
	if d.InviteCode != "" {
		inviteCode = sql.NullString{String: d.InviteCode, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO debates (id, topic, visibility, invite_code, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		d.ID, d.Topic, d.Visibility, inviteCode, d.Status, d.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "debates_invite_code_key" {
			return ErrInviteCodeTaken
		}
		return fmt.Errorf("failed to insert debate: %w", err)
	}
	for i, p := range d.Participants {
		if err := insertParticipant(ctx, tx, d.ID, i, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit debate: %w", err)
	}
	return nil
}

func insertParticipant(ctx context.Context, tx *sql.Tx, debateID string, position int, p Participant) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO debate_participants (debate_id, user_id, username, position, joined_at) VALUES ($1, $2, $3, $4, $5)",
		debateID, p.UserID, p.Username, position, p.JoinedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == "23505" || pqErr.Code == "23514") {
			return apperr.Conflictf("debate is full")
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDebate(ctx context.Context, id string) (Debate, error) {
	return s.getDebate(ctx, s.db, "SELECT "+debateColumns+" FROM debates WHERE id = $1", id)
}

func (s *PostgresStore) FindByInviteCode(ctx context.Context, code string) (Debate, error) {
	d, err := s.getDebate(ctx, s.db,
		"SELECT "+debateColumns+" FROM debates WHERE invite_code = $1 AND visibility = 'private'", code)
	if apperr.Is(err, apperr.NotFound) {
		return Debate{}, apperr.NotFoundf("no private debate with that invite code")
	}
	return d, err
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) getDebate(ctx context.Context, q querier, query string, arg any) (Debate, error) {
	d, err := scanDebate(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Debate{}, apperr.NotFoundf("debate not found")
	}
	if err != nil {
		return Debate{}, fmt.Errorf("failed to load debate: %w", err)
	}
	participants, err := loadParticipants(ctx, q, []string{d.ID})
	if err != nil {
		return Debate{}, err
	}
	d.Participants = participants[d.ID]
	return d, nil
}

func loadParticipants(ctx context.Context, q querier, debateIDs []string) (map[string][]Participant, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT debate_id, user_id, username, joined_at
	FROM debate_participants
	WHERE debate_id = ANY($1)
	ORDER BY debate_id, position
`, pq.Array(debateIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Participant, len(debateIDs))
	for rows.Next() {
		var debateID string
		var p Participant
		if err := rows.Scan(&debateID, &p.UserID, &p.Username, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out[debateID] = append(out[debateID], p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]Debate, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+debateColumns+`
	FROM debates d
	WHERE d.status <> 'completed'
	  AND d.visibility = 'public'
	  AND (SELECT count(*) FROM debate_participants p WHERE p.debate_id = d.id) < $1
	ORDER BY d.created_at, d.id
`, MaxParticipants)
	if err != nil {
		return nil, fmt.Errorf("failed to list open debates: %w", err)
	}
	defer rows.Close()

	debates := []Debate{}
	var ids []string
	for rows.Next() {
		d, err := scanDebate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debate: %w", err)
		}
		debates = append(debates, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return debates, nil
	}
	participants, err := loadParticipants(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range debates {
		debates[i].Participants = participants[debates[i].ID]
	}
	return debates, nil
}

// Join locks the debate row so concurrent joins are applied one at a time.
func (s *PostgresStore) Join(ctx context.Context, debateID string, p Participant, now time.Time) (Debate, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Debate{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	d, err := s.getDebate(ctx, tx, "SELECT "+debateColumns+" FROM debates WHERE id = $1 FOR UPDATE", debateID)
	if err != nil {
		return Debate{}, false, err
	}
	changed, err := admit(&d, p, now)
	if err != nil || !changed {
		return d, false, err
	}

	position := len(d.Participants) - 1
	if err := insertParticipant(ctx, tx, d.ID, position, d.Participants[position]); err != nil {
		return Debate{}, false, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE debates SET status = $2, started_at = $3 WHERE id = $1",
		d.ID, d.Status, d.StartedAt); err != nil {
		return Debate{}, false, fmt.Errorf("failed to update debate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Debate{}, false, fmt.Errorf("failed to commit join: %w", err)
	}
	return d, true, nil
}

// AppendArgument holds a share lock on the debate row so a concurrent
// Complete, which takes it FOR UPDATE, cannot slip in between the status check
// and the insert.
func (s *PostgresStore) AppendArgument(ctx context.Context, a Argument) (Argument, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Argument{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status Status
	err = tx.QueryRowContext(ctx, "SELECT status FROM debates WHERE id = $1 FOR SHARE", a.DebateID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return Argument{}, apperr.NotFoundf("debate not found")
	}
	if err != nil {
		return Argument{}, fmt.Errorf("failed to lock debate: %w", err)
	}
	if err := acceptsArguments(status); err != nil {
		return Argument{}, err
	}

	err = tx.QueryRowContext(ctx, `
	INSERT INTO arguments (id, debate_id, user_id, username, argument_text, sentiment, analyzed, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING seq
`, a.ID, a.DebateID, a.AuthorID, a.AuthorUsername, a.Text, a.Sentiment, a.Analyzed, a.CreatedAt).Scan(&a.Seq)
	if err != nil {
		return Argument{}, fmt.Errorf("failed to insert argument: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Argument{}, fmt.Errorf("failed to commit argument: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListArguments(ctx context.Context, debateID string) ([]Argument, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, debate_id, user_id, username, argument_text, sentiment, analyzed, created_at, seq
	FROM arguments
	WHERE debate_id = $1
	ORDER BY created_at, seq
`, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list arguments: %w", err)
	}
	defer rows.Close()

	args := []Argument{}
	for rows.Next() {
		var a Argument
		if err := rows.Scan(&a.ID, &a.DebateID, &a.AuthorID, &a.AuthorUsername, &a.Text,
			&a.Sentiment, &a.Analyzed, &a.CreatedAt, &a.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan argument: %w", err)
		}
		args = append(args, a)
	}
	return args, rows.Err()
}

func (s *PostgresStore) CountArgumentsByAuthor(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM arguments WHERE user_id = $1", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count arguments: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Complete(ctx context.Context, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status Status
	err = tx.QueryRowContext(ctx, "SELECT status FROM debates WHERE id = $1 FOR UPDATE", r.DebateID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("debate not found")
	}
	if err != nil {
		return fmt.Errorf("failed to lock debate: %w", err)
	}
	if status == StatusCompleted {
		return apperr.Conflictf("debate is already completed")
	}

	var winnerID sql.NullString
	if r.WinnerID != "" {
		winnerID = sql.NullString{String: r.WinnerID, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO results (debate_id, logic_score, persuasiveness_score, engagement_score, winner, winner_id, source, evaluated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, r.DebateID, r.LogicScore, r.PersuasivenessScore, r.EngagementScore, r.Winner, winnerID, r.Source, r.EvaluatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperr.Conflictf("debate is already completed")
		}
		return fmt.Errorf("failed to insert result: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE debates SET status = 'completed' WHERE id = $1", r.DebateID); err != nil {
		return fmt.Errorf("failed to complete debate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetResult(ctx context.Context, debateID string) (Result, error) {
	var r Result
	var winnerID sql.NullString
	err := s.db.QueryRowContext(ctx, `
	SELECT debate_id, logic_score, persuasiveness_score, engagement_score, winner, winner_id, source, evaluated_at
	FROM results
	WHERE debate_id = $1
`, debateID).Scan(&r.DebateID, &r.LogicScore, &r.PersuasivenessScore, &r.EngagementScore,
		&r.Winner, &winnerID, &r.Source, &r.EvaluatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, apperr.NotFoundf("results not available")
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to load result: %w", err)
	}
	r.WinnerID = winnerID.String
	r.MLAnalysis = r.Source == scoring.SourceML
	return r, nil
}
