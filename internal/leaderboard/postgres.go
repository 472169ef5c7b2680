package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (Stats, error) {
	st := newStats(userID, "")
	err := s.db.QueryRowContext(ctx, `
		SELECT s.user_id, u.username, s.wins, s.losses, s.draws, s.elo, s.updated_at
		FROM stats s
		JOIN users u ON s.user_id = u.id
		WHERE s.user_id = $1
	`, userID).Scan(&st.UserID, &st.Username, &st.Wins, &st.Losses, &st.Draws, &st.Elo, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return newStats(userID, ""), nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return st, nil
}

func lockStats(ctx context.Context, tx *sql.Tx, p Player) (Stats, error) {
	st := newStats(p.UserID, p.Username)
	err := tx.QueryRowContext(ctx,
		"SELECT wins, losses, draws, elo FROM stats WHERE user_id = $1 FOR UPDATE", p.UserID).
		Scan(&st.Wins, &st.Losses, &st.Draws, &st.Elo)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Stats{}, fmt.Errorf("failed to get stats for %s: %w", p.UserID, err)
	}
	return st, nil
}

func saveStats(ctx context.Context, tx *sql.Tx, st Stats) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stats (user_id, wins, losses, draws, elo, updated_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET wins = $2, losses = $3, draws = $4, elo = $5, updated_at = $6
	`, st.UserID, st.Wins, st.Losses, st.Draws, st.Elo, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update stats for %s: %w", st.UserID, err)
	}
	return nil
}

func (s *PostgresStore) UpdatePair(ctx context.Context, a, b Player, now time.Time, update func(a, b *Stats)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock rows in a stable order so two finalizes sharing a player cannot
	// deadlock.
	first, second := a, b
	if second.UserID < first.UserID {
		first, second = second, first
	}
	sf, err := lockStats(ctx, tx, first)
	if err != nil {
		return err
	}
	ss, err := lockStats(ctx, tx, second)
	if err != nil {
		return err
	}
	sa, sb := sf, ss
	if first != a {
		sa, sb = ss, sf
	}

	update(&sa, &sb)
	sa.UpdatedAt, sb.UpdatedAt = now, now
	if err := saveStats(ctx, tx, sa); err != nil {
		return err
	}
	if err := saveStats(ctx, tx, sb); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) Top(ctx context.Context, limit int) ([]Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.user_id, u.username, s.wins, s.losses, s.draws, s.elo, s.updated_at
		FROM stats s
		JOIN users u ON s.user_id = u.id
		ORDER BY s.elo DESC, u.username
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	leaderboard := []Stats{}
	for rows.Next() {
		var st Stats
		if err := rows.Scan(&st.UserID, &st.Username, &st.Wins, &st.Losses, &st.Draws, &st.Elo, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		leaderboard = append(leaderboard, st)
	}
	return leaderboard, rows.Err()
}
