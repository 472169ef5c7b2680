package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password, created_at) VALUES ($1, $2, $3, $4, $5)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
			return apperr.Conflictf("email already exists")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
	SELECT id, username, email, password, created_at
	FROM users
	WHERE email = lower($1)
`, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperr.NotFoundf("user not found")
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}
