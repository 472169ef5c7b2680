package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/krishanu7/debate-backend/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

const TokenTTL = 24 * time.Hour

type Service struct {
	store     Store
	jwtSecret []byte
	now       func() time.Time
}

func NewService(store Store, jwtSecret string) *Service {
	return &Service{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return User{}, apperr.Validationf("username, email and password are required")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", apperr.Validationf("email and password are required")
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Authenticationf("invalid credentials")
	}
	return s.issueToken(user)
}

func (s *Service) issueToken(user User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(TokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Authenticate verifies a bearer token and returns the identity it carries.
func (s *Service) Authenticate(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, apperr.Authenticationf("missing token")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, apperr.Authenticationf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.Authenticationf("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	if userID == "" || username == "" {
		return Identity{}, apperr.Authenticationf("invalid token claims")
	}
	return Identity{UserID: userID, Username: username}, nil
}
