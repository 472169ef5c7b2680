package auth

import (
	"net/http"
	"strings"

	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/pkg/httpjson"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's Identity in the request context.
func (s *Service) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			httpjson.Error(w, r, apperr.Authenticationf("authorization header required"))
			return
		}
		id, err := s.Authenticate(token)
		if err != nil {
			httpjson.Error(w, r, err)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}
