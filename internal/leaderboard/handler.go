package leaderboard

import (
	"net/http"
	"strconv"

	"github.com/krishanu7/debate-backend/internal/apperr"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/pkg/httpjson"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpjson.Error(w, r, apperr.Validationf("limit must be a number"))
			return
		}
		limit = n
	}
	entries, err := h.service.Top(r.Context(), limit)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, r, apperr.Authenticationf("authentication required"))
		return
	}
	profile, err := h.service.Profile(r.Context(), user)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, profile)
}
