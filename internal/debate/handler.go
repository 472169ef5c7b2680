package debate

import (
	"net/http"

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

type createRequest struct {
	Topic      string     `json:"topic" validate:"required"`
	Visibility Visibility `json:"visibility" validate:"omitempty,oneof=public private"`
}

type joinPrivateRequest struct {
	InviteCode string `json:"inviteCode" validate:"required"`
}

type submitRequest struct {
	ArgumentText string `json:"argumentText" validate:"required"`
}

// identity returns the caller set by auth.RequireAuth.
func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperr.Authenticationf("authentication required")
	}
	return id, nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := identity(r)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	d, err := h.service.Create(r.Context(), user, req.Topic, req.Visibility)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, d)
}

func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	debates, err := h.service.ListOpen(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, debates)
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	user, err := identity(r)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	d, err := h.service.Join(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, d)
}

func (h *Handler) JoinPrivate(w http.ResponseWriter, r *http.Request) {
	user, err := identity(r)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var req joinPrivateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	d, err := h.service.JoinByInviteCode(r.Context(), user, req.InviteCode)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, d)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, err := identity(r)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var req submitRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	sub, err := h.service.Submit(r.Context(), r.PathValue("id"), user, req.ArgumentText)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, sub)
}

func (h *Handler) Arguments(w http.ResponseWriter, r *http.Request) {
	args, err := h.service.Arguments(r.Context(), r.PathValue("id"))
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, args)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	user, err := identity(r)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	result, err := h.service.Finalize(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

// Register mounts the debate routes on mux. requireAuth guards the routes
// that act on behalf of a user.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/v1/debates", requireAuth(h.Create))
	mux.HandleFunc("GET /api/v1/debates/open", h.ListOpen)
	mux.HandleFunc("POST /api/v1/debates/join-private", requireAuth(h.JoinPrivate))
	mux.HandleFunc("POST /api/v1/debates/{id}/join", requireAuth(h.Join))
	mux.HandleFunc("GET /api/v1/debates/{id}/status", h.Status)
	mux.HandleFunc("POST /api/v1/debates/{id}/arguments", requireAuth(h.Submit))
	mux.HandleFunc("GET /api/v1/debates/{id}/arguments", h.Arguments)
	mux.HandleFunc("POST /api/v1/debates/{id}/finalize", requireAuth(h.Finalize))
	mux.HandleFunc("GET /api/v1/debates/{id}/results", h.Result)
}
