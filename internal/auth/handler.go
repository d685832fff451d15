package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /signin, guarded by limit when set, and the
// token-protected /profile and /signout.
func (h *Handler) MountRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/signin", h.signIn)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.service, h.logger))
		r.Get("/profile", h.profile)
		r.Post("/signout", h.signOut)
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, ErrMissingCredentials)
		return
	}
	res, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("sign in rejected", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	h.logger.Info("signed in", slog.Int64("user_id", res.User.ID))
	httpx.OK(w, res)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.Profile(r.Context(), principal)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, user)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	res, err := h.service.SignOut(r.Context(), principal)
	if err != nil {
		h.logger.Error("sign out", slog.Any("error", err))
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, res)
}
