package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Handler serves the statistics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /stats/all and /monthly-sales on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats/all", h.global)
	r.Get("/monthly-sales", h.monthly)
}

func (h *Handler) global(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Global(r.Context())
	if err != nil {
		h.logger.Error("global stats", slog.Any("error", err))
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, out)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	year := h.service.ParseYear(r.URL.Query().Get("year"))
	out, err := h.service.Monthly(r.Context(), year)
	if err != nil {
		h.logger.Error("monthly sales", slog.Int("year", year), slog.Any("error", err))
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, out)
}
