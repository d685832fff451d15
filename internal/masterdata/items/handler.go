package items

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

const notFoundMessage = "Item not found"

// Handler serves the item endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), shared.ParsePageRequest(r.URL.Query()))
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, page)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Fail(w, http.StatusNotFound, notFoundMessage)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, notFoundMessage)
			return
		}
		h.logger.Error("get item", slog.Int64("id", id), slog.Any("error", err))
		httpx.Fail(w, http.StatusNotFound, notFoundMessage)
		return
	}
	httpx.OK(w, item)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.Create(r.Context(), in); err != nil {
		h.logger.Warn("create item", slog.Any("error", err))
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	item, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("update item", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	httpx.OK(w, item)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete item", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	httpx.OK(w, nil)
}
