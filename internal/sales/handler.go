package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

const notFoundMessage = "Sales record not found"

// Handler serves the sales endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	idem    *shared.IdempotencyStore
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// WithIdempotency makes create reject a repeated Idempotency-Key.
func (h *Handler) WithIdempotency(store *shared.IdempotencyStore) *Handler {
	h.idem = store
	return h
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), shared.ParsePageRequest(r.URL.Query()))
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.OK(w, page)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	docNo, err := httpx.PathID(r, "docno")
	if err != nil {
		httpx.Fail(w, http.StatusNotFound, notFoundMessage)
		return
	}
	dto, err := h.service.Get(r.Context(), docNo)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("get sale", slog.Int64("docno", docNo), slog.Any("error", err))
			httpx.RespondError(w, http.StatusInternalServerError, err)
			return
		}
		httpx.Fail(w, http.StatusNotFound, notFoundMessage)
		return
	}
	httpx.OK(w, dto)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(shared.IdempotencyHeader))
	if key != "" {
		if err := h.idem.CheckAndInsert(r.Context(), key, "sales"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.Fail(w, http.StatusConflict, "Duplicate request")
				return
			}
			h.logger.Warn("idempotency check", slog.Any("error", err))
		}
	}
	ref, err := h.service.Create(r.Context(), req)
	if err != nil {
		if key != "" {
			_ = h.idem.Delete(r.Context(), key, "sales")
		}
		h.logger.Warn("create sale", slog.Any("error", err))
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	httpx.OK(w, ref)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	docNo, err := httpx.PathID(r, "docno")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	var req SaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	header, err := h.service.Update(r.Context(), docNo, req)
	if err != nil {
		h.logger.Warn("update sale", slog.Int64("docno", docNo), slog.Any("error", err))
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	httpx.OK(w, header)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	docNo, err := httpx.PathID(r, "docno")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.Delete(r.Context(), docNo); err != nil {
		h.logger.Warn("delete sale", slog.Int64("docno", docNo), slog.Any("error", err))
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	httpx.OK(w, nil)
}
