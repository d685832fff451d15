package sales

import "github.com/go-chi/chi/v5"

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{docno}", h.show)
	r.Put("/{docno}", h.update)
	r.Delete("/{docno}", h.delete)
}
