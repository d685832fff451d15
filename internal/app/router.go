package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/masterdata/customers"
	"github.com/salesdesk/salesdesk/internal/masterdata/items"
	"github.com/salesdesk/salesdesk/internal/observability"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/sales"
	"github.com/salesdesk/salesdesk/internal/stats"
	"github.com/salesdesk/salesdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	CustomersHandler *customers.Handler
	ItemsHandler     *items.Handler
	SalesHandler     *sales.Handler
	StatsHandler     *stats.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with the API mounted under the
// configured prefix and operational endpoints at the root.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	mountAPI(r, apiPrefix(params.Config), func(api chi.Router) {
		api.Get("/", func(w http.ResponseWriter, r *http.Request) {
			httpx.OK(w, map[string]string{"message": "salesdesk API is running"})
		})

		if params.AuthHandler != nil {
			signInLimit := 10
			if params.Config != nil && params.Config.SignInRateLimitPerMinute > 0 {
				signInLimit = params.Config.SignInRateLimitPerMinute
			}
			params.AuthHandler.MountRoutes(api, RateLimit(signInLimit))
		}

		api.Group(func(data chi.Router) {
			if params.Config != nil && params.Config.AuthRequired && params.AuthService != nil {
				data.Use(auth.RequireAuth(params.AuthService, params.Logger))
			}
			if params.CustomersHandler != nil {
				data.Route("/customers", params.CustomersHandler.MountRoutes)
			}
			if params.ItemsHandler != nil {
				data.Route("/items", params.ItemsHandler.MountRoutes)
			}
			if params.SalesHandler != nil {
				data.Route("/sales", params.SalesHandler.MountRoutes)
			}
			if params.StatsHandler != nil {
				params.StatsHandler.MountRoutes(data)
			}
		})
	})

	return r
}

func apiPrefix(cfg *Config) string {
	if cfg == nil {
		return "/api/v1"
	}
	return cfg.APIPrefix
}

// mountAPI registers fn under prefix, or on r itself when prefix is empty.
func mountAPI(r chi.Router, prefix string, fn func(chi.Router)) {
	if prefix == "" || prefix == "/" {
		r.Group(fn)
		return
	}
	r.Route(prefix, fn)
}
