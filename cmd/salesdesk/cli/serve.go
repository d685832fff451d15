package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/app"
	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/masterdata/customers"
	"github.com/salesdesk/salesdesk/internal/masterdata/items"
	"github.com/salesdesk/salesdesk/internal/observability"
	"github.com/salesdesk/salesdesk/internal/platform/cache"
	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/sales"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/stats"
	"github.com/salesdesk/salesdesk/jobs"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

The server needs PostgreSQL (PG_DSN) and Redis (REDIS_ADDR). Statistics are
cached in Redis only when STATS_CACHE_TTL is positive.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	cfg, logger := env.cfg, env.logger

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	statsCache := stats.NewCache(redisClient, cfg.StatsCacheTTL, logger, metrics)
	var notifier shared.ChangeNotifier = shared.NopNotifier{}
	if statsCache != nil {
		notifier = statsCache
		if err := statsCache.ListenForInvalidation(ctx, metrics.SetStatsCacheVersion); err != nil {
			logger.Warn("stats cache invalidation feed", slog.Any("error", err))
		}
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	authService := auth.NewService(auth.NewRepository(pool), tokens, auth.NewSessionStore(redisClient))

	customerService := customers.NewService(customers.NewRepository(pool), notifier).WithLogger(logger)
	itemService := items.NewService(items.NewRepository(pool), notifier).WithLogger(logger)
	salesService := sales.NewService(sales.NewRepository(pool), notifier).WithLogger(logger)
	statsService := stats.NewService(stats.NewRepository(pool), statsCache)

	redisOpt, err := cache.AsynqOpt(cfg.RedisAddr)
	if err != nil {
		return err
	}
	inspector := asynq.NewInspector(redisOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      auth.NewHandler(logger, authService),
		CustomersHandler: customers.NewHandler(logger, customerService),
		ItemsHandler:     items.NewHandler(logger, itemService),
		SalesHandler:     sales.NewHandler(logger, salesService).WithIdempotency(shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)),
		StatsHandler:     stats.NewHandler(logger, statsService),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			slog.String("addr", cfg.AppAddr),
			slog.String("prefix", cfg.APIPrefix),
			slog.Bool("auth_required", cfg.AuthRequired),
			slog.Bool("stats_cache", cfg.StatsCacheEnabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
