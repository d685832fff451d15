package shared

import (
	"context"
	"log/slog"
)

// ChangeNotifier is told about every committed write so derived data
// (cached statistics) can be invalidated.
type ChangeNotifier interface {
	Bump(ctx context.Context) error
}

// NopNotifier ignores change notifications.
type NopNotifier struct{}

// Bump implements ChangeNotifier.
func (NopNotifier) Bump(context.Context) error { return nil }

// NotifyChange bumps n after a committed write. The write stands either way,
// so a failure is logged rather than returned; readers may see stale
// statistics until the cache TTL expires.
func NotifyChange(ctx context.Context, n ChangeNotifier, logger *slog.Logger) {
	if n == nil {
		return
	}
	if err := n.Bump(ctx); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "stats invalidation failed", slog.Any("error", err))
	}
}
