package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheVersionKey = "salesdesk:stats:version"
	bumpChannel     = "salesdesk:stats:bump"
	loadTimeout     = 30 * time.Second
)

// CacheObserver is told whether a lookup was served from Redis.
type CacheObserver interface {
	ObserveStatsCache(result string)
}

// Cache stores computed statistics in Redis under a versioned key. A nil
// *Cache, or one without a client, always calls the loader.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
	observer CacheObserver
	group    singleflight.Group
}

// NewCache returns nil when client is nil or ttl is not positive, which
// disables caching while still satisfying shared.ChangeNotifier.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger, observer CacheObserver) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger, observer: observer}
}

// Version returns the current cache version, resetting a missing,
// non-numeric or non-positive value to 1.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) && !isNotInteger(err) {
		return 0, err
	}
	// Atomic so concurrent initialisers agree on the first version.
	return initVersionScript.Run(ctx, c.client, []string{cacheVersionKey}).Int64()
}

var initVersionScript = redis.NewScript(`
local v = tonumber(redis.call('GET', KEYS[1]))
if v == nil or v <= 0 then
	redis.call('SET', KEYS[1], 1)
	return 1
end
return v
`)

func isNotInteger(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr)
}

// BuildKey composes the key for parts under the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"salesdesk", "stats"}, parts...), ":")
	if c == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the cached value for key into dest, or runs loader,
// stores its result and decodes that. Concurrent misses on one key share a
// single loader call.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("stats cache: loader required")
	}
	if c == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.observe("hit")
		return json.Unmarshal(payload, dest)
	case !errors.Is(err, redis.Nil):
		// Serve from storage while Redis is unavailable.
		c.logger.Warn("stats cache read failed", slog.String("key", key), slog.Any("error", err))
		c.observe("error")
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}
	c.observe("miss")

	resultCh := c.group.DoChan(key, func() (any, error) {
		// Shared by every waiter on key, so it must outlive the caller that started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		value, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(loadCtx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("stats cache write failed", slog.String("key", key), slog.Any("error", err))
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every cached entry by moving to a new version and
// announcing it to other instances.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		c.logger.Warn("stats cache bump failed", slog.Any("error", err))
		return err
	}
	if err := c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		c.logger.Warn("stats cache bump not announced", slog.Int64("version", ver), slog.Any("error", err))
		return err
	}
	return nil
}

// ListenForInvalidation subscribes to version bumps until ctx is done.
// onBump, when set, receives every announced version.
func (c *Cache) ListenForInvalidation(ctx context.Context, onBump func(version int64)) error {
	if c == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", bumpChannel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					c.logger.Warn("ignoring malformed stats bump", slog.String("payload", msg.Payload))
					continue
				}
				c.logger.Debug("stats cache invalidated", slog.Int64("version", ver))
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}

func (c *Cache) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveStatsCache(result)
	}
}

func roundTrip(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
