package stats

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/observability"
)

type recordingObserver struct {
	mu      sync.Mutex
	results map[string]int
}

func (o *recordingObserver) ObserveStatsCache(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.results == nil {
		o.results = map[string]int{}
	}
	o.results[result]++
}

func (o *recordingObserver) count(result string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results[result]
}

func newTestCache(t *testing.T, observer CacheObserver) (*Cache, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute, nil, observer), client
}

func TestNewCacheDisabled(t *testing.T) {
	assert.Nil(t, NewCache(nil, time.Minute, nil, nil))
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	assert.Nil(t, NewCache(client, 0, nil, nil))

	var c *Cache
	assert.NoError(t, c.Bump(context.Background()))
	key, err := c.BuildKey(context.Background(), "global")
	require.NoError(t, err)
	assert.Equal(t, "salesdesk:stats:global", key)
}

func TestCachedGlobalServedUntilBump(t *testing.T) {
	observer := &recordingObserver{}
	cache, _ := newTestCache(t, observer)
	repo := &fakeRepository{items: 1, amounts: []DetailAmount{{UnitPrice: decimal.NewFromInt(3), Qty: 1}}}
	svc := NewService(repo, cache)
	ctx := context.Background()

	first, err := svc.Global(ctx)
	require.NoError(t, err)
	repo.items = 9
	second, err := svc.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TotalItems, second.TotalItems)
	assert.True(t, second.TotalSales.TotalPrice.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int32(1), repo.loads.Load())
	assert.Equal(t, 1, observer.count("hit"))
	assert.Equal(t, 1, observer.count("miss"))

	require.NoError(t, cache.Bump(ctx))
	third, err := svc.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), third.TotalItems)
}

func TestVersionedKeys(t *testing.T) {
	cache, client := newTestCache(t, nil)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "monthly", "2024")
	require.NoError(t, err)
	assert.Equal(t, "salesdesk:stats:monthly:2024:1", key)

	require.NoError(t, client.Set(ctx, cacheVersionKey, 0, 0).Err())
	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	require.NoError(t, cache.Bump(ctx))
	key, err = cache.BuildKey(ctx, "monthly", "2024")
	require.NoError(t, err)
	assert.Equal(t, "salesdesk:stats:monthly:2024:2", key)
}

func TestVersionResetsCorruptValues(t *testing.T) {
	cache, client := newTestCache(t, nil)
	ctx := context.Background()

	for _, raw := range []string{"0", "-7", "garbage"} {
		require.NoError(t, client.Set(ctx, cacheVersionKey, raw, 0).Err())
		ver, err := cache.Version(ctx)
		require.NoError(t, err, raw)
		assert.Equal(t, int64(1), ver, raw)
		stored, err := client.Get(ctx, cacheVersionKey).Result()
		require.NoError(t, err)
		assert.Equal(t, "1", stored, raw)
	}

	require.NoError(t, client.Set(ctx, cacheVersionKey, 5, 0).Err())
	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), ver)
}

func TestFetchJSONCoalescesMisses(t *testing.T) {
	cache, _ := newTestCache(t, nil)
	ctx := context.Background()

	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	loader := func(context.Context) (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return []MonthlySales{{Month: "2024-01", TotalSales: 1}}, nil
	}

	var wg sync.WaitGroup
	results := make([][]MonthlySales, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, cache.FetchJSON(ctx, "k", &results[i], loader))
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, r := range results {
		assert.Equal(t, []MonthlySales{{Month: "2024-01", TotalSales: 1}}, r)
	}
}

func TestFetchJSONSurvivesFirstCallerCancelling(t *testing.T) {
	cache, _ := newTestCache(t, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	loader := func(ctx context.Context) (any, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return GlobalStats{TotalItems: 3}, nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		var out GlobalStats
		errA <- cache.FetchJSON(ctxA, "global", &out, loader)
	}()
	<-started

	var outB GlobalStats
	errB := make(chan error, 1)
	go func() {
		errB <- cache.FetchJSON(context.Background(), "global", &outB, loader)
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	require.NoError(t, <-errB)
	assert.Equal(t, int64(3), outB.TotalItems)
}

func TestListenForInvalidation(t *testing.T) {
	cache, _ := newTestCache(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int64, 1)
	require.NoError(t, cache.ListenForInvalidation(ctx, func(v int64) { got <- v }))
	require.NoError(t, cache.Bump(ctx))

	select {
	case v := <-got:
		assert.Equal(t, int64(1), v)
	case <-time.After(2 * time.Second):
		t.Fatal("no invalidation received")
	}
}

func TestInvalidationFeedsVersionGauge(t *testing.T) {
	metrics := observability.NewMetrics()
	cache, _ := newTestCache(t, metrics)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cache.ListenForInvalidation(ctx, metrics.SetStatsCacheVersion))
	require.NoError(t, cache.Bump(ctx))
	require.NoError(t, cache.Bump(ctx))

	assert.Eventually(t, func() bool {
		rr := httptest.NewRecorder()
		metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return strings.Contains(rr.Body.String(), "salesdesk_stats_cache_version 2")
	}, 2*time.Second, 10*time.Millisecond)
}

// failPublish rejects PUBLISH and passes every other command through.
type failPublish struct{}

func (failPublish) DialHook(next redis.DialHook) redis.DialHook { return next }

func (failPublish) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "publish" {
			err := errors.New("publish rejected")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (failPublish) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

var _ redis.Hook = failPublish{}

func TestBumpLogsUnannouncedVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	client.AddHook(failPublish{})
	var buf bytes.Buffer
	cache := NewCache(client, time.Minute, slog.New(slog.NewTextHandler(&buf, nil)), nil)

	err := cache.Bump(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "stats cache bump not announced")
	assert.Contains(t, buf.String(), "version=1")

	got, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestServiceFallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	observer := &recordingObserver{}
	cache := NewCache(client, time.Minute, nil, observer)
	mr.Close()

	svc := NewService(&fakeRepository{items: 2, customers: 1, sales: 1}, cache)
	got, err := svc.Global(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalItems)

	monthly, err := svc.Monthly(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, monthly, 12)
}
