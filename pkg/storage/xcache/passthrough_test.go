package xcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// 穿透防护测试
// =============================================================================

func TestCache_GetWithPassThrough_WhenCacheHit_SkipsLoader(t *testing.T) {
	// Given
	cache, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "shop:1", testShop{ID: 1, Name: "coffee"}, time.Minute))

	loadCount := 0
	loadFn := func(ctx context.Context, id string) (any, error) {
		loadCount++
		return testShop{ID: 1, Name: "backend"}, nil
	}

	// When
	var got testShop
	err := cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, time.Minute)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Name)
	assert.Equal(t, 0, loadCount)
}

func TestCache_GetWithPassThrough_WhenCacheMiss_LoadsAndBackfills(t *testing.T) {
	// Given
	cache, mr := newTestCache(t)
	ctx := context.Background()

	loadFn := func(ctx context.Context, id string) (any, error) {
		assert.Equal(t, "1", id)
		return testShop{ID: 1, Name: "backend"}, nil
	}

	// When
	var got testShop
	err := cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, 30*time.Minute)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "backend", got.Name)
	assert.True(t, mr.Exists("shop:1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("shop:1"))

	// 回填后再次读取直接命中
	loadCount := 0
	countFn := func(ctx context.Context, id string) (any, error) {
		loadCount++
		return nil, nil
	}
	var again testShop
	require.NoError(t, cache.GetWithPassThrough(ctx, "shop:", "1", &again, countFn, time.Minute))
	assert.Equal(t, "backend", again.Name)
	assert.Equal(t, 0, loadCount)
}

func TestCache_GetWithPassThrough_WhenBackendMissing_CachesNullMarker(t *testing.T) {
	// Given
	cache, mr := newTestCache(t, WithNullTTL(2*time.Minute))
	ctx := context.Background()

	loadCount := 0
	loadFn := func(ctx context.Context, id string) (any, error) {
		loadCount++
		return nil, nil
	}

	// When: 第一次未命中，回源确认不存在
	var got testShop
	err := cache.GetWithPassThrough(ctx, "shop:", "404", &got, loadFn, time.Minute)

	// Then
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, loadCount)

	raw, getErr := mr.Get("shop:404")
	require.NoError(t, getErr)
	assert.Equal(t, emptyMarker, raw)
	assert.Equal(t, 2*time.Minute, mr.TTL("shop:404"))

	// When: 第二次命中空值标记，不再回源
	err = cache.GetWithPassThrough(ctx, "shop:", "404", &got, loadFn, time.Minute)

	// Then
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, loadCount)
}

func TestCache_GetWithPassThrough_WhenLoaderFails_ReturnsErrorWithoutMarker(t *testing.T) {
	// Given
	cache, mr := newTestCache(t)
	ctx := context.Background()
	backendErr := errors.New("db down")

	loadFn := func(ctx context.Context, id string) (any, error) {
		return nil, backendErr
	}

	// When
	var got testShop
	err := cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, time.Minute)

	// Then: 失败 ≠ 不存在，不写空值标记
	require.ErrorIs(t, err, backendErr)
	assert.False(t, mr.Exists("shop:1"))
}

func TestCache_GetWithPassThrough_WhenNilLoader_ReturnsError(t *testing.T) {
	cache, _ := newTestCache(t)

	var got testShop
	err := cache.GetWithPassThrough(context.Background(), "shop:", "1", &got, nil, time.Minute)

	assert.ErrorIs(t, err, ErrNilLoader)
}

func TestCache_GetWithPassThrough_WithSingleflight_MergesConcurrentLoads(t *testing.T) {
	// Given
	cache, _ := newTestCache(t, WithSingleflight(true))
	ctx := context.Background()

	var loadCount atomic.Int32
	gate := make(chan struct{})
	loadFn := func(ctx context.Context, id string) (any, error) {
		loadCount.Add(1)
		<-gate
		return testShop{ID: 1, Name: "merged"}, nil
	}

	// When: 并发请求同一个冷 key
	const goroutines = 8
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	started := make(chan struct{}, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			started <- struct{}{}
			var got testShop
			errs[idx] = cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, time.Minute)
		}(i)
	}
	for i := 0; i < goroutines; i++ {
		<-started
	}
	time.Sleep(50 * time.Millisecond) // 等待各 goroutine 汇入 singleflight
	close(gate)
	wg.Wait()

	// Then: 只有第一批到达者触发回源
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, loadCount.Load(), int32(2))
}

func TestCache_GetWithPassThrough_WithBreaker_OpenStateReturnsBackendUnavailable(t *testing.T) {
	// Given: 连续 2 次失败后熔断打开
	cache, _ := newTestCache(t, WithBreaker(gobreaker.Settings{
		Name: "loader",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))
	ctx := context.Background()
	backendErr := errors.New("db down")
	loadFn := func(ctx context.Context, id string) (any, error) {
		return nil, backendErr
	}

	var got testShop
	for i := 0; i < 2; i++ {
		err := cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, time.Minute)
		require.ErrorIs(t, err, backendErr)
	}

	// When: 熔断打开后请求被短路
	err := cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, time.Minute)

	// Then
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}
