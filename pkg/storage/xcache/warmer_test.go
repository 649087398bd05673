package xcache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// 预热器测试
// =============================================================================

func TestNewWarmer_WhenNilCache_ReturnsError(t *testing.T) {
	warmer, err := NewWarmer(nil)

	assert.ErrorIs(t, err, ErrNilClient)
	assert.Nil(t, warmer)
}

func TestWarmer_WarmNow_WritesLogicalExpireEnvelope(t *testing.T) {
	// Given
	cache, mr := newTestCache(t)
	warmer, err := NewWarmer(cache)
	require.NoError(t, err)

	loadFn := func(ctx context.Context, id string) (any, error) {
		return testShop{ID: 7, Name: "warmed"}, nil
	}

	// When
	err = warmer.WarmNow(context.Background(), "shop:", "7", loadFn, time.Hour)

	// Then
	require.NoError(t, err)
	raw, getErr := mr.Get("shop:7")
	require.NoError(t, getErr)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.NotNil(t, env.ExpireAt)
	assert.JSONEq(t, `{"id":7,"name":"warmed"}`, string(env.Data))
}

func TestWarmer_WarmNow_WhenBackendMissing_ReturnsNotFound(t *testing.T) {
	// Given
	cache, mr := newTestCache(t)
	warmer, err := NewWarmer(cache)
	require.NoError(t, err)

	loadFn := func(ctx context.Context, id string) (any, error) {
		return nil, nil
	}

	// When
	err = warmer.WarmNow(context.Background(), "shop:", "404", loadFn, time.Hour)

	// Then
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("shop:404"))
}

func TestWarmer_WarmNow_WhenNilLoader_ReturnsError(t *testing.T) {
	cache, _ := newTestCache(t)
	warmer, err := NewWarmer(cache)
	require.NoError(t, err)

	err = warmer.WarmNow(context.Background(), "shop:", "1", nil, time.Hour)

	assert.ErrorIs(t, err, ErrNilLoader)
}

func TestWarmer_Register_SchedulesPeriodicWarm(t *testing.T) {
	// Given
	cache, _ := newTestCache(t)
	warmer, err := NewWarmer(cache)
	require.NoError(t, err)

	var loadCount atomic.Int32
	loadFn := func(ctx context.Context, id string) (any, error) {
		loadCount.Add(1)
		return testShop{ID: 1}, nil
	}

	// When: 标准五字段的最小粒度是分钟，测试里用 @every 描述符缩短周期
	entryID, err := warmer.Register("@every 100ms", "shop:", "1", loadFn, time.Hour)
	require.NoError(t, err)
	warmer.Start()
	defer warmer.Stop()

	// Then
	assert.Eventually(t, func() bool {
		return loadCount.Load() >= 2
	}, 3*time.Second, 20*time.Millisecond)

	warmer.Remove(entryID)
}

func TestWarmer_Register_WhenInvalidSpec_ReturnsError(t *testing.T) {
	cache, _ := newTestCache(t)
	warmer, err := NewWarmer(cache)
	require.NoError(t, err)

	loadFn := func(ctx context.Context, id string) (any, error) {
		return testShop{ID: 1}, nil
	}

	_, err = warmer.Register("not a cron spec", "shop:", "1", loadFn, time.Hour)

	assert.Error(t, err)
}
