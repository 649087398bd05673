package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runApp 以给定参数执行 CLI，省去 "flashctl" 之外的样板。
func runApp(t *testing.T, mr *miniredis.Miniredis, args ...string) error {
	t.Helper()

	full := append([]string{"flashctl", "--redis", mr.Addr()}, args...)
	return createApp().Run(context.Background(), full)
}

func newTestMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestWarmCommand_WritesLogicalExpireEnvelope(t *testing.T) {
	// Given
	mr := newTestMiniredis(t)

	// When
	err := runApp(t, mr, "warm", "shop:1", `{"id":1,"name":"coffee"}`, "--ttl", "1h")

	// Then
	require.NoError(t, err)
	raw, err := mr.Get("shop:1")
	require.NoError(t, err)

	var env peekEnvelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.NotNil(t, env.ExpireAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *env.ExpireAt, 10*time.Second)
	assert.JSONEq(t, `{"id":1,"name":"coffee"}`, string(env.Data))
}

func TestWarmCommand_WhenInvalidJSON_ReturnsUsageError(t *testing.T) {
	mr := newTestMiniredis(t)

	err := runApp(t, mr, "warm", "shop:1", "{not json")

	var usageErr *usageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestWarmCommand_WhenMissingArgs_ReturnsUsageError(t *testing.T) {
	mr := newTestMiniredis(t)

	err := runApp(t, mr, "warm", "shop:1")

	var usageErr *usageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestPeekCommand_OnAllEntryShapes(t *testing.T) {
	// Given: 不存在、空值标记、普通信封、逻辑过期信封
	mr := newTestMiniredis(t)
	mr.Set("null:1", "")
	mr.Set("plain:1", `{"data":{"id":1}}`)
	mr.Set("hot:1", `{"data":{"id":1},"expireAt":"2020-01-01T00:00:00Z"}`)

	for _, key := range []string{"missing:1", "null:1", "plain:1", "hot:1"} {
		assert.NoError(t, runApp(t, mr, "peek", key), "peek %s", key)
	}
}

func TestDelCommand_RemovesKey(t *testing.T) {
	// Given
	mr := newTestMiniredis(t)
	mr.Set("shop:1", "value")

	// When
	err := runApp(t, mr, "del", "shop:1")

	// Then
	require.NoError(t, err)
	assert.False(t, mr.Exists("shop:1"))
}

func TestNextIDCommand_IncrementsDailyCounter(t *testing.T) {
	// Given
	mr := newTestMiniredis(t)

	// When
	require.NoError(t, runApp(t, mr, "nextid", "order"))
	require.NoError(t, runApp(t, mr, "nextid", "order"))

	// Then
	key := "icr:order:" + time.Now().UTC().Format("20060102")
	counter, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", counter)
}

func TestConnect_WhenRedisDown_ReturnsError(t *testing.T) {
	mr := newTestMiniredis(t)
	mr.Close()

	err := runApp(t, mr, "del", "shop:1")

	assert.Error(t, err)
	var usageErr *usageError
	assert.False(t, errors.As(err, &usageErr))
}
