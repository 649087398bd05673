package xcache_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/flashkit/pkg/storage/xcache"
)

type shop struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func exampleSetup() (*xcache.Cache, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache, err := xcache.New(client)
	if err != nil {
		panic(err)
	}
	return cache, func() {
		_ = cache.Close()
		_ = client.Close()
		mr.Close()
	}
}

// ExampleCache_GetWithPassThrough 演示穿透防护读取：
// 不存在的 id 第一次回源后被负记忆，后续查询不再打到后端。
func ExampleCache_GetWithPassThrough() {
	cache, cleanup := exampleSetup()
	defer cleanup()

	ctx := context.Background()
	loadCount := 0
	loadFn := func(ctx context.Context, id string) (any, error) {
		loadCount++
		if id == "1" {
			return shop{ID: 1, Name: "coffee"}, nil
		}
		return nil, nil // 后端确认不存在
	}

	var got shop
	if err := cache.GetWithPassThrough(ctx, "shop:", "1", &got, loadFn, 30*time.Minute); err == nil {
		fmt.Println("found:", got.Name)
	}

	for i := 0; i < 3; i++ {
		err := cache.GetWithPassThrough(ctx, "shop:", "404", &got, loadFn, 30*time.Minute)
		fmt.Println("missing:", errors.Is(err, xcache.ErrNotFound))
	}
	fmt.Println("backend calls:", loadCount)

	// Output:
	// found: coffee
	// missing: true
	// missing: true
	// missing: true
	// backend calls: 2
}

// ExampleCache_SetWithLogicalExpire 演示热点键预热与逻辑过期读取。
func ExampleCache_SetWithLogicalExpire() {
	cache, cleanup := exampleSetup()
	defer cleanup()

	ctx := context.Background()
	if err := cache.SetWithLogicalExpire(ctx, "shop:1", shop{ID: 1, Name: "coffee"}, time.Hour); err != nil {
		panic(err)
	}

	loadFn := func(ctx context.Context, id string) (any, error) {
		return shop{ID: 1, Name: "rebuilt"}, nil
	}

	var got shop
	if err := cache.GetWithLogicalExpire(ctx, "shop:", "1", &got, loadFn, time.Hour); err != nil {
		panic(err)
	}
	fmt.Println("value:", got.Name)

	// Output:
	// value: coffee
}
