package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/flashkit/pkg/config/xconf"
	"github.com/omeyang/flashkit/pkg/storage/xcache"
	"github.com/omeyang/flashkit/pkg/util/xseqid"
)

// usageError 表示参数错误，main 将其映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createWarmCommand(),
		createPeekCommand(),
		createDelCommand(),
		createNextIDCommand(),
	}
}

// loadSettings 解析配置并应用命令行覆盖。
func loadSettings(cmd *cli.Command) (*xconf.Settings, error) {
	var settings *xconf.Settings
	if path := cmd.String("config"); path != "" {
		loaded, err := xconf.Load(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	} else {
		defaults := xconf.DefaultSettings()
		settings = &defaults
	}

	if addr := cmd.String("redis"); addr != "" {
		settings.Redis.Addrs = []string{addr}
	}
	return settings, nil
}

// connect 建立 Redis 连接并做一次探活。
func connect(ctx context.Context, cmd *cli.Command) (redis.UniversalClient, *xconf.Settings, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	client := xconf.NewRedisClient(settings.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return client, settings, nil
}

func createWarmCommand() *cli.Command {
	return &cli.Command{
		Name:      "warm",
		Usage:     "以逻辑过期信封预热一个键",
		ArgsUsage: "<key> <json>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "逻辑有效期",
				Value: time.Hour,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return &usageError{msg: "warm 需要 <key> 和 <json> 两个参数"}
			}
			key, payload := cmd.Args().Get(0), cmd.Args().Get(1)
			if !json.Valid([]byte(payload)) {
				return &usageError{msg: "payload 不是合法 JSON"}
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			client, settings, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			cache, err := xcache.New(client, settings.CacheOptions()...)
			if err != nil {
				return err
			}
			defer func() { _ = cache.Close() }()

			ttl := cmd.Duration("ttl")
			if err := cache.SetWithLogicalExpire(ctx, key, json.RawMessage(payload), ttl); err != nil {
				return err
			}
			fmt.Printf("已预热 %s（逻辑有效期 %s）\n", key, ttl)
			return nil
		},
	}
}

// peekEnvelope 与缓存信封的线格式保持一致，仅用于展示。
type peekEnvelope struct {
	Data     json.RawMessage `json:"data"`
	ExpireAt *time.Time      `json:"expireAt,omitempty"`
}

func createPeekCommand() *cli.Command {
	return &cli.Command{
		Name:      "peek",
		Usage:     "查看键的信封内容与新鲜度",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "peek 需要 <key> 参数"}
			}
			key := cmd.Args().Get(0)

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			client, _, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			raw, err := client.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				fmt.Printf("%s: 不存在\n", key)
				return nil
			}
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				fmt.Printf("%s: 空值标记（负缓存）\n", key)
				return nil
			}

			var env peekEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				fmt.Printf("%s: 非信封格式，原始值: %s\n", key, raw)
				return nil
			}
			switch {
			case env.ExpireAt == nil:
				fmt.Printf("%s: 普通条目\n", key)
			case env.ExpireAt.After(time.Now()):
				fmt.Printf("%s: 逻辑过期条目，新鲜（%s 过期）\n", key, env.ExpireAt.Format(time.RFC3339))
			default:
				fmt.Printf("%s: 逻辑过期条目，已陈旧（%s 过期）\n", key, env.ExpireAt.Format(time.RFC3339))
			}
			fmt.Printf("payload: %s\n", env.Data)
			return nil
		},
	}
}

func createDelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Usage:     "删除（失效）一个键",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "del 需要 <key> 参数"}
			}
			key := cmd.Args().Get(0)

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			client, _, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			deleted, err := client.Del(ctx, key).Result()
			if err != nil {
				return err
			}
			if deleted == 0 {
				fmt.Printf("%s: 不存在\n", key)
			} else {
				fmt.Printf("已删除 %s\n", key)
			}
			return nil
		},
	}
}

func createNextIDCommand() *cli.Command {
	return &cli.Command{
		Name:      "nextid",
		Usage:     "为业务前缀签发一个序号 ID",
		ArgsUsage: "<prefix>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "nextid 需要 <prefix> 参数"}
			}
			prefix := cmd.Args().Get(0)

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			client, settings, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			opts, err := settings.SequenceOptions()
			if err != nil {
				return err
			}
			gen, err := xseqid.NewGenerator(client, opts...)
			if err != nil {
				return err
			}

			id, err := gen.NextID(ctx, prefix)
			if err != nil {
				return err
			}
			parts := gen.Decompose(id)
			fmt.Printf("%d (time=%s sequence=%d)\n", id, parts.Time.Format(time.RFC3339), parts.Sequence)
			return nil
		},
	}
}
