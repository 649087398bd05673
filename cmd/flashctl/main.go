// flashctl 是缓存运维命令行工具，面向预热、巡检与失效操作。
//
// 用法:
//
//	flashctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径 (.yaml/.yml/.json，可选)
//	-r, --redis    Redis 地址（覆盖配置文件）
//	-t, --timeout  命令超时时间 (默认: 10s)
//
// 命令:
//
//	warm <key> <json>   以逻辑过期信封预热一个键 (--ttl 控制逻辑有效期)
//	peek <key>          查看键的信封内容与新鲜度
//	del <key>           删除（失效）一个键
//	nextid <prefix>     为业务前缀签发一个序号 ID
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败
//	2: 参数错误（缺少必需参数、未知命令等）
//
// 示例:
//
//	flashctl warm shop:1 '{"id":1,"name":"coffee"}' --ttl 1h
//	flashctl peek shop:1
//	flashctl del shop:1
//	flashctl -c flashkit.yaml nextid order
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认命令超时时间。
const defaultTimeout = 10 * time.Second

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "flashctl",
		Usage:   "缓存预热与运维命令行工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:    "redis",
				Aliases: []string{"r"},
				Usage:   "Redis 地址（覆盖配置文件）",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "命令超时时间",
				Value:   defaultTimeout,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
