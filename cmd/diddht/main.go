// Package main 提供 diddht 命令行入口
//
// 子命令：
//   - keygen: 生成身份密钥并写入密钥库
//   - create: 创建文档（可选立即发布）
//   - publish: 发布 JSON 文档
//   - resolve: 解析标识符
//   - encode / decode: DNS 报文编解码，不访问 DHT
//   - keys: 列出密钥库中的标识符
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/dep2p/go-diddht"
	"github.com/dep2p/go-diddht/internal/util/logger"
)

var log = logger.Logger("cmd")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "diddht",
		Usage:   "publish and resolve did:dht documents",
		Version: diddht.VersionInfo(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "JSON config file",
				EnvVars: []string{"DIDDHT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "preset",
				Usage:   "config preset (memory/local/relay/test)",
				Value:   diddht.PresetNameLocal,
				EnvVars: []string{"DIDDHT_PRESET"},
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "data directory for records, seq counters and keys",
			},
			&cli.StringFlag{
				Name:  "dht-mode",
				Usage: "dht client (memory/persistent/relay)",
			},
			&cli.StringFlag{
				Name:  "relay-url",
				Usage: "HTTP gateway base url, implies --dht-mode=relay",
			},
			&cli.StringFlag{
				Name:  "seq-source",
				Usage: "sequence source (clock/counter/kv)",
			},
			&cli.StringFlag{
				Name:    "keystore",
				Usage:   "keystore directory (default <data-dir>/keys)",
				EnvVars: []string{"DIDDHT_KEYSTORE"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "keystore password, empty stores keys unencrypted",
				EnvVars: []string{"DIDDHT_KEYSTORE_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log levels, e.g. record=debug,warn",
				EnvVars: []string{logger.EnvLogLevel},
			},
		},
		Before: func(cctx *cli.Context) error {
			if spec := cctx.String("log-level"); spec != "" {
				cfg := *logger.ConfigFromEnv()
				logger.ParseLevelSpec(&cfg, spec)
				logger.Configure(&cfg)
			}
			return nil
		},
		Commands: []*cli.Command{
			keygenCommand,
			keysCommand,
			createCommand,
			publishCommand,
			resolveCommand,
			encodeCommand,
			decodeCommand,
		},
		DisableSliceFlagSeparator: true,
		ErrWriter:                 os.Stderr,
	}
}

// openClient 按全局参数启动客户端
func openClient(cctx *cli.Context) (*diddht.Client, error) {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return nil, err
	}
	log.Debug("启动客户端", "dht", cfg.DHT.Mode, "seq", cfg.Seq.Source, "dataDir", cfg.Storage.DataDir)
	return diddht.Start(cctx.Context, diddht.WithConfig(cfg))
}
