package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dep2p/go-diddht"
	"github.com/dep2p/go-diddht/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// loadConfig 合并配置来源
//
// 优先级从低到高：预设 → 配置文件 → 环境变量（DIDDHT_*，可来自 .env）→ 命令行参数。
// 配置文件替换预设，而不是在预设之上合并。
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := cctx.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = diddht.GetConfigByPreset(cctx.String("preset"))
		if cfg == nil {
			return nil, cli.Exit("unknown preset: "+cctx.String("preset"), 2)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if v := cctx.String("data-dir"); v != "" {
		cfg.Storage.DataDir = v
		cfg.Storage.InMemory = false
	}
	if v := cctx.String("dht-mode"); v != "" {
		cfg.DHT.Mode = v
	}
	if v := cctx.String("relay-url"); v != "" {
		cfg.DHT.Mode = config.DHTModeRelay
		cfg.DHT.RelayURL = v
	}
	if v := cctx.String("seq-source"); v != "" {
		cfg.Seq.Source = v
	}
	if v := cctx.String("keystore"); v != "" {
		cfg.Identity.KeystoreDir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// keystoreDir 返回密钥库目录
func keystoreDir(cfg *config.Config) string {
	if cfg.Identity.KeystoreDir != "" {
		return cfg.Identity.KeystoreDir
	}
	return cfg.Storage.KeysPath()
}
