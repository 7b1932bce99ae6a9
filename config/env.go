package config

import (
	"fmt"
	"strconv"
)

// 环境变量名
const (
	EnvDataDir     = "DIDDHT_DATA_DIR"
	EnvKeyType     = "DIDDHT_KEY_TYPE"
	EnvDHTMode     = "DIDDHT_DHT_MODE"
	EnvRelayURL    = "DIDDHT_RELAY_URL"
	EnvDHTTimeout  = "DIDDHT_DHT_TIMEOUT"
	EnvSeqSource   = "DIDDHT_SEQ_SOURCE"
	EnvMaxPacket   = "DIDDHT_MAX_PACKET_SIZE"
	EnvCacheEnable = "DIDDHT_CACHE_ENABLED"
)

// ApplyEnv 用环境变量覆盖配置
//
// getenv 通常为 os.Getenv，测试中可替换。空值不覆盖。
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvDataDir); v != "" {
		c.Storage.DataDir = v
	}
	if v := getenv(EnvKeyType); v != "" {
		c.Identity.KeyType = v
	}
	if v := getenv(EnvDHTMode); v != "" {
		c.DHT.Mode = v
	}
	if v := getenv(EnvRelayURL); v != "" {
		c.DHT.RelayURL = v
	}
	if v := getenv(EnvDHTTimeout); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvDHTTimeout, err)
		}
		c.DHT.Timeout = d
	}
	if v := getenv(EnvSeqSource); v != "" {
		c.Seq.Source = v
	}
	if v := getenv(EnvMaxPacket); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPacket, err)
		}
		c.Codec.MaxPacketSize = n
	}
	if v := getenv(EnvCacheEnable); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheEnable, err)
		}
		c.Cache.Enabled = b
	}
	return nil
}
