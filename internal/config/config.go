package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// Valkey接続設定
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort string `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// Odido API設定
	// AccessTokenが空の場合はValkeyに保存済みのトークンを使用する
	APIBaseURL  string `envconfig:"ODIDO_API_BASE_URL" default:"https://capi.odido.nl"`
	AccessToken string `envconfig:"ODIDO_ACCESS_TOKEN"`
	BuyingCode  string `envconfig:"ODIDO_BUYING_CODE" default:"A0DAY01"`

	// HTTPサーバー設定
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8093"`
	GinMode    string `envconfig:"GIN_MODE" default:"release"`

	// リフレッシュ設定
	RefreshIntervalSec int `envconfig:"REFRESH_INTERVAL_SEC" default:"90"`

	// ログ設定
	LogMaskMSISDN bool `envconfig:"LOG_MASK_MSISDN" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("ODIDO_API_BASE_URL must start with http:// or https://")
	}
	if c.RefreshIntervalSec <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL_SEC must be positive")
	}
	if strings.TrimSpace(c.BuyingCode) == "" {
		return fmt.Errorf("ODIDO_BUYING_CODE must not be empty")
	}
	return nil
}
