package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
	ValkeyPoolSize       = 5
)

// Odido API接続設定
const (
	CAPIRequestTimeout = 15 * time.Second

	// 冪等なGETのみ自動リトライする
	CAPIRetryCount       = 5
	CAPIRetryWaitTime    = 3 * time.Second
	CAPIRetryMaxWaitTime = 48 * time.Second
)

// Circuit Breaker設定
const (
	CBName             = "odido-capi"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// スナップショットミラーのTTL
// 2リフレッシュ周期分保持し、デーモン停止後は自然に消える
const (
	SnapshotMirrorTTL = 3 * time.Minute
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
