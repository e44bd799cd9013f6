// Package main はodido-bridge（Odidoアカウント連携ブリッジ）のエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/action"
	"github.com/oyaguma3/odido-bridge/internal/config"
	"github.com/oyaguma3/odido-bridge/internal/coordinator"
	"github.com/oyaguma3/odido-bridge/internal/odido"
	"github.com/oyaguma3/odido-bridge/internal/registry"
	"github.com/oyaguma3/odido-bridge/internal/sensor"
	"github.com/oyaguma3/odido-bridge/internal/server"
	"github.com/oyaguma3/odido-bridge/internal/store"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
	"github.com/oyaguma3/odido-bridge/pkg/logging"
	"github.com/oyaguma3/odido-bridge/pkg/valkey"
)

func main() {
	// 1. 環境変数読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定読み込み失敗", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化（JSON形式、INFO以上）
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("app", "odido-bridge")
	slog.SetDefault(logger)

	slog.Info("odido-bridge起動開始",
		"listen_addr", cfg.ListenAddr,
		"api_base_url", cfg.APIBaseURL,
		"refresh_interval_sec", cfg.RefreshIntervalSec,
	)

	// 3. Valkeyクライアント初期化
	valkeyClient, err := valkey.NewClient(valkey.BridgeOptions().
		WithAddr(cfg.ValkeyAddr()).
		WithPassword(cfg.RedisPass))
	if err != nil {
		slog.Error("Valkey接続失敗",
			"event_id", "VALKEY_CONN_ERR",
			"error", err,
		)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	slog.Info("Valkey接続完了", "addr", cfg.ValkeyAddr())

	// 4. アクセストークン解決（環境変数優先、なければ保存済みトークン）
	tokenStore := store.NewTokenStore(valkeyClient)
	accessToken := cfg.AccessToken
	if accessToken == "" {
		ctx, cancel := context.WithTimeout(context.Background(), config.ValkeyCommandTimeout)
		accessToken, err = tokenStore.Load(ctx)
		cancel()
		if err != nil {
			if errors.Is(err, apperr.ErrTokenNotFound) {
				slog.Error("アクセストークン未設定。POST /api/v1/token で認可コードを交換してください",
					"event_id", "TOKEN_MISSING",
				)
			} else {
				slog.Error("アクセストークン読み込み失敗",
					"event_id", "TOKEN_LOAD_ERR",
					"error", err,
				)
			}
			os.Exit(1)
		}
	}

	// 5. Odido APIクライアント初期化
	apiClient := odido.NewClient(cfg, accessToken)

	// 6. トークン検証（/account/current）
	// 通信エラーはリトライ可能な起動失敗、業務エラーは再認証が必要
	validateCtx, cancel := context.WithTimeout(context.Background(), config.CAPIRequestTimeout)
	_, err = apiClient.Account(validateCtx)
	cancel()
	if err != nil {
		var bizErr *odido.BusinessError
		if errors.As(err, &bizErr) {
			slog.Error("Odido認証失敗。トークンを再取得してください",
				"event_id", "AUTH_FAILED",
				"error_code", bizErr.Code,
			)
		} else {
			slog.Error("Odidoアカウント情報の取得失敗。後ほど再起動してください",
				"event_id", "SETUP_NOT_READY",
				"error", err,
			)
		}
		os.Exit(1)
	}

	slog.Info("トークン検証完了")

	// 7. 共通ログフィールド（MSISDNマスキング）
	fields := logging.NewCommonFields(logging.NewMasker(cfg.LogMaskMSISDN))

	// 8. Coordinator生成
	coord := coordinator.New(apiClient, time.Duration(cfg.RefreshIntervalSec)*time.Second, fields)

	// 9. レジストリ/センサー/ミラーをリスナーとして登録
	reg := registry.New()
	sensors := sensor.NewManager(reg, coord, fields)
	coord.AddListener(sensors)

	mirror := store.NewSnapshotMirror(valkeyClient, config.SnapshotMirrorTTL)
	coord.AddListener(mirror)

	// 10. アクションハンドラ
	actions := action.NewHandler(apiClient, sensors)

	// 11. HTTPサーバー
	handler := server.NewHandler(cfg, coord, reg, sensors, actions, tokenStore, fields)
	srv := server.New(cfg, handler)

	// 12. ポーリングループ起動（起動直後に1回強制リフレッシュ）
	pollCtx, stopPolling := context.WithCancel(context.Background())
	go coord.Run(pollCtx)

	// 13. サーバー起動（goroutine）
	go func() {
		if err := srv.Run(); err != nil {
			slog.Error("サーバーエラー", "error", err)
		}
	}()

	// 14. シグナル待機 → Graceful Shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	slog.Info("シグナル受信、シャットダウン開始", "signal", sig)

	stopPolling()

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("シャットダウンエラー", "error", err)
	}

	slog.Info("odido-bridge停止完了")
}
