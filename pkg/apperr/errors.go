// Package apperr は共通エラー定義を提供する。
package apperr

import "errors"

// 認証関連エラー
var (
	// ErrAuthFailed はOdidoアカウント認証失敗エラー（再認証が必要）
	ErrAuthFailed = errors.New("odido authentication failed")
	// ErrTokenNotFound はアクセストークンが未保存の場合のエラー
	ErrTokenNotFound = errors.New("access token not found")
)

// スナップショット関連エラー
var (
	// ErrSnapshotNotReady は初回リフレッシュ完了前のアクセスエラー
	ErrSnapshotNotReady = errors.New("snapshot not ready")
	// ErrSubscriptionNotFound は指定MSISDNのサブスクリプションが見つからない場合のエラー
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// デバイス/エンティティ関連エラー
var (
	// ErrDeviceNotFound はデバイスIDが未登録の場合のエラー
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNoMatchingDevice は購入アクション対象のセンサーを持つデバイスが見つからない場合のエラー
	ErrNoMatchingDevice = errors.New("no matching device sensor found")
)

// インフラ関連エラー
var (
	// ErrValkeyConnection はValkey接続エラー
	ErrValkeyConnection = errors.New("valkey connection error")
	// ErrValkeyCommand はValkeyコマンド実行エラー
	ErrValkeyCommand = errors.New("valkey command error")
)
