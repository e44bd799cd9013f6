// Package action はローミングバンドル購入アクションを提供する。
package action

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/oyaguma3/odido-bridge/internal/odido"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
	"github.com/oyaguma3/odido-bridge/pkg/logging"
)

// SubscriptionLookup はデバイスIDからSubscriptionURLを解決する。
// sensor.Managerが実装する。
type SubscriptionLookup interface {
	SubscriptionURLForDevice(deviceID string) (string, error)
}

// Handler はbuy_bundleアクションを処理する。
// リフレッシュサイクルとは独立に動作し、スナップショットの無効化は行わない。
// 購入後の使用量変化は次回の定期リフレッシュで反映される。
type Handler struct {
	api    odido.API
	lookup SubscriptionLookup
}

// NewHandler は新しいHandlerを生成する。
func NewHandler(api odido.API, lookup SubscriptionLookup) *Handler {
	return &Handler{
		api:    api,
		lookup: lookup,
	}
}

// BuyBundle はデバイスを解決してバンドルを購入する。
// 対象センサーが見つからない場合はネットワーク呼び出しをせずに
// ErrNoMatchingDeviceを返す。業務エラーはPurchaseErrorとして返し、
// 上流のエラーコードを利用者まで届ける。
func (h *Handler) BuyBundle(ctx context.Context, deviceID, buyingCode string) (json.RawMessage, error) {
	subscriptionURL, err := h.lookup.SubscriptionURLForDevice(deviceID)
	if err != nil {
		slog.Error("no valid odido sensor found for device",
			logging.WithEventID("BUY_NO_DEVICE"),
			logging.WithDeviceID(deviceID),
			logging.WithError(err),
		)
		if errors.Is(err, apperr.ErrDeviceNotFound) || errors.Is(err, apperr.ErrNoMatchingDevice) {
			return nil, apperr.ErrNoMatchingDevice
		}
		return nil, err
	}

	body, err := h.api.BuyBundle(ctx, subscriptionURL, buyingCode)
	if err != nil {
		var bizErr *odido.BusinessError
		if errors.As(err, &bizErr) {
			return nil, apperr.NewPurchaseError(bizErr.Code, subscriptionURL)
		}
		slog.Error("bundle purchase failed",
			logging.WithEventID("BUY_ERR"),
			logging.WithDeviceID(deviceID),
			logging.WithError(err),
		)
		return nil, err
	}

	return body, nil
}
