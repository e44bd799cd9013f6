package odido

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_odido.go -package=mocks

import (
	"context"
	"encoding/json"

	"github.com/oyaguma3/odido-bridge/internal/model"
)

// API はOdido APIとの通信インターフェースを定義する
type API interface {
	// Account はアカウント情報を取得する。トークン検証を兼ねる。
	Account(ctx context.Context) (json.RawMessage, error)

	// Subscriptions はアカウントに紐づく全サブスクリプションを取得する。
	Subscriptions(ctx context.Context) ([]model.Subscription, error)

	// SubscriptionDetail はサブスクリプション配下のリソースを取得する。
	SubscriptionDetail(ctx context.Context, sub model.Subscription, detailType string) (json.RawMessage, error)

	// BuyBundle はローミングバンドルを購入する。buyingCodeが空の場合は既定コードを使う。
	BuyBundle(ctx context.Context, subscriptionURL, buyingCode string) (json.RawMessage, error)
}
