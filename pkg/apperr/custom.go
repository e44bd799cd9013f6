package apperr

import "fmt"

// PurchaseError はローミングバンドル購入の業務エラーを表す。
// Odido APIがHTTPステータスではなく独自のErrorCodeで通知する失敗を保持する。
type PurchaseError struct {
	Code            string // Odido側のエラーコード/理由
	SubscriptionURL string // 購入対象のサブスクリプションURL
}

// Error はerrorインターフェースを実装する。
func (e *PurchaseError) Error() string {
	return fmt.Sprintf("purchase error: code=%s, subscription_url=%s", e.Code, e.SubscriptionURL)
}

// NewPurchaseError はPurchaseErrorを生成する。
func NewPurchaseError(code, subscriptionURL string) *PurchaseError {
	return &PurchaseError{
		Code:            code,
		SubscriptionURL: subscriptionURL,
	}
}

// ValkeyError はValkeyとの操作エラーを表す。
type ValkeyError struct {
	Operation string // 操作名（GET, SET, DEL等）
	Key       string // 操作対象のキー
	Cause     error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *ValkeyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("valkey error: operation=%s, key=%s, cause=%v",
			e.Operation, e.Key, e.Cause)
	}
	return fmt.Sprintf("valkey error: operation=%s, key=%s", e.Operation, e.Key)
}

// Unwrap は根本原因を返す。
func (e *ValkeyError) Unwrap() error {
	return e.Cause
}

// NewValkeyError はValkeyErrorを生成する。
func NewValkeyError(operation, key string, cause error) *ValkeyError {
	return &ValkeyError{
		Operation: operation,
		Key:       key,
		Cause:     cause,
	}
}
