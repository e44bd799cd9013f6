package odido

import (
	"errors"
	"fmt"
)

// センチネルエラー
var (
	// ErrCircuitOpen はCircuit BreakerがOpen状態の場合のエラー
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrInvalidResponse はOdido APIからのレスポンスが不正な場合のエラー
	ErrInvalidResponse = errors.New("invalid response from odido api")

	// ErrMissingResources はLinkedSubscriptionsリソース一覧が欠落している場合のエラー
	ErrMissingResources = errors.New("no linked subscription resources in response")
)

// ConnectionError はリトライ上限到達後も解消しなかった通信エラーを表す。
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// StatusError は非2xxのHTTPレスポンスを表す。
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("odido api error: status=%d, body=%s", e.StatusCode, e.Body)
}

// IsServerError はサーバーエラーかどうかを判定する
func (e *StatusError) IsServerError() bool {
	return e.StatusCode >= 500
}

// BusinessError はOdido APIが独自のErrorCodeチャネルで通知する業務エラーを表す。
// HTTPステータスとは独立して発生する。
type BusinessError struct {
	Code string
	Text string
}

func (e *BusinessError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("odido business error: code=%s, text=%s", e.Code, e.Text)
	}
	return fmt.Sprintf("odido business error: code=%s", e.Code)
}

// DecodeError は必須フィールド欠落や不正な値によるデコード失敗を表す。
// リフレッシュサイクルでは握り潰さず、スキーマ変更を顕在化させるためそのまま伝播させる。
type DecodeError struct {
	Field string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: field=%s, cause=%v", e.Field, e.Cause)
	}
	return fmt.Sprintf("decode error: field=%s is required", e.Field)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError はDecodeErrorを生成する。
func NewDecodeError(field string, cause error) *DecodeError {
	return &DecodeError{Field: field, Cause: cause}
}

// IsDecodeError はエラーチェーンにDecodeErrorが含まれるかを判定する。
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
