package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldTraceID       = "trace_id"
	FieldEventID       = "event_id"
	FieldError         = "error"
	FieldLatencyMs     = "latency_ms"
	FieldHTTPStatus    = "http_status"
	FieldMSISDN        = "msisdn"
	FieldDeviceID      = "device_id"
	FieldSubscriptions = "subscriptions"
)

// WithTraceID はトレースIDのslog.Attrを返す。
func WithTraceID(traceID string) slog.Attr {
	return slog.String(FieldTraceID, traceID)
}

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithLatency はレイテンシ（ミリ秒）のslog.Attrを返す。
func WithLatency(ms int64) slog.Attr {
	return slog.Int64(FieldLatencyMs, ms)
}

// WithHTTPStatus はHTTPステータスコードのslog.Attrを返す。
func WithHTTPStatus(status int) slog.Attr {
	return slog.Int(FieldHTTPStatus, status)
}

// WithDeviceID はデバイスIDのslog.Attrを返す。
func WithDeviceID(deviceID string) slog.Attr {
	return slog.String(FieldDeviceID, deviceID)
}

// CommonFields はマスキング設定を保持するログフィールド生成器。
type CommonFields struct {
	masker *Masker
}

// NewCommonFields は新しいCommonFieldsを生成する。
func NewCommonFields(masker *Masker) *CommonFields {
	if masker == nil {
		masker = NewMasker(false)
	}
	return &CommonFields{masker: masker}
}

// WithMSISDN はマスキングされたMSISDNのslog.Attrを返す。
func (cf *CommonFields) WithMSISDN(msisdn string) slog.Attr {
	return slog.String(FieldMSISDN, cf.masker.MSISDN(msisdn))
}

// RefreshLogFields はリフレッシュログ用の共通フィールドを返す。
func (cf *CommonFields) RefreshLogFields(eventID, msisdn string) []any {
	return []any{
		WithEventID(eventID),
		cf.WithMSISDN(msisdn),
	}
}
