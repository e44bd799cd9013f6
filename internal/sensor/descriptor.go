// Package sensor はスナップショットに対する読み取り専用のセンサービューを提供する。
package sensor

import "github.com/oyaguma3/odido-bridge/internal/model"

// DeviceClass はセンサーの表示種別。
type DeviceClass string

const (
	DeviceClassNone     DeviceClass = ""
	DeviceClassDate     DeviceClass = "date"
	DeviceClassDataSize DeviceClass = "data_size"
)

// フィールドdescriptorのキー
const (
	KeyMSISDN    = "msisdn"
	KeyStartDate = "agreement.start_date"
	KeyDataUsed  = "data_used"
	KeyDataLeft  = "data_left"
)

// PhoneNumberName はアクションハンドラがSubscriptionURL解決に使うセンサー名。
const PhoneNumberName = "Phone Number"

// Descriptor はセンサーフィールドの宣言的な定義。
// Valueはスナップショットエントリから表示値への純粋な写像で、
// プラットフォーム側のセンサーオブジェクトなしに単体テストできる。
type Descriptor struct {
	Key         string
	Name        string
	DeviceClass DeviceClass
	Value       func(e model.Entry) any
}

// Descriptors は全センサーフィールドの定義を返す。
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Key:  KeyMSISDN,
			Name: PhoneNumberName,
			Value: func(e model.Entry) any {
				return e.Subscription.MSISDN
			},
		},
		{
			Key:         KeyStartDate,
			Name:        "Start Date",
			DeviceClass: DeviceClassDate,
			Value: func(e model.Entry) any {
				return e.Subscription.Agreement.StartDate.Format("2006-01-02")
			},
		},
		{
			Key:         KeyDataUsed,
			Name:        "Data used",
			DeviceClass: DeviceClassDataSize,
			Value: func(e model.Entry) any {
				return e.MBUsedInBundles
			},
		},
		{
			Key:         KeyDataLeft,
			Name:        "Data Left",
			DeviceClass: DeviceClassDataSize,
			Value: func(e model.Entry) any {
				return e.MBLeftInBundles
			},
		},
	}
}
