package sensor

import (
	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
)

// SnapshotSource は現在のスナップショットへのアクセスを提供する。
// Coordinatorが実装する。
type SnapshotSource interface {
	Snapshot() *model.Snapshot
}

// View は1つのセンサーフィールドの読み取り専用ビュー。
// 値は保持せず、評価のたびに現在のスナップショットを参照する。
type View struct {
	MSISDN     string
	Descriptor Descriptor
	source     SnapshotSource
}

// NewView は新しいViewを生成する。
func NewView(msisdn string, desc Descriptor, source SnapshotSource) *View {
	return &View{
		MSISDN:     msisdn,
		Descriptor: desc,
		source:     source,
	}
}

// UniqueID はセンサーの安定識別子を返す。
func (v *View) UniqueID() string {
	return v.MSISDN + "_" + v.Descriptor.Key
}

// Value は現在のスナップショットから表示値を評価する。
func (v *View) Value() (any, error) {
	entry, err := v.entry()
	if err != nil {
		return nil, err
	}
	return v.Descriptor.Value(entry), nil
}

// ExtraAttributes はセンサーに付随する属性を返す。
// subscription_urlは購入アクションのデバイス解決に使われる。
func (v *View) ExtraAttributes() (map[string]string, error) {
	entry, err := v.entry()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"subscription_url": entry.Subscription.SubscriptionURL,
	}, nil
}

// entry は現在のスナップショットから対応エントリを取得する。
func (v *View) entry() (model.Entry, error) {
	snap := v.source.Snapshot()
	if snap == nil {
		return model.Entry{}, apperr.ErrSnapshotNotReady
	}
	entry, ok := snap.Get(v.MSISDN)
	if !ok {
		return model.Entry{}, apperr.ErrSubscriptionNotFound
	}
	return entry, nil
}

// Reading はビューの現在値をJSON公開用に写した構造体。
type Reading struct {
	UniqueID    string            `json:"unique_id"`
	MSISDN      string            `json:"msisdn"`
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	DeviceClass DeviceClass       `json:"device_class,omitempty"`
	Value       any               `json:"value"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Read はビューを評価してReadingを返す。
func (v *View) Read() (Reading, error) {
	value, err := v.Value()
	if err != nil {
		return Reading{}, err
	}

	reading := Reading{
		UniqueID:    v.UniqueID(),
		MSISDN:      v.MSISDN,
		Key:         v.Descriptor.Key,
		Name:        v.Descriptor.Name,
		DeviceClass: v.Descriptor.DeviceClass,
		Value:       value,
	}

	// subscription_url属性はPhone Numberセンサーのみが公開する
	if v.Descriptor.Key == KeyMSISDN {
		attrs, err := v.ExtraAttributes()
		if err != nil {
			return Reading{}, err
		}
		reading.Attributes = attrs
	}

	return reading, nil
}
