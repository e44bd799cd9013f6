// Package registry はデバイス/エンティティの対応関係を管理する。
// ホスト側プラットフォームのレジストリに相当し、アクションハンドラの
// デバイス解決に使われる。
package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
)

// Platform はこの統合が登録するエンティティのプラットフォーム名。
const Platform = "odido"

// DomainSensor はセンサーエンティティのドメイン名。
const DomainSensor = "sensor"

// Device は1サブスクリプション分のデバイスを表す。
type Device struct {
	ID           string `json:"id"`     // レジストリ採番のデバイスID
	MSISDN       string `json:"msisdn"` // 自然キー
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
}

// Entity はデバイスに属するエンティティを表す。
type Entity struct {
	EntityID     string `json:"entity_id"`
	DeviceID     string `json:"device_id"`
	Domain       string `json:"domain"`
	Platform     string `json:"platform"`
	OriginalName string `json:"original_name"`
	Key          string `json:"key"`
}

// Registry はデバイスとエンティティの登録状態を保持する。
// デバイスIDはMSISDNに対して安定で、リフレッシュを跨いでも変わらない。
type Registry struct {
	mu       sync.RWMutex
	byMSISDN map[string]*Device
	byID     map[string]*Device
	entities map[string][]Entity // デバイスID → エンティティ一覧
}

// New は新しいRegistryを生成する。
func New() *Registry {
	return &Registry{
		byMSISDN: make(map[string]*Device),
		byID:     make(map[string]*Device),
		entities: make(map[string][]Entity),
	}
}

// EnsureDevice はMSISDNに対応するデバイスを登録し、既存なら名前だけ更新して返す。
func (r *Registry) EnsureDevice(msisdn, name string) Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.byMSISDN[msisdn]; ok {
		d.Name = name
		return *d
	}

	d := &Device{
		ID:           uuid.NewString(),
		MSISDN:       msisdn,
		Name:         name,
		Manufacturer: "Odido",
	}
	r.byMSISDN[msisdn] = d
	r.byID[d.ID] = d
	return *d
}

// SetEntities はデバイスのエンティティ一覧を置き換える。
func (r *Registry) SetEntities(deviceID string, entities []Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[deviceID] = entities
}

// Device はデバイスIDからデバイスを取得する。
func (r *Registry) Device(deviceID string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[deviceID]
	if !ok {
		return Device{}, apperr.ErrDeviceNotFound
	}
	return *d, nil
}

// Devices は登録済みデバイスの一覧をMSISDN昇順で返す。
func (r *Registry) Devices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.byID))
	for _, d := range r.byID {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].MSISDN < devices[j].MSISDN
	})
	return devices
}

// EntitiesForDevice はデバイスに属するエンティティ一覧を返す。
func (r *Registry) EntitiesForDevice(deviceID string) ([]Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byID[deviceID]; !ok {
		return nil, apperr.ErrDeviceNotFound
	}

	entities := make([]Entity, len(r.entities[deviceID]))
	copy(entities, r.entities[deviceID])
	return entities, nil
}
