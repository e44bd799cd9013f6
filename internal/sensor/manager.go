package sensor

import (
	"log/slog"
	"sync"

	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/oyaguma3/odido-bridge/internal/registry"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
	"github.com/oyaguma3/odido-bridge/pkg/logging"
)

// Manager はスナップショットに応じてデバイス/エンティティ/ビューを同期する。
// coordinator.Listenerとして登録され、リフレッシュ成功のたびに新しい
// サブスクリプションのセンサーを登録する。
type Manager struct {
	registry *registry.Registry
	source   SnapshotSource
	fields   *logging.CommonFields

	mu    sync.RWMutex
	views map[string][]*View // デバイスID → ビュー一覧
}

// NewManager は新しいManagerを生成する。
func NewManager(reg *registry.Registry, source SnapshotSource, fields *logging.CommonFields) *Manager {
	if fields == nil {
		fields = logging.NewCommonFields(nil)
	}
	return &Manager{
		registry: reg,
		source:   source,
		fields:   fields,
		views:    make(map[string][]*View),
	}
}

// SnapshotUpdated はスナップショット更新時にデバイスとビューを同期する。
func (m *Manager) SnapshotUpdated(snap *model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for msisdn, entry := range snap.Entries {
		device := m.registry.EnsureDevice(msisdn, entry.Subscription.DisplayName())

		if _, ok := m.views[device.ID]; ok {
			continue
		}

		descriptors := Descriptors()
		views := make([]*View, 0, len(descriptors))
		entities := make([]registry.Entity, 0, len(descriptors))

		for _, desc := range descriptors {
			views = append(views, NewView(msisdn, desc, m.source))
			entities = append(entities, registry.Entity{
				EntityID:     registry.DomainSensor + "." + registry.Platform + "_" + msisdn + "_" + desc.Key,
				DeviceID:     device.ID,
				Domain:       registry.DomainSensor,
				Platform:     registry.Platform,
				OriginalName: desc.Name,
				Key:          desc.Key,
			})
		}

		m.views[device.ID] = views
		m.registry.SetEntities(device.ID, entities)

		slog.Info("sensors registered",
			logging.WithEventID("SENSOR_REG"),
			m.fields.WithMSISDN(msisdn),
			logging.WithDeviceID(device.ID),
			slog.Int("sensors", len(views)),
		)
	}
}

// RefreshFailed はリフレッシュ失敗時の通知。
// ビューは直前のスナップショットを参照し続けるため何も壊さない。
func (m *Manager) RefreshFailed(err error) {
	slog.Debug("refresh failure observed, sensors keep last snapshot",
		logging.WithError(err),
	)
}

// ViewsForDevice はデバイスに属するビュー一覧を返す。
func (m *Manager) ViewsForDevice(deviceID string) ([]*View, error) {
	if _, err := m.registry.Device(deviceID); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	views := make([]*View, len(m.views[deviceID]))
	copy(views, m.views[deviceID])
	return views, nil
}

// AllViews は全ビューをデバイス順で返す。
func (m *Manager) AllViews() []*View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*View
	for _, device := range m.registry.Devices() {
		all = append(all, m.views[device.ID]...)
	}
	return all
}

// SubscriptionURLForDevice はデバイスのPhone Numberセンサーから
// SubscriptionURL属性を解決する。購入アクションの対象特定に使う。
func (m *Manager) SubscriptionURLForDevice(deviceID string) (string, error) {
	entities, err := m.registry.EntitiesForDevice(deviceID)
	if err != nil {
		return "", err
	}

	m.mu.RLock()
	views := m.views[deviceID]
	m.mu.RUnlock()

	for _, entity := range entities {
		if entity.Domain != registry.DomainSensor ||
			entity.Platform != registry.Platform ||
			entity.OriginalName != PhoneNumberName {
			continue
		}

		for _, view := range views {
			if view.Descriptor.Key != entity.Key {
				continue
			}
			attrs, err := view.ExtraAttributes()
			if err != nil {
				return "", err
			}
			return attrs["subscription_url"], nil
		}
	}

	return "", apperr.ErrNoMatchingDevice
}
