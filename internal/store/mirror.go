package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
	"github.com/oyaguma3/odido-bridge/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// SnapshotMirror は公開スナップショットをValkeyへミラーする。
// coordinator.Listenerとして登録され、外部コンシューマが
// デーモンに直接アクセスせずに最新値を読めるようにする。
type SnapshotMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotMirror は新しいSnapshotMirrorを生成する。
func NewSnapshotMirror(client *redis.Client, ttl time.Duration) *SnapshotMirror {
	return &SnapshotMirror{
		client: client,
		ttl:    ttl,
	}
}

// SnapshotUpdated はスナップショットをJSONとして書き込む。
// ミラーの書き込み失敗はリフレッシュサイクル自体を失敗させない。
func (m *SnapshotMirror) SnapshotUpdated(snap *model.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(snap)
	if err != nil {
		slog.Warn("snapshot mirror marshal failed",
			logging.WithEventID("MIRROR_ERR"),
			logging.WithError(err),
		)
		return
	}

	if err := m.client.Set(ctx, SnapshotKey, data, m.ttl).Err(); err != nil {
		slog.Warn("snapshot mirror write failed",
			logging.WithEventID("MIRROR_ERR"),
			logging.WithError(apperr.NewValkeyError("SET", SnapshotKey, err)),
		)
	}
}

// RefreshFailed はミラーに対して何もしない。
// TTL内は直前の値が残り、期限切れで自然に消える。
func (m *SnapshotMirror) RefreshFailed(err error) {}

// Load はミラーからスナップショットを読み出す。
func (m *SnapshotMirror) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := m.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		return nil, apperr.NewValkeyError("GET", SnapshotKey, err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
