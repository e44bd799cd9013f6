// Package coordinator はOdido APIのポーリングとスナップショット公開を管理する。
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/oyaguma3/odido-bridge/internal/odido"
	"github.com/oyaguma3/odido-bridge/pkg/logging"
)

// State はリフレッシュサイクルの状態を表す。
type State string

const (
	StateIdle       State = "idle"
	StateRefreshing State = "refreshing"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Listener はスナップショット更新の通知を受け取る。
type Listener interface {
	// SnapshotUpdated はリフレッシュ成功時に新しいスナップショットとともに呼ばれる。
	SnapshotUpdated(snap *model.Snapshot)
	// RefreshFailed はリフレッシュ失敗時に呼ばれる。既存スナップショットは保持される。
	RefreshFailed(err error)
}

// Coordinator はポーリングループを所有し、サブスクリプションごとの集計結果を
// アトミックに公開する。リフレッシュは直列化され、同時に2サイクル走ることはない。
type Coordinator struct {
	api      odido.API
	interval time.Duration
	fields   *logging.CommonFields

	// 公開スナップショット。参照の差し替えのみで更新され、部分更新はしない。
	snapshot atomic.Pointer[model.Snapshot]

	// リフレッシュサイクルの直列化
	refreshMu sync.Mutex

	// 状態とリスナーの保護
	mu          sync.Mutex
	state       State
	lastError   error
	lastRefresh time.Time
	listeners   []Listener
}

// New は新しいCoordinatorを生成する。
func New(api odido.API, interval time.Duration, fields *logging.CommonFields) *Coordinator {
	if fields == nil {
		fields = logging.NewCommonFields(nil)
	}
	return &Coordinator{
		api:      api,
		interval: interval,
		fields:   fields,
		state:    StateIdle,
	}
}

// Run はポーリングループを実行する。起動直後に1回リフレッシュし、
// 以降はintervalごとに繰り返す。ctxのキャンセルで停止する。
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.Refresh(ctx); err != nil {
			slog.Warn("refresh cycle failed",
				logging.WithEventID("REFRESH_ERR"),
				logging.WithError(err),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh は1リフレッシュサイクルを実行する。タイマー起点と強制リフレッシュは
// このメソッドのロックで直列化される。失敗時は直前のスナップショットを保持する。
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.setState(StateRefreshing, nil)

	start := time.Now()
	snap, err := c.rebuild(ctx)
	if err != nil {
		if odido.IsDecodeError(err) {
			// スキーマ変更は警告ではなくエラーとして顕在化させる
			slog.Error("upstream payload shape changed",
				logging.WithEventID("REFRESH_DECODE_ERR"),
				logging.WithError(err),
			)
		}
		c.setState(StateFailed, err)
		c.notifyFailure(err)
		return err
	}

	// 全サブスクリプションの処理が完了してから一括で公開する
	c.snapshot.Store(snap)
	c.setState(StateReady, nil)

	slog.Info("refresh cycle completed",
		logging.WithEventID("REFRESH_OK"),
		slog.Int(logging.FieldSubscriptions, snap.Len()),
		logging.WithLatency(time.Since(start).Milliseconds()),
	)

	c.notifySnapshot(snap)
	return nil
}

// rebuild は全サブスクリプションのスナップショットを構築する。
// いずれかの取得が失敗した場合はスナップショット全体を破棄する。
func (c *Coordinator) rebuild(ctx context.Context) (*model.Snapshot, error) {
	subscriptions, err := c.api.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}

	snap := model.NewSnapshot(time.Now().UTC())

	for _, sub := range subscriptions {
		raw, err := c.api.SubscriptionDetail(ctx, sub, odido.DetailTypeRoamingBundles)
		if err != nil {
			return nil, err
		}

		bundles, err := odido.DecodeRoamingBundles(raw)
		if err != nil {
			return nil, err
		}

		left, used := aggregateBundles(bundles)

		attrs := c.fields.RefreshLogFields("REFRESH_SUB_OK", sub.MSISDN)
		attrs = append(attrs, slog.Int64("mb_left", left), slog.Int64("mb_used", used))
		slog.Debug("subscription aggregated", attrs...)

		snap.Entries[sub.MSISDN] = model.Entry{
			Subscription:    sub,
			MBLeftInBundles: left,
			MBUsedInBundles: used,
		}
	}

	return snap, nil
}

// aggregateBundles は国内ゾーンを含むバンドルの残量/使用量を集計する。
// 値はキロバイト単位で届くため、バンドルごとに切り捨てでメガバイトへ変換する。
// 国内ゾーン外のバンドルを除外するのは意図した仕様で、国内ローミング枠のみを追跡する。
func aggregateBundles(bundles *odido.RoamingBundles) (left, used int64) {
	for _, bundle := range bundles.Bundles {
		if !containsZone(bundle.Zones, odido.DomesticZone) {
			continue
		}
		left += bundle.Remaining.Value / 1024
		used += bundle.Used.Value / 1024
	}
	return left, used
}

// containsZone はゾーン一覧に指定ゾーンが含まれるかを判定する。
func containsZone(zones []string, zone string) bool {
	for _, z := range zones {
		if z == zone {
			return true
		}
	}
	return false
}

// Snapshot は現在公開中のスナップショットを返す。初回リフレッシュ前はnil。
func (c *Coordinator) Snapshot() *model.Snapshot {
	return c.snapshot.Load()
}

// Ready は公開済みスナップショットが存在するかを返す。
func (c *Coordinator) Ready() bool {
	return c.snapshot.Load() != nil
}

// State は現在の状態を返す。
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError は直近のサイクル失敗理由を返す。成功後はnil。
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// LastRefresh は直近の状態遷移時刻を返す。
func (c *Coordinator) LastRefresh() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh
}

// AddListener はリスナーを登録する。
func (c *Coordinator) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener はリスナーの登録を解除する。
func (c *Coordinator) RemoveListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, registered := range c.listeners {
		if registered == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// setState は状態を更新する。
func (c *Coordinator) setState(state State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.lastError = err
	c.lastRefresh = time.Now().UTC()
}

// notifySnapshot は全リスナーへ新しいスナップショットを通知する。
func (c *Coordinator) notifySnapshot(snap *model.Snapshot) {
	for _, l := range c.copyListeners() {
		l.SnapshotUpdated(snap)
	}
}

// notifyFailure は全リスナーへサイクル失敗を通知する。
func (c *Coordinator) notifyFailure(err error) {
	for _, l := range c.copyListeners() {
		l.RefreshFailed(err)
	}
}

// copyListeners はロック外で通知するためリスナー一覧を複製する。
func (c *Coordinator) copyListeners() []Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}
