package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/mocks"
	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/oyaguma3/odido-bridge/internal/odido"
	"go.uber.org/mock/gomock"
)

// テスト用定数
const (
	testMSISDN1 = "31612345678"
	testMSISDN2 = "31687654321"
)

func testSubscription(msisdn string) model.Subscription {
	return model.Subscription{
		LinkID:          "link-" + msisdn,
		CustomerNumber:  12345678,
		MSISDN:          msisdn,
		Status:          "Active",
		Alias:           "sub-" + msisdn,
		Role:            "Owner",
		SubscriptionURL: "https://capi.odido.nl/subscriptions/" + msisdn,
		Agreement: model.Agreement{
			RateplanName: "Unlimited",
			StartDate:    time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC),
		},
	}
}

func bundlesJSON(t *testing.T, bundles ...odido.RoamingBundle) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(odido.RoamingBundles{Bundles: bundles})
	if err != nil {
		t.Fatalf("failed to marshal bundles: %v", err)
	}
	return data
}

// recordingListener は通知を記録するテスト用リスナー
type recordingListener struct {
	snapshots []*model.Snapshot
	failures  []error
}

func (l *recordingListener) SnapshotUpdated(snap *model.Snapshot) {
	l.snapshots = append(l.snapshots, snap)
}

func (l *recordingListener) RefreshFailed(err error) {
	l.failures = append(l.failures, err)
}

func TestRefreshAggregation(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub1 := testSubscription(testMSISDN1)
	sub2 := testSubscription(testMSISDN2)

	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub1, sub2}, nil)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub1, odido.DetailTypeRoamingBundles).Return(bundlesJSON(t,
		odido.RoamingBundle{
			Zones:     []string{"NL"},
			Remaining: odido.BundleAmount{Value: 2048},
			Used:      odido.BundleAmount{Value: 1024},
		},
		// 国内ゾーン外のバンドルは集計対象外
		odido.RoamingBundle{
			Zones:     []string{"EU"},
			Remaining: odido.BundleAmount{Value: 999999},
			Used:      odido.BundleAmount{Value: 999999},
		},
	), nil)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub2, odido.DetailTypeRoamingBundles).Return(bundlesJSON(t,
		odido.RoamingBundle{
			Zones:     []string{"NL", "EU"},
			Remaining: odido.BundleAmount{Value: 5120},
			Used:      odido.BundleAmount{Value: 0},
		},
	), nil)

	c := New(api, time.Minute, nil)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Snapshot()
	if snap == nil {
		t.Fatal("snapshot is nil after successful refresh")
	}
	if snap.Len() != 2 {
		t.Fatalf("snapshot entries = %d, want 2", snap.Len())
	}

	entry1, ok := snap.Get(testMSISDN1)
	if !ok {
		t.Fatalf("entry for %s not found", testMSISDN1)
	}
	if entry1.MBLeftInBundles != 2 {
		t.Errorf("MBLeftInBundles = %d, want 2", entry1.MBLeftInBundles)
	}
	if entry1.MBUsedInBundles != 1 {
		t.Errorf("MBUsedInBundles = %d, want 1", entry1.MBUsedInBundles)
	}

	entry2, ok := snap.Get(testMSISDN2)
	if !ok {
		t.Fatalf("entry for %s not found", testMSISDN2)
	}
	if entry2.MBLeftInBundles != 5 {
		t.Errorf("MBLeftInBundles = %d, want 5", entry2.MBLeftInBundles)
	}

	if c.State() != StateReady {
		t.Errorf("State = %q, want %q", c.State(), StateReady)
	}
	if c.LastError() != nil {
		t.Errorf("LastError = %v, want nil", c.LastError())
	}
}

func TestRefreshFloorPerBundle(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub := testSubscription(testMSISDN1)

	// バンドルごとに切り捨ててから合算する。合算後の切り捨てではない。
	// 1500/1024=1, 1600/1024=1 → 2MB（合算後なら3100/1024=3MB）
	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub}, nil)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub, odido.DetailTypeRoamingBundles).Return(bundlesJSON(t,
		odido.RoamingBundle{Zones: []string{"NL"}, Remaining: odido.BundleAmount{Value: 1500}},
		odido.RoamingBundle{Zones: []string{"NL"}, Remaining: odido.BundleAmount{Value: 1600}},
	), nil)

	c := New(api, time.Minute, nil)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	entry, ok := c.Snapshot().Get(testMSISDN1)
	if !ok {
		t.Fatal("entry not found")
	}
	if entry.MBLeftInBundles != 2 {
		t.Errorf("MBLeftInBundles = %d, want 2", entry.MBLeftInBundles)
	}
}

func TestRefreshReplacesSnapshotInstance(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub := testSubscription(testMSISDN1)
	detail := bundlesJSON(t,
		odido.RoamingBundle{Zones: []string{"NL"}, Remaining: odido.BundleAmount{Value: 2048}, Used: odido.BundleAmount{Value: 1024}},
	)

	// 同一の上流データで2サイクル実行する
	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub}, nil).Times(2)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub, odido.DetailTypeRoamingBundles).Return(detail, nil).Times(2)

	c := New(api, time.Minute, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	first := c.Snapshot()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	second := c.Snapshot()

	// スナップショットは毎サイクル作り直される。既存インスタンスの部分更新はしない。
	if first == second {
		t.Error("snapshot instance should be replaced, not mutated in place")
	}
	firstEntry, _ := first.Get(testMSISDN1)
	secondEntry, _ := second.Get(testMSISDN1)
	if firstEntry != secondEntry {
		t.Errorf("entries differ: %+v vs %+v", firstEntry, secondEntry)
	}
}

func TestRefreshFailureRetainsSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub := testSubscription(testMSISDN1)
	upstreamErr := &odido.StatusError{StatusCode: 502, Body: "bad gateway"}

	gomock.InOrder(
		api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub}, nil),
		api.EXPECT().SubscriptionDetail(gomock.Any(), sub, odido.DetailTypeRoamingBundles).Return(bundlesJSON(t,
			odido.RoamingBundle{Zones: []string{"NL"}, Remaining: odido.BundleAmount{Value: 2048}},
		), nil),
		api.EXPECT().Subscriptions(gomock.Any()).Return(nil, upstreamErr),
	)

	c := New(api, time.Minute, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	first := c.Snapshot()

	err := c.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error from second refresh")
	}
	if !errors.Is(err, upstreamErr) {
		t.Errorf("unexpected error: %v", err)
	}

	// 失敗時は直前のスナップショットを保持する
	if c.Snapshot() != first {
		t.Error("snapshot should be retained after failed refresh")
	}
	if c.State() != StateFailed {
		t.Errorf("State = %q, want %q", c.State(), StateFailed)
	}
	if c.LastError() == nil {
		t.Error("LastError should be set after failed refresh")
	}
}

func TestRefreshDetailFailureDiscardsCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub1 := testSubscription(testMSISDN1)
	sub2 := testSubscription(testMSISDN2)

	// 2件目の詳細取得が失敗した場合、1件目の結果も公開されない
	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub1, sub2}, nil)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub1, odido.DetailTypeRoamingBundles).Return(bundlesJSON(t,
		odido.RoamingBundle{Zones: []string{"NL"}, Remaining: odido.BundleAmount{Value: 2048}},
	), nil)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub2, odido.DetailTypeRoamingBundles).Return(nil, &odido.ConnectionError{Cause: errors.New("timeout")})

	c := New(api, time.Minute, nil)
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Snapshot() != nil {
		t.Error("partial snapshot should not be published")
	}
	if c.Ready() {
		t.Error("Ready() should be false")
	}
}

func TestRefreshDecodeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub := testSubscription(testMSISDN1)

	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub}, nil)
	api.EXPECT().SubscriptionDetail(gomock.Any(), sub, odido.DetailTypeRoamingBundles).Return(json.RawMessage(`{"Bundles": "nope"}`), nil)

	c := New(api, time.Minute, nil)
	err := c.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !odido.IsDecodeError(err) {
		t.Errorf("expected DecodeError, got %T: %v", err, err)
	}
	if c.State() != StateFailed {
		t.Errorf("State = %q, want %q", c.State(), StateFailed)
	}
}

func TestListenerNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	sub := testSubscription(testMSISDN1)
	upstreamErr := errors.New("upstream down")

	gomock.InOrder(
		api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{sub}, nil),
		api.EXPECT().SubscriptionDetail(gomock.Any(), sub, odido.DetailTypeRoamingBundles).Return(bundlesJSON(t,
			odido.RoamingBundle{Zones: []string{"NL"}, Remaining: odido.BundleAmount{Value: 1024}},
		), nil),
		api.EXPECT().Subscriptions(gomock.Any()).Return(nil, upstreamErr),
	)

	c := New(api, time.Minute, nil)
	listener := &recordingListener{}
	c.AddListener(listener)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(listener.snapshots) != 1 {
		t.Fatalf("SnapshotUpdated calls = %d, want 1", len(listener.snapshots))
	}
	if listener.snapshots[0] != c.Snapshot() {
		t.Error("listener should receive the published snapshot")
	}

	c.Refresh(context.Background())
	if len(listener.failures) != 1 {
		t.Fatalf("RefreshFailed calls = %d, want 1", len(listener.failures))
	}
	if !errors.Is(listener.failures[0], upstreamErr) {
		t.Errorf("unexpected failure: %v", listener.failures[0])
	}
}

func TestRemoveListener(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{}, nil)

	c := New(api, time.Minute, nil)
	listener := &recordingListener{}
	c.AddListener(listener)
	c.RemoveListener(listener)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(listener.snapshots) != 0 {
		t.Errorf("removed listener received %d notifications", len(listener.snapshots))
	}
}

func TestInitialState(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	c := New(api, time.Minute, nil)
	if c.Ready() {
		t.Error("Ready() = true before first refresh")
	}
	if c.Snapshot() != nil {
		t.Error("Snapshot() should be nil before first refresh")
	}
	if c.State() != StateIdle {
		t.Errorf("State = %q, want %q", c.State(), StateIdle)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)

	// 起動直後の1回は必ず実行される
	api.EXPECT().Subscriptions(gomock.Any()).Return([]model.Subscription{}, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(api, time.Minute, nil)

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestAggregateBundlesEmpty(t *testing.T) {
	left, used := aggregateBundles(&odido.RoamingBundles{})
	if left != 0 || used != 0 {
		t.Errorf("aggregateBundles(empty) = (%d, %d), want (0, 0)", left, used)
	}
}
