package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
)

// fakeSource は固定スナップショットを返すテスト用SnapshotSource
type fakeSource struct {
	snap *model.Snapshot
}

func (s *fakeSource) Snapshot() *model.Snapshot {
	return s.snap
}

func testSnapshot(entries ...model.Entry) *model.Snapshot {
	snap := model.NewSnapshot(time.Now().UTC())
	for _, e := range entries {
		snap.Entries[e.Subscription.MSISDN] = e
	}
	return snap
}

func msisdnDescriptor(t *testing.T) Descriptor {
	t.Helper()
	for _, desc := range Descriptors() {
		if desc.Key == KeyMSISDN {
			return desc
		}
	}
	t.Fatal("msisdn descriptor not found")
	return Descriptor{}
}

func dataLeftDescriptor(t *testing.T) Descriptor {
	t.Helper()
	for _, desc := range Descriptors() {
		if desc.Key == KeyDataLeft {
			return desc
		}
	}
	t.Fatal("data_left descriptor not found")
	return Descriptor{}
}

func TestViewUniqueID(t *testing.T) {
	view := NewView("31612345678", dataLeftDescriptor(t), &fakeSource{})
	if got := view.UniqueID(); got != "31612345678_data_left" {
		t.Errorf("UniqueID() = %q, want %q", got, "31612345678_data_left")
	}
}

func TestViewValue(t *testing.T) {
	source := &fakeSource{snap: testSnapshot(testEntry())}
	view := NewView("31612345678", dataLeftDescriptor(t), source)

	got, err := view.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if got != int64(2048) {
		t.Errorf("Value() = %v, want 2048", got)
	}
}

func TestViewValueTracksSnapshot(t *testing.T) {
	// ビューは値を保持せず、常に現在のスナップショットを参照する
	source := &fakeSource{snap: testSnapshot(testEntry())}
	view := NewView("31612345678", dataLeftDescriptor(t), source)

	updated := testEntry()
	updated.MBLeftInBundles = 1024
	source.snap = testSnapshot(updated)

	got, err := view.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if got != int64(1024) {
		t.Errorf("Value() = %v, want 1024", got)
	}
}

func TestViewSnapshotNotReady(t *testing.T) {
	view := NewView("31612345678", dataLeftDescriptor(t), &fakeSource{})

	_, err := view.Value()
	if !errors.Is(err, apperr.ErrSnapshotNotReady) {
		t.Errorf("expected ErrSnapshotNotReady, got: %v", err)
	}
}

func TestViewSubscriptionNotFound(t *testing.T) {
	source := &fakeSource{snap: testSnapshot(testEntry())}
	view := NewView("31600000000", dataLeftDescriptor(t), source)

	_, err := view.Value()
	if !errors.Is(err, apperr.ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got: %v", err)
	}
}

func TestReadPhoneNumberAttributes(t *testing.T) {
	source := &fakeSource{snap: testSnapshot(testEntry())}

	// Phone Numberセンサーのみsubscription_url属性を持つ
	phoneReading, err := NewView("31612345678", msisdnDescriptor(t), source).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if phoneReading.Value != "31612345678" {
		t.Errorf("Value = %v, want %q", phoneReading.Value, "31612345678")
	}
	wantURL := "https://capi.odido.nl/subscriptions/31612345678"
	if got := phoneReading.Attributes["subscription_url"]; got != wantURL {
		t.Errorf("subscription_url = %q, want %q", got, wantURL)
	}

	dataReading, err := NewView("31612345678", dataLeftDescriptor(t), source).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if dataReading.Attributes != nil {
		t.Errorf("data sensor should not expose attributes, got %v", dataReading.Attributes)
	}
	if dataReading.UniqueID != "31612345678_data_left" {
		t.Errorf("UniqueID = %q, want %q", dataReading.UniqueID, "31612345678_data_left")
	}
}
