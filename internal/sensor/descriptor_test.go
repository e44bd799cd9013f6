package sensor

import (
	"testing"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/model"
)

func testEntry() model.Entry {
	return model.Entry{
		Subscription: model.Subscription{
			MSISDN:          "31612345678",
			Alias:           "Mijn nummer",
			SubscriptionURL: "https://capi.odido.nl/subscriptions/31612345678",
			Agreement: model.Agreement{
				StartDate: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
			},
		},
		MBLeftInBundles: 2048,
		MBUsedInBundles: 512,
	}
}

func TestDescriptors(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		key         string
		name        string
		deviceClass DeviceClass
		want        any
	}{
		{KeyMSISDN, PhoneNumberName, DeviceClassNone, "31612345678"},
		{KeyStartDate, "Start Date", DeviceClassDate, "2023-11-14"},
		{KeyDataUsed, "Data used", DeviceClassDataSize, int64(512)},
		{KeyDataLeft, "Data Left", DeviceClassDataSize, int64(2048)},
	}

	descriptors := Descriptors()
	if len(descriptors) != len(tests) {
		t.Fatalf("len(Descriptors()) = %d, want %d", len(descriptors), len(tests))
	}

	for i, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			desc := descriptors[i]
			if desc.Key != tt.key {
				t.Errorf("Key = %q, want %q", desc.Key, tt.key)
			}
			if desc.Name != tt.name {
				t.Errorf("Name = %q, want %q", desc.Name, tt.name)
			}
			if desc.DeviceClass != tt.deviceClass {
				t.Errorf("DeviceClass = %q, want %q", desc.DeviceClass, tt.deviceClass)
			}
			if got := desc.Value(entry); got != tt.want {
				t.Errorf("Value() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}
