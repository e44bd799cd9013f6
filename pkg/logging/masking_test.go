package logging

import "testing"

func TestMaskMSISDN(t *testing.T) {
	tests := []struct {
		name    string
		msisdn  string
		enabled bool
		want    string
	}{
		{
			name:    "Standard MSISDN with masking enabled",
			msisdn:  "31612345678",
			enabled: true,
			want:    "3161*****78",
		},
		{
			name:    "Standard MSISDN with masking disabled",
			msisdn:  "31612345678",
			enabled: false,
			want:    "31612345678",
		},
		{
			name:    "Short MSISDN with masking enabled",
			msisdn:  "3161",
			enabled: true,
			want:    "3161", // 6文字以下はマスキングなし
		},
		{
			name:    "Empty MSISDN",
			msisdn:  "",
			enabled: true,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskMSISDN(tt.msisdn, tt.enabled)
			if got != tt.want {
				t.Errorf("MaskMSISDN(%q, %v) = %q, want %q", tt.msisdn, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestMaskPartial(t *testing.T) {
	tests := []struct {
		name       string
		s          string
		keepPrefix int
		keepSuffix int
		maskChar   rune
		want       string
	}{
		{
			name:       "Standard masking",
			s:          "1234567890",
			keepPrefix: 3,
			keepSuffix: 2,
			maskChar:   '*',
			want:       "123*****90",
		},
		{
			name:       "Different mask character",
			s:          "abcdefghij",
			keepPrefix: 2,
			keepSuffix: 3,
			maskChar:   'X',
			want:       "abXXXXXhij",
		},
		{
			name:       "String too short",
			s:          "abc",
			keepPrefix: 2,
			keepSuffix: 2,
			maskChar:   '*',
			want:       "abc", // 文字列長 <= keepPrefix + keepSuffix
		},
		{
			name:       "Exact length",
			s:          "abcd",
			keepPrefix: 2,
			keepSuffix: 2,
			maskChar:   '*',
			want:       "abcd",
		},
		{
			name:       "One character to mask",
			s:          "abcde",
			keepPrefix: 2,
			keepSuffix: 2,
			maskChar:   '*',
			want:       "ab*de",
		},
		{
			name:       "Empty string",
			s:          "",
			keepPrefix: 2,
			keepSuffix: 2,
			maskChar:   '*',
			want:       "",
		},
		{
			name:       "Unicode string",
			s:          "あいうえおかきく",
			keepPrefix: 2,
			keepSuffix: 2,
			maskChar:   '＊',
			want:       "あい＊＊＊＊きく",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskPartial(tt.s, tt.keepPrefix, tt.keepSuffix, tt.maskChar)
			if got != tt.want {
				t.Errorf("MaskPartial(%q, %d, %d, %q) = %q, want %q",
					tt.s, tt.keepPrefix, tt.keepSuffix, string(tt.maskChar), got, tt.want)
			}
		})
	}
}

func TestMasker(t *testing.T) {
	t.Run("Masking enabled", func(t *testing.T) {
		m := NewMasker(true)
		if !m.IsEnabled() {
			t.Error("IsEnabled() = false, want true")
		}
		got := m.MSISDN("31612345678")
		want := "3161*****78"
		if got != want {
			t.Errorf("MSISDN() = %q, want %q", got, want)
		}
	})

	t.Run("Masking disabled", func(t *testing.T) {
		m := NewMasker(false)
		if m.IsEnabled() {
			t.Error("IsEnabled() = true, want false")
		}
		got := m.MSISDN("31612345678")
		want := "31612345678"
		if got != want {
			t.Errorf("MSISDN() = %q, want %q", got, want)
		}
	})
}
