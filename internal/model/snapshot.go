package model

import "time"

// Entry は1サブスクリプション分の集計済みリフレッシュ結果。
type Entry struct {
	Subscription    Subscription `json:"subscription"`
	MBLeftInBundles int64        `json:"mb_left_in_bundles"`
	MBUsedInBundles int64        `json:"mb_used_in_bundles"`
}

// Snapshot はMSISDNをキーとする全サブスクリプションの集計結果。
// リフレッシュサイクルごとに丸ごと作り直され、公開後は変更されない。
type Snapshot struct {
	Entries   map[string]Entry `json:"entries"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// NewSnapshot は新しい空のSnapshotを生成する。
func NewSnapshot(fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		Entries:   make(map[string]Entry),
		FetchedAt: fetchedAt,
	}
}

// Get は指定MSISDNのEntryを返す。
func (s *Snapshot) Get(msisdn string) (Entry, bool) {
	e, ok := s.Entries[msisdn]
	return e, ok
}

// MSISDNs は登録済みMSISDNの一覧を返す。順序は不定。
func (s *Snapshot) MSISDNs() []string {
	keys := make([]string, 0, len(s.Entries))
	for k := range s.Entries {
		keys = append(keys, k)
	}
	return keys
}

// Len はEntry数を返す。
func (s *Snapshot) Len() int {
	return len(s.Entries)
}
