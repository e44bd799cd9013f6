// Package store はValkeyへの永続化を提供する。
package store

// Valkeyキー定義
const (
	// TokenKey はアクセストークンの保存先。Hash形式。
	TokenKey = "odido:token"

	// SnapshotKey は最新スナップショットのミラー。JSON文字列、TTL付き。
	SnapshotKey = "odido:snapshot"
)
