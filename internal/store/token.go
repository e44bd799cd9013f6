package store

import (
	"context"
	"time"

	"github.com/oyaguma3/odido-bridge/pkg/apperr"
	"github.com/redis/go-redis/v9"
)

// TokenStore はアクセストークンの永続化を提供する。
// ホスト側のconfig entryストアに相当する。
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore は新しいTokenStoreを生成する。
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Save はアクセストークンを保存する。
func (s *TokenStore) Save(ctx context.Context, accessToken string) error {
	err := s.client.HSet(ctx, TokenKey, map[string]any{
		"access_token": accessToken,
		"updated_at":   time.Now().UTC().Format(time.RFC3339),
	}).Err()
	if err != nil {
		return apperr.NewValkeyError("HSET", TokenKey, err)
	}
	return nil
}

// Load は保存済みアクセストークンを取得する。
// 未保存の場合はErrTokenNotFoundを返す。
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	result, err := s.client.HGetAll(ctx, TokenKey).Result()
	if err != nil {
		return "", apperr.NewValkeyError("HGETALL", TokenKey, err)
	}

	// キーが存在しない場合、HGetAllは空mapを返す
	token, ok := result["access_token"]
	if !ok || token == "" {
		return "", apperr.ErrTokenNotFound
	}

	return token, nil
}

// Delete は保存済みトークンを削除する。再認証フローで使う。
func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, TokenKey).Err(); err != nil {
		return apperr.NewValkeyError("DEL", TokenKey, err)
	}
	return nil
}
