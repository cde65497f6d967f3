package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// SessionStore 收银员会话存储
// 设计说明：
// 1. 登录时记录会话(登录名、登录时间),可用于查看哪些终端在线
// 2. 支持JWT黑名单（登出、强制下线）
// 3. Key设计：pos:session:{user_id}、pos:blacklist:{token}
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("pos:session:%d", userID)
}

func blacklistKey(token string) string {
	return "pos:blacklist:" + token
}

// SaveSession 保存会话,过期时间与Refresh Token一致
// 使用Pipeline把HSet和Expire合并为一次往返
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(userID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, sessionData)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// GetSession 获取会话,不存在时返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单
// ttl取Access Token剩余有效期,过期后自动清理
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已经过期的Token不需要拉黑
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return exists > 0, nil
}
