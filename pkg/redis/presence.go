package redis

import (
	"fmt"
	"time"
)

// 在线状态相关常量
const (
	PresenceKeyPrefix = "pronet:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "pronet:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute         // 在线状态TTL（大于心跳周期）
)

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
}

// SetUserOnline 标记用户在线
func SetUserOnline(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	pipe := client.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), time.Now().Unix(), PresenceTTL)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// RefreshUserPresence 刷新用户在线状态（延长TTL）
func RefreshUserPresence(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	ok, err := client.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		// key 已过期，重新标记在线
		return SetUserOnline(userID)
	}
	return nil
}

// RemoveUserPresence 移除用户在线状态
func RemoveUserPresence(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	pipe := client.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// IsUserOnline 检查用户是否在线
func IsUserOnline(userID uint) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}

	n, err := client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return n > 0, nil
}

// CleanExpiredPresence 清理集合中已过期的在线用户
func CleanExpiredPresence() error {
	if client == nil {
		return ErrNotInitialized
	}

	members, err := client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return fmt.Errorf("获取在线用户列表失败: %w", err)
	}
	for _, member := range members {
		n, err := client.Exists(ctx, PresenceKeyPrefix+member).Result()
		if err != nil {
			continue
		}
		if n == 0 {
			client.SRem(ctx, OnlineUsersKey, member)
		}
	}
	return nil
}
