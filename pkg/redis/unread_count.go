package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 未读通知计数相关常量
const (
	UnreadCountKeyPrefix = "pronet:notif:unread:" // 未读通知计数key前缀
	UnreadCountTTL       = 24 * time.Hour         // 计数缓存过期时间，过期后从数据库重建
)

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s%d", UnreadCountKeyPrefix, userID)
}

// 计数存在时才修改，EXISTS 与 INCR/DECR 在同一脚本内原子执行
var (
	// KEYS[1]=计数key ARGV[1]=过期秒数，key 不存在返回 -1
	incrUnreadScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local n = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[1])
return n
`)

	// KEYS[1]=计数key，减到0及以下时删除，key 不存在返回 -1
	decrUnreadScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local n = redis.call('DECR', KEYS[1])
if n <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
end
return n
`)
)

// IncrementUnreadCount 增加用户未读通知计数
// 计数不存在时不创建，下次读取会从数据库重建
func IncrementUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	ttl := int64(UnreadCountTTL / time.Second)
	if err := incrUnreadScript.Run(ctx, client, []string{unreadKey(userID)}, ttl).Err(); err != nil {
		return fmt.Errorf("增加未读通知计数失败: %w", err)
	}
	return nil
}

// DecrementUnreadCount 减少用户未读通知计数，减到0及以下时删除key
func DecrementUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := decrUnreadScript.Run(ctx, client, []string{unreadKey(userID)}).Err(); err != nil {
		return fmt.Errorf("减少未读通知计数失败: %w", err)
	}
	return nil
}

// GetUnreadCount 获取用户未读通知计数，key 不存在时返回 -1 表示需要从数据库获取
func GetUnreadCount(userID uint) (int64, error) {
	if client == nil {
		return 0, ErrNotInitialized
	}

	count, err := client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return 0, fmt.Errorf("获取未读通知计数失败: %w", err)
	}
	return count, nil
}

// SetUnreadCount 设置用户未读通知计数（从数据库重建时使用）
func SetUnreadCount(userID uint, count int64) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := client.Set(ctx, unreadKey(userID), count, UnreadCountTTL).Err(); err != nil {
		return fmt.Errorf("设置未读通知计数失败: %w", err)
	}
	return nil
}

// ResetUnreadCount 重置用户未读通知计数为0
func ResetUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		return fmt.Errorf("重置未读通知计数失败: %w", err)
	}
	return nil
}
