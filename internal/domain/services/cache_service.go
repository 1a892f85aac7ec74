package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"chewing-love-service/internal/infrastructure/config"
)

// 查询缓存分组，修改操作按分组失效
const (
	CacheGroupFamilyMembers = "family_members"
	CacheGroupDevices       = "devices"
	CacheGroupAssignments   = "assignments"
	CacheGroupDashboard     = "dashboard"

	cacheKeyPrefix = "query:"
)

// CacheKey 返回分组内的完整缓存键
func CacheKey(group, key string) string {
	return cacheKeyPrefix + group + ":" + key
}

// InterfaceCacheService 查询缓存接口，内存和Redis两种实现
type InterfaceCacheService interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	InvalidateGroups(ctx context.Context, groups ...string) (int, error)
	PurgeAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
	Backend() string
}

// NewCacheService 根据配置创建缓存服务
func NewCacheService(cfg *config.Config, client *redis.Client) InterfaceCacheService {
	if cfg.CacheBackend == "redis" && client != nil {
		return NewRedisCacheService(client)
	}
	return NewMemoryCacheService()
}

type cacheEntry struct {
	content    []byte
	expiration time.Time
}

// MemoryCacheService 进程内缓存
type MemoryCacheService struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
	now   func() time.Time
}

// NewMemoryCacheService 创建内存缓存
func NewMemoryCacheService() *MemoryCacheService {
	return &MemoryCacheService{
		items: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// 1 Get 读取缓存，过期条目视为未命中
func (s *MemoryCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !entry.expiration.After(s.now()) {
		return nil, false, nil
	}
	return entry.content, true, nil
}

// 2 Set 写入缓存
func (s *MemoryCacheService) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	s.mu.Lock()
	s.items[key] = cacheEntry{content: value, expiration: s.now().Add(expiration)}
	s.mu.Unlock()
	return nil
}

// 3 InvalidateGroups 清除指定分组的全部缓存
func (s *MemoryCacheService) InvalidateGroups(ctx context.Context, groups ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, group := range groups {
		prefix := cacheKeyPrefix + group + ":"
		for key := range s.items {
			if strings.HasPrefix(key, prefix) {
				delete(s.items, key)
				removed++
			}
		}
	}
	return removed, nil
}

// 4 PurgeAll 清除全部缓存
func (s *MemoryCacheService) PurgeAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	s.items = make(map[string]cacheEntry)
	return n, nil
}

// 5 Stats 缓存统计信息
func (s *MemoryCacheService) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	expired := 0
	size := 0
	for _, entry := range s.items {
		size += len(entry.content)
		if !entry.expiration.After(now) {
			expired++
		}
	}
	return map[string]interface{}{
		"backend":     "memory",
		"total_items": len(s.items),
		"expired":     expired,
		"bytes":       size,
	}, nil
}

// CleanExpired 清理过期条目
func (s *MemoryCacheService) CleanExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.items {
		if !entry.expiration.After(now) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// Backend 后端名称
func (s *MemoryCacheService) Backend() string {
	return "memory"
}

// RedisCacheService 基于Redis的共享缓存，多实例部署时使用
type RedisCacheService struct {
	Client *redis.Client
}

// NewRedisCacheService creates a new Redis-backed query cache
func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{Client: client}
}

// 1 Get gets a value from Redis by key
func (s *RedisCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// 2 Set sets a key-value pair in Redis with expiration
func (s *RedisCacheService) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return s.Client.Set(ctx, key, value, expiration).Err()
}

// 3 InvalidateGroups deletes every key of the given groups using SCAN
func (s *RedisCacheService) InvalidateGroups(ctx context.Context, groups ...string) (int, error) {
	removed := 0
	for _, group := range groups {
		n, err := s.deleteByPattern(ctx, cacheKeyPrefix+group+":*")
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// 4 PurgeAll deletes every query cache key
func (s *RedisCacheService) PurgeAll(ctx context.Context) (int, error) {
	return s.deleteByPattern(ctx, cacheKeyPrefix+"*")
}

// 5 Stats counts query cache keys
func (s *RedisCacheService) Stats(ctx context.Context) (map[string]interface{}, error) {
	total := 0
	iter := s.Client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		total++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"backend":     "redis",
		"total_items": total,
	}, nil
}

// Backend 后端名称
func (s *RedisCacheService) Backend() string {
	return "redis"
}

func (s *RedisCacheService) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	var keys []string
	iter := s.Client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.Client.Del(ctx, keys...).Result()
	return int(n), err
}
