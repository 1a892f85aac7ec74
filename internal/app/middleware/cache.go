package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/pkg/logger"
)

// DefaultCacheExpiration 默认缓存过期时间
const DefaultCacheExpiration = 5 * time.Minute

// CacheConfig 缓存配置
type CacheConfig struct {
	Group      string                    // 缓存分组，写操作按分组失效
	Expiration time.Duration             // 缓存过期时间
	KeyFunc    func(*gin.Context) string // 自定义缓存键生成函数
	DayKeyed   bool                      // 缓存键带上当天(UTC)日期，跨零点自动失效
	Now        func() time.Time          // 时钟，默认 time.Now
}

// defaultKeyFunc 路径加排序后的查询参数，取MD5
func defaultKeyFunc(c *gin.Context) string {
	queryParams := c.Request.URL.Query()
	queryKeys := make([]string, 0, len(queryParams))
	for key := range queryParams {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)

	var b strings.Builder
	b.WriteString(c.Request.URL.Path)
	b.WriteString("?")
	for _, key := range queryKeys {
		values := append([]string(nil), queryParams[key]...)
		sort.Strings(values)
		for _, value := range values {
			b.WriteString(key + "=" + value + "&")
		}
	}

	hasher := md5.New()
	hasher.Write([]byte(b.String()))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Cache 创建查询缓存中间件，只缓存 GET 请求的 200 响应
func Cache(store services.InterfaceCacheService, cfg CacheConfig) gin.HandlerFunc {
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultCacheExpiration
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultKeyFunc
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cfg.KeyFunc(c)
		if cfg.DayKeyed {
			key = cfg.Now().UTC().Format("2006-01-02") + ":" + key
		}
		key = services.CacheKey(cfg.Group, key)

		content, found, err := store.Get(ctx, key)
		if err != nil {
			logger.Warning("读取缓存失败: %v", err)
		}
		if found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", content)
			c.Abort()
			return
		}

		// 缓存未命中，捕获响应
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := store.Set(ctx, key, writer.body.Bytes(), cfg.Expiration); err != nil {
				logger.Warning("写入缓存失败: %v", err)
			}
		}
	}
}

// CacheGroup 使用默认配置缓存一个分组
func CacheGroup(store services.InterfaceCacheService, group string) gin.HandlerFunc {
	return Cache(store, CacheConfig{Group: group})
}

// 自定义响应写入器，用于捕获响应内容
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 重写Write方法，同时写入原始响应和缓冲区
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// WriteString 重写WriteString方法，同时写入原始响应和缓冲区
func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
