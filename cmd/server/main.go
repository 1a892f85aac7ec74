// @title           Chewing Love API
// @version         1.0
// @description     Family members, devices and daily chewing data for shared-meal companionship, plus the live chewing resonance demo

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/internal/infrastructure/database"
	"chewing-love-service/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "chewing-love",
	Short: "Chewing Love service",
	Long: `Chewing Love keeps older adults company at mealtime: a family member's
chewing rhythm is mirrored on the elder's device.

Available subcommands:
  serve   - Run the HTTP API, pages and demo sessions
  migrate - Create or update the database schema
  seed    - Load family members, devices and chewing data from YAML
  report  - Print dashboard numbers from a running server`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载.env文件
		if err := godotenv.Load(envFile); err != nil {
			// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
			fmt.Fprintf(os.Stderr, "无法加载%s文件: %v\n", envFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger 按配置初始化日志
func setupLogger(cfg *config.Config) error {
	return logger.SetupLogger(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Dir:         cfg.LogDir,
		ServiceName: "chewing-love",
	})
}

// bootstrap 读取配置、初始化日志并打开数据库连接池
func bootstrap() (*config.Config, *database.ConnectionPool, error) {
	cfg := config.GetConfig()
	if err := setupLogger(cfg); err != nil {
		return nil, nil, err
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}
	return cfg, pool, nil
}

// newContainer 创建服务容器，选择 redis 缓存时附带 redis 客户端
func newContainer(ctx context.Context, cfg *config.Config, pool *database.ConnectionPool) (*container.ServiceContainer, error) {
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return container.NewServiceContainer(ctx, pool.GetDB(), cfg, redisClient)
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	// 打印数据库连接池信息
	if stats, err := pool.Stats(); err == nil {
		logger.Info("数据库连接池状态: %+v", stats)
	}

	// 打印系统资源信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	logger.Info("系统CPU核心数: %d, 当前Go协程数: %d, 内存: Alloc=%v MiB, Sys=%v MiB",
		runtime.NumCPU(), runtime.NumGoroutine(), m.Alloc/1024/1024, m.Sys/1024/1024)
}
