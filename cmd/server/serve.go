package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chewing-love-service/internal/app/routes"
	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/infrastructure/database"
	"chewing-love-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, pages and demo sessions",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run DB_MIGRATION_MODE migrations at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, pool, err := bootstrap()
	if err != nil {
		return err
	}
	defer pool.Close()
	defer logger.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 根据配置执行不同的数据库操作
	if !skipMigrate {
		if err := database.Migrate(pool.GetDB(), cfg.DBMigrationMode); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newContainer(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer c.Close()
	c.ConnectEvents()

	// 确保系统中有管理员账户
	adminService := c.GetService("admin").(services.InterfaceAdminService)
	if created, err := adminService.EnsureDefaultAdmin(ctx); err != nil {
		return err
	} else if created {
		logger.Info("已创建默认管理员账户")
	}

	r, err := routes.SetupRouter(c, cfg)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSystemInfo(pool)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// 启动服务器 - 注意监听所有接口(0.0.0.0)而不是只监听localhost
		logger.Info("服务器启动在: http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		c.DemoSessions().Run(gctx, func(n int) {
			logger.Info("已清理%d个空闲演示会话", n)
		})
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("正在关闭服务器")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
