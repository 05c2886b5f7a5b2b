package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sgte/backend/config"
	"sgte/backend/internal/api/handler"
	"sgte/backend/internal/api/router"
	"sgte/backend/internal/repository"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/database"
	"sgte/backend/pkg/jwt"
	applogger "sgte/backend/pkg/logger"
	"sgte/backend/pkg/metrics"
	"sgte/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 指标注册表
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dbMetrics := metrics.NewGateway(reg)

	// 4. 打开数据库并执行迁移
	gw, err := database.Open(&cfg.Database, logger, dbMetrics)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := gw.RunMigrations(); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 配置文件中的 db.retry 可在运行期调整
	watching, err := config.Watch(*configPath, func(next *config.Config, err error) {
		if err != nil {
			logger.Warn("配置重新加载失败，保留当前重试策略", zap.Error(err))
			return
		}
		if err := gw.SetRetryPolicy(database.PolicyFromConfig(next.Database.Retry)); err != nil {
			logger.Warn("重试策略无效，保留当前策略", zap.Error(err))
			return
		}
		logger.Info("重试策略已更新",
			zap.Int("max_attempts", next.Database.Retry.MaxAttempts),
			zap.Duration("initial_interval", next.Database.Retry.InitialInterval),
			zap.Duration("max_interval", next.Database.Retry.MaxInterval),
		)
	})
	if err != nil {
		logger.Warn("监听配置文件失败", zap.Error(err))
	} else if watching {
		logger.Info("已监听配置文件变更")
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，限流与 Token 吊销功能将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(gw.DB(), gw)
	svc := service.NewService(cfg, repo, logger)
	h := handler.NewHandler(svc, gw)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, reg, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := gw.Close(); err != nil {
		logger.Error("关闭数据库失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
