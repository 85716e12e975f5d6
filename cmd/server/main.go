package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/api/handler"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/api/router"
	apivalidator "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/api/validator"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/database"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/jwt"
	applogger "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/logger"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ATTEND_CONFIG"))
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
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	if err := apivalidator.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 构建路由：数据库未配置时进入引导模式
	var (
		engine  *gin.Engine
		cleanup []func()
	)
	if !cfg.Database.Configured() {
		logger.Warn("数据库未配置，以引导模式启动")
		engine = router.SetupMode(cfg, handler.NewHealthHandler(nil, nil), logger)
	} else {
		engine, cleanup = buildApp(ctx, cfg, logger)
	}

	// 4. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // 指纹模拟与 ICS 拉取耗时较长
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 5. 监听系统信号，优雅关闭
	<-ctx.Done()
	logger.Info("收到关闭信号，开始优雅关闭...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}

	logger.Info("服务器已关闭")
}

// buildApp 连接数据库与 Redis，完成依赖注入；返回的 cleanup 按逆序执行
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gin.Engine, []func()) {
	var cleanup []func()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	cleanup = append(cleanup, func() { sqlDB.Close() })
	logger.Info("数据库连接成功")

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// Redis 可选：连接失败时降级运行（无黑名单、无限流、统计缓存回落内存）
	var cachePinger handler.Pinger
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		cachePinger = rdb
		cleanup = append(cleanup, func() { rdb.Close() })
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, logger)
	h := handler.NewHandler(cfg, svc)
	health := handler.NewHealthHandler(repo, cachePinger)

	svc.Stats.StartPolling(ctx)
	svc.Session.StartExpirySweeper(ctx, cfg.Session.SweepInterval)

	return router.Setup(cfg, h, health, jwtMgr, rdb, logger), cleanup
}
