package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/moodbot-go/internal/client"
	"github.com/supportbot/moodbot-go/internal/config"
	"github.com/supportbot/moodbot-go/internal/handler"
	"github.com/supportbot/moodbot-go/internal/moodstore"
	"github.com/supportbot/moodbot-go/internal/service"
	"github.com/supportbot/moodbot-go/internal/widget"
	"github.com/supportbot/moodbot-go/pkg/logger"
	"github.com/supportbot/moodbot-go/pkg/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/moodbot.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("moodbot 服务启动中...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 情绪记录存储
	var store moodstore.Store
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("连接 Redis 失败", zap.Error(err))
		}
		defer redisClient.Close()
		store = moodstore.NewRedisStore(redisClient, cfg.Mood.KeyPrefix, cfg.Mood.MaxEntries, zapLogger)
	} else {
		zapLogger.Info("Redis 未启用，情绪记录保存在内存")
		store = moodstore.NewMemoryStore(cfg.Mood.MaxEntries, zapLogger)
	}

	// 组件渲染
	widgets := widget.NewRegistry(zapLogger)
	if err := widget.RegisterBuiltinWidgets(widgets, zapLogger); err != nil {
		zapLogger.Fatal("注册组件失败", zap.Error(err))
	}

	// 初始化服务
	sentimentClient := client.NewSentimentClient(cfg.Sentiment.URL, cfg.Sentiment.Timeout, zapLogger)
	sessionService := service.NewSessionService(sentimentClient, zapLogger)
	sessionService.SetIdleTTL(cfg.Server.SessionIdleTTL)
	moodService := service.NewMoodService(store, zapLogger)

	// 初始化路由
	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.Handlers{
		WebSocket: handler.NewWebSocketHandler(sessionService, moodService, widgets, cfg.Server.AllowedOrigins, zapLogger),
		API:       handler.NewAPIHandler(sessionService, widgets, zapLogger),
		Mood:      handler.NewMoodHandler(moodService, zapLogger),
	}, cfg.Server.Name, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("moodbot 服务启动成功", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessionService.RunHeartbeatChecker(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("moodbot 服务关闭中...")
		sessionService.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("服务异常退出", zap.Error(err))
	}
}
