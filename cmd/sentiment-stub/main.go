package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/moodbot-go/internal/config"
	"github.com/supportbot/moodbot-go/internal/lexicon"
	"github.com/supportbot/moodbot-go/internal/middleware"
	"github.com/supportbot/moodbot-go/pkg/logger"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	Text *string `json:"text"`
}

func main() {
	configPath := flag.String("config", "configs/sentiment-stub.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("sentiment-stub 服务启动中...")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.Server.AllowedOrigins))

	r.POST("/analyze", func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
			c.JSON(400, gin.H{"error": "Missing text parameter"})
			return
		}

		text := strings.TrimSpace(*req.Text)
		sentiment, confidence := lexicon.Analyze(text)

		zapLogger.Debug("情感分析完成",
			zap.String("sentiment", sentiment),
			zap.Float64("confidence", confidence))

		c.JSON(200, gin.H{
			"text":       text,
			"sentiment":  sentiment,
			"confidence": confidence,
		})
	})

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": cfg.Server.Name})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zapLogger.Info("sentiment-stub 服务启动成功", zap.Int("port", cfg.Server.Port))

	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("服务启动失败", zap.Error(err))
	}
}
