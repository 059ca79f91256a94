package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/moodbot-go/internal/model"
	"github.com/supportbot/moodbot-go/internal/moodstore"
	"github.com/supportbot/moodbot-go/internal/service"
	"go.uber.org/zap"
)

// MoodHandler 情绪记录与图表处理器
type MoodHandler struct {
	moodService *service.MoodService
	logger      *zap.Logger
}

// NewMoodHandler 创建情绪处理器
func NewMoodHandler(moodService *service.MoodService, logger *zap.Logger) *MoodHandler {
	return &MoodHandler{
		moodService: moodService,
		logger:      logger,
	}
}

// RecordEntry 记录情绪
func (h *MoodHandler) RecordEntry(c *gin.Context) {
	var req model.MoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}

	entry, err := h.moodService.Record(c.Request.Context(), req.UserID, req.Date, req.Score)
	if err != nil {
		if errors.Is(err, moodstore.ErrInvalidEntry) {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("记录情绪失败", zap.Int64("userId", req.UserID), zap.Error(err))
		c.JSON(500, gin.H{"error": "记录失败"})
		return
	}

	c.JSON(201, gin.H{
		"date":  entry.Date.Format(model.MoodDateLayout),
		"score": entry.Score,
	})
}

// Series 图表数据
func (h *MoodHandler) Series(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Query("uid"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid uid"})
		return
	}

	series, err := h.moodService.Series(c.Request.Context(), uid)
	if err != nil {
		h.logger.Error("读取情绪图表失败", zap.Int64("uid", uid), zap.Error(err))
		c.JSON(500, gin.H{"error": "读取失败"})
		return
	}

	c.JSON(200, series)
}
