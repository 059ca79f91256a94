package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/moodbot-go/internal/model"
	"github.com/supportbot/moodbot-go/internal/service"
	"github.com/supportbot/moodbot-go/internal/widget"
	"go.uber.org/zap"
)

// APIHandler 聊天 REST 处理器
type APIHandler struct {
	sessionService *service.SessionService
	widgets        *widget.Registry
	logger         *zap.Logger
}

// NewAPIHandler 创建 API 处理器
func NewAPIHandler(sessionService *service.SessionService, widgets *widget.Registry, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		sessionService: sessionService,
		widgets:        widgets,
		logger:         logger,
	}
}

// CreateSession 创建会话
func (h *APIHandler) CreateSession(c *gin.Context) {
	session := h.sessionService.Open()
	c.JSON(201, gin.H{
		"sessionId": session.ID,
		"messages":  h.widgets.Views(session.Conversation.State().Messages()),
	})
}

// GetSession 获取会话消息
func (h *APIHandler) GetSession(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(200, gin.H{
		"sessionId": session.ID,
		"messages":  h.widgets.Views(session.Conversation.State().Messages()),
	})
}

// SubmitMessage 提交消息并同步等待回复
func (h *APIHandler) SubmitMessage(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request"})
		return
	}

	reply, err := session.Conversation.Submit(c.Request.Context(), req.Text)
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		c.JSON(400, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrStaleSubmission):
		c.JSON(409, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("处理消息失败", zap.String("sessionId", session.ID), zap.Error(err))
		c.JSON(500, gin.H{"error": "处理失败"})
		return
	}

	c.JSON(200, gin.H{
		"sessionId": session.ID,
		"reply":     h.widgets.View(reply),
		"messages":  h.widgets.Views(session.Conversation.State().Messages()),
	})
}

// DeleteSession 卸载会话
func (h *APIHandler) DeleteSession(c *gin.Context) {
	if !h.sessionService.Remove(c.Param("id")) {
		c.JSON(404, gin.H{"error": service.ErrSessionNotFound.Error()})
		return
	}
	c.Status(204)
}

// Health 健康检查
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":       "UP",
		"service":      c.GetString("service_name"),
		"online_users": h.sessionService.GetOnlineCount(),
	})
}

func (h *APIHandler) lookup(c *gin.Context) (*service.ChatSession, bool) {
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return nil, false
	}
	return session, true
}
