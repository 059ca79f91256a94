package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/supportbot/moodbot-go/internal/middleware"
	"github.com/supportbot/moodbot-go/internal/model"
	"github.com/supportbot/moodbot-go/internal/service"
	"github.com/supportbot/moodbot-go/internal/widget"
	"go.uber.org/zap"
)

// WebSocketHandler 聊天组件 WebSocket 处理器
type WebSocketHandler struct {
	sessionService *service.SessionService
	moodService    *service.MoodService
	widgets        *widget.Registry
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewWebSocketHandler 创建 WebSocket 处理器，allowedOrigins 为空时不校验来源
func NewWebSocketHandler(sessionService *service.SessionService, moodService *service.MoodService, widgets *widget.Registry, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		sessionService: sessionService,
		moodService:    moodService,
		widgets:        widgets,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// HandleWebSocket WebSocket 连接入口
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("uid"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid uid"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket 升级失败", zap.Error(err))
		return
	}

	session := h.sessionService.OpenWidget(userID, conn, c.ClientIP())
	defer h.sessionService.Remove(session.ID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	h.logger.Info("WebSocket 连接建立",
		zap.Int64("userId", userID),
		zap.String("sessionId", session.ID))

	h.sessionService.Stream(session, h.messageFrame)

	for {
		var frame model.ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error("WebSocket 读取错误", zap.Error(err))
			}
			break
		}

		h.handleFrame(ctx, session, &frame)
	}

	h.logger.Info("WebSocket 连接断开", zap.Int64("userId", userID))
}

// handleFrame 处理组件消息
func (h *WebSocketHandler) handleFrame(ctx context.Context, session *service.ChatSession, frame *model.ClientFrame) {
	switch frame.Type {
	case model.FrameChat:
		// 用户消息与回复都经 Stream 推送
		sub, err := session.Conversation.Accept(frame.Content)
		if err != nil {
			h.pushError(session.ID, err)
			return
		}

		go func() {
			if _, err := session.Conversation.Respond(ctx, sub); err != nil && !errors.Is(err, service.ErrStaleSubmission) {
				h.logger.Error("生成回复失败", zap.String("sessionId", session.ID), zap.Error(err))
			}
		}()

	case model.FrameMood:
		if _, err := h.moodService.Record(ctx, session.UserID, "", frame.Score); err != nil {
			h.pushError(session.ID, err)
			return
		}
		h.sessionService.Push(session.ID, model.ServerFrame{Type: model.FrameAck})

	case model.FrameHeartbeat:
		h.sessionService.UpdateHeartbeat(session.ID)
		h.logger.Debug("收到心跳", zap.String("sessionId", session.ID))

	default:
		h.logger.Warn("未知消息类型",
			zap.String("sessionId", session.ID),
			zap.String("type", frame.Type))
	}
}

func (h *WebSocketHandler) messageFrame(msg model.Message) model.ServerFrame {
	view := h.widgets.View(msg)
	return model.ServerFrame{Type: model.FrameMessage, Message: &view}
}

func (h *WebSocketHandler) pushError(sessionID string, err error) {
	h.sessionService.Push(sessionID, model.ServerFrame{Type: model.FrameError, Error: err.Error()})
}
