package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/supportbot/moodbot-go/internal/middleware"
)

// Handlers 网关的全部处理器
type Handlers struct {
	WebSocket *WebSocketHandler
	API       *APIHandler
	Mood      *MoodHandler
}

// NewRouter 注册路由
func NewRouter(h Handlers, serviceName string, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(allowedOrigins))

	// WebSocket 端点（聊天组件）
	r.GET("/ws", h.WebSocket.HandleWebSocket)

	api := r.Group("/api")
	{
		api.POST("/chat/sessions", h.API.CreateSession)
		api.GET("/chat/sessions/:id", h.API.GetSession)
		api.POST("/chat/sessions/:id/messages", h.API.SubmitMessage)
		api.DELETE("/chat/sessions/:id", h.API.DeleteSession)

		api.POST("/mood/entries", h.Mood.RecordEntry)
		api.GET("/mood/series", h.Mood.Series)

		api.GET("/health", func(c *gin.Context) {
			c.Set("service_name", serviceName)
			h.API.Health(c)
		})
	}

	return r
}
