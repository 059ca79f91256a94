package model

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WidgetSession 聊天组件的 WebSocket 会话
type WidgetSession struct {
	UserID        int64
	SessionID     string
	Conn          *websocket.Conn
	ClientIP      string
	LastHeartbeat time.Time
	MissedBeats   int
	mu            sync.Mutex // 保护心跳字段与连接写入
}

// UpdateHeartbeat 更新心跳时间
func (s *WidgetSession) UpdateHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastHeartbeat = time.Now()
	s.MissedBeats = 0
}

// CheckHeartbeat 超过 timeout 未收到心跳则累计一次丢失，返回是否应清理
func (s *WidgetSession) CheckHeartbeat(now time.Time, timeout time.Duration) (missed int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.LastHeartbeat) > timeout {
		s.MissedBeats++
	}
	return s.MissedBeats, s.MissedBeats >= 3
}

// WriteFrame 向 WebSocket 写入帧（线程安全）
func (s *WidgetSession) WriteFrame(frame ServerFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteJSON(frame)
}
