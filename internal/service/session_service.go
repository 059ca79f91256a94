package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotConnected    = errors.New("session has no websocket connection")
)

const (
	heartbeatInterval = 30 * time.Second
	heartbeatTimeout  = 60 * time.Second

	// DefaultIdleTTL REST 会话无访问超过此时长即被清理
	DefaultIdleTTL = 30 * time.Minute
)

// ChatSession 一个挂载的聊天组件：会话状态加可选的 WebSocket 连接
type ChatSession struct {
	ID           string
	UserID       int64
	Widget       *model.WidgetSession // REST 会话为 nil
	Conversation *Conversation

	lastActive atomic.Int64 // UnixNano
}

func (cs *ChatSession) touch(now time.Time) {
	cs.lastActive.Store(now.UnixNano())
}

// IdleSince 距最近一次访问的时长
func (cs *ChatSession) IdleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, cs.lastActive.Load()))
}

// SessionService 会话管理服务
type SessionService struct {
	analyzer      SentimentAnalyzer
	sessions      map[string]*ChatSession // sessionId -> session
	userToSession map[int64]string        // userId -> 当前 WebSocket sessionId
	idleTTL       time.Duration
	mu            sync.RWMutex
	logger        *zap.Logger
}

// NewSessionService 创建会话管理服务
func NewSessionService(analyzer SentimentAnalyzer, logger *zap.Logger) *SessionService {
	return &SessionService{
		analyzer:      analyzer,
		sessions:      make(map[string]*ChatSession),
		userToSession: make(map[int64]string),
		idleTTL:       DefaultIdleTTL,
		logger:        logger,
	}
}

// SetIdleTTL 设置 REST 会话空闲超时，<=0 时使用默认值
func (s *SessionService) SetIdleTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	s.mu.Lock()
	s.idleTTL = ttl
	s.mu.Unlock()
}

// OpenWidget 注册 WebSocket 组件会话，同一用户的旧连接会被关闭
func (s *SessionService) OpenWidget(userID int64, conn *websocket.Conn, clientIP string) *ChatSession {
	session := &ChatSession{
		ID:           uuid.New().String(),
		UserID:       userID,
		Conversation: NewConversation(s.analyzer, s.logger),
		Widget: &model.WidgetSession{
			UserID:        userID,
			Conn:          conn,
			ClientIP:      clientIP,
			LastHeartbeat: time.Now(),
		},
	}
	session.Widget.SessionID = session.ID
	session.touch(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if oldID, ok := s.userToSession[userID]; ok {
		if old, exists := s.sessions[oldID]; exists {
			s.logger.Info("用户重新连接，关闭旧连接",
				zap.Int64("userId", userID),
				zap.String("oldSessionId", oldID))
			s.closeLocked(old)
		}
	}

	s.sessions[session.ID] = session
	s.userToSession[userID] = session.ID

	s.logger.Info("组件会话注册成功",
		zap.Int64("userId", userID),
		zap.String("sessionId", session.ID))
	return session
}

// Open 创建无连接的会话（REST 接口使用）
func (s *SessionService) Open() *ChatSession {
	session := &ChatSession{
		ID:           uuid.New().String(),
		Conversation: NewConversation(s.analyzer, s.logger),
	}
	session.touch(time.Now())

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("会话已创建", zap.String("sessionId", session.ID))
	return session
}

// Get 按 sessionId 获取会话并刷新其活跃时间
func (s *SessionService) Get(sessionID string) (*ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touch(time.Now())
	return session, nil
}

// Push 向会话的 WebSocket 推送帧
func (s *SessionService) Push(sessionID string, frame model.ServerFrame) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.Widget == nil {
		return ErrNotConnected
	}

	if err := session.Widget.WriteFrame(frame); err != nil {
		s.logger.Error("消息推送失败",
			zap.String("sessionId", sessionID),
			zap.Error(err))
		go s.Remove(sessionID)
		return err
	}
	return nil
}

// Stream 将会话消息按 ChatState 顺序推送到 WebSocket，先重放已有消息。
// 回调在会话锁内执行，这里只写连接，不碰 SessionService 的锁。
func (s *SessionService) Stream(session *ChatSession, render func(model.Message) model.ServerFrame) error {
	if session.Widget == nil {
		return ErrNotConnected
	}

	session.Conversation.Subscribe(func(msg model.Message) {
		if err := session.Widget.WriteFrame(render(msg)); err != nil {
			s.logger.Error("消息推送失败",
				zap.String("sessionId", session.ID),
				zap.Error(err))
			go s.Remove(session.ID)
		}
	})
	return nil
}

// UpdateHeartbeat 更新心跳时间
func (s *SessionService) UpdateHeartbeat(sessionID string) bool {
	session, err := s.Get(sessionID)
	if err != nil || session.Widget == nil {
		return false
	}
	session.Widget.UpdateHeartbeat()
	return true
}

// Remove 卸载会话，丢弃其状态
func (s *SessionService) Remove(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	s.closeLocked(session)
	s.logger.Info("会话已移除", zap.String("sessionId", sessionID))
	return true
}

func (s *SessionService) closeLocked(session *ChatSession) {
	session.Conversation.Close()
	if session.Widget != nil {
		session.Widget.Conn.Close()
		if s.userToSession[session.UserID] == session.ID {
			delete(s.userToSession, session.UserID)
		}
	}
	delete(s.sessions, session.ID)
}

// GetOnlineCount 在线组件数（WebSocket 会话）
func (s *SessionService) GetOnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.userToSession)
}

// Count 全部会话数
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunHeartbeatChecker 定期清理连续 3 次未按时心跳的 WebSocket 会话
// 以及空闲超过 idleTTL 的 REST 会话，直到 ctx 结束
func (s *SessionService) RunHeartbeatChecker(ctx context.Context) error {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *SessionService) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.Widget == nil {
			if idle := session.IdleSince(now); idle > s.idleTTL {
				s.logger.Info("清理空闲会话",
					zap.String("sessionId", id),
					zap.Duration("idle", idle))
				s.closeLocked(session)
			}
			continue
		}

		missed, expired := session.Widget.CheckHeartbeat(now, heartbeatTimeout)
		if expired {
			s.logger.Info("清理无效会话",
				zap.String("sessionId", id),
				zap.Int("missedBeats", missed))
			s.closeLocked(session)
		} else if missed > 0 {
			s.logger.Warn("组件心跳丢失",
				zap.String("sessionId", id),
				zap.Int("missedBeats", missed))
		}
	}
}

// Shutdown 关闭全部会话
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		s.closeLocked(session)
	}
}
