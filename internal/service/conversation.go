package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

// ErrStaleSubmission 提交已被更新的提交取代，回复被丢弃
var ErrStaleSubmission = errors.New("submission superseded by a newer one")

// SentimentAnalyzer 情感分析。失败时返回 model.AnalysisUnavailable，
// error 仅用于记录日志。
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (model.Sentiment, error)
}

// Submission 一次已受理的用户提交
type Submission struct {
	Token   uint64
	Message model.Message
}

// Conversation 单个聊天组件的会话：持有 ChatState，串联意图解析、
// 情感分析与回复生成。同一时刻只有最新的提交能追加回复。
type Conversation struct {
	id       string
	analyzer SentimentAnalyzer
	logger   *zap.Logger

	mu       sync.Mutex
	state    model.ChatState
	seq      uint64
	cancel   context.CancelFunc
	listener func(model.Message)
}

// NewConversation 创建会话，状态以问候语开始
func NewConversation(analyzer SentimentAnalyzer, logger *zap.Logger) *Conversation {
	id := uuid.New().String()
	return &Conversation{
		id:       id,
		analyzer: analyzer,
		logger:   logger.With(zap.String("conversationId", id)),
		state:    model.NewChatState(NewGreeting()),
	}
}

// ID 会话标识
func (c *Conversation) ID() string {
	return c.id
}

// State 当前状态快照
func (c *Conversation) State() model.ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe 注册消息监听：先按序重放已有消息，之后每次追加都在会话锁内回调，
// 因此监听方看到的顺序与 ChatState 一致。fn 不得再调用本会话的方法。
func (c *Conversation) Subscribe(fn func(model.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, msg := range c.state.Messages() {
		fn(msg)
	}
	c.listener = fn
}

func (c *Conversation) appendLocked(msg model.Message) {
	c.state = c.state.Append(msg)
	if c.listener != nil {
		c.listener(msg)
	}
}

// Accept 校验输入并同步追加用户消息。新提交会取消仍在进行中的旧分析。
func (c *Conversation) Accept(text string) (Submission, error) {
	msg, err := model.NewUserMessage(text)
	if err != nil {
		return Submission{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.appendLocked(msg)
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	return Submission{Token: c.seq, Message: msg}, nil
}

// Respond 为提交生成回复并追加。提交已过期时返回 ErrStaleSubmission，不追加任何消息。
func (c *Conversation) Respond(ctx context.Context, sub Submission) (model.Message, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if sub.Token != c.seq {
		c.mu.Unlock()
		return model.Message{}, ErrStaleSubmission
	}
	c.cancel = cancel
	c.mu.Unlock()

	intent := ParseIntent(sub.Message.Text)
	sentiment, err := c.analyzer.Analyze(ctx, sub.Message.Text)
	if err != nil && ctx.Err() == nil {
		c.logger.Warn("情感分析不可用，使用关键词回复",
			zap.String("intent", string(intent)),
			zap.Error(err))
	}

	reply := Dispatch(intent, sentiment)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sub.Token != c.seq {
		c.logger.Debug("丢弃过期回复", zap.Uint64("token", sub.Token), zap.Uint64("current", c.seq))
		return model.Message{}, ErrStaleSubmission
	}
	c.cancel = nil
	c.appendLocked(reply)

	c.logger.Info("已生成回复",
		zap.String("intent", string(intent)),
		zap.Bool("sentimentAvailable", sentiment.Available),
		zap.String("widget", string(reply.Widget)))

	return reply, nil
}

// Submit 受理并回复，阻塞直到回复生成
func (c *Conversation) Submit(ctx context.Context, text string) (model.Message, error) {
	sub, err := c.Accept(text)
	if err != nil {
		return model.Message{}, err
	}
	return c.Respond(ctx, sub)
}

// Close 使所有进行中的提交失效并解除监听
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.listener = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
