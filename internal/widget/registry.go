package widget

import (
	"fmt"
	"sync"

	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

// Registry 组件标签到 Renderer 的映射，由展示层持有
type Registry struct {
	renderers map[model.WidgetTag]Renderer
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRegistry 创建空的组件注册表
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		renderers: make(map[model.WidgetTag]Renderer),
		logger:    logger,
	}
}

// Register 注册组件渲染器
func (r *Registry) Register(tag model.WidgetTag, renderer Renderer) error {
	if tag == model.WidgetNone || !tag.Valid() {
		return fmt.Errorf("unknown widget tag: %q", tag)
	}
	if renderer == nil {
		return fmt.Errorf("renderer cannot be nil: %s", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[tag]; exists {
		return fmt.Errorf("widget already registered: %s", tag)
	}

	r.renderers[tag] = renderer
	r.logger.Debug("组件已注册", zap.String("widget", string(tag)))
	return nil
}

// Get 获取渲染器
func (r *Registry) Get(tag model.WidgetTag) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[tag]
	return renderer, ok
}

// View 把消息转换为展示层视图。未注册或渲染失败的组件只记录日志，
// 消息仍以纯文本展示。
func (r *Registry) View(msg model.Message) model.MessageView {
	view := model.MessageView{
		ID:        msg.ID,
		Author:    msg.Author,
		Text:      msg.Text,
		Widget:    msg.Widget,
		Timestamp: msg.Timestamp,
	}
	if msg.Widget == model.WidgetNone {
		return view
	}

	renderer, ok := r.Get(msg.Widget)
	if !ok {
		r.logger.Warn("组件未注册", zap.String("widget", string(msg.Widget)))
		return view
	}

	data, err := renderer.Render(msg)
	if err != nil {
		r.logger.Error("组件渲染失败",
			zap.String("widget", string(msg.Widget)),
			zap.Error(err))
		return view
	}

	view.WidgetData = data
	return view
}

// Views 批量转换
func (r *Registry) Views(msgs []model.Message) []model.MessageView {
	views := make([]model.MessageView, len(msgs))
	for i, m := range msgs {
		views[i] = r.View(m)
	}
	return views
}

// Count 已注册组件数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.renderers)
}
