package widget

import "github.com/supportbot/moodbot-go/internal/model"

// Renderer 把组件标签渲染为展示层数据
type Renderer interface {
	Render(msg model.Message) (interface{}, error)
}

// RendererFunc 函数形式的 Renderer
type RendererFunc func(msg model.Message) (interface{}, error)

// Render 实现 Renderer
func (f RendererFunc) Render(msg model.Message) (interface{}, error) {
	return f(msg)
}

// MoodOption 情绪选择项
type MoodOption struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// MoodSelector moodSelector 组件数据
type MoodSelector struct {
	Prompt  string       `json:"prompt"`
	Options []MoodOption `json:"options"`
}

// Action 可点击的资源链接
type Action struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Contact 紧急联系方式
type Contact struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description,omitempty"`
}

// EmergencyOptions emergencyOptions 组件数据
type EmergencyOptions struct {
	Actions  []Action  `json:"actions"`
	Contacts []Contact `json:"contacts"`
}
