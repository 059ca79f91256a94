package model

import "time"

// 客户端帧类型
const (
	FrameChat      = "CHAT"
	FrameMood      = "MOOD"
	FrameHeartbeat = "HEARTBEAT"
)

// 服务端帧类型
const (
	FrameMessage = "MESSAGE"
	FrameAck     = "ACK"
	FrameError   = "ERROR"
)

// ClientFrame 组件发来的 WebSocket 帧
type ClientFrame struct {
	Type    string  `json:"type"` // CHAT, MOOD, HEARTBEAT
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// ServerFrame 推送给组件的 WebSocket 帧
type ServerFrame struct {
	Type    string       `json:"type"` // MESSAGE, ACK, ERROR
	Message *MessageView `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// MessageView 展示层消息
type MessageView struct {
	ID         string      `json:"id"`
	Author     Author      `json:"author"`
	Text       string      `json:"text"`
	Widget     WidgetTag   `json:"widget,omitempty"`
	WidgetData interface{} `json:"widgetData,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// SubmitRequest REST 提交消息请求
type SubmitRequest struct {
	Text string `json:"text"`
}

// MoodEntryRequest 记录情绪请求
type MoodEntryRequest struct {
	UserID int64   `json:"userId"`
	Date   string  `json:"date"` // 2006-01-02，为空时取当天
	Score  float64 `json:"score"`
}
