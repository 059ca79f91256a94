package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidInput 空白或空输入
var ErrInvalidInput = errors.New("invalid input: empty message")

// Author 消息作者
type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

// WidgetTag 消息附带的交互组件标签（封闭枚举）
type WidgetTag string

const (
	WidgetNone             WidgetTag = ""
	WidgetMoodSelector     WidgetTag = "moodSelector"
	WidgetEmergencyOptions WidgetTag = "emergencyOptions"
)

// Valid 判断标签是否属于已知组件
func (w WidgetTag) Valid() bool {
	switch w {
	case WidgetNone, WidgetMoodSelector, WidgetEmergencyOptions:
		return true
	}
	return false
}

// Message 聊天消息，创建后不可修改
type Message struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	Widget    WidgetTag `json:"widget,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage 创建用户消息，空白文本返回 ErrInvalidInput
func NewUserMessage(text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrInvalidInput
	}
	return newMessage(AuthorUser, text, WidgetNone), nil
}

// NewBotMessage 创建机器人消息
func NewBotMessage(text string, widget WidgetTag) Message {
	return newMessage(AuthorBot, text, widget)
}

func newMessage(author Author, text string, widget WidgetTag) Message {
	return Message{
		ID:        uuid.New().String(),
		Author:    author,
		Text:      text,
		Widget:    widget,
		Timestamp: time.Now(),
	}
}
