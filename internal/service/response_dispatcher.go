package service

import (
	"fmt"

	"github.com/supportbot/moodbot-go/internal/model"
)

// 机器人回复文案
const (
	GreetingReply  = "Hello! How are you feeling today?"
	EmergencyReply = "I notice you're feeling down. Would you like to:"
	HappyReply     = "Glad to hear you're doing well!"
	DefaultReply   = "Thanks for sharing. Can you tell me a bit more about how you're feeling?"
)

// NewGreeting 会话开场消息
func NewGreeting() model.Message {
	return model.NewBotMessage(GreetingReply, model.WidgetMoodSelector)
}

// Dispatch 根据意图与情感结果选择回复。优先级：
// NEGATIVE 情感 > SAD 意图 > HAPPY 意图 > 默认。
// 仅 POSITIVE/NEUTRAL 且带置信度时附加百分比。
func Dispatch(intent model.Intent, sentiment model.Sentiment) model.Message {
	if sentiment.Is(model.SentimentNegative) || intent == model.IntentSad {
		return model.NewBotMessage(EmergencyReply, model.WidgetEmergencyOptions)
	}

	text := DefaultReply
	if intent == model.IntentHappy {
		text = HappyReply
	}

	if pct, ok := confidenceSuffix(sentiment); ok {
		text += " " + pct
	}

	return model.NewBotMessage(text, model.WidgetNone)
}

// confidenceSuffix 形如 "(87.0% certainty)"
func confidenceSuffix(sentiment model.Sentiment) (string, bool) {
	if !sentiment.Is(model.SentimentPositive) && !sentiment.Is(model.SentimentNeutral) {
		return "", false
	}
	if sentiment.Result.Confidence == nil {
		return "", false
	}
	return fmt.Sprintf("(%.1f%% certainty)", *sentiment.Result.Confidence*100), true
}
