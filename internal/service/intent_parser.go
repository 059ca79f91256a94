package service

import (
	"strings"

	"github.com/supportbot/moodbot-go/internal/model"
)

// intentRule 关键词规则，按顺序匹配，先命中者生效
type intentRule struct {
	intent   model.Intent
	keywords []string
}

var intentRules = []intentRule{
	{intent: model.IntentSad, keywords: []string{"sad"}},
	{intent: model.IntentHappy, keywords: []string{"happy", "good"}},
}

// ParseIntent 对小写化文本做子串匹配（不检查词边界，"saddle" 也算 SAD）
func ParseIntent(text string) model.Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return model.IntentDefault
}
