package model

import "strings"

// Intent 关键词意图
type Intent string

const (
	IntentSad     Intent = "SAD"
	IntentHappy   Intent = "HAPPY"
	IntentDefault Intent = "DEFAULT"
)

// SentimentLabel 情感标签
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
	SentimentUnknown  SentimentLabel = "UNKNOWN"
)

// ParseSentimentLabel 大小写不敏感地解析标签，未知值归为 UNKNOWN
func ParseSentimentLabel(s string) SentimentLabel {
	switch label := SentimentLabel(strings.ToUpper(strings.TrimSpace(s))); label {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return label
	}
	return SentimentUnknown
}

// SentimentResult 远程情感分析结果
type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Confidence *float64       `json:"confidence,omitempty"` // nil 表示服务未返回
}

// Sentiment 分析结果或 AnalysisUnavailable
type Sentiment struct {
	Result    SentimentResult
	Available bool
}

// AnalysisUnavailable 网络错误、非 2xx、响应格式错误统一映射为此值
var AnalysisUnavailable = Sentiment{}

// Analyzed 包装一个有效的分析结果
func Analyzed(result SentimentResult) Sentiment {
	return Sentiment{Result: result, Available: true}
}

// Is 判断分析结果是否可用且标签为 label
func (s Sentiment) Is(label SentimentLabel) bool {
	return s.Available && s.Result.Label == label
}
