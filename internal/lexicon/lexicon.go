// Package lexicon 基于关键词词典的简易情感打分，供本地开发用的 /analyze 服务使用。
package lexicon

import (
	"math"
	"strings"
)

// 极性阈值
const threshold = 0.2

var (
	negativeWords = []string{"hate", "not feeling", "sad", "depressed", "anxious", "tired", "lonely", "hopeless", "cry"}
	positiveWords = []string{"happy", "good", "great", "excited", "joy", "love", "calm", "better"}
)

// Polarity 返回 [-1,1] 的极性
func Polarity(text string) float64 {
	lower := strings.ToLower(text)
	pos := count(lower, positiveWords)
	neg := count(lower, negativeWords)
	return float64(pos-neg) / float64(pos+neg+1)
}

// Classify 按极性给出标签（小写）与置信度：
// >0.2 positive（置信度=极性），<-0.2 negative（|极性|），其余 neutral（1-|极性|）
func Classify(polarity float64) (string, float64) {
	switch {
	case polarity > threshold:
		return "positive", polarity
	case polarity < -threshold:
		return "negative", math.Abs(polarity)
	default:
		return "neutral", 1 - math.Abs(polarity)
	}
}

// Analyze 打分并分类
func Analyze(text string) (string, float64) {
	return Classify(Polarity(text))
}

func count(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
