package model

import "time"

// MoodDateLayout 图表横轴日期格式
const MoodDateLayout = "2006-01-02"

// MoodEntry 情绪打分记录
type MoodEntry struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// MoodSeries 图表数据
type MoodSeries struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
