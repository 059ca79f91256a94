package moodstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/supportbot/moodbot-go/internal/model"
)

// ErrInvalidEntry 情绪记录无效
var ErrInvalidEntry = errors.New("invalid mood entry")

// Store 情绪记录存储
type Store interface {
	// Add 追加一条记录
	Add(ctx context.Context, userID int64, entry model.MoodEntry) error
	// List 按日期升序返回记录
	List(ctx context.Context, userID int64) ([]model.MoodEntry, error)
}

// Validate 校验记录：日期非零，分数为有限数
func Validate(entry model.MoodEntry) error {
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}
	if math.IsNaN(entry.Score) || math.IsInf(entry.Score, 0) {
		return fmt.Errorf("%w: score must be finite", ErrInvalidEntry)
	}
	return nil
}

// sortByDate 稳定排序，同日记录保持写入顺序
func sortByDate(entries []model.MoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

// trim 只保留最近 max 条
func trim(entries []model.MoodEntry, max int) []model.MoodEntry {
	if max > 0 && len(entries) > max {
		return entries[len(entries)-max:]
	}
	return entries
}
