package service

import (
	"context"
	"fmt"
	"time"

	"github.com/supportbot/moodbot-go/internal/model"
	"github.com/supportbot/moodbot-go/internal/moodstore"
	"go.uber.org/zap"
)

// MoodSeriesLabel 图表数据集名称
const MoodSeriesLabel = "Mood Level"

// ToSeries 将记录按原顺序投影为图表数据，不排序、不过滤、不聚合
func ToSeries(entries []model.MoodEntry) model.MoodSeries {
	series := model.MoodSeries{
		Label:  MoodSeriesLabel,
		Labels: make([]string, len(entries)),
		Values: make([]float64, len(entries)),
	}
	for i, e := range entries {
		series.Labels[i] = e.Date.Format(model.MoodDateLayout)
		series.Values[i] = e.Score
	}
	return series
}

// MoodService 情绪记录与图表服务
type MoodService struct {
	store  moodstore.Store
	now    func() time.Time
	logger *zap.Logger
}

// NewMoodService 创建情绪服务
func NewMoodService(store moodstore.Store, logger *zap.Logger) *MoodService {
	return &MoodService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Record 记录一次情绪打分，date 为空时取当天
func (s *MoodService) Record(ctx context.Context, userID int64, date string, score float64) (model.MoodEntry, error) {
	entry := model.MoodEntry{Score: score}

	if date == "" {
		now := s.now().UTC()
		entry.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		d, err := time.Parse(model.MoodDateLayout, date)
		if err != nil {
			return model.MoodEntry{}, fmt.Errorf("%w: date %q", moodstore.ErrInvalidEntry, date)
		}
		entry.Date = d
	}

	if err := s.store.Add(ctx, userID, entry); err != nil {
		return model.MoodEntry{}, err
	}

	s.logger.Info("记录情绪",
		zap.Int64("userId", userID),
		zap.String("date", entry.Date.Format(model.MoodDateLayout)),
		zap.Float64("score", score))
	return entry, nil
}

// Series 用户的情绪图表数据
func (s *MoodService) Series(ctx context.Context, userID int64) (model.MoodSeries, error) {
	entries, err := s.store.List(ctx, userID)
	if err != nil {
		return model.MoodSeries{}, fmt.Errorf("读取情绪记录失败: %w", err)
	}
	return ToSeries(entries), nil
}
