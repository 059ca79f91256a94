package moodstore

import (
	"context"
	"sync"

	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

// MemoryStore 内存情绪记录存储
type MemoryStore struct {
	entries    map[int64][]model.MoodEntry // userId -> entries
	maxEntries int
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewMemoryStore 创建内存存储，每个用户最多保留 maxEntries 条
func NewMemoryStore(maxEntries int, logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[int64][]model.MoodEntry),
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Add 追加记录
func (s *MemoryStore) Add(_ context.Context, userID int64, entry model.MoodEntry) error {
	if err := Validate(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.entries[userID], entry)
	sortByDate(entries)
	s.entries[userID] = trim(entries, s.maxEntries)

	s.logger.Debug("情绪记录已添加",
		zap.Int64("userId", userID),
		zap.Int("count", len(s.entries[userID])))
	return nil
}

// List 返回记录副本
func (s *MemoryStore) List(_ context.Context, userID int64) ([]model.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.MoodEntry, len(s.entries[userID]))
	copy(out, s.entries[userID])
	return out, nil
}
