package moodstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

// RedisStore 以 Redis 有序集合保存情绪记录，key 为 <prefix>:<userId>，
// score 为记录日期。与 MemoryStore 一致，超出上限时淘汰日期最早的记录。
type RedisStore struct {
	client     *redis.Client
	keyPrefix  string
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, keyPrefix string, maxEntries int, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client:     client,
		keyPrefix:  keyPrefix,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.keyPrefix, userID)
}

// encodeMember 成员形如 <写入纳秒,定宽>|<json>。同日记录按成员字典序排列，
// 定宽前缀使其等同于写入顺序，且同值记录不会互相覆盖。
func encodeMember(entry model.MoodEntry, insertedAt time.Time) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%020d|%s", insertedAt.UnixNano(), data), nil
}

func decodeMember(member string) (model.MoodEntry, error) {
	_, payload, ok := strings.Cut(member, "|")
	if !ok {
		return model.MoodEntry{}, fmt.Errorf("成员格式错误")
	}
	var entry model.MoodEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return model.MoodEntry{}, err
	}
	return entry, nil
}

// Add 写入记录并裁剪到日期最新的 maxEntries 条
func (s *RedisStore) Add(ctx context.Context, userID int64, entry model.MoodEntry) error {
	if err := Validate(entry); err != nil {
		return err
	}

	member, err := encodeMember(entry, s.now())
	if err != nil {
		return fmt.Errorf("序列化情绪记录失败: %w", err)
	}

	key := s.key(userID)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(entry.Date.Unix()), Member: member})
	if s.maxEntries > 0 {
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-s.maxEntries-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入 Redis 失败: %w", err)
	}

	s.logger.Debug("情绪记录已写入 Redis", zap.Int64("userId", userID), zap.String("key", key))
	return nil
}

// List 按日期升序读取全部记录；无法解析的条目跳过并记录日志
func (s *RedisStore) List(ctx context.Context, userID int64) ([]model.MoodEntry, error) {
	raw, err := s.client.ZRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取 Redis 失败: %w", err)
	}
	return decodeEntries(raw, s.logger), nil
}

func decodeEntries(raw []string, logger *zap.Logger) []model.MoodEntry {
	entries := make([]model.MoodEntry, 0, len(raw))
	for _, item := range raw {
		entry, err := decodeMember(item)
		if err != nil {
			logger.Warn("跳过无法解析的情绪记录", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
