package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Mood      MoodConfig      `yaml:"mood"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Name           string   `yaml:"name"`
	AllowedOrigins []string      `yaml:"allowedOrigins"` // 为空时允许所有来源
	SessionIdleTTL time.Duration `yaml:"sessionIdleTTL"` // REST 会话空闲超时
}

// RedisConfig Redis 配置，未启用时情绪记录保存在内存
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SentimentConfig 情感分析服务配置
type SentimentConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MoodConfig 情绪记录配置
type MoodConfig struct {
	KeyPrefix  string `yaml:"keyPrefix"`
	MaxEntries int    `yaml:"maxEntries"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Name: "moodbot", SessionIdleTTL: 30 * time.Minute},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		Sentiment: SentimentConfig{
			URL:     "http://localhost:5000",
			Timeout: 5 * time.Second,
		},
		Mood: MoodConfig{KeyPrefix: "mood_entries", MaxEntries: 365},
		Log:  LogConfig{Level: "info"},
	}
}

// LoadConfig 加载配置文件，缺失字段使用默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if cfg.Sentiment.URL == "" {
		return nil, fmt.Errorf("sentiment.url 不能为空")
	}
	if cfg.Sentiment.Timeout <= 0 {
		cfg.Sentiment.Timeout = 5 * time.Second
	}
	if cfg.Server.SessionIdleTTL <= 0 {
		cfg.Server.SessionIdleTTL = 30 * time.Minute
	}
	if cfg.Mood.MaxEntries <= 0 {
		cfg.Mood.MaxEntries = 365
	}

	return cfg, nil
}
