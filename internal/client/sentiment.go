package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

// ErrAnalysisUnavailable 情感分析不可用（网络错误、非 2xx、响应格式错误）
var ErrAnalysisUnavailable = errors.New("sentiment analysis unavailable")

// 响应体上限
const maxResponseBytes = 1 << 20

// SentimentClient 情感分析服务客户端
type SentimentClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSentimentClient 创建情感分析客户端，baseURL 形如 http://host:5000
func NewSentimentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *SentimentClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SentimentClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/analyze",
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// AnalyzeRequest 分析请求
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse 分析响应
type AnalyzeResponse struct {
	Sentiment  *string  `json:"sentiment"`
	Confidence *float64 `json:"confidence"`
}

// Analyze 调用 /analyze。失败时返回 model.AnalysisUnavailable 及包装了
// ErrAnalysisUnavailable 的错误，错误仅用于日志。
func (c *SentimentClient) Analyze(ctx context.Context, text string) (model.Sentiment, error) {
	result, err := c.analyze(ctx, text)
	if err != nil {
		return model.AnalysisUnavailable, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	return model.Analyzed(result), nil
}

func (c *SentimentClient) analyze(ctx context.Context, text string) (model.SentimentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jsonData, err := json.Marshal(AnalyzeRequest{Text: text})
	if err != nil {
		return model.SentimentResult{}, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return model.SentimentResult{}, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("调用情感分析服务", zap.String("url", c.endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.SentimentResult{}, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.SentimentResult{}, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.SentimentResult{}, fmt.Errorf("服务返回错误: %d", resp.StatusCode)
	}

	return decodeAnalyzeResponse(body)
}

// decodeAnalyzeResponse 校验响应结构：sentiment 必须是非空字符串，
// confidence 可缺省，存在时必须在 [0,1]
func decodeAnalyzeResponse(body []byte) (model.SentimentResult, error) {
	var analyzeResp AnalyzeResponse
	if err := json.Unmarshal(body, &analyzeResp); err != nil {
		return model.SentimentResult{}, fmt.Errorf("解析响应失败: %w", err)
	}

	if analyzeResp.Sentiment == nil || strings.TrimSpace(*analyzeResp.Sentiment) == "" {
		return model.SentimentResult{}, fmt.Errorf("响应缺少 sentiment 字段")
	}

	if conf := analyzeResp.Confidence; conf != nil && (*conf < 0 || *conf > 1) {
		return model.SentimentResult{}, fmt.Errorf("confidence 超出范围: %v", *conf)
	}

	return model.SentimentResult{
		Label:      model.ParseSentimentLabel(*analyzeResp.Sentiment),
		Confidence: analyzeResp.Confidence,
	}, nil
}
