package poller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"motor-monitor/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIClient 监测服务 HTTP API 客户端
type APIClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewAPIClient 创建 API 客户端
func NewAPIClient(baseURL string, logger *zap.Logger) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &APIClient{
		client: client,
		logger: logger,
	}
}

// LatestSample 获取电机最新一条采样（limit=1 历史查询）
// 没有数据时返回 (nil, nil)
func (c *APIClient) LatestSample(ctx context.Context, motorID int) (*models.Sample, error) {
	var samples []models.Sample

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("limit", "1").
		SetResult(&samples).
		Get(fmt.Sprintf("/api/data/%d/history", motorID))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest sample: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching latest sample", resp.StatusCode())
	}

	if len(samples) == 0 {
		return nil, nil
	}
	return &samples[0], nil
}

// History 获取电机历史采样（最新在前）
func (c *APIClient) History(ctx context.Context, motorID, limit int) ([]models.Sample, error) {
	var samples []models.Sample

	req := c.client.R().SetContext(ctx).SetResult(&samples)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	resp, err := req.Get(fmt.Sprintf("/api/data/%d/history", motorID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching history", resp.StatusCode())
	}

	return samples, nil
}

// Threshold 获取电机阈值，未配置返回 ErrThresholdNotFound
func (c *APIClient) Threshold(ctx context.Context, motorID int) (*models.Threshold, error) {
	var threshold models.Threshold

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&threshold).
		Get(fmt.Sprintf("/api/thresholds/%d", motorID))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch thresholds: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("motor %d: %w", motorID, models.ErrThresholdNotFound)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching thresholds", resp.StatusCode())
	}

	return &threshold, nil
}

// UpdateThreshold 整体替换电机阈值
func (c *APIClient) UpdateThreshold(ctx context.Context, threshold *models.Threshold) error {
	if threshold == nil {
		return fmt.Errorf("threshold is required")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(threshold).
		Post("/api/thresholds/")

	if err != nil {
		return fmt.Errorf("failed to update thresholds: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status %d updating thresholds", resp.StatusCode())
	}

	return nil
}

// SubmitSample 提交一条采样（模拟器和测试工具使用）
func (c *APIClient) SubmitSample(ctx context.Context, motorID int, temperature, voltage float64) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"motor_id":    motorID,
			"temperature": temperature,
			"voltage":     voltage,
		}).
		Post("/api/data/")

	if err != nil {
		return fmt.Errorf("failed to submit sample: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status %d submitting sample", resp.StatusCode())
	}

	return nil
}
