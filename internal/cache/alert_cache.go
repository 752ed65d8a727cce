package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"motor-monitor/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AlertCache 电机实时状态缓存
// 缓存每个电机的最新采样和当前活跃报警，供查询端快速读取。
// 键格式：{prefix}{motor_id}{suffix}，如 motor:1:latest / motor:1:alerts
type AlertCache struct {
	client       *redis.Client
	keyPrefix    string
	latestSuffix string
	alertSuffix  string
	alertTTL     time.Duration
	logger       *zap.Logger
}

// NewAlertCache 创建缓存管理器
func NewAlertCache(client *redis.Client, keyPrefix, latestSuffix, alertSuffix string, alertTTLSeconds int, logger *zap.Logger) *AlertCache {
	return &AlertCache{
		client:       client,
		keyPrefix:    keyPrefix,
		latestSuffix: latestSuffix,
		alertSuffix:  alertSuffix,
		alertTTL:     time.Duration(alertTTLSeconds) * time.Second,
		logger:       logger,
	}
}

func (c *AlertCache) latestKey(motorID int) string {
	return fmt.Sprintf("%s%d%s", c.keyPrefix, motorID, c.latestSuffix)
}

func (c *AlertCache) alertKey(motorID int) string {
	return fmt.Sprintf("%s%d%s", c.keyPrefix, motorID, c.alertSuffix)
}

func (c *AlertCache) eventKey(motorID int) string {
	return fmt.Sprintf("%s%d:events", c.keyPrefix, motorID)
}

// SetLatestSample 缓存电机最新采样（不设 TTL，始终保留最后一条）
func (c *AlertCache) SetLatestSample(ctx context.Context, sample *models.Sample) error {
	if sample == nil {
		return fmt.Errorf("sample is required")
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	if err := c.client.Set(ctx, c.latestKey(sample.MotorID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set latest sample: %w", err)
	}

	return nil
}

// GetLatestSample 读取电机最新采样，缓存未命中时返回 (nil, nil)
func (c *AlertCache) GetLatestSample(ctx context.Context, motorID int) (*models.Sample, error) {
	data, err := c.client.Get(ctx, c.latestKey(motorID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest sample: %w", err)
	}

	var sample models.Sample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample: %w", err)
	}

	return &sample, nil
}

// SetActiveAlerts 缓存电机当前活跃报警（带 TTL，停止上报后自动过期）
// 无活跃报警时直接删除键
func (c *AlertCache) SetActiveAlerts(ctx context.Context, motorID int, kinds []models.AlertKind) error {
	key := c.alertKey(motorID)

	if len(kinds) == 0 {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete alert cache: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(kinds)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.alertTTL).Err(); err != nil {
		return fmt.Errorf("failed to set alert cache: %w", err)
	}

	return nil
}

// PushAlertEvent 追加一条报警事件（列表头部，最多保留 100 条）
func (c *AlertCache) PushAlertEvent(ctx context.Context, event *models.AlertEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := c.eventKey(event.MotorID)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, 99)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push alert event: %w", err)
	}

	return nil
}

// RecentAlertEvents 读取电机最近的报警事件（最新在前）
func (c *AlertCache) RecentAlertEvents(ctx context.Context, motorID int, limit int) ([]models.AlertEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	items, err := c.client.LRange(ctx, c.eventKey(motorID), 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return []models.AlertEvent{}, nil
		}
		return nil, fmt.Errorf("failed to read alert events: %w", err)
	}

	events := make([]models.AlertEvent, 0, len(items))
	for _, item := range items {
		var ev models.AlertEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert event: %w", err)
		}
		events = append(events, ev)
	}

	return events, nil
}

// GetActiveAlerts 读取电机当前活跃报警，缓存未命中时返回空列表
func (c *AlertCache) GetActiveAlerts(ctx context.Context, motorID int) ([]models.AlertKind, error) {
	data, err := c.client.Get(ctx, c.alertKey(motorID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []models.AlertKind{}, nil
		}
		return nil, fmt.Errorf("failed to get alert cache: %w", err)
	}

	var kinds []models.AlertKind
	if err := json.Unmarshal(data, &kinds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}

	return kinds, nil
}
