package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"motor-monitor/internal/alert"
	"motor-monitor/internal/cache"
	"motor-monitor/internal/models"
	"motor-monitor/internal/repository"

	"go.uber.org/zap"
)

// IngestionService 采样接入服务
// 一次 Submit 完成：校验 → 落库 → 阈值评估 → 报警状态变更 → 缓存刷新。
// 缓存是尽力而为的，写缓存失败只记日志不影响接入结果。
type IngestionService struct {
	samples    *repository.SampleRepository
	thresholds *repository.ThresholdRepository
	lifecycle  *alert.Lifecycle
	cache      *cache.AlertCache // 可为 nil（Redis 未启用）
	numMotors  int
	logger     *zap.Logger
}

// NewIngestionService 创建采样接入服务
func NewIngestionService(
	samples *repository.SampleRepository,
	thresholds *repository.ThresholdRepository,
	lifecycle *alert.Lifecycle,
	alertCache *cache.AlertCache,
	numMotors int,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		samples:    samples,
		thresholds: thresholds,
		lifecycle:  lifecycle,
		cache:      alertCache,
		numMotors:  numMotors,
		logger:     logger,
	}
}

// Submit 接入一条采样
// timestamp 为 nil 时取服务端当前时间。
// 返回本次评估的边沿变更；阈值缺失时采样仍然落库，返回 ErrThresholdNotFound。
func (s *IngestionService) Submit(ctx context.Context, motorID int, temperature, voltage float64, timestamp *time.Time) (models.Evaluation, error) {
	if motorID < 1 || motorID > s.numMotors {
		return models.Evaluation{}, fmt.Errorf("motor %d: %w", motorID, models.ErrUnknownMotor)
	}

	ts := time.Now()
	if timestamp != nil {
		ts = *timestamp
	}

	sample := &models.Sample{
		MotorID:     motorID,
		Temperature: temperature,
		Voltage:     voltage,
		Timestamp:   ts,
	}
	if err := sample.Validate(); err != nil {
		return models.Evaluation{}, err
	}

	if err := s.samples.Insert(ctx, sample); err != nil {
		return models.Evaluation{}, fmt.Errorf("failed to store sample: %w", err)
	}

	s.cacheLatestSample(ctx, sample)

	threshold, err := s.thresholds.Get(ctx, motorID)
	if err != nil {
		if errors.Is(err, models.ErrThresholdNotFound) {
			// 采样已落库，只是无法评估
			s.logger.Warn("No thresholds configured, skipping evaluation",
				zap.Int("motor_id", motorID),
			)
			return models.Evaluation{}, err
		}
		return models.Evaluation{}, fmt.Errorf("failed to load thresholds: %w", err)
	}

	eval := s.lifecycle.Evaluate(sample, threshold)

	events := BuildAlertEvents(sample, threshold, eval.Raised)
	for i := range events {
		s.logger.Info("Alert raised",
			zap.String("event_id", events[i].EventID),
			zap.Int("motor_id", events[i].MotorID),
			zap.String("alert_type", string(events[i].AlertType)),
			zap.Float64("temperature", events[i].Temperature),
			zap.Float64("voltage", events[i].Voltage),
		)
	}

	s.cacheAlertState(ctx, eval, events)

	return eval, nil
}

func (s *IngestionService) cacheLatestSample(ctx context.Context, sample *models.Sample) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetLatestSample(ctx, sample); err != nil {
		s.logger.Warn("Failed to cache latest sample",
			zap.Int("motor_id", sample.MotorID),
			zap.Error(err),
		)
	}
}

func (s *IngestionService) cacheAlertState(ctx context.Context, eval models.Evaluation, events []models.AlertEvent) {
	if s.cache == nil {
		return
	}

	if err := s.cache.SetActiveAlerts(ctx, eval.MotorID, eval.State.ActiveKinds()); err != nil {
		s.logger.Warn("Failed to cache active alerts",
			zap.Int("motor_id", eval.MotorID),
			zap.Error(err),
		)
	}

	for i := range events {
		if err := s.cache.PushAlertEvent(ctx, &events[i]); err != nil {
			s.logger.Warn("Failed to cache alert event",
				zap.String("event_id", events[i].EventID),
				zap.Error(err),
			)
		}
	}
}

// History 查询电机历史采样（最新在前），limit <= 0 使用默认值
func (s *IngestionService) History(ctx context.Context, motorID, limit int) ([]models.Sample, error) {
	if motorID < 1 || motorID > s.numMotors {
		return nil, fmt.Errorf("motor %d: %w", motorID, models.ErrUnknownMotor)
	}
	return s.samples.History(ctx, motorID, limit)
}

// Latest 查询电机最新一条采样，优先读缓存，未命中回源数据库
// 该电机还没有任何采样时返回 ErrSampleNotFound
func (s *IngestionService) Latest(ctx context.Context, motorID int) (*models.Sample, error) {
	if motorID < 1 || motorID > s.numMotors {
		return nil, fmt.Errorf("motor %d: %w", motorID, models.ErrUnknownMotor)
	}

	if s.cache != nil {
		sample, err := s.cache.GetLatestSample(ctx, motorID)
		if err != nil {
			s.logger.Warn("Failed to read latest sample from cache",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
		} else if sample != nil {
			return sample, nil
		}
	}

	sample, err := s.samples.Latest(ctx, motorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}
	if sample == nil {
		return nil, fmt.Errorf("motor %d: %w", motorID, models.ErrSampleNotFound)
	}
	return sample, nil
}

// ActiveAlerts 查询电机当前活跃报警和最近的报警事件
// 启用缓存时活跃报警读缓存（带 TTL，停止上报后自动过期），否则读进程内状态
func (s *IngestionService) ActiveAlerts(ctx context.Context, motorID int) ([]models.AlertKind, []models.AlertEvent, error) {
	if motorID < 1 || motorID > s.numMotors {
		return nil, nil, fmt.Errorf("motor %d: %w", motorID, models.ErrUnknownMotor)
	}

	var kinds []models.AlertKind
	if s.cache != nil {
		cached, err := s.cache.GetActiveAlerts(ctx, motorID)
		if err != nil {
			s.logger.Warn("Failed to read active alerts from cache",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
			kinds = s.lifecycle.State(motorID).ActiveKinds()
		} else {
			kinds = cached
		}
	} else {
		kinds = s.lifecycle.State(motorID).ActiveKinds()
	}

	events := []models.AlertEvent{}
	if s.cache != nil {
		cached, err := s.cache.RecentAlertEvents(ctx, motorID, 0)
		if err != nil {
			s.logger.Warn("Failed to read alert events from cache",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
		} else {
			events = cached
		}
	}

	return kinds, events, nil
}
