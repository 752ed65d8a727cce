package service

import (
	"context"
	"fmt"

	"motor-monitor/internal/models"
	"motor-monitor/internal/repository"

	"go.uber.org/zap"
)

// ThresholdService 阈值管理服务
// Set 是全量替换：三个字段一起校验、一起写入，没有部分更新。
type ThresholdService struct {
	thresholds *repository.ThresholdRepository
	numMotors  int
	logger     *zap.Logger
}

// NewThresholdService 创建阈值管理服务
func NewThresholdService(thresholds *repository.ThresholdRepository, numMotors int, logger *zap.Logger) *ThresholdService {
	return &ThresholdService{
		thresholds: thresholds,
		numMotors:  numMotors,
		logger:     logger,
	}
}

// Get 获取电机当前阈值，未配置返回 ErrThresholdNotFound
func (s *ThresholdService) Get(ctx context.Context, motorID int) (*models.Threshold, error) {
	if motorID < 1 || motorID > s.numMotors {
		return nil, fmt.Errorf("motor %d: %w", motorID, models.ErrUnknownMotor)
	}
	return s.thresholds.Get(ctx, motorID)
}

// Set 整体替换电机阈值
// 校验失败（非法值 / voltage_min > voltage_max / 未知电机）时保留原配置不动
func (s *ThresholdService) Set(ctx context.Context, threshold *models.Threshold) error {
	if threshold == nil {
		return fmt.Errorf("threshold is required")
	}
	if threshold.MotorID < 1 || threshold.MotorID > s.numMotors {
		return fmt.Errorf("motor %d: %w", threshold.MotorID, models.ErrUnknownMotor)
	}
	if err := threshold.Validate(); err != nil {
		return err
	}

	if err := s.thresholds.Upsert(ctx, threshold); err != nil {
		return fmt.Errorf("failed to update thresholds: %w", err)
	}

	s.logger.Info("Thresholds updated",
		zap.Int("motor_id", threshold.MotorID),
		zap.Float64("temp_max", threshold.TempMax),
		zap.Float64("voltage_min", threshold.VoltageMin),
		zap.Float64("voltage_max", threshold.VoltageMax),
	)

	return nil
}
