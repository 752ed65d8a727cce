package service

import (
	"context"
	"time"

	"motor-monitor/internal/repository"

	"go.uber.org/zap"
)

// RetentionSweeper 采样保留清理器
// 周期性删除每个电机超出保留上限的旧采样，限制 thermocouple_data 的增长。
// 单个电机清理失败不影响其他电机，下个周期重试。
type RetentionSweeper struct {
	samples   *repository.SampleRepository
	numMotors int
	keep      int
	interval  time.Duration
	logger    *zap.Logger
}

// NewRetentionSweeper 创建保留清理器，keep 为每个电机保留的最近采样条数
func NewRetentionSweeper(samples *repository.SampleRepository, numMotors, keep int, logger *zap.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		samples:   samples,
		numMotors: numMotors,
		keep:      keep,
		interval:  time.Minute,
		logger:    logger,
	}
}

// Run 启动清理循环，阻塞直到 ctx 取消
func (s *RetentionSweeper) Run(ctx context.Context) {
	s.logger.Info("Retention sweeper started",
		zap.Int("num_motors", s.numMotors),
		zap.Int("keep", s.keep),
	)

	// 启动即清理一次，不等首个 tick
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep 对全部电机各执行一次保留清理
func (s *RetentionSweeper) sweep(ctx context.Context) {
	for motorID := 1; motorID <= s.numMotors; motorID++ {
		deleted, err := s.samples.Prune(ctx, motorID, s.keep)
		if err != nil {
			s.logger.Warn("Failed to prune samples",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
			continue
		}
		if deleted > 0 {
			s.logger.Debug("Pruned samples",
				zap.Int("motor_id", motorID),
				zap.Int64("deleted", deleted),
			)
		}
	}
}
