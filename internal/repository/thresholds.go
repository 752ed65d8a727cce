package repository

import (
	"context"
	"database/sql"
	"fmt"

	"motor-monitor/internal/models"

	"go.uber.org/zap"
)

// ThresholdRepository 阈值仓库（thresholds 表，每个电机唯一一条）
type ThresholdRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewThresholdRepository 创建阈值仓库
func NewThresholdRepository(db *sql.DB, logger *zap.Logger) *ThresholdRepository {
	return &ThresholdRepository{
		db:     db,
		logger: logger,
	}
}

// Get 获取电机的当前阈值
func (r *ThresholdRepository) Get(ctx context.Context, motorID int) (*models.Threshold, error) {
	if motorID < 1 {
		return nil, fmt.Errorf("motor_id is required")
	}

	query := `
		SELECT motor_id, temp_max, voltage_min, voltage_max
		FROM thresholds
		WHERE motor_id = $1
	`

	var t models.Threshold
	err := r.db.QueryRowContext(ctx, query, motorID).Scan(
		&t.MotorID, &t.TempMax, &t.VoltageMin, &t.VoltageMax,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("motor %d: %w", motorID, models.ErrThresholdNotFound)
		}
		return nil, fmt.Errorf("failed to query threshold: %w", err)
	}

	return &t, nil
}

// Upsert 整体替换电机阈值（三个字段一起写入，原子替换）
func (r *ThresholdRepository) Upsert(ctx context.Context, threshold *models.Threshold) error {
	if threshold == nil {
		return fmt.Errorf("threshold is required")
	}
	if threshold.MotorID < 1 {
		return fmt.Errorf("motor_id is required")
	}

	query := `
		INSERT INTO thresholds (motor_id, temp_max, voltage_min, voltage_max)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (motor_id) DO UPDATE SET
			temp_max = EXCLUDED.temp_max,
			voltage_min = EXCLUDED.voltage_min,
			voltage_max = EXCLUDED.voltage_max
	`

	_, err := r.db.ExecContext(ctx, query,
		threshold.MotorID,
		threshold.TempMax,
		threshold.VoltageMin,
		threshold.VoltageMax,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert threshold: %w", err)
	}

	return nil
}

// SeedDefaults 为注册的电机写入默认阈值（已有配置的电机不覆盖）
// 服务启动时调用一次，相当于电机注册
func (r *ThresholdRepository) SeedDefaults(ctx context.Context, numMotors int) error {
	if numMotors < 1 {
		return fmt.Errorf("numMotors must be positive")
	}

	query := `
		INSERT INTO thresholds (motor_id, temp_max, voltage_min, voltage_max)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (motor_id) DO NOTHING
	`

	for motorID := 1; motorID <= numMotors; motorID++ {
		def := models.DefaultThreshold(motorID)
		if _, err := r.db.ExecContext(ctx, query,
			def.MotorID, def.TempMax, def.VoltageMin, def.VoltageMax,
		); err != nil {
			return fmt.Errorf("failed to seed threshold for motor %d: %w", motorID, err)
		}
	}

	r.logger.Info("Seeded default thresholds",
		zap.Int("num_motors", numMotors),
	)

	return nil
}
