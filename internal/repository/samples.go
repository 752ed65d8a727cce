package repository

import (
	"context"
	"database/sql"
	"fmt"

	"motor-monitor/internal/models"

	"go.uber.org/zap"
)

// SampleRepository 遥测采样仓库（thermocouple_data 表）
type SampleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSampleRepository 创建采样仓库
func NewSampleRepository(db *sql.DB, logger *zap.Logger) *SampleRepository {
	return &SampleRepository{
		db:     db,
		logger: logger,
	}
}

// Insert 写入一条采样记录（id 由数据库自增生成）
func (r *SampleRepository) Insert(ctx context.Context, sample *models.Sample) error {
	if sample == nil {
		return fmt.Errorf("sample is required")
	}
	if sample.MotorID < 1 {
		return fmt.Errorf("motor_id is required")
	}

	query := `
		INSERT INTO thermocouple_data (motor_id, temperature, voltage, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		sample.MotorID,
		sample.Temperature,
		sample.Voltage,
		sample.Timestamp,
	).Scan(&sample.ID)

	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}

	return nil
}

// History 获取电机的历史采样（最新在前）
// limit <= 0 时使用默认值 100
func (r *SampleRepository) History(ctx context.Context, motorID, limit int) ([]models.Sample, error) {
	if motorID < 1 {
		return nil, fmt.Errorf("motor_id is required")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, motor_id, temperature, voltage, timestamp
		FROM thermocouple_data
		WHERE motor_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, motorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	samples := []models.Sample{}
	for rows.Next() {
		var s models.Sample
		if err := rows.Scan(&s.ID, &s.MotorID, &s.Temperature, &s.Voltage, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}

	return samples, nil
}

// Latest 获取电机的最新一条采样，没有数据时返回 (nil, nil)
func (r *SampleRepository) Latest(ctx context.Context, motorID int) (*models.Sample, error) {
	if motorID < 1 {
		return nil, fmt.Errorf("motor_id is required")
	}

	query := `
		SELECT id, motor_id, temperature, voltage, timestamp
		FROM thermocouple_data
		WHERE motor_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var s models.Sample
	err := r.db.QueryRowContext(ctx, query, motorID).Scan(
		&s.ID, &s.MotorID, &s.Temperature, &s.Voltage, &s.Timestamp,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // 该电机还没有采样数据
		}
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}

	return &s, nil
}

// Prune 删除电机超出保留上限的旧采样（保留最近 keep 条）
func (r *SampleRepository) Prune(ctx context.Context, motorID, keep int) (int64, error) {
	if motorID < 1 {
		return 0, fmt.Errorf("motor_id is required")
	}
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive")
	}

	query := `
		DELETE FROM thermocouple_data
		WHERE motor_id = $1
		  AND id NOT IN (
			SELECT id FROM thermocouple_data
			WHERE motor_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		  )
	`

	result, err := r.db.ExecContext(ctx, query, motorID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune samples: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
