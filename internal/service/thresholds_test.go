package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"motor-monitor/internal/models"
	"motor-monitor/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestThresholdService(t *testing.T) (*ThresholdService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewThresholdRepository(db, zap.NewNop())
	return NewThresholdService(repo, 4, zap.NewNop()), mock
}

func TestThresholdService_Set(t *testing.T) {
	svc, mock := newTestThresholdService(t)

	mock.ExpectExec(`INSERT INTO thresholds`).
		WithArgs(1, 90.0, 190.0, 250.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Set(context.Background(), &models.Threshold{
		MotorID:    1,
		TempMax:    90.0,
		VoltageMin: 190.0,
		VoltageMax: 250.0,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThresholdService_Set_MinGreaterThanMax(t *testing.T) {
	svc, mock := newTestThresholdService(t)

	// voltage_min > voltage_max 拒绝，不落库
	err := svc.Set(context.Background(), &models.Threshold{
		MotorID:    1,
		TempMax:    85.0,
		VoltageMin: 250.0,
		VoltageMax: 200.0,
	})
	assert.True(t, errors.Is(err, models.ErrThresholdConflict))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThresholdService_Set_NonFinite(t *testing.T) {
	svc, _ := newTestThresholdService(t)

	err := svc.Set(context.Background(), &models.Threshold{
		MotorID:    1,
		TempMax:    math.NaN(),
		VoltageMin: 200.0,
		VoltageMax: 240.0,
	})
	assert.True(t, errors.Is(err, models.ErrInvalidThreshold))
}

func TestThresholdService_Set_UnknownMotor(t *testing.T) {
	svc, _ := newTestThresholdService(t)

	err := svc.Set(context.Background(), &models.Threshold{
		MotorID:    9,
		TempMax:    85.0,
		VoltageMin: 200.0,
		VoltageMax: 240.0,
	})
	assert.True(t, errors.Is(err, models.ErrUnknownMotor))
}

func TestThresholdService_Get_NotFound(t *testing.T) {
	svc, mock := newTestThresholdService(t)

	mock.ExpectQuery(`SELECT motor_id, temp_max, voltage_min, voltage_max`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"motor_id", "temp_max", "voltage_min", "voltage_max"}))

	threshold, err := svc.Get(context.Background(), 2)
	assert.Nil(t, threshold)
	assert.True(t, errors.Is(err, models.ErrThresholdNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
