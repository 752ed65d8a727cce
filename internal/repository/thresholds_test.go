package repository

import (
	"context"
	"errors"
	"testing"

	"motor-monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestThresholdRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewThresholdRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT motor_id, temp_max, voltage_min, voltage_max`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"motor_id", "temp_max", "voltage_min", "voltage_max"}).
			AddRow(1, 85.0, 200.0, 240.0))

	threshold, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, threshold)
	assert.Equal(t, 1, threshold.MotorID)
	assert.Equal(t, 85.0, threshold.TempMax)
	assert.Equal(t, 200.0, threshold.VoltageMin)
	assert.Equal(t, 240.0, threshold.VoltageMax)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThresholdRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewThresholdRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT motor_id, temp_max, voltage_min, voltage_max`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"motor_id", "temp_max", "voltage_min", "voltage_max"}))

	threshold, err := repo.Get(context.Background(), 9)
	assert.Nil(t, threshold)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrThresholdNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThresholdRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewThresholdRepository(db, zap.NewNop())

	threshold := &models.Threshold{
		MotorID:    2,
		TempMax:    90.0,
		VoltageMin: 190.0,
		VoltageMax: 250.0,
	}

	mock.ExpectExec(`INSERT INTO thresholds`).
		WithArgs(2, 90.0, 190.0, 250.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), threshold)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThresholdRepository_Upsert_MissingMotorID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewThresholdRepository(db, zap.NewNop())

	err = repo.Upsert(context.Background(), &models.Threshold{MotorID: 0})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "motor_id is required")
}

func TestThresholdRepository_SeedDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewThresholdRepository(db, zap.NewNop())

	for motorID := 1; motorID <= 4; motorID++ {
		mock.ExpectExec(`INSERT INTO thresholds`).
			WithArgs(motorID, models.DefaultTempMax, models.DefaultVoltageMin, models.DefaultVoltageMax).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	err = repo.SeedDefaults(context.Background(), 4)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
