package service

import (
	"context"
	"errors"
	"testing"

	"motor-monitor/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSweeper(t *testing.T, numMotors, keep int) (*RetentionSweeper, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	samples := repository.NewSampleRepository(db, zap.NewNop())
	return NewRetentionSweeper(samples, numMotors, keep, zap.NewNop()), mock
}

func TestRetentionSweeper_Sweep(t *testing.T) {
	sweeper, mock := newTestSweeper(t, 4, 300)

	for motorID := 1; motorID <= 4; motorID++ {
		mock.ExpectExec(`DELETE FROM thermocouple_data`).
			WithArgs(motorID, 300).
			WillReturnResult(sqlmock.NewResult(0, 5))
	}

	sweeper.sweep(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetentionSweeper_ContinueOnError(t *testing.T) {
	sweeper, mock := newTestSweeper(t, 3, 300)

	// 电机1清理失败，其余电机照常清理
	mock.ExpectExec(`DELETE FROM thermocouple_data`).
		WithArgs(1, 300).
		WillReturnError(errors.New("connection refused"))
	mock.ExpectExec(`DELETE FROM thermocouple_data`).
		WithArgs(2, 300).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM thermocouple_data`).
		WithArgs(3, 300).
		WillReturnResult(sqlmock.NewResult(0, 2))

	sweeper.sweep(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetentionSweeper_RunStopsOnContextCancel(t *testing.T) {
	sweeper, mock := newTestSweeper(t, 1, 300)

	mock.ExpectExec(`DELETE FROM thermocouple_data`).
		WithArgs(1, 300).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	<-done
}
