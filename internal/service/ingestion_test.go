package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"motor-monitor/internal/alert"
	"motor-monitor/internal/cache"
	"motor-monitor/internal/models"
	"motor-monitor/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIngestion(t *testing.T) (*IngestionService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	samples := repository.NewSampleRepository(db, logger)
	thresholds := repository.NewThresholdRepository(db, logger)
	lifecycle := alert.NewLifecycle(logger)

	return NewIngestionService(samples, thresholds, lifecycle, nil, 4, logger), mock
}

func expectInsert(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(`INSERT INTO thermocouple_data`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

func expectThresholds(mock sqlmock.Sqlmock, motorID int, tempMax, vMin, vMax float64) {
	mock.ExpectQuery(`SELECT motor_id, temp_max, voltage_min, voltage_max`).
		WithArgs(motorID).
		WillReturnRows(sqlmock.NewRows([]string{"motor_id", "temp_max", "voltage_min", "voltage_max"}).
			AddRow(motorID, tempMax, vMin, vMax))
}

func TestSubmit_NormalSample(t *testing.T) {
	svc, mock := newTestIngestion(t)

	expectInsert(mock, 1)
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)

	eval, err := svc.Submit(context.Background(), 1, 72.5, 220.0, nil)
	require.NoError(t, err)
	assert.Empty(t, eval.Raised)
	assert.Empty(t, eval.Cleared)
	assert.False(t, eval.State.AnyActive())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_RaiseThenHoldThenClear(t *testing.T) {
	svc, mock := newTestIngestion(t)

	// 超温：触发
	expectInsert(mock, 1)
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)
	eval, err := svc.Submit(context.Background(), 1, 92.0, 220.0, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.AlertKind{models.AlertHighTemp}, eval.Raised)

	// 持续超温：无新变更
	expectInsert(mock, 2)
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)
	eval, err = svc.Submit(context.Background(), 1, 93.0, 220.0, nil)
	require.NoError(t, err)
	assert.Empty(t, eval.Raised)
	assert.True(t, eval.State.TempActive)

	// 回落：解除
	expectInsert(mock, 3)
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)
	eval, err = svc.Submit(context.Background(), 1, 70.0, 220.0, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.AlertKind{models.AlertHighTemp}, eval.Cleared)
	assert.False(t, eval.State.AnyActive())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_BothDimensionsAtOnce(t *testing.T) {
	svc, mock := newTestIngestion(t)

	expectInsert(mock, 1)
	expectThresholds(mock, 2, 85.0, 200.0, 240.0)

	eval, err := svc.Submit(context.Background(), 2, 95.0, 190.0, nil)
	require.NoError(t, err)
	assert.Len(t, eval.Raised, 2)
	assert.Contains(t, eval.Raised, models.AlertHighTemp)
	assert.Contains(t, eval.Raised, models.AlertVoltageAnomaly)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_UnknownMotor(t *testing.T) {
	svc, _ := newTestIngestion(t)

	_, err := svc.Submit(context.Background(), 0, 70.0, 220.0, nil)
	assert.True(t, errors.Is(err, models.ErrUnknownMotor))

	_, err = svc.Submit(context.Background(), 5, 70.0, 220.0, nil)
	assert.True(t, errors.Is(err, models.ErrUnknownMotor))
}

func TestSubmit_NonFiniteValues(t *testing.T) {
	svc, _ := newTestIngestion(t)

	// 非法数值直接拒绝，不落库
	_, err := svc.Submit(context.Background(), 1, math.NaN(), 220.0, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidSample))

	_, err = svc.Submit(context.Background(), 1, 70.0, math.Inf(1), nil)
	assert.True(t, errors.Is(err, models.ErrInvalidSample))
}

func TestSubmit_StoreUnavailable(t *testing.T) {
	svc, mock := newTestIngestion(t)

	mock.ExpectQuery(`INSERT INTO thermocouple_data`).
		WillReturnError(errors.New("connection refused"))

	_, err := svc.Submit(context.Background(), 1, 70.0, 220.0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store sample")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_ThresholdMissing(t *testing.T) {
	svc, mock := newTestIngestion(t)

	// 采样落库成功，但阈值缺失：返回类型化错误，评估跳过
	expectInsert(mock, 1)
	mock.ExpectQuery(`SELECT motor_id, temp_max, voltage_min, voltage_max`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"motor_id", "temp_max", "voltage_min", "voltage_max"}))

	eval, err := svc.Submit(context.Background(), 3, 95.0, 220.0, nil)
	assert.True(t, errors.Is(err, models.ErrThresholdNotFound))
	assert.Empty(t, eval.Raised)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_ExplicitTimestamp(t *testing.T) {
	svc, mock := newTestIngestion(t)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO thermocouple_data`).
		WithArgs(1, 70.0, 220.0, ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)

	_, err := svc.Submit(context.Background(), 1, 70.0, 220.0, &ts)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func newTestIngestionWithCache(t *testing.T) (*IngestionService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := zap.NewNop()

	alertCache := cache.NewAlertCache(client, "motor:", ":latest", ":alerts", 30, logger)
	samples := repository.NewSampleRepository(db, logger)
	thresholds := repository.NewThresholdRepository(db, logger)
	lifecycle := alert.NewLifecycle(logger)

	return NewIngestionService(samples, thresholds, lifecycle, alertCache, 4, logger), mock
}

func TestLatest_ServedFromCache(t *testing.T) {
	svc, mock := newTestIngestionWithCache(t)

	expectInsert(mock, 1)
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)
	_, err := svc.Submit(context.Background(), 1, 72.5, 220.0, nil)
	require.NoError(t, err)

	// 命中缓存，不回源数据库
	sample, err := svc.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, sample)
	assert.Equal(t, 72.5, sample.Temperature)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatest_FallbackToStore(t *testing.T) {
	svc, mock := newTestIngestion(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, motor_id, temperature, voltage, timestamp`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "motor_id", "temperature", "voltage", "timestamp"}).
			AddRow(int64(3), 1, 74.0, 221.0, now))

	sample, err := svc.Latest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sample.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatest_NoData(t *testing.T) {
	svc, mock := newTestIngestion(t)

	mock.ExpectQuery(`SELECT id, motor_id, temperature, voltage, timestamp`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "motor_id", "temperature", "voltage", "timestamp"}))

	_, err := svc.Latest(context.Background(), 2)
	assert.True(t, errors.Is(err, models.ErrSampleNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveAlerts_FromCache(t *testing.T) {
	svc, mock := newTestIngestionWithCache(t)

	expectInsert(mock, 1)
	expectThresholds(mock, 1, 85.0, 200.0, 240.0)
	_, err := svc.Submit(context.Background(), 1, 92.0, 220.0, nil)
	require.NoError(t, err)

	kinds, events, err := svc.ActiveAlerts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []models.AlertKind{models.AlertHighTemp}, kinds)
	require.Len(t, events, 1)
	assert.Equal(t, models.AlertHighTemp, events[0].AlertType)
	assert.NotEmpty(t, events[0].EventID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveAlerts_WithoutCache(t *testing.T) {
	svc, mock := newTestIngestion(t)

	// 无缓存时读进程内状态
	expectInsert(mock, 1)
	expectThresholds(mock, 2, 85.0, 200.0, 240.0)
	_, err := svc.Submit(context.Background(), 2, 70.0, 190.0, nil)
	require.NoError(t, err)

	kinds, events, err := svc.ActiveAlerts(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []models.AlertKind{models.AlertVoltageAnomaly}, kinds)
	assert.Empty(t, events)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildAlertEvents(t *testing.T) {
	sample := &models.Sample{MotorID: 1, Temperature: 92.0, Voltage: 190.0, Timestamp: time.Now()}
	threshold := &models.Threshold{MotorID: 1, TempMax: 85.0, VoltageMin: 200.0, VoltageMax: 240.0}

	events := BuildAlertEvents(sample, threshold, []models.AlertKind{models.AlertHighTemp, models.AlertVoltageAnomaly})
	require.Len(t, events, 2)

	assert.NotEmpty(t, events[0].EventID)
	assert.NotEqual(t, events[0].EventID, events[1].EventID)
	assert.Equal(t, models.AlertHighTemp, events[0].AlertType)
	assert.Equal(t, 85.0, events[0].TempMax)
	assert.Equal(t, sample.Timestamp, events[0].TriggeredAt)

	// 无新触发时不生成事件
	assert.Empty(t, BuildAlertEvents(sample, threshold, nil))
}
