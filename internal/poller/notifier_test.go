package poller

import (
	"testing"

	"motor-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func raisedEval(motorID int, kinds ...models.AlertKind) models.Evaluation {
	return models.Evaluation{MotorID: motorID, Raised: kinds}
}

func TestNotifier_OpenOnFirstRaise(t *testing.T) {
	opened := 0
	n := NewNotifier(func(ActiveNotification) { opened++ }, nil, zap.NewNop())

	n.Update(raisedEval(1, models.AlertHighTemp), true)

	require.NotNil(t, n.Current())
	assert.Equal(t, 1, n.Current().MotorID)
	assert.Equal(t, 1, opened)
}

func TestNotifier_SingleStandingNotification(t *testing.T) {
	opened := 0
	n := NewNotifier(func(ActiveNotification) { opened++ }, nil, zap.NewNop())

	n.Update(raisedEval(1, models.AlertHighTemp), true)
	// 已有挂起通知，其他电机的新触发不再弹新的
	n.Update(raisedEval(2, models.AlertVoltageAnomaly), true)
	n.Update(raisedEval(3, models.AlertHighTemp), true)

	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, n.Current().MotorID)
}

func TestNotifier_GlobalQuietClose(t *testing.T) {
	closed := 0
	n := NewNotifier(nil, func(ActiveNotification) { closed++ }, zap.NewNop())

	n.Update(raisedEval(1, models.AlertHighTemp), true)
	require.NotNil(t, n.Current())

	// 电机1解除但电机2仍有活跃报警：通知保持挂起
	n.Update(models.Evaluation{MotorID: 1, Cleared: []models.AlertKind{models.AlertHighTemp}}, true)
	assert.NotNil(t, n.Current())
	assert.Equal(t, 0, closed)

	// 全局静默：关闭
	n.Update(models.Evaluation{MotorID: 2, Cleared: []models.AlertKind{models.AlertVoltageAnomaly}}, false)
	assert.Nil(t, n.Current())
	assert.Equal(t, 1, closed)
}

func TestNotifier_ReopenAfterClose(t *testing.T) {
	opened := 0
	n := NewNotifier(func(ActiveNotification) { opened++ }, nil, zap.NewNop())

	n.Update(raisedEval(1, models.AlertHighTemp), true)
	n.Update(models.Evaluation{MotorID: 1}, false)
	assert.Nil(t, n.Current())

	// 关闭后新触发可以再次打开
	n.Update(raisedEval(2, models.AlertVoltageAnomaly), true)
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, n.Current().MotorID)
}

func TestNotifier_NoOpenWithoutRaise(t *testing.T) {
	n := NewNotifier(nil, nil, zap.NewNop())

	// 持续活跃但无新触发：不打开
	n.Update(models.Evaluation{MotorID: 1}, true)
	assert.Nil(t, n.Current())
}
