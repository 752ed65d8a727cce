package alert

import (
	"sync"

	"motor-monitor/internal/models"

	"go.uber.org/zap"
)

// Lifecycle 报警生命周期管理器
// 维护每个电机的活跃报警状态，每次评估整体替换状态（无迟滞，无历史累积）。
// 比较严格：等于阈值不算越限。
type Lifecycle struct {
	mu     sync.Mutex
	states map[int]*models.AlertState
	logger *zap.Logger
}

// NewLifecycle 创建报警生命周期管理器
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		states: make(map[int]*models.AlertState),
		logger: logger,
	}
}

// Evaluate 根据采样和当前阈值评估电机报警状态
// 返回本次评估产生的状态变化（新触发/新解除）和替换后的状态
func (l *Lifecycle) Evaluate(sample *models.Sample, threshold *models.Threshold) models.Evaluation {
	newTemp := sample.Temperature > threshold.TempMax
	newVoltage := sample.Voltage < threshold.VoltageMin || sample.Voltage > threshold.VoltageMax

	l.mu.Lock()
	defer l.mu.Unlock()

	old := l.states[sample.MotorID]
	oldTemp := old != nil && old.TempActive
	oldVoltage := old != nil && old.VoltageActive

	eval := models.Evaluation{
		MotorID: sample.MotorID,
		Raised:  []models.AlertKind{},
		Cleared: []models.AlertKind{},
		State: models.AlertState{
			MotorID:       sample.MotorID,
			TempActive:    newTemp,
			VoltageActive: newVoltage,
		},
	}

	if newTemp && !oldTemp {
		eval.Raised = append(eval.Raised, models.AlertHighTemp)
	}
	if !newTemp && oldTemp {
		eval.Cleared = append(eval.Cleared, models.AlertHighTemp)
	}
	if newVoltage && !oldVoltage {
		eval.Raised = append(eval.Raised, models.AlertVoltageAnomaly)
	}
	if !newVoltage && oldVoltage {
		eval.Cleared = append(eval.Cleared, models.AlertVoltageAnomaly)
	}

	// 整体替换，不做 OR 累积
	state := eval.State
	l.states[sample.MotorID] = &state

	if len(eval.Raised) > 0 || len(eval.Cleared) > 0 {
		l.logger.Info("Alert state changed",
			zap.Int("motor_id", sample.MotorID),
			zap.Any("raised", eval.Raised),
			zap.Any("cleared", eval.Cleared),
		)
	}

	return eval
}

// State 获取电机当前报警状态（未评估过的电机返回全清状态）
func (l *Lifecycle) State(motorID int) models.AlertState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.states[motorID]; ok {
		return *s
	}
	return models.AlertState{MotorID: motorID}
}

// IsAnyActive 电机是否有任何活跃报警
func (l *Lifecycle) IsAnyActive(motorID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.states[motorID]
	return ok && s.AnyActive()
}

// ActiveAlerts 获取全部电机的活跃报警快照（只含有活跃报警的电机）
func (l *Lifecycle) ActiveAlerts() map[int][]models.AlertKind {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make(map[int][]models.AlertKind)
	for motorID, s := range l.states {
		if s.AnyActive() {
			result[motorID] = s.ActiveKinds()
		}
	}
	return result
}

// Reset 清空全部状态（测试和重建时使用）
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.states = make(map[int]*models.AlertState)
}
