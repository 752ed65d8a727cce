package models

import "time"

// AlertKind 报警维度（温度 / 电压）
type AlertKind string

const (
	AlertHighTemp       AlertKind = "HIGH_TEMP"
	AlertVoltageAnomaly AlertKind = "VOLTAGE_ANOMALY"
)

// AlertState 单个电机的报警状态
// 只反映最近一次评估结果，不累积历史（单次恢复正常即清除对应维度）
type AlertState struct {
	MotorID       int  `json:"motor_id"`
	TempActive    bool `json:"temp_active"`
	VoltageActive bool `json:"voltage_active"`
}

// AnyActive 任一维度处于报警状态
func (s AlertState) AnyActive() bool {
	return s.TempActive || s.VoltageActive
}

// ActiveKinds 返回当前活跃的报警维度列表
func (s AlertState) ActiveKinds() []AlertKind {
	var kinds []AlertKind
	if s.TempActive {
		kinds = append(kinds, AlertHighTemp)
	}
	if s.VoltageActive {
		kinds = append(kinds, AlertVoltageAnomaly)
	}
	return kinds
}

// Evaluation 一次评估产生的状态变更（边沿触发）
// Raised：本次从 false 变为 true 的维度；Cleared：从 true 变为 false 的维度
type Evaluation struct {
	MotorID int
	Raised  []AlertKind
	Cleared []AlertKind
	State   AlertState
}

// AlertEvent 一条报警事件（Raised 变更时生成，写入缓存供展示层读取）
type AlertEvent struct {
	EventID     string    `json:"event_id"`
	MotorID     int       `json:"motor_id"`
	AlertType   AlertKind `json:"alert_type"`
	Temperature float64   `json:"temperature"`
	Voltage     float64   `json:"voltage"`
	TempMax     float64   `json:"temp_max"`
	VoltageMin  float64   `json:"voltage_min"`
	VoltageMax  float64   `json:"voltage_max"`
	TriggeredAt time.Time `json:"triggered_at"`
}
