package models

import (
	"math"
	"time"
)

// Sample 一条电机遥测采样（温度 + 电压）
// 入库后不可变；保留策略由 SampleRepository 的查询上限控制
type Sample struct {
	ID          int64     `json:"id"`
	MotorID     int       `json:"motor_id"`
	Temperature float64   `json:"temperature"`
	Voltage     float64   `json:"voltage"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate 校验采样数据（有限数值 + 合法电机ID）
func (s *Sample) Validate() error {
	if s.MotorID < 1 {
		return ErrUnknownMotor
	}
	if !isFinite(s.Temperature) || !isFinite(s.Voltage) {
		return ErrInvalidSample
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
