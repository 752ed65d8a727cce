package models

// 电机注册时的默认阈值（°C / V）
const (
	DefaultTempMax    = 85.0
	DefaultVoltageMin = 200.0
	DefaultVoltageMax = 240.0
)

// Threshold 单个电机的报警阈值（温度上限 + 电压区间）
// 每个电机一条，更新为整体替换（三个字段必须一起提交，不做部分合并）
type Threshold struct {
	MotorID    int     `json:"motor_id"`
	TempMax    float64 `json:"temp_max"`
	VoltageMin float64 `json:"voltage_min"`
	VoltageMax float64 `json:"voltage_max"`
}

// DefaultThreshold 返回电机注册时的默认阈值
func DefaultThreshold(motorID int) Threshold {
	return Threshold{
		MotorID:    motorID,
		TempMax:    DefaultTempMax,
		VoltageMin: DefaultVoltageMin,
		VoltageMax: DefaultVoltageMax,
	}
}

// Validate 校验阈值（有限数值 + voltage_min <= voltage_max）
func (t *Threshold) Validate() error {
	if t.MotorID < 1 {
		return ErrUnknownMotor
	}
	if !isFinite(t.TempMax) || !isFinite(t.VoltageMin) || !isFinite(t.VoltageMax) {
		return ErrInvalidThreshold
	}
	if t.VoltageMin > t.VoltageMax {
		return ErrThresholdConflict
	}
	return nil
}
