package models

import "errors"

// 错误分类：
// - ErrInvalidSample / ErrInvalidThreshold / ErrUnknownMotor：输入非法，拒绝且不落库
// - ErrThresholdNotFound / ErrSampleNotFound：类型化的"不存在"，不是故障
// - ErrThresholdConflict：voltage_min > voltage_max，Set 时拒绝
var (
	ErrInvalidSample     = errors.New("invalid sample: values must be finite")
	ErrInvalidThreshold  = errors.New("invalid threshold: values must be finite")
	ErrUnknownMotor      = errors.New("unknown motor")
	ErrThresholdNotFound = errors.New("threshold not found")
	ErrSampleNotFound    = errors.New("sample not found")
	ErrThresholdConflict = errors.New("threshold conflict: voltage_min > voltage_max")
)
