package service

import (
	"motor-monitor/internal/models"

	"github.com/google/uuid"
)

// BuildAlertEvents 为本次评估新触发的报警生成事件记录
// 每条事件带独立 event_id 和触发时刻的阈值快照
func BuildAlertEvents(sample *models.Sample, threshold *models.Threshold, raised []models.AlertKind) []models.AlertEvent {
	if len(raised) == 0 {
		return nil
	}

	events := make([]models.AlertEvent, 0, len(raised))
	for _, kind := range raised {
		events = append(events, models.AlertEvent{
			EventID:     uuid.New().String(),
			MotorID:     sample.MotorID,
			AlertType:   kind,
			Temperature: sample.Temperature,
			Voltage:     sample.Voltage,
			TempMax:     threshold.TempMax,
			VoltageMin:  threshold.VoltageMin,
			VoltageMax:  threshold.VoltageMax,
			TriggeredAt: sample.Timestamp,
		})
	}

	return events
}
