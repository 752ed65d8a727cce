package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"motor-monitor/internal/models"
	"motor-monitor/internal/service"

	"go.uber.org/zap"
)

// DataHandler 采样接入 + 历史查询接口
type DataHandler struct {
	ingestion *service.IngestionService
	logger    *zap.Logger
}

// NewDataHandler 创建采样接口处理器
func NewDataHandler(ingestion *service.IngestionService, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// submitRequest POST /api/data/ 请求体
type submitRequest struct {
	MotorID     int        `json:"motor_id"`
	Temperature float64    `json:"temperature"`
	Voltage     float64    `json:"voltage"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// alertItem 响应中的单条报警
type alertItem struct {
	MotorID   int              `json:"motor_id"`
	AlertType models.AlertKind `json:"alert_type"`
}

// Dispatch 分发 /api/data/ 下的请求
//   - POST /api/data/                   提交采样
//   - GET  /api/data/{motor_id}/history 查询历史
//   - GET  /api/data/{motor_id}/latest  查询最新采样
//   - GET  /api/data/{motor_id}/alerts  查询活跃报警和最近事件
func (h *DataHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/data/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.Submit(w, r)
	case strings.HasSuffix(path, "/history") && r.Method == http.MethodGet:
		h.History(w, r, strings.TrimSuffix(path, "/history"))
	case strings.HasSuffix(path, "/latest") && r.Method == http.MethodGet:
		h.Latest(w, r, strings.TrimSuffix(path, "/latest"))
	case strings.HasSuffix(path, "/alerts") && r.Method == http.MethodGet:
		h.Alerts(w, r, strings.TrimSuffix(path, "/alerts"))
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Submit 提交一条采样，返回本次新触发的报警
func (h *DataHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eval, err := h.ingestion.Submit(r.Context(), req.MotorID, req.Temperature, req.Voltage, req.Timestamp)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrThresholdNotFound):
			// 采样已接收，只是没有阈值可评估
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "success",
				"alerts": []alertItem{},
			})
		case errors.Is(err, models.ErrUnknownMotor), errors.Is(err, models.ErrInvalidSample):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logAndWriteError(w, h.logger, http.StatusServiceUnavailable, "Failed to store data", err)
		}
		return
	}

	alerts := make([]alertItem, 0, len(eval.Raised))
	for _, kind := range eval.Raised {
		alerts = append(alerts, alertItem{MotorID: eval.MotorID, AlertType: kind})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"alerts": alerts,
	})
}

// History 查询电机历史采样（最新在前）
func (h *DataHandler) History(w http.ResponseWriter, r *http.Request, idPart string) {
	motorID, err := strconv.Atoi(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid motor_id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	samples, err := h.ingestion.History(r.Context(), motorID, limit)
	if err != nil {
		if errors.Is(err, models.ErrUnknownMotor) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logAndWriteError(w, h.logger, http.StatusServiceUnavailable, "Failed to query history", err)
		return
	}

	writeJSON(w, http.StatusOK, samples)
}

// Latest 查询电机最新一条采样
func (h *DataHandler) Latest(w http.ResponseWriter, r *http.Request, idPart string) {
	motorID, err := strconv.Atoi(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid motor_id")
		return
	}

	sample, err := h.ingestion.Latest(r.Context(), motorID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSampleNotFound):
			writeError(w, http.StatusNotFound, "Sample not found")
		case errors.Is(err, models.ErrUnknownMotor):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logAndWriteError(w, h.logger, http.StatusServiceUnavailable, "Failed to query latest sample", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

// Alerts 查询电机当前活跃报警和最近事件
func (h *DataHandler) Alerts(w http.ResponseWriter, r *http.Request, idPart string) {
	motorID, err := strconv.Atoi(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid motor_id")
		return
	}

	kinds, events, err := h.ingestion.ActiveAlerts(r.Context(), motorID)
	if err != nil {
		if errors.Is(err, models.ErrUnknownMotor) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logAndWriteError(w, h.logger, http.StatusServiceUnavailable, "Failed to query alerts", err)
		return
	}

	if kinds == nil {
		kinds = []models.AlertKind{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"motor_id": motorID,
		"active":   kinds,
		"events":   events,
	})
}
