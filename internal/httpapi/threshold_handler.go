package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"motor-monitor/internal/models"
	"motor-monitor/internal/service"

	"go.uber.org/zap"
)

// ThresholdHandler 阈值查询 + 更新接口
type ThresholdHandler struct {
	thresholds *service.ThresholdService
	logger     *zap.Logger
}

// NewThresholdHandler 创建阈值接口处理器
func NewThresholdHandler(thresholds *service.ThresholdService, logger *zap.Logger) *ThresholdHandler {
	return &ThresholdHandler{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Dispatch 分发 /api/thresholds/ 下的请求
//   - GET  /api/thresholds/{motor_id} 查询阈值
//   - POST /api/thresholds/           整体替换阈值
func (h *ThresholdHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/thresholds/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.Set(w, r)
	case path != "" && r.Method == http.MethodGet:
		h.Get(w, r, path)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Get 查询电机当前阈值
func (h *ThresholdHandler) Get(w http.ResponseWriter, r *http.Request, idPart string) {
	motorID, err := strconv.Atoi(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid motor_id")
		return
	}

	threshold, err := h.thresholds.Get(r.Context(), motorID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrThresholdNotFound):
			writeError(w, http.StatusNotFound, "Thresholds not found")
		case errors.Is(err, models.ErrUnknownMotor):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logAndWriteError(w, h.logger, http.StatusServiceUnavailable, "Failed to query thresholds", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, threshold)
}

// Set 整体替换电机阈值
func (h *ThresholdHandler) Set(w http.ResponseWriter, r *http.Request) {
	var threshold models.Threshold
	if err := json.NewDecoder(r.Body).Decode(&threshold); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.thresholds.Set(r.Context(), &threshold); err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownMotor),
			errors.Is(err, models.ErrInvalidThreshold),
			errors.Is(err, models.ErrThresholdConflict):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logAndWriteError(w, h.logger, http.StatusServiceUnavailable, "Failed to update thresholds", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
