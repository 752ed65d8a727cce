package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON 写 JSON 响应
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError 写错误响应，格式 {"detail": "..."}
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// logAndWriteError 记日志并写错误响应
func logAndWriteError(w http.ResponseWriter, logger *zap.Logger, status int, detail string, err error) {
	logger.Error(detail, zap.Error(err))
	writeError(w, status, detail)
}
