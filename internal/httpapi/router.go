package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router HTTP 路由器（标准库 ServeMux 封装，带访问日志）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

// Handle 注册路由
func (r *Router) Handle(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// ServeHTTP 实现 http.Handler 接口
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	r.mux.ServeHTTP(w, req)
	r.logger.Debug("HTTP request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("duration", time.Since(start)),
	)
}

// RegisterRoutes 注册全部 API 路由
func (r *Router) RegisterRoutes(data *DataHandler, thresholds *ThresholdHandler) {
	r.Handle("/api/data/", data.Dispatch)
	r.Handle("/api/thresholds/", thresholds.Dispatch)
}
