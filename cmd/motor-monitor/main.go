package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"motor-monitor/internal/config"
	"motor-monitor/internal/httpapi"
	"motor-monitor/internal/mqtt"
	"motor-monitor/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	logger, err := initLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 3. 创建服务
	monitorService, err := service.NewMonitorService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create monitor service",
			zap.Error(err),
		)
	}
	defer monitorService.Stop()

	// 4. 注册 HTTP 路由
	router := httpapi.NewRouter(logger)
	router.RegisterRoutes(
		httpapi.NewDataHandler(monitorService.Ingestion(), logger),
		httpapi.NewThresholdHandler(monitorService.Thresholds(), logger),
	)

	// 5. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. 启动 MQTT 接入桥（可选）
	if cfg.MQTT.Enabled {
		ingestor := mqtt.NewIngestor(cfg, monitorService.Ingestion(), logger)
		if err := ingestor.Start(); err != nil {
			logger.Fatal("Failed to start MQTT ingestor",
				zap.Error(err),
			)
		}
		defer ingestor.Stop()
	}

	// 7. 启动服务（在 goroutine 中）
	serviceErrChan := make(chan error, 1)
	go func() {
		if err := monitorService.Start(ctx, router); err != nil {
			serviceErrChan <- err
		}
	}()

	// 8. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
	case err := <-serviceErrChan:
		logger.Fatal("Service error",
			zap.Error(err),
		)
	}

	logger.Info("Monitor service stopped")
}

// initLogger 初始化日志
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Log.Format == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}
