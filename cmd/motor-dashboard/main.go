package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"motor-monitor/internal/alert"
	"motor-monitor/internal/config"
	"motor-monitor/internal/export"
	"motor-monitor/internal/poller"

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

	// 3. 校验导出格式
	format, err := export.ParseFormat(cfg.Dashboard.ExportFormat)
	if err != nil {
		logger.Fatal("Invalid export format",
			zap.String("format", cfg.Dashboard.ExportFormat),
			zap.Error(err),
		)
	}

	// 4. 组装轮询链路：API 客户端 → 滚动窗口 → 本地报警评估 → 通知
	client := poller.NewAPIClient(cfg.Dashboard.ServerURL, logger)
	history := poller.NewHistoryBuffer(cfg.HistoryCapacity())
	lifecycle := alert.NewLifecycle(logger)

	notifier := poller.NewNotifier(
		func(n poller.ActiveNotification) {
			logger.Warn("ALERT",
				zap.Int("motor_id", n.MotorID),
				zap.Any("kinds", n.Kinds),
			)
		},
		func(n poller.ActiveNotification) {
			logger.Info("All alerts cleared",
				zap.Int("motor_id", n.MotorID),
			)
		},
		logger,
	)

	p := poller.NewPoller(
		client,
		history,
		lifecycle,
		notifier,
		cfg.Monitor.NumMotors,
		time.Duration(cfg.Dashboard.PollInterval)*time.Second,
		logger,
	)

	// 5. 启动轮询（在 goroutine 中）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// 6. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal, shutting down",
		zap.String("signal", sig.String()),
	)
	cancel()
	<-done

	// 7. 退出前导出各电机的滚动窗口
	for motorID := 1; motorID <= cfg.Monitor.NumMotors; motorID++ {
		samples := history.Snapshot(motorID)
		if len(samples) == 0 {
			continue
		}
		path, err := export.Export(cfg.Dashboard.ExportDir, motorID, format, samples)
		if err != nil {
			logger.Error("Failed to export history",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
			continue
		}
		logger.Info("History exported",
			zap.Int("motor_id", motorID),
			zap.String("path", path),
		)
	}

	logger.Info("Dashboard stopped")
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
