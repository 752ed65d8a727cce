package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"motor-monitor/internal/alert"
	"motor-monitor/internal/cache"
	"motor-monitor/internal/config"
	"motor-monitor/internal/repository"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// MonitorService 电机监测服务（整合各层）
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	// 各层组件
	sampleRepo    *repository.SampleRepository
	thresholdRepo *repository.ThresholdRepository
	lifecycle     *alert.Lifecycle
	alertCache    *cache.AlertCache
	ingestion     *IngestionService
	thresholds    *ThresholdService
	retention     *RetentionSweeper

	httpServer *http.Server
}

// NewMonitorService 创建监测服务
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	// 1. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 2. 连接 Redis（可选）
	var redisClient *redis.Client
	var alertCache *cache.AlertCache
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		alertCache = cache.NewAlertCache(
			redisClient,
			cfg.Monitor.Cache.KeyPrefix,
			cfg.Monitor.Cache.LatestSuffix,
			cfg.Monitor.Cache.AlertSuffix,
			cfg.Monitor.Cache.AlertTTL,
			logger,
		)
	}

	// 3. 创建 Repository 层
	sampleRepo := repository.NewSampleRepository(db, logger)
	thresholdRepo := repository.NewThresholdRepository(db, logger)

	// 4. 创建报警生命周期管理器
	lifecycle := alert.NewLifecycle(logger)

	// 5. 创建服务层
	ingestion := NewIngestionService(sampleRepo, thresholdRepo, lifecycle, alertCache, cfg.Monitor.NumMotors, logger)
	thresholds := NewThresholdService(thresholdRepo, cfg.Monitor.NumMotors, logger)

	// 6. 采样保留清理（RetentionCount 为 0 时关闭）
	var retention *RetentionSweeper
	if cfg.Monitor.RetentionCount > 0 {
		retention = NewRetentionSweeper(sampleRepo, cfg.Monitor.NumMotors, cfg.Monitor.RetentionCount, logger)
	}

	return &MonitorService{
		config:        cfg,
		db:            db,
		redisClient:   redisClient,
		logger:        logger,
		sampleRepo:    sampleRepo,
		thresholdRepo: thresholdRepo,
		lifecycle:     lifecycle,
		alertCache:    alertCache,
		ingestion:     ingestion,
		thresholds:    thresholds,
		retention:     retention,
	}, nil
}

// Ingestion 采样接入服务
func (s *MonitorService) Ingestion() *IngestionService {
	return s.ingestion
}

// Thresholds 阈值管理服务
func (s *MonitorService) Thresholds() *ThresholdService {
	return s.thresholds
}

// Lifecycle 报警生命周期管理器
func (s *MonitorService) Lifecycle() *alert.Lifecycle {
	return s.lifecycle
}

// Start 启动服务：写入默认阈值并挂起 HTTP 服务，阻塞直到 ctx 取消
func (s *MonitorService) Start(ctx context.Context, handler http.Handler) error {
	s.logger.Info("Starting monitor service",
		zap.String("addr", s.config.HTTP.Addr),
		zap.Int("num_motors", s.config.Monitor.NumMotors),
	)

	// 电机注册：为每个电机写入默认阈值（已有配置不覆盖）
	if err := s.thresholdRepo.SeedDefaults(ctx, s.config.Monitor.NumMotors); err != nil {
		return fmt.Errorf("failed to seed default thresholds: %w", err)
	}

	if s.retention != nil {
		go s.retention.Run(ctx)
	}

	s.httpServer = &http.Server{
		Addr:    s.config.HTTP.Addr,
		Handler: handler,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shut down http server",
				zap.Error(err),
			)
		}
		return nil
	case err := <-errChan:
		return err
	}
}

// Stop 释放资源
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping monitor service")

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis",
				zap.Error(err),
			)
		}
	}

	return nil
}
