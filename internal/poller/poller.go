package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"motor-monitor/internal/alert"
	"motor-monitor/internal/models"

	"go.uber.org/zap"
)

// Poller 采样轮询器
// 每个周期对每个电机拉取最新一条采样（limit=1），写入滚动窗口并本地评估报警。
// 同一时刻最多一个拉取周期在执行，周期超时未结束时跳过后续 tick。
// 拉取失败或无数据时本地状态保持不变。
type Poller struct {
	client    *APIClient
	history   *HistoryBuffer
	lifecycle *alert.Lifecycle
	notifier  *Notifier
	numMotors int
	logger    *zap.Logger

	interval   time.Duration
	intervalCh chan time.Duration
	inFlight   int32

	thresholdMu sync.RWMutex
	thresholds  map[int]*models.Threshold

	// OnSample 每条新采样的回调（展示层挂接），可为 nil
	OnSample func(sample models.Sample, state models.AlertState)
}

// NewPoller 创建轮询器
func NewPoller(
	client *APIClient,
	history *HistoryBuffer,
	lifecycle *alert.Lifecycle,
	notifier *Notifier,
	numMotors int,
	interval time.Duration,
	logger *zap.Logger,
) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		client:     client,
		history:    history,
		lifecycle:  lifecycle,
		notifier:   notifier,
		numMotors:  numMotors,
		logger:     logger,
		interval:   interval,
		intervalCh: make(chan time.Duration, 1),
		thresholds: make(map[int]*models.Threshold),
	}
}

// Run 启动轮询循环，阻塞直到 ctx 取消
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Poller started",
		zap.Int("num_motors", p.numMotors),
		zap.Duration("interval", p.interval),
	)

	p.RefreshThresholds(ctx)

	// 立即执行第一个周期，不等首个 tick
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped")
			return
		case d := <-p.intervalCh:
			ticker.Reset(d)
			p.logger.Info("Poll interval changed", zap.Duration("interval", d))
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick 触发一个拉取周期；上一周期未结束时跳过
func (p *Poller) tick(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.inFlight, 0, 1) {
		p.logger.Debug("Previous fetch cycle still running, skipping tick")
		return
	}

	go func() {
		defer atomic.StoreInt32(&p.inFlight, 0)
		p.fetchCycle(ctx)
	}()
}

// fetchCycle 对全部电机各拉取一条最新采样并评估
func (p *Poller) fetchCycle(ctx context.Context) {
	for motorID := 1; motorID <= p.numMotors; motorID++ {
		sample, err := p.client.LatestSample(ctx, motorID)
		if err != nil {
			// 瞬时故障：窗口和报警状态保持不变，下个周期重试
			p.logger.Warn("Failed to fetch sample",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
			continue
		}
		if sample == nil {
			// 还没有数据，跳过
			continue
		}

		p.history.Append(*sample)

		threshold := p.threshold(ctx, motorID)
		if threshold == nil {
			continue
		}

		eval := p.lifecycle.Evaluate(sample, threshold)
		if p.notifier != nil {
			p.notifier.Update(eval, len(p.lifecycle.ActiveAlerts()) > 0)
		}
		if p.OnSample != nil {
			p.OnSample(*sample, eval.State)
		}
	}
}

// threshold 读取本地阈值镜像，缺失时现场拉取一次
func (p *Poller) threshold(ctx context.Context, motorID int) *models.Threshold {
	p.thresholdMu.RLock()
	t := p.thresholds[motorID]
	p.thresholdMu.RUnlock()
	if t != nil {
		return t
	}

	t, err := p.client.Threshold(ctx, motorID)
	if err != nil {
		if !errors.Is(err, models.ErrThresholdNotFound) {
			p.logger.Warn("Failed to fetch thresholds",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
		}
		return nil
	}

	p.thresholdMu.Lock()
	p.thresholds[motorID] = t
	p.thresholdMu.Unlock()
	return t
}

// RefreshThresholds 重新拉取全部电机的阈值镜像
func (p *Poller) RefreshThresholds(ctx context.Context) {
	for motorID := 1; motorID <= p.numMotors; motorID++ {
		t, err := p.client.Threshold(ctx, motorID)
		if err != nil {
			p.logger.Warn("Failed to refresh thresholds",
				zap.Int("motor_id", motorID),
				zap.Error(err),
			)
			continue
		}
		p.thresholdMu.Lock()
		p.thresholds[motorID] = t
		p.thresholdMu.Unlock()
	}
}

// SetInterval 调整轮询间隔，下一次循环生效
// 连续多次调整时以最后一次为准（未消费的旧值被丢弃）
// 供展示层在运行时重新配置，本包内不主动调用
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		select {
		case p.intervalCh <- d:
			return
		case <-p.intervalCh:
			// 丢弃未消费的旧值后重试
		}
	}
}

// SetHistoryCapacity 调整滚动窗口容量
// 供展示层在运行时重新配置，本包内不主动调用
func (p *Poller) SetHistoryCapacity(capacity int) {
	p.history.SetCapacity(capacity)
}
