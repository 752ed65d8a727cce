package poller

import (
	"sync"

	"motor-monitor/internal/models"
)

// HistoryBuffer 每个电机的滚动采样窗口（有界 FIFO）
// 满了以后追加会淘汰最旧的一条。容量调整对存量数据不生效，下次追加时收敛。
type HistoryBuffer struct {
	mu       sync.RWMutex
	capacity int
	data     map[int][]models.Sample
}

// NewHistoryBuffer 创建滚动窗口，capacity 为每个电机保留的采样条数
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryBuffer{
		capacity: capacity,
		data:     make(map[int][]models.Sample),
	}
}

// Append 追加一条采样，超出容量时从头部淘汰
func (b *HistoryBuffer) Append(sample models.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := append(b.data[sample.MotorID], sample)
	for len(buf) > b.capacity {
		buf = buf[1:]
	}
	b.data[sample.MotorID] = buf
}

// Snapshot 返回电机当前窗口的副本（最旧在前）
func (b *HistoryBuffer) Snapshot(motorID int) []models.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	buf := b.data[motorID]
	out := make([]models.Sample, len(buf))
	copy(out, buf)
	return out
}

// Len 电机当前窗口内的采样条数
func (b *HistoryBuffer) Len(motorID int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.data[motorID])
}

// Capacity 当前容量
func (b *HistoryBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.capacity
}

// SetCapacity 调整容量，对存量数据不立即裁剪
func (b *HistoryBuffer) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.capacity = capacity
}

// Clear 清空全部窗口
func (b *HistoryBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = make(map[int][]models.Sample)
}
