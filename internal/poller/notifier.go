package poller

import (
	"sync"
	"time"

	"motor-monitor/internal/models"

	"go.uber.org/zap"
)

// ActiveNotification 当前挂起的报警通知
type ActiveNotification struct {
	MotorID  int
	Kinds    []models.AlertKind
	OpenedAt time.Time
}

// Notifier 单通知控制器
// 同一时刻最多一条挂起通知：有通知挂起时新触发不再弹新的；
// 只有所有电机的所有报警都解除后才关闭（全局静默规则）。
type Notifier struct {
	mu      sync.Mutex
	current *ActiveNotification
	onOpen  func(ActiveNotification)
	onClose func(ActiveNotification)
	logger  *zap.Logger
}

// NewNotifier 创建通知控制器，onOpen/onClose 可为 nil
func NewNotifier(onOpen, onClose func(ActiveNotification), logger *zap.Logger) *Notifier {
	return &Notifier{
		onOpen:  onOpen,
		onClose: onClose,
		logger:  logger,
	}
}

// Update 根据本次评估结果推进通知状态
// anyActive 为全局视图：任一电机还有活跃报警即为 true
func (n *Notifier) Update(eval models.Evaluation, anyActive bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil && len(eval.Raised) > 0 {
		notification := ActiveNotification{
			MotorID:  eval.MotorID,
			Kinds:    append([]models.AlertKind(nil), eval.Raised...),
			OpenedAt: time.Now(),
		}
		n.current = &notification

		n.logger.Info("Notification opened",
			zap.Int("motor_id", notification.MotorID),
			zap.Any("kinds", notification.Kinds),
		)
		if n.onOpen != nil {
			n.onOpen(notification)
		}
		return
	}

	if n.current != nil && !anyActive {
		notification := *n.current
		n.current = nil

		n.logger.Info("Notification closed",
			zap.Int("motor_id", notification.MotorID),
		)
		if n.onClose != nil {
			n.onClose(notification)
		}
	}
}

// Current 返回当前挂起通知的副本，没有时返回 nil
func (n *Notifier) Current() *ActiveNotification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return nil
	}
	notification := *n.current
	return &notification
}
