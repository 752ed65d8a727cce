package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"motor-monitor/internal/config"
	"motor-monitor/internal/service"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Ingestor MQTT 采样接入桥
// 订阅 motors/+/data，消息体与 POST /api/data/ 请求体一致，走同一条接入链路。
type Ingestor struct {
	client    pahomqtt.Client
	topic     string
	qos       byte
	ingestion *service.IngestionService
	logger    *zap.Logger
}

// samplePayload MQTT 消息体
type samplePayload struct {
	MotorID     int        `json:"motor_id"`
	Temperature float64    `json:"temperature"`
	Voltage     float64    `json:"voltage"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// NewIngestor 创建 MQTT 接入桥
func NewIngestor(cfg *config.Config, ingestion *service.IngestionService, logger *zap.Logger) *Ingestor {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID).
		SetUsername(cfg.MQTT.Username).
		SetPassword(cfg.MQTT.Password).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(10 * time.Second)

	opts.OnConnectionLost = func(_ pahomqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	}

	return &Ingestor{
		client:    pahomqtt.NewClient(opts),
		topic:     cfg.MQTT.Topic,
		qos:       cfg.MQTT.QoS,
		ingestion: ingestion,
		logger:    logger,
	}
}

// Start 连接 broker 并订阅采样主题
func (i *Ingestor) Start() error {
	if token := i.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	if token := i.client.Subscribe(i.topic, i.qos, i.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.topic, token.Error())
	}

	i.logger.Info("MQTT ingestor started",
		zap.String("topic", i.topic),
	)

	return nil
}

// Stop 断开 MQTT 连接
func (i *Ingestor) Stop() {
	i.client.Disconnect(250)
	i.logger.Info("MQTT ingestor stopped")
}

func (i *Ingestor) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	var payload samplePayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		i.logger.Warn("Invalid MQTT payload",
			zap.String("topic", msg.Topic()),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eval, err := i.ingestion.Submit(ctx, payload.MotorID, payload.Temperature, payload.Voltage, payload.Timestamp)
	if err != nil {
		i.logger.Warn("Failed to ingest MQTT sample",
			zap.Int("motor_id", payload.MotorID),
			zap.Error(err),
		)
		return
	}

	if len(eval.Raised) > 0 {
		i.logger.Info("MQTT sample raised alerts",
			zap.Int("motor_id", eval.MotorID),
			zap.Any("raised", eval.Raised),
		)
	}
}
