package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config 电机监测服务配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}
	MQTT struct {
		Enabled  bool
		Broker   string
		ClientID string
		Username string
		Password string
		Topic    string
		QoS      byte
	}

	// 监测引擎配置
	Monitor struct {
		NumMotors      int // 固定电机数量，电机ID为 1..NumMotors
		RetentionCount int // 每个电机在数据库中保留的最近采样条数，0 表示不清理

		// Redis 缓存配置
		Cache struct {
			KeyPrefix    string // 缓存键前缀，如 "motor:"
			LatestSuffix string // 最新采样键后缀，如 ":latest"
			AlertSuffix  string // 活跃报警键后缀，如 ":alerts"
			AlertTTL     int    // 报警缓存 TTL（秒）
		}
	}

	// 仪表盘（轮询客户端）配置
	Dashboard struct {
		ServerURL      string
		PollInterval   int    // 轮询间隔（秒），默认 1秒
		HistoryMinutes int    // 滚动历史窗口（分钟），容量 = 分钟 × 60
		ExportDir      string // 导出文件目录
		ExportFormat   string // csv / txt / xlsx
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8000")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "motors")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	// MQTT 采样接入（默认禁用，传感器默认走 HTTP）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "motor-monitor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "motors/+/data")
	cfg.MQTT.QoS = 1

	cfg.Monitor.NumMotors = parseInt(getEnv("NUM_MOTORS", "4"), 4)
	cfg.Monitor.RetentionCount = parseInt(getEnv("RETENTION_COUNT", "300"), 300)
	cfg.Monitor.Cache.KeyPrefix = getEnv("CACHE_KEY_PREFIX", "motor:")
	cfg.Monitor.Cache.LatestSuffix = ":latest"
	cfg.Monitor.Cache.AlertSuffix = ":alerts"
	cfg.Monitor.Cache.AlertTTL = parseInt(getEnv("CACHE_ALERT_TTL", "30"), 30)

	cfg.Dashboard.ServerURL = getEnv("SERVER_URL", "http://localhost:8000")
	cfg.Dashboard.PollInterval = parseInt(getEnv("POLL_INTERVAL", "1"), 1)
	cfg.Dashboard.HistoryMinutes = parseInt(getEnv("HISTORY_MINUTES", "5"), 5)
	cfg.Dashboard.ExportDir = getEnv("EXPORT_DIR", ".")
	cfg.Dashboard.ExportFormat = getEnv("EXPORT_FORMAT", "csv")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// HistoryCapacity 滚动历史容量（采样条数，1秒一条）
func (c *Config) HistoryCapacity() int {
	return c.Dashboard.HistoryMinutes * 60
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
