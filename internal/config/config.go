package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server        ServerConfig
	RestaurantAPI ServiceConfig
	POS           POSConfig
	Redis         RedisConfig
	Database      DatabaseConfig
	Kafka         KafkaConfig
	CORS          CORSConfig
	Features      FeatureFlags
	LogLevel      string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// POSConfig describes the terminal itself.
type POSConfig struct {
	TerminalID string
	// OperatorID is sent as userId on every order the terminal creates.
	OperatorID string
	TaxRate    decimal.Decimal
	// NotificationBuffer bounds how many notifications the feed keeps.
	NotificationBuffer int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

// URL renders the connection as a postgres:// URL for the migration driver.
func (d DatabaseConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + strconv.Itoa(d.Port) +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	ConsumerGroup string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type FeatureFlags struct {
	EnableCartPersistence bool
	EnableOrderEvents     bool
	EnableJournal         bool
	// EnableStatusSync follows status changes published by other terminals.
	EnableStatusSync bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8090),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		RestaurantAPI: ServiceConfig{
			BaseURL: strings.TrimRight(getEnvString("RESTAURANT_API_URL", "http://localhost:8080/api"), "/"),
			Timeout: time.Duration(getEnvInt("RESTAURANT_API_TIMEOUT", 15)) * time.Second,
		},
		POS: POSConfig{
			TerminalID:         getEnvString("POS_TERMINAL_ID", "terminal-1"),
			OperatorID:         getEnvString("POS_OPERATOR_ID", "2"),
			TaxRate:            getEnvDecimal("POS_TAX_RATE", decimal.RequireFromString("0.10")),
			NotificationBuffer: getEnvInt("POS_NOTIFICATION_BUFFER", 100),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_CART_TTL", 12*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnvString("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnvString("DB_USER", "acme"),
			Password: getEnvString("DB_PASSWORD", "acme"),
			Name:     getEnvString("DB_NAME", "acme_pos"),
			SSLMode:  getEnvString("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitCSV(getEnvString("KAFKA_BROKERS", "localhost:9092")),
			OrdersTopic:   getEnvString("KAFKA_ORDERS_TOPIC", "pos.orders"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "pos-terminal"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getEnvString("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Features: FeatureFlags{
			EnableCartPersistence: getEnvBool("ENABLE_CART_PERSISTENCE", false),
			EnableOrderEvents:     getEnvBool("ENABLE_ORDER_EVENTS", false),
			EnableJournal:         getEnvBool("ENABLE_JOURNAL", false),
			EnableStatusSync:      getEnvBool("ENABLE_STATUS_SYNC", false),
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil && !d.IsNegative() {
			return d
		}
	}
	return defaultValue
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
