package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort string

	DBDriver    string
	DatabaseDSN string

	JWTSecret        string
	TokenTTL         time.Duration
	AllowAdminSignup bool

	UploadDir      string
	MaxUploadBytes int64

	OrderStatusPolicy string
	BroadcastBuffer   int

	RabbitMQURL      string
	RabbitMQExchange string
	KafkaBrokers     []string
	KafkaTopic       string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	SeedCatalog bool
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromViper(newViper()), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("ALLOW_ADMIN_SIGNUP", false)
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("ORDER_STATUS_POLICY", "permissive")
	v.SetDefault("BROADCAST_BUFFER", 64)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "order_events")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "order-events")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PRODUCT_CACHE_TTL", "5m")
	v.SetDefault("SEED_CATALOG", false)
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:           v.GetString("APP_PORT"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		AllowAdminSignup:  v.GetBool("ALLOW_ADMIN_SIGNUP"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		MaxUploadBytes:    v.GetInt64("MAX_UPLOAD_BYTES"),
		OrderStatusPolicy: strings.ToLower(v.GetString("ORDER_STATUS_POLICY")),
		BroadcastBuffer:   v.GetInt("BROADCAST_BUFFER"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:  v.GetString("RABBITMQ_EXCHANGE"),
		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:        v.GetString("KAFKA_TOPIC"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		ProductCacheTTL:   v.GetDuration("PRODUCT_CACHE_TTL"),
		SeedCatalog:       v.GetBool("SEED_CATALOG"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
