package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// ProjectionChecksEnabled gates the projection-dependent readiness
	// checks (broker probe). Moderation invariants always run.
	ProjectionChecksEnabled bool `env:"PROJECTION_CHECKS_ENABLED, default=true"`

	Mongo MongoConfig
	Redis RedisConfig
	Kafka KafkaConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=beats_interaction"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS, default=localhost:9092"`
	GroupID string   `env:"KAFKA_GROUP_ID, default=beats-interaction"`

	BeatsTopic      string `env:"KAFKA_BEATS_TOPIC,       default=beats-events"`
	UsersTopic      string `env:"KAFKA_USERS_TOPIC,       default=users-events"`
	DeadLetterTopic string `env:"KAFKA_DEAD_LETTER_TOPIC, default=beats-interaction-dlq"`
	SocialTopic     string `env:"KAFKA_SOCIAL_TOPIC,      default=social-events"`

	// Connection supervisor tuning: MaxRetries fixed-delay attempts, then a
	// longer cooldown, then the cycle restarts. It never gives up.
	MaxRetries    int           `env:"KAFKA_MAX_RETRIES,    default=5"`
	RetryDelay    time.Duration `env:"KAFKA_RETRY_DELAY,    default=5s"`
	CooldownDelay time.Duration `env:"KAFKA_COOLDOWN_DELAY, default=1m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
