// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Server   ServerConfig
	YouTube  YouTubeConfig
	Auth     AuthConfig
	Queue    QueueConfig
	Schedule ScheduleConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// URL returns the database connection URL used by migrations.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RabbitMQConfig contains RabbitMQ connection and exchange configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// RedisConfig contains the Redis connection shared by the cache and the job queue.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RedisConfig struct {
	Enabled      bool
	Addr         string
	Password     string
	DB           int
	AnalyticsTTL time.Duration
	SearchTTL    time.Duration
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	APIKey           string
	Endpoint         string
	DailyQuota       int
	QuotaThreshold   int
	LatestVideoCount int64
	SearchResults    int64
}

// AuthConfig contains API key authentication settings.
type AuthConfig struct {
	Enabled bool
	APIKeys []string
}

// QueueConfig contains background job settings.
type QueueConfig struct {
	Enabled     bool
	Concurrency int
	MaxRetry    int
}

// ScheduleConfig controls periodic re-rating of channels that already have snapshots.
type ScheduleConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// APP_DATABASE_HOST maps to database.host
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.YouTube.QuotaThreshold <= 0 || c.YouTube.QuotaThreshold > 100 {
		return fmt.Errorf("youtube.quotathreshold must be between 1 and 100, got %d", c.YouTube.QuotaThreshold)
	}
	if c.YouTube.DailyQuota <= 0 {
		return fmt.Errorf("youtube.dailyquota must be positive, got %d", c.YouTube.DailyQuota)
	}
	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive, got %s", c.Schedule.Interval)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth is enabled but no api keys are configured")
	}
	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.requesttimeout", 20*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "channel_analytics")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", true)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "youtube.analytics")
	viper.SetDefault("rabbitmq.queue", "youtube.analytics.ratings")
	viper.SetDefault("rabbitmq.routingkey", "rating.computed")

	// Redis
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.analyticsttl", 15*time.Minute)
	viper.SetDefault("redis.searchttl", 1*time.Hour)

	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.endpoint", "")
	viper.SetDefault("youtube.dailyquota", 10000)
	viper.SetDefault("youtube.quotathreshold", 90)
	viper.SetDefault("youtube.latestvideocount", 15)
	viper.SetDefault("youtube.searchresults", 10)

	// Auth
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.apikeys", []string{})

	// Queue
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.concurrency", 5)
	viper.SetDefault("queue.maxretry", 3)

	// Schedule
	viper.SetDefault("schedule.interval", 6*time.Hour)
	viper.SetDefault("schedule.staleafter", 24*time.Hour)
	viper.SetDefault("schedule.batchsize", 100)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
