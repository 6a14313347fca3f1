package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the claims service
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Hedera consensus / mirror node configuration
	Hedera HederaConfig `mapstructure:"hedera"`

	// IPFS gateway configuration
	IPFS IPFSConfig `mapstructure:"ipfs"`

	// Redis configuration
	Redis RedisConfig `mapstructure:"redis"`

	// JWT configuration
	JWT JWTConfig `mapstructure:"jwt"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration. URL, when set, wins
// over the discrete settings.
type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// HederaConfig holds Hedera consensus service configuration. The
// mirror node serves the read path; the submit relay serves the write
// path; TopicID is the process-wide default topic used when a call
// site does not name one.
type HederaConfig struct {
	MirrorNodeURL  string `mapstructure:"mirror_node_url"`
	SubmitRelayURL string `mapstructure:"submit_relay_url"`
	TopicID        string `mapstructure:"topic_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// IPFSConfig holds IPFS gateway configuration
type IPFSConfig struct {
	GatewayURL     string `mapstructure:"gateway_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RedisConfig holds Redis configuration for the mirror-entry cache
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
	TTL      int    `mapstructure:"ttl"`
}

// JWTConfig holds JWT validation configuration
type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Issuer    string `mapstructure:"issuer"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/medisphere")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "medisphere")
	viper.SetDefault("database.user", "medisphere")
	viper.SetDefault("database.ssl_mode", "require")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// Hedera defaults
	viper.SetDefault("hedera.mirror_node_url", "https://testnet.mirrornode.hedera.com")
	viper.SetDefault("hedera.timeout_seconds", 15)

	// IPFS defaults
	viper.SetDefault("ipfs.gateway_url", "https://ipfs.io/ipfs")
	viper.SetDefault("ipfs.timeout_seconds", 15)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.ttl", 3600)

	// Logging defaults
	viper.SetDefault("log_level", "info")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("monitoring.health_path", "/health")
}

// overrideWithEnv applies the environment variables recognized by the
// original platform deployment scripts
func overrideWithEnv(config *Config) {
	if v := os.Getenv("MIRROR_NODE_URL"); v != "" {
		config.Hedera.MirrorNodeURL = v
	}
	if v := os.Getenv("IPFS_GATEWAY"); v != "" {
		config.IPFS.GatewayURL = v
	}
	if v := os.Getenv("HCS_TOPIC_ID"); v != "" {
		config.Hedera.TopicID = v
	}
	if v := os.Getenv("HCS_SUBMIT_RELAY_URL"); v != "" {
		config.Hedera.SubmitRelayURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.JWT.SecretKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}

// validate checks configuration invariants
func validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", config.Server.Port)
	}
	if config.Hedera.MirrorNodeURL == "" {
		return fmt.Errorf("hedera mirror node URL is required")
	}
	if config.IPFS.GatewayURL == "" {
		return fmt.Errorf("ipfs gateway URL is required")
	}
	if config.Hedera.TimeoutSeconds <= 0 {
		return fmt.Errorf("hedera timeout must be positive, got %d", config.Hedera.TimeoutSeconds)
	}
	if config.IPFS.TimeoutSeconds <= 0 {
		return fmt.Errorf("ipfs timeout must be positive, got %d", config.IPFS.TimeoutSeconds)
	}
	return nil
}
