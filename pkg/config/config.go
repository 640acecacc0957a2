package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Mongo     MongoConfig
	Redis     RedisConfig
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Feed      FeedConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// MongoConfig holds document-store configuration
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// StorageConfig holds media object-store configuration
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds token verification configuration
type AuthConfig struct {
	JWTSecret string
}

// FeedConfig holds aggregation tuning knobs
type FeedConfig struct {
	PageSizeMax     int
	FanoutTimeout   time.Duration
	PostCacheTTL    time.Duration
	CatalogCacheTTL time.Duration
	CacheMaxEntries int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	// Load from environment
	viper.SetEnvPrefix("SPOTFEED")
	viper.AutomaticEnv()

	// Load from config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.spotfeed")
	viper.AddConfigPath("/etc/spotfeed")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Mongo: MongoConfig{
			URI:      getString("mongo_uri", "mongodb://localhost:27017"),
			Database: getString("mongo_database", "spotfeed"),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Storage: StorageConfig{
			Endpoint:  getString("storage_endpoint", "localhost:9000"),
			AccessKey: getString("storage_access_key", ""),
			SecretKey: getString("storage_secret_key", ""),
			Bucket:    getString("storage_bucket", "spotfeed-media"),
			UseSSL:    getBool("storage_use_ssl", false),
		},
		Auth: AuthConfig{
			JWTSecret: getString("jwt_secret", ""),
		},
		Feed: FeedConfig{
			PageSizeMax:     getInt("feed_page_size_max", 50),
			FanoutTimeout:   GetDuration("feed_fanout_timeout", 10*time.Second),
			PostCacheTTL:    GetDuration("feed_post_cache_ttl", 5*time.Minute),
			CatalogCacheTTL: GetDuration("feed_catalog_cache_ttl", time.Hour),
			CacheMaxEntries: getInt("feed_cache_max_entries", 4096),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", true),
			JaegerURL:         getString("jaeger_url", "http://localhost:14268/api/traces"),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "spotfeed"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("mongo_uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo_database", "spotfeed")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("feed_page_size_max", 50)
	viper.SetDefault("feed_cache_max_entries", 4096)
	viper.SetDefault("telemetry_enabled", true)
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "spotfeed")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("SPOTFEED_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("SPOTFEED_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("SPOTFEED_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	// Convert snake_case to UPPER_SNAKE_CASE
	result := ""
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result += "_"
		}
		if r == '-' || r == '_' {
			result += "_"
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo_uri is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if c.Feed.PageSizeMax <= 0 || c.Feed.PageSizeMax > 500 {
		return fmt.Errorf("feed_page_size_max must be between 1 and 500")
	}
	if c.Feed.FanoutTimeout <= 0 {
		return fmt.Errorf("feed_fanout_timeout must be positive")
	}
	if c.Feed.CacheMaxEntries <= 0 {
		return fmt.Errorf("feed_cache_max_entries must be positive")
	}
	return nil
}

// GetDuration returns a duration from config key, with default
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return defaultValue
}
