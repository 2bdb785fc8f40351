// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Transform TransformConfig `mapstructure:"transform"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Watch     WatchConfig     `mapstructure:"watch"`
	TLS       TLSConfig       `mapstructure:"tls"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	CORS            CORSConfig      `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // e.g., ["https://example.com", "*.sub.domain.tld"]
}

// Enabled returns true if CORS is configured with at least one allowed origin.
func (c *CORSConfig) Enabled() bool {
	return len(c.AllowedOrigins) > 0
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`
	Burst   int     `mapstructure:"burst"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Type      string      `mapstructure:"type"` // s3, azure, http, local
	LocalPath string      `mapstructure:"local_path"`
	S3        S3Config    `mapstructure:"s3"`
	Azure     AzureConfig `mapstructure:"azure"`
	HTTP      HTTPConfig  `mapstructure:"http"`
}

// S3Config holds AWS S3 configuration.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// AzureConfig holds Azure Blob Storage configuration.
type AzureConfig struct {
	Container        string `mapstructure:"container"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Prefix           string `mapstructure:"prefix"`
}

// HTTPConfig holds HTTP download configuration.
type HTTPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	IndexFile string        `mapstructure:"index_file"` // default: index.txt
	Timeout   time.Duration `mapstructure:"timeout"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
}

// TransformConfig holds transform service configuration.
type TransformConfig struct {
	DefaultSource string        `mapstructure:"default_source"`
	DefaultTarget string        `mapstructure:"default_target"`
	MaxPoints     int           `mapstructure:"max_points"`
	Workers       int           `mapstructure:"workers"` // 0 = one per CPU
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheSize     uint64        `mapstructure:"cache_size"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// SyncConfig holds catalog synchronisation configuration.
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 disables periodic sync
}

// WatchConfig holds hot-reload configuration for local catalogs.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// TLSConfig holds TLS/CertMagic configuration.
type TLSConfig struct {
	Enabled  bool      `mapstructure:"enabled"`
	Domains  []string  `mapstructure:"domains"`
	Email    string    `mapstructure:"email"`
	CacheDir string    `mapstructure:"cache_dir"`
	Staging  bool      `mapstructure:"staging"` // Use Let's Encrypt staging
	DNS      DNSConfig `mapstructure:"dns"`
}

// DNSConfig holds Azure DNS settings for ACME DNS-01 challenges.
type DNSConfig struct {
	SubscriptionID    string `mapstructure:"subscription_id"`
	ResourceGroupName string `mapstructure:"resource_group_name"`
	ClientID          string `mapstructure:"client_id"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values.
func Defaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.rate_limit.enabled", false)
	viper.SetDefault("server.rate_limit.rate", 100.0)
	viper.SetDefault("server.rate_limit.burst", 200)
	viper.SetDefault("server.cors.allowed_origins", []string{})

	// Storage defaults
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local_path", "./catalogs")
	viper.SetDefault("storage.http.index_file", "index.txt")
	viper.SetDefault("storage.http.timeout", 5*time.Minute)

	// Transform defaults
	viper.SetDefault("transform.default_source", "EPSG:4326")
	viper.SetDefault("transform.default_target", "EPSG:3857")
	viper.SetDefault("transform.max_points", 10000)
	viper.SetDefault("transform.workers", 0)
	viper.SetDefault("transform.timeout", 30*time.Second)
	viper.SetDefault("transform.cache_size", 1024)
	viper.SetDefault("transform.cache_ttl", time.Hour)

	// Sync and watch defaults
	viper.SetDefault("sync.interval", 0)
	viper.SetDefault("watch.enabled", true)
	viper.SetDefault("watch.debounce", 500*time.Millisecond)

	// TLS defaults
	viper.SetDefault("tls.enabled", false)
	viper.SetDefault("tls.cache_dir", "./.certmagic")
	viper.SetDefault("tls.staging", false)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("MERIDIAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/meridian")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration and reports the first invalid
// setting as a *domain.ConfigError.
func (c *Config) Validate() error {
	for _, check := range []func() error{c.validateServer, c.validateTLS, c.validateTransform, c.validateStorage} {
		if err := check(); err != nil {
			return err
		}
	}

	if c.Sync.Interval < 0 {
		return invalid("sync.interval", "sync interval must not be negative: %s", c.Sync.Interval)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return invalid("logging.format", "unknown logging format: %s", c.Logging.Format)
	}
	return nil
}

func invalid(field, format string, args ...interface{}) error {
	return &domain.ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", "invalid server port: %d", c.Server.Port)
	}
	if rl := c.Server.RateLimit; rl.Enabled && rl.Rate <= 0 {
		return invalid("server.rate_limit.rate", "rate must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateTLS() error {
	if !c.TLS.Enabled {
		return nil
	}
	switch {
	case len(c.TLS.Domains) == 0:
		return invalid("tls.domains", "TLS enabled but no domains specified")
	case c.TLS.Email == "":
		return invalid("tls.email", "TLS enabled but no email specified")
	case c.TLS.DNS.SubscriptionID == "" || c.TLS.DNS.ResourceGroupName == "":
		return invalid("tls.dns", "TLS enabled but Azure DNS subscription or resource group missing")
	}
	return nil
}

func (c *Config) validateTransform() error {
	t := c.Transform
	switch {
	case t.MaxPoints < 1:
		return invalid("transform.max_points", "max_points must be positive: %d", t.MaxPoints)
	case t.Workers < 0:
		return invalid("transform.workers", "workers must not be negative: %d", t.Workers)
	case t.Timeout < 0:
		return invalid("transform.timeout", "timeout must not be negative: %s", t.Timeout)
	case t.CacheTTL < 0:
		return invalid("transform.cache_ttl", "cache_ttl must not be negative: %s", t.CacheTTL)
	}
	return nil
}

func (c *Config) validateStorage() error {
	st := c.Storage
	switch output.StorageType(st.Type) {
	case output.StorageTypeLocal:
		if st.LocalPath == "" {
			return invalid("storage.local_path", "local storage path is required")
		}
	case output.StorageTypeS3:
		if st.S3.Bucket == "" {
			return invalid("storage.s3.bucket", "S3 bucket is required")
		}
		if st.S3.Region == "" {
			return invalid("storage.s3.region", "S3 region is required")
		}
	case output.StorageTypeAzure:
		if st.Azure.Container == "" {
			return invalid("storage.azure.container", "azure container is required")
		}
		if st.Azure.AccountName == "" && st.Azure.ConnectionString == "" {
			return invalid("storage.azure", "azure account name or connection string is required")
		}
	case output.StorageTypeHTTP:
		if st.HTTP.BaseURL == "" {
			return invalid("storage.http.base_url", "HTTP base URL is required")
		}
	default:
		return invalid("storage.type", "unknown storage type: %s", st.Type)
	}
	if output.StorageType(st.Type).IsRemote() && st.LocalPath == "" {
		return invalid("storage.local_path", "a local path is required to cache remote catalogs")
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
