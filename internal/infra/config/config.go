package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	HTTPClient  HTTPClientConfig  `mapstructure:"http_client"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Auth        AuthConfig        `mapstructure:"auth"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Log         LogConfig         `mapstructure:"log"`
	Fintoc      FintocConfig      `mapstructure:"fintoc"`
	PostProcess PostProcessConfig `mapstructure:"post_process"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	// AutoMigrate runs the embedded goose migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode,
	)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// IdempotencyConfig holds the admin API idempotency middleware configuration.
type IdempotencyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig limits requests per client IP on the public return routes.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// AuthConfig holds admin API authentication configuration.
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	Issuer      string        `mapstructure:"issuer"`
}

// CORSConfig holds CORS configuration for the admin API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// LokiURL enables shipping logs to Grafana Loki when set.
	LokiURL string `mapstructure:"loki_url"`
}

// FintocConfig holds the Fintoc provider configuration.
type FintocConfig struct {
	SecretKey          string                 `mapstructure:"secret_key"`
	WebhookSecret      string                 `mapstructure:"webhook_secret"`
	WebhookTolerance   time.Duration          `mapstructure:"webhook_tolerance"`
	APIBaseURL         string                 `mapstructure:"api_base_url"`
	CollectionMode     string                 `mapstructure:"collection_mode"` // collects or direct
	EnableBankTransfer bool                   `mapstructure:"enable_bank_transfer"`
	EnableCard         bool                   `mapstructure:"enable_card"`
	RecipientAccount   RecipientAccountConfig `mapstructure:"recipient_account"`
	PublicBaseURL      string                 `mapstructure:"public_base_url"`
	WebhookEndpointURL string                 `mapstructure:"webhook_endpoint_url"`
	AccessTokenSecret  string                 `mapstructure:"access_token_secret"`
	StatusPagePath     string                 `mapstructure:"status_page_path"`
	// SyncWebhookOnStart registers the webhook endpoint at Fintoc on startup.
	SyncWebhookOnStart bool `mapstructure:"sync_webhook_on_start"`
}

// RecipientAccountConfig holds the direct collection mode bank account.
type RecipientAccountConfig struct {
	HolderID      string `mapstructure:"holder_id"`
	Number        string `mapstructure:"number"`
	Type          string `mapstructure:"type"`
	InstitutionID string `mapstructure:"institution_id"`
}

// PostProcessConfig selects how post-processing signals reach the host.
type PostProcessConfig struct {
	Driver    string `mapstructure:"driver"` // log, kafka or redis
	RedisList string `mapstructure:"redis_list"`
}

// KafkaConfig holds Kafka producer configuration.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// ArchiveConfig holds raw webhook payload archive configuration.
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

const envPrefix = "FINTOC_GW"

// Load loads configuration from .env, file and environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/fintoc-gateway")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads secrets that are never expected in config files.
func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"DB_PASSWORD":                &cfg.Database.Password,
		"REDIS_PASSWORD":             &cfg.Redis.Password,
		"JWT_SECRET":                 &cfg.Auth.JWTSecret,
		"FINTOC_SECRET_KEY":          &cfg.Fintoc.SecretKey,
		"FINTOC_WEBHOOK_SECRET":      &cfg.Fintoc.WebhookSecret,
		"FINTOC_ACCESS_TOKEN_SECRET": &cfg.Fintoc.AccessTokenSecret,
		"ARCHIVE_SECRET_KEY":         &cfg.Archive.SecretAccessKey,
		"LOKI_URL":                   &cfg.Log.LokiURL,
	}
	for name, target := range overrides {
		if value := os.Getenv(envPrefix + "_" + name); value != "" {
			*target = value
		}
	}

	if s := os.Getenv(envPrefix + "_KAFKA_BROKERS"); s != "" {
		cfg.Kafka.Brokers = parseCommaSeparatedList(s)
	}
	if s := os.Getenv(envPrefix + "_CORS_ALLOWED_ORIGINS"); s != "" {
		cfg.CORS.AllowedOrigins = parseCommaSeparatedList(s)
	}
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "fintoc_gateway")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 10*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 20*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Idempotency defaults
	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("idempotency.ttl", 24*time.Hour)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 30)
	v.SetDefault("rate_limit.window", time.Minute)

	// Auth defaults
	v.SetDefault("auth.token_expiry", time.Hour)
	v.SetDefault("auth.issuer", "fintoc-gateway")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Fintoc defaults
	v.SetDefault("fintoc.webhook_tolerance", 300*time.Second)
	v.SetDefault("fintoc.api_base_url", "https://api.fintoc.com")
	v.SetDefault("fintoc.collection_mode", "collects")
	v.SetDefault("fintoc.enable_bank_transfer", true)
	v.SetDefault("fintoc.enable_card", false)
	v.SetDefault("fintoc.status_page_path", "/payment/status")

	// Post-process defaults
	v.SetDefault("post_process.driver", "log")
	v.SetDefault("post_process.redis_list", "fintoc:post_process")

	// Kafka defaults
	v.SetDefault("kafka.topic", "fintoc.transactions.post_process")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.prefix", "fintoc/events/")
}
