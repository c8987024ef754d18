package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the forms service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	SES       SESConfig       `yaml:"ses"`
	Capture   CaptureConfig   `yaml:"capture"`
	Mail      MailConfig      `yaml:"mail"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifeMins int    `yaml:"conn_max_life_mins"`
}

// ConnMaxLifetime returns the configured connection lifetime as a duration.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifeMins) * time.Minute
}

// SendGridConfig holds SendGrid API configuration. An empty APIKey means
// SendGrid mode is unavailable.
type SendGridConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c SendGridConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SESConfig holds AWS SES API configuration, used as the provider when no
// SendGrid key is configured.
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CaptureConfig holds the local-capture sink used when no provider
// credential is configured (development only).
type CaptureConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MailConfig holds sender identity and per-audience reply-to routing.
type MailConfig struct {
	FromEmail        string `yaml:"from_email"`
	FromName         string `yaml:"from_name"`
	ReplyToGeneral   string `yaml:"reply_to_general"`
	ReplyToInvestors string `yaml:"reply_to_investors"`
	ReplyToFounders  string `yaml:"reply_to_founders"`
}

// RedisConfig holds the Redis connection used by the rate limiter.
// An empty URL disables rate limiting entirely.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// RateLimitConfig holds the fixed-window limits for the public form routes.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	PerMinute     int  `yaml:"per_minute"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// Window returns the limiter window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// AuthConfig holds Google OAuth authentication for the admin routes.
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled"`
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	AllowedDomain      string `yaml:"allowed_domain"`
	CookieName         string `yaml:"cookie_name"`
	CookieMaxAge       int    `yaml:"cookie_max_age"`
}

// AnalyticsConfig holds the fire-and-forget analytics emitter settings.
type AnalyticsConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.ConnMaxLifeMins == 0 {
		cfg.Database.ConnMaxLifeMins = 5
	}
	if cfg.SendGrid.BaseURL == "" {
		cfg.SendGrid.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.SendGrid.TimeoutSeconds == 0 {
		cfg.SendGrid.TimeoutSeconds = 30
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.Capture.URL == "" {
		cfg.Capture.URL = "http://localhost:8025/api/v1/send"
	}
	if cfg.Capture.TimeoutSeconds == 0 {
		cfg.Capture.TimeoutSeconds = 5
	}
	if cfg.Mail.FromEmail == "" {
		cfg.Mail.FromEmail = "noreply@nartaq.com"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "NartaQ"
	}
	if cfg.Mail.ReplyToGeneral == "" {
		cfg.Mail.ReplyToGeneral = "hello@nartaq.com"
	}
	if cfg.Mail.ReplyToInvestors == "" {
		cfg.Mail.ReplyToInvestors = "investors@nartaq.com"
	}
	if cfg.Mail.ReplyToFounders == "" {
		cfg.Mail.ReplyToFounders = "founders@nartaq.com"
	}
	if cfg.RateLimit.PerMinute == 0 {
		cfg.RateLimit.PerMinute = 10
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "nartaq_admin_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 8 * 3600
	}
	if cfg.Analytics.BufferSize == 0 {
		cfg.Analytics.BufferSize = 256
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if apiKey := os.Getenv("SENDGRID_API_KEY"); apiKey != "" {
		cfg.SendGrid.APIKey = apiKey
	}
	if baseURL := os.Getenv("SENDGRID_BASE_URL"); baseURL != "" {
		cfg.SendGrid.BaseURL = baseURL
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.SES.SecretKey = secretKey
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.SES.Region = region
	}
	if captureURL := os.Getenv("MAIL_CAPTURE_URL"); captureURL != "" {
		cfg.Capture.URL = captureURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("AUTH_ALLOWED_DOMAIN"); v != "" {
		cfg.Auth.AllowedDomain = v
	}

	return cfg, nil
}
