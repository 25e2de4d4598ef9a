package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"

	TransportLog    = "log"
	TransportSMTP   = "smtp"
	TransportResend = "resend"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Accountill"`
		Port     int    `envconfig:"PORT" default:"5000"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		URL      string `envconfig:"DB_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"accountill"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
		MaxBodyBytes    int64         `envconfig:"SERVER_MAX_BODY_BYTES" default:"1048576"`
	}

	Mail struct {
		Transport   string `envconfig:"MAIL_TRANSPORT"`
		FromName    string `envconfig:"MAIL_FROM_NAME" default:"Accountill"`
		FromAddress string `envconfig:"MAIL_FROM_ADDRESS" default:"hello@accountill.com"`
		History     int    `envconfig:"MAIL_DELIVERY_HISTORY" default:"1000"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		User     string `envconfig:"SMTP_USER"`
		Pass     string `envconfig:"SMTP_PASS"`
		Insecure bool   `envconfig:"SMTP_INSECURE" default:"true"`
	}

	Resend struct {
		APIKey string `envconfig:"RESEND_API_KEY"`
	}

	Artifact struct {
		Backend    string        `envconfig:"ARTIFACT_BACKEND" default:"memory"`
		TTL        time.Duration `envconfig:"ARTIFACT_TTL" default:"1h"`
		MaxEntries int           `envconfig:"ARTIFACT_MAX_ENTRIES" default:"100"`
		Dir        string        `envconfig:"ARTIFACT_DIR" default:"./data/artifacts"`
	}

	Redis struct {
		URL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
		Prefix string `envconfig:"REDIS_PREFIX" default:"accountill"`
	}

	S3 struct {
		Bucket    string `envconfig:"S3_BUCKET"`
		Region    string `envconfig:"S3_REGION" default:"us-east-1"`
		Endpoint  string `envconfig:"S3_ENDPOINT"`
		AccessKey string `envconfig:"S3_ACCESS_KEY"`
		SecretKey string `envconfig:"S3_SECRET_KEY"`
		Prefix    string `envconfig:"S3_PREFIX" default:"invoices/"`
		PathStyle bool   `envconfig:"S3_PATH_STYLE"`
	}

	PDF struct {
		PageFormat string `envconfig:"PDF_PAGE_FORMAT" default:"A4"`
		Creator    string `envconfig:"PDF_CREATOR" default:"Accountill"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	}
}

// ConnectionString prefers DB_URL and falls back to the individual DB_* parts.
func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// MailTransport resolves the transport to use. Without an explicit choice,
// SMTP is used when a host is configured and messages are only logged otherwise.
func (c *Config) MailTransport() string {
	if t := strings.ToLower(c.Mail.Transport); t != "" {
		return t
	}

	if c.SMTP.Host != "" {
		return TransportSMTP
	}

	return TransportLog
}

func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (c *Config) validate() error {
	switch c.Artifact.Backend {
	case BackendMemory, BackendFile, BackendPostgres, BackendRedis:
	case BackendS3:
		if c.S3.Bucket == "" || c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return errors.New("S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY are required for the s3 artifact backend")
		}
	default:
		return fmt.Errorf("unknown artifact backend %q", c.Artifact.Backend)
	}

	switch c.MailTransport() {
	case TransportLog:
	case TransportSMTP:
		if c.SMTP.Host == "" {
			return errors.New("SMTP_HOST is required for the smtp transport")
		}
	case TransportResend:
		if c.Resend.APIKey == "" {
			return errors.New("RESEND_API_KEY is required for the resend transport")
		}
	default:
		return fmt.Errorf("unknown mail transport %q", c.Mail.Transport)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.Artifact.Backend = strings.ToLower(cfg.Artifact.Backend)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
