package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Version     string `envconfig:"VERSION" default:"dev"`

	DBMaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	DBMaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`

	TokenSecret string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	BcryptCost  int           `envconfig:"BCRYPT_COST" default:"12"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:""`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASS" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:""`

	ManagerEmail string `envconfig:"MANAGER_EMAIL" default:""`
	DashboardURL string `envconfig:"DASHBOARD_URL" default:""`

	NotifyWorkers   int           `envconfig:"NOTIFY_WORKERS" default:"2"`
	NotifyQueueSize int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"100"`
	NotifyTimeout   time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"30s"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	SentryDSN          string   `envconfig:"SENTRY_DSN" default:""`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}

// MailFrom returns the envelope sender, falling back to the SMTP login.
func (c *Config) MailFrom() string {
	if c.SMTPFrom != "" {
		return c.SMTPFrom
	}
	return c.SMTPUser
}
