package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"realtorcrm/internal/pkg/validator"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultDSN       = "crm.db"
)

// Config holds the runtime configuration of the CRM service.
// Values come from the process environment; a local .env file is loaded first when present.
type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"dev"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" validate:"omitempty,oneof=debug info warn error"`

	// DatabaseURL is either a postgres:// URL or a SQLite file path.
	DatabaseURL string `env:"DATABASE_URL" env-default:"crm.db"`

	JWTSecret string        `env:"JWT_SECRET" env-default:"change-me-jwt-secret"`
	JWTTTL    time.Duration `env:"JWT_TTL" env-default:"24h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," validate:"dive,origin"`

	// /metrics guard; both empty leaves it open.
	MetricsToken      string   `env:"METRICS_TOKEN"`
	MetricsAllowedIPs []string `env:"METRICS_ALLOWED_IPS" env-separator:"," validate:"dive,ip"`

	// Activity events are published only when brokers are configured.
	KafkaBrokers       []string `env:"KAFKA_BROKERS" env-separator:"," validate:"dive,hostname_port"`
	KafkaActivityTopic string   `env:"KAFKA_ACTIVITY_TOPIC" env-default:"crm.activities"`
}

func init() {
	validator.RegisterStringRule("origin", isOrigin)
}

// Load reads .env (if any) and the environment into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.CORSAllowedOrigins = compact(cfg.CORSAllowedOrigins)
	cfg.MetricsAllowedIPs = compact(cfg.MetricsAllowedIPs)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in a prod-like environment.
func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

// EventsEnabled reports whether activity events should be published.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func validateConfig(cfg *Config) error {
	if errs := validator.Validate(cfg); len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for field, rule := range errs {
			fields = append(fields, field+"="+rule)
		}
		sort.Strings(fields)
		return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.EventsEnabled() && strings.TrimSpace(cfg.KafkaActivityTopic) == "" {
		return fmt.Errorf("KAFKA_ACTIVITY_TOPIC must be set when KAFKA_BROKERS is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.DatabaseURL, defaultDSN) {
			return fmt.Errorf("in prod/release DATABASE_URL must point to a real database")
		}
	}

	return nil
}

// isOrigin accepts scheme://host[:port] with nothing after it.
func isOrigin(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" &&
		(u.Path == "" || u.Path == "/") && u.RawQuery == ""
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
