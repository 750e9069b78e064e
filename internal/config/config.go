package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgauth "github.com/mantavyam/jacob-web/pkg/auth"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Admin    AdminConfig
	Email    EmailConfig
	Limits   LimitsConfig
}

type DatabaseConfig struct {
	URL               string // takes precedence over the discrete fields
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// AdminConfig holds the shared secret guarding the admin routes. Exactly one
// of Password or PasswordHash (bcrypt) is used; the hash wins when both are set.
type AdminConfig struct {
	Password     string
	PasswordHash string
}

type EmailConfig struct {
	Provider     string // "ses", "smtp" or "none"
	FromAddress  string
	AWSRegion    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	Timeout      time.Duration
}

type LimitsConfig struct {
	SubmitPerMinute int
	CheckPerMinute  int
}

func Load() (*Config, error) {
	db, err := LoadDatabase()
	if err != nil {
		return nil, err
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: *db,
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(getEnv("ALLOWED_ORIGINS", "*")),
			TrustedProxies: parseAllowedOrigins(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Admin: AdminConfig{
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getEnv("EMAIL_PROVIDER", "")),
			FromAddress:  getEnv("EMAIL_FROM", ""),
			AWSRegion:    getEnv("AWS_REGION", "ap-south-1"),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			Timeout:      getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		},
		Limits: LimitsConfig{
			SubmitPerMinute: getEnvAsInt("SUBMIT_RATE_PER_MINUTE", 10),
			CheckPerMinute:  getEnvAsInt("CHECK_RATE_PER_MINUTE", 20),
		},
	}

	for _, proxy := range cfg.Server.TrustedProxies {
		if _, err := pkghttp.ParseTrustedProxy(proxy); err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
	}

	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}

	if cfg.Admin.PasswordHash == "" {
		if err := validateAdminPassword(cfg.Admin.Password, env); err != nil {
			return nil, err
		}
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = defaultEmailProvider(cfg.Email)
	}
	switch cfg.Email.Provider {
	case "ses", "smtp", "none":
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be one of ses, smtp, none (got %q)", cfg.Email.Provider)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. The migrate tool uses it so
// it can run without the server's admin and email configuration.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	cfg := &DatabaseConfig{
		URL:               getEnv("DATABASE_URL", ""),
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvAsInt("DB_PORT", 5432),
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", ""),
		Name:              getEnv("DB_NAME", "womenrise"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
		MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
		HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
	}

	if cfg.URL == "" && cfg.Password == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}
	return cfg, nil
}

// validateAdminPassword applies the admin secret strength rules in production.
func validateAdminPassword(password, env string) error {
	if env != "production" {
		return nil
	}
	if err := pkgauth.ValidateSecret(password); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	return nil
}

// defaultEmailProvider picks SES when a sender is configured, SMTP when only
// SMTP credentials exist, and disables email otherwise.
func defaultEmailProvider(c EmailConfig) string {
	switch {
	case c.SMTPUser != "" && c.SMTPPassword != "":
		return "smtp"
	case c.FromAddress != "":
		return "ses"
	default:
		return "none"
	}
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// parseAllowedOrigins splits a comma separated list. For ALLOWED_ORIGINS "*"
// (the default) allows any origin and an explicit list narrows it.
func parseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
