package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime settings of the MemoMe server.
type Config struct {
	Port           string
	StorageBackend string // "mongo" or "memory"
	MongoURI       string
	DBName         string

	JWTSecret   string
	TokenExpiry time.Duration
	AdminEmail  string

	AllowedOrigins []string
	Timezone       *time.Location
	LogLevel       string

	ReminderRecovery      bool
	ReminderSweepSpec     string
	AdminStatsConcurrency int

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
}

// LoadConfig reads the .env file (if any) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using process environment")
	}

	cfg, err := FromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	return cfg
}

// FromEnv builds a Config from environment variables and validates it.
func FromEnv() (*Config, error) {
	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, errors.New("APP_TIMEZONE is not a valid IANA time zone")
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		StorageBackend:        strings.ToLower(getEnv("STORAGE_BACKEND", "mongo")),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		DBName:                getEnv("DB_NAME", "memome"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		TokenExpiry:           getDuration("TOKEN_EXPIRY", 72*time.Hour),
		AdminEmail:            strings.ToLower(getEnv("ADMIN_EMAIL", "admin@memome.app")),
		AllowedOrigins:        splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		Timezone:              loc,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ReminderRecovery:      getBool("REMINDER_RECOVERY", true),
		ReminderSweepSpec:     getEnv("REMINDER_SWEEP_SPEC", "@every 15m"),
		AdminStatsConcurrency: getInt("ADMIN_STATS_CONCURRENCY", 0),
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPSender:            os.Getenv("SMTP_SENDER"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageBackend != "mongo" && c.StorageBackend != "memory" {
		return errors.New("STORAGE_BACKEND must be one of: mongo, memory")
	}
	if c.StorageBackend == "mongo" && c.MongoURI == "" {
		return errors.New("MONGO_URI is required when STORAGE_BACKEND=mongo")
	}
	if c.TokenExpiry <= 0 {
		return errors.New("TOKEN_EXPIRY must be positive")
	}
	if c.AdminStatsConcurrency < 0 {
		return errors.New("ADMIN_STATS_CONCURRENCY must not be negative")
	}
	return nil
}

// EmailEnabled reports whether SMTP delivery of reminders is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSender != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
