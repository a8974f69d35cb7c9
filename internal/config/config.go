package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	JWTSecret string

	// ReminderDays is the advance-notice offset of the reminder job.
	ReminderDays int
	// ReminderRepeat keeps re-sending a job's message every day a
	// payment still matches its rule. When false each payment gets at
	// most one successful message per job.
	ReminderRepeat bool
	// SendTimeout bounds every outbound message delivery.
	SendTimeout time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	EvolutionBaseURL    string
	EvolutionInstanceID string
	EvolutionToken      string

	CopomexBaseURL string
	CopomexToken   string

	ReceiptDir string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		DBConn:   getEnv("DB_CONN", "host=localhost port=5432 user=tandas password=tandas dbname=tandas sslmode=disable"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),

		ReminderDays:   getEnvInt("REMINDER_DAYS", 3),
		ReminderRepeat: getEnvBool("REMINDER_REPEAT", true),
		SendTimeout:    getEnvDuration("SEND_TIMEOUT", 10*time.Second),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@tandas.local"),

		EvolutionBaseURL:    getEnv("EVOLUTION_BASE_URL", ""),
		EvolutionInstanceID: getEnv("EVOLUTION_INSTANCE_ID", ""),
		EvolutionToken:      getEnv("EVOLUTION_TOKEN", ""),

		CopomexBaseURL: getEnv("COPOMEX_BASE_URL", "https://api.copomex.com/query"),
		CopomexToken:   getEnv("COPOMEX_TOKEN", ""),

		ReceiptDir: getEnv("RECEIPT_DIR", "storage/receipts"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ReminderDays < 0 {
		return nil, fmt.Errorf("REMINDER_DAYS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
