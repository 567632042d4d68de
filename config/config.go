package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Mail      MailConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Path string
}

type JWTConfig struct {
	SigningKey     string // Secret key for JWT signing
	Issuer         string // JWT issuer claim
	LifetimeMinute int    // access token lifetime in minutes
}

type KafkaConfig struct {
	Brokers []string // empty disables the outbox and falls back to log-only
}

type MailConfig struct {
	APIURL       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	TemplateID   int
	FromName     string
	FromEmail    string
}

type SchedulerConfig struct {
	IntervalSeconds int
}

// Load returns application configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		DB: DBConfig{
			Path: getEnv("DB_PATH", "santasdraw.db"),
		},
		JWT: JWTConfig{
			SigningKey:     getEnv("JWT_SIGNING_KEY", ""),
			Issuer:         getEnv("JWT_ISSUER", "santasdraw"),
			LifetimeMinute: getEnvInt("JWT_LIFETIME_MINUTES", 60),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS"),
		},
		Mail: MailConfig{
			APIURL:       getEnv("MAIL_API_URL", "https://api.sendpulse.com/smtp/emails"),
			TokenURL:     getEnv("MAIL_TOKEN_URL", "https://api.sendpulse.com/oauth/access_token"),
			ClientID:     getEnv("MAIL_CLIENT_ID", ""),
			ClientSecret: getEnv("MAIL_CLIENT_SECRET", ""),
			TemplateID:   getEnvInt("MAIL_TEMPLATE_ID", 0),
			FromName:     getEnv("MAIL_FROM_NAME", "Santa's Draw"),
			FromEmail:    getEnv("MAIL_FROM_EMAIL", ""),
		},
		Scheduler: SchedulerConfig{
			IntervalSeconds: getEnvInt("SCHEDULER_INTERVAL_SECONDS", 60),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
