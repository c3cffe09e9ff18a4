package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env      string
	HTTPAddr string
	Store    string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost    string
	RedisPort    string
	SeatCacheTTL time.Duration

	QREncryptionKey string
	QRCipher        string
	QRSigningKey    string

	JWTSecret     string
	JWTTTL        time.Duration
	AdminUsername string
	AdminPassword string

	MailerSendAPIKey string
	MailFromEmail    string
	MailFromName     string

	AMQPURL      string
	AMQPExchange string

	SentryDSN        string
	OccupancyRefresh time.Duration
}

// Load reads envFile into the process environment when it exists and then
// builds the configuration. Variables already set in the environment win.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Env:      getenvDefault("APP_ENV", "development"),
		HTTPAddr: getenvDefault("HTTP_ADDR", ":8080"),
		Store:    strings.ToLower(getenvDefault("STORE", StorePostgres)),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),

		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     getenvDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenvDefault("DB_NAME", "feria_ticket"),

		RedisHost:    os.Getenv("REDIS_HOST"),
		RedisPort:    getenvDefault("REDIS_PORT", "6379"),
		SeatCacheTTL: time.Duration(getenvInt("SEAT_CACHE_TTL_SECONDS", 30)) * time.Second,

		QREncryptionKey: os.Getenv("QR_ENCRYPTION_KEY"),
		QRCipher:        strings.ToLower(getenvDefault("QR_CIPHER", "gcm")),
		QRSigningKey:    os.Getenv("QR_SIGNING_KEY"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        time.Duration(getenvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		AdminUsername: getenvDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		MailerSendAPIKey: os.Getenv("MAILERSEND_API_KEY"),
		MailFromEmail:    getenvDefault("MAILERSEND_FROM_EMAIL", "entradas@ciudadferia.com"),
		MailFromName:     getenvDefault("MAILERSEND_FROM_NAME", "Ciudad Feria"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getenvDefault("AMQP_EXCHANGE", "feria.events"),

		SentryDSN:        os.Getenv("SENTRY_DSN"),
		OccupancyRefresh: time.Duration(getenvInt("OCCUPANCY_REFRESH_SECONDS", 60)) * time.Second,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.QREncryptionKey == "" {
		return fmt.Errorf("QR_ENCRYPTION_KEY is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.QRCipher != "gcm" && c.QRCipher != "cfb" {
		return fmt.Errorf("QR_CIPHER must be gcm or cfb, got %q", c.QRCipher)
	}
	return nil
}

func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
