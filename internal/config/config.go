package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Password reset
	ResetTokenTTL  time.Duration
	FrontendURL    string
	MailFrom       string
	GmailCredsPath string
	GmailTokenPath string

	// Realtime (Pusher-compatible channel auth, Redis fan-out)
	RedisURL       string
	RealtimeAppKey string
	RealtimeSecret string
	RealtimePrefix string

	// Web push
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	// Side-effect dispatcher
	DispatchWorkers int
	DispatchQueue   int
	DispatchTimeout time.Duration

	// Log retention
	LogRetentionDays int

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "jobboard"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "24h"), 24*time.Hour),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		ResetTokenTTL:  parseDuration(getEnv("RESET_TOKEN_TTL", "10m"), 10*time.Minute),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		MailFrom:       getEnv("MAIL_FROM", ""),
		GmailCredsPath: getEnv("GMAIL_CREDENTIALS_PATH", ""),
		GmailTokenPath: getEnv("GMAIL_TOKEN_PATH", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		RealtimeAppKey: getEnv("REALTIME_APP_KEY", ""),
		RealtimeSecret: getEnv("REALTIME_SECRET", ""),
		RealtimePrefix: getEnv("REALTIME_CHANNEL_PREFIX", "jobboard:"),

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),

		DispatchWorkers: parseInt(getEnv("DISPATCH_WORKERS", "4"), 4),
		DispatchQueue:   parseInt(getEnv("DISPATCH_QUEUE", "256"), 256),
		DispatchTimeout: parseDuration(getEnv("DISPATCH_TIMEOUT", "10s"), 10*time.Second),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// PushEnabled reports whether a VAPID key pair is configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
