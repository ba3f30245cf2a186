package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogBackend  string

	Database DatabaseConfig
	RedisURL string

	Auth    AuthConfig
	Casdoor CasdoorConfig
	Gemini  GeminiConfig
	Kafka   KafkaConfig

	TracingEnabled bool
	CORSOrigins    []string

	AdminUID      string
	AdminPassword string
}

type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file path
}

type AuthConfig struct {
	Provider  string // casdoor | local
	JWTSecret string
	TokenTTL  time.Duration
}

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type GeminiConfig struct {
	Server        string
	APIKey        string
	TestTimeout   time.Duration
	AskTimeout    time.Duration
	MaxErrorChars int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AuthProviderCasdoor = "casdoor"
	AuthProviderLocal   = "local"

	defaultGeminiServer = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
)

// LoadConfig reads .env (if present) and the process environment
func LoadConfig() (*Config, error) {
	// .env is optional in containers
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogBackend:  strings.ToLower(getEnv("LOG_BACKEND", "slog")),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "study_buddy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "study_buddy.db"),
		},
		RedisURL: getEnv("REDIS_URL", ""),
		Auth: AuthConfig{
			Provider:  strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderCasdoor)),
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDuration("JWT_TTL", 12*time.Hour),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Cert:         getEnv("CASDOOR_CERT", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
		},
		Gemini: GeminiConfig{
			Server:        getEnv("GEMINI_SERVER", defaultGeminiServer),
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			TestTimeout:   getDuration("GEMINI_TEST_TIMEOUT", 30*time.Second),
			AskTimeout:    getDuration("GEMINI_ASK_TIMEOUT", 90*time.Second),
			MaxErrorChars: getInt("GEMINI_MAX_ERROR_CHARS", 200),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "study-buddy.events"),
		},
		TracingEnabled: getBool("OTEL_ENABLED", false),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		AdminUID:       getEnv("ADMIN_UID", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Auth.Provider {
	case AuthProviderCasdoor:
	case AuthProviderLocal:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=local")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.Auth.Provider)
	}

	if c.Gemini.TestTimeout <= 0 || c.Gemini.AskTimeout <= 0 {
		return fmt.Errorf("gemini timeouts must be positive")
	}
	return nil
}

// PostgresDSN builds the libpq connection string
func (c *Config) PostgresDSN() string {
	d := c.Database
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
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
