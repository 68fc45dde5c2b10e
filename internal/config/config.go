package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App         AppConfig
	Upstream    UpstreamConfig
	Features    FeatureConfig
	Attachments AttachmentConfig
	CORS        CORSConfig
	Audit       AuditConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Logger      LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// UpstreamConfig holds the Redmine connection values. Immutable after Load.
type UpstreamConfig struct {
	BaseURL          string
	APIKey           string
	DefaultProjectID int
}

// FeatureConfig selects between the deployment variants of the gateway.
type FeatureConfig struct {
	RequireRequesterIdentity    bool
	ShapeProjectHierarchy       bool
	RestrictAttachmentsToImages bool
}

// AttachmentConfig bounds inbound file uploads.
type AttachmentConfig struct {
	MaxSizeBytes int64
	MaxCount     int
}

// CORSConfig lists origins allowed to call the gateway cross-origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// AuditConfig holds the optional durable audit sink connection.
type AuditConfig struct {
	PostgresDSN string
	MaxConns    int32
	MinConns    int32
}

// RedisConfig holds optional Redis connection values for the catalog cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig bounds the reference-data cache.
type CacheConfig struct {
	TTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	defaultProjectID := getEnvAsInt("REDMINE_DEFAULT_PROJECT_ID", 0)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Upstream: UpstreamConfig{
			BaseURL:          strings.TrimRight(os.Getenv("REDMINE_BASE_URL"), "/"),
			APIKey:           os.Getenv("REDMINE_API_KEY"),
			DefaultProjectID: defaultProjectID,
		},
		Features: FeatureConfig{
			RequireRequesterIdentity:    getEnvAsBool("FEATURE_REQUIRE_REQUESTER_IDENTITY", false),
			ShapeProjectHierarchy:       getEnvAsBool("FEATURE_SHAPE_PROJECT_HIERARCHY", true),
			RestrictAttachmentsToImages: getEnvAsBool("FEATURE_RESTRICT_ATTACHMENTS_TO_IMAGES", false),
		},
		Attachments: AttachmentConfig{
			MaxSizeBytes: int64(getEnvAsInt("ATTACHMENT_MAX_SIZE_BYTES", 10*1024*1024)),
			MaxCount:     getEnvAsInt("ATTACHMENT_MAX_COUNT", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Audit: AuditConfig{
			PostgresDSN: os.Getenv("AUDIT_POSTGRES_DSN"),
			MaxConns:    int32(getEnvAsInt("AUDIT_POSTGRES_MAX_CONNS", 4)),
			MinConns:    int32(getEnvAsInt("AUDIT_POSTGRES_MIN_CONNS", 0)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 60),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Secure reports whether the upstream base URL uses TLS.
func (u UpstreamConfig) Secure() bool {
	return strings.HasPrefix(u.BaseURL, "https://")
}

// TTL returns the catalog cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
