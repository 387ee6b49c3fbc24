package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	// Document store selection
	StoreDriver   string
	DBUrl         string
	MongoURI      string
	MongoDatabase string
	// Token signing
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	BcryptCost       int
	// HTTP
	CORSAllowedOrigins []string
	EnableSwagger      bool
	EnableMetrics      bool
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func LoadConfig() (*Config, error) {
	// Load .env when present; real environment wins.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DBUrl:         getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "recruiting_platform"),
		// Token signing
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenTTL:   getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:       getEnvInt("BCRYPT_COST", 12),
		// HTTP
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		EnableSwagger:      getEnvBool("ENABLE_SWAGGER", true),
		EnableMetrics:      getEnvBool("ENABLE_METRICS", true),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.DBUrl == "" {
			log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
		}
	default:
		return errors.New("config: STORE_DRIVER must be one of memory, postgres, mongo")
	}

	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET are required in production")
		}
		log.Println("WARNING: JWT secrets not configured. Using development secrets.")
		if c.JWTSecret == "" {
			c.JWTSecret = "dev-access-secret"
		}
		if c.JWTRefreshSecret == "" {
			c.JWTRefreshSecret = "dev-refresh-secret"
		}
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return errors.New("config: BCRYPT_COST must be between 10 and 14")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool accepts the values strconv.ParseBool understands
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings such as "15m" or "168h"
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
