package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MaxPageSize is the largest page the content API will return in one query.
const MaxPageSize = 100

type Config struct {
	Server  ServerConfig
	Content ContentConfig
	Cache   CacheConfig
	Render  RenderConfig
	App     AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type ContentConfig struct {
	Endpoint    string
	AccessToken string
	PageSize    int
	Timeout     time.Duration
	RateLimit   float64
	RateBurst   int
}

type CacheConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	TTL             time.Duration
	RefreshSchedule string
}

// Enabled reports whether a Redis result cache was configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

type RenderConfig struct {
	TemplatesDir string
	Reload       bool
	StaticDir    string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	Analytics   string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	env := getEnv("APP_ENV", "development")
	templatesDir := getEnv("TEMPLATES_DIR", "")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Content: ContentConfig{
			Endpoint:    getEnv("PRISMIC_ENDPOINT", ""),
			AccessToken: getEnv("PRISMIC_ACCESS_TOKEN", ""),
			PageSize:    getEnvAsInt("CONTENT_PAGE_SIZE", MaxPageSize),
			Timeout:     time.Duration(getEnvAsInt("CONTENT_TIMEOUT_SECONDS", 10)) * time.Second,
			RateLimit:   getEnvAsFloat("CONTENT_RATE_LIMIT", 20),
			RateBurst:   getEnvAsInt("CONTENT_RATE_BURST", 40),
		},
		Cache: CacheConfig{
			RedisAddr:       getEnv("REDIS_ADDR", ""),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvAsInt("REDIS_DB", 0),
			TTL:             time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
			RefreshSchedule: getEnv("CACHE_REFRESH_SCHEDULE", "0 */5 * * * *"),
		},
		Render: RenderConfig{
			TemplatesDir: templatesDir,
			Reload:       getEnvAsBool("TEMPLATES_RELOAD", env == "development" && templatesDir != ""),
			StaticDir:    getEnv("STATIC_DIR", "public"),
		},
		App: AppConfig{
			Environment: env,
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Analytics:   getEnv("GOOGLE_ANALYTICS", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Content.Endpoint == "" {
		return fmt.Errorf("PRISMIC_ENDPOINT is required")
	}

	if c.Content.PageSize <= 0 || c.Content.PageSize > MaxPageSize {
		return fmt.Errorf("CONTENT_PAGE_SIZE must be between 1 and %d, got %d", MaxPageSize, c.Content.PageSize)
	}

	if c.Content.Timeout <= 0 {
		return fmt.Errorf("CONTENT_TIMEOUT_SECONDS must be positive")
	}

	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive when REDIS_ADDR is set")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
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
