package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Job store backends.
const (
	JobStoreMemory = "memory"
	JobStoreRedis  = "redis"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	LogLevel          string
	Port              string
	AppOrigin         string
	VideoProvider     string
	ReplicateAPIToken string
	ReplicateModel    string
	ReplicateBaseURL  string
	MockReadyAfter    int
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	StaticDir         string
	PlaceholderVideo  string
	DataDir           string
	FeedbackFile      string
	DatabaseURL       string
	JobStore          string
	RedisURL          string
	RedisPrefix       string
	JobTTL            time.Duration
	GeoIPDBPath       string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		Port:              getEnv("PORT", "8080"),
		AppOrigin:         getEnv("APP_ORIGIN", "*"),
		VideoProvider:     strings.ToLower(getEnv("VIDEO_PROVIDER", "replicate")),
		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateModel:    getEnv("REPLICATE_MODEL", "pixverse/pixverse-v5"),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		MockReadyAfter:    getEnvInt("MOCK_READY_AFTER_POLLS", 1),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		StaticDir:         getEnv("STATIC_DIR", "app/static"),
		PlaceholderVideo:  getEnv("PLACEHOLDER_VIDEO", "placeholder.mp4"),
		DataDir:           getEnv("DATA_DIR", "app"),
		FeedbackFile:      getEnv("FEEDBACK_FILE", "user_feedback.txt"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JobStore:          strings.ToLower(getEnv("JOB_STORE", JobStoreMemory)),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:       getEnv("REDIS_PREFIX", "videogen"),
		JobTTL:            time.Second * time.Duration(getEnvInt("JOB_TTL_SECONDS", 0)),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.JobStore {
	case JobStoreMemory, JobStoreRedis:
	default:
		return nil, fmt.Errorf("JOB_STORE must be %q or %q, got %q", JobStoreMemory, JobStoreRedis, cfg.JobStore)
	}

	if cfg.JobTTL < 0 {
		return nil, fmt.Errorf("JOB_TTL_SECONDS must not be negative")
	}

	return cfg, nil
}

// Development reports whether the service runs with development defaults.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
