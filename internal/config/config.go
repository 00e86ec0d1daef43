package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// Socket timeout bounds accepted for the extractor
const (
	MinSocketTimeout = 8 * time.Second
	MaxSocketTimeout = 10 * time.Second
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	API APIConfig

	// Extractor Configuration
	Extractor ExtractorConfig

	// Cookie material per platform
	Cookies CookieConfig

	// Logging Configuration
	Logger LoggerConfig

	// Cache Configuration
	Cache CacheConfig

	// Proxy Configuration
	Proxy ProxyConfig

	// Cleanup Configuration
	Cleanup CleanupConfig
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	CORSOrigins     string
	ShutdownTimeout time.Duration
}

// ExtractorConfig holds extractor tool configuration
type ExtractorConfig struct {
	YtdlpPath     string
	YtdlpTimeout  time.Duration
	SocketTimeout time.Duration
	TempDir       string
}

// CookieConfig holds raw cookie material sourced from the environment.
// Empty means no cookies are attached for that platform.
type CookieConfig struct {
	Bilibili string
	Douyin   string
	YouTube  string
}

// For returns the cookie material that applies to a platform.
// TikTok shares Douyin's infrastructure and therefore its cookies.
func (c CookieConfig) For(platform types.Platform) string {
	switch platform {
	case types.PlatformBilibili:
		return c.Bilibili
	case types.PlatformDouyin, types.PlatformTikTok:
		return c.Douyin
	case types.PlatformYouTube:
		return c.YouTube
	default:
		return ""
	}
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     string // debug, info, warn, error
	Format    string // json, text
	FileName  string // empty = console only
	MaxSizeMB int
}

// CacheConfig holds the optional response cache configuration
type CacheConfig struct {
	RedisAddr     string // empty disables the cache
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Enabled reports whether a Redis address was configured
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// ProxyConfig holds media proxy configuration
type ProxyConfig struct {
	AllowedHosts []string // empty allows any host
	RateLimit    int      // requests per minute per IP
}

// CleanupConfig holds stale cookie sweeper configuration
type CleanupConfig struct {
	Interval time.Duration
	MaxAge   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			Port:            getEnvInt("PORT", 8080),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvDuration("API_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("API_WRITE_TIMEOUT", 2*time.Minute),
			CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Extractor: ExtractorConfig{
			YtdlpPath:     getEnv("YTDLP_PATH", "yt-dlp"),
			YtdlpTimeout:  getEnvDuration("YTDLP_TIMEOUT", 30*time.Second),
			SocketTimeout: clampSocketTimeout(getEnvDuration("EXTRACT_SOCKET_TIMEOUT", MinSocketTimeout)),
			TempDir:       getEnv("TEMP_DIR", os.TempDir()),
		},
		Cookies: CookieConfig{
			Bilibili: os.Getenv("BILIBILI_COOKIES"),
			Douyin:   os.Getenv("DOUYIN_COOKIES"),
			YouTube:  os.Getenv("YOUTUBE_COOKIES"),
		},
		Logger: LoggerConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "json"),
			FileName:  getEnv("LOG_FILE", ""),
			MaxSizeMB: getEnvInt("LOG_MAX_SIZE_MB", 100),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Proxy: ProxyConfig{
			AllowedHosts: getEnvList("PROXY_ALLOWED_HOSTS"),
			RateLimit:    getEnvInt("PROXY_RATE_LIMIT", 60),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvDuration("COOKIE_SWEEP_INTERVAL", 10*time.Minute),
			MaxAge:   getEnvDuration("COOKIE_MAX_AGE", 15*time.Minute),
		},
	}

	// Validate critical configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Extractor.YtdlpPath == "" {
		return fmt.Errorf("YTDLP_PATH is required")
	}

	if c.Extractor.YtdlpTimeout < c.Extractor.SocketTimeout {
		return fmt.Errorf("YTDLP_TIMEOUT (%s) must not be shorter than the socket timeout (%s)",
			c.Extractor.YtdlpTimeout, c.Extractor.SocketTimeout)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.API.Port)
	}

	if c.Proxy.RateLimit < 1 {
		return fmt.Errorf("PROXY_RATE_LIMIT must be >= 1")
	}

	if c.Cleanup.Interval <= 0 {
		return fmt.Errorf("COOKIE_SWEEP_INTERVAL must be positive")
	}

	// A jar is live for at most one extraction
	if c.Cleanup.MaxAge <= c.Extractor.YtdlpTimeout {
		return fmt.Errorf("COOKIE_MAX_AGE (%s) must be longer than YTDLP_TIMEOUT (%s)",
			c.Cleanup.MaxAge, c.Extractor.YtdlpTimeout)
	}

	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when REDIS_ADDR is set")
	}

	return nil
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func clampSocketTimeout(d time.Duration) time.Duration {
	if d < MinSocketTimeout {
		return MinSocketTimeout
	}
	if d > MaxSocketTimeout {
		return MaxSocketTimeout
	}
	return d
}

// Helper functions
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
