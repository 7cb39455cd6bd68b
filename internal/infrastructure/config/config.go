package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支援的模型提供者
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// 支援的快取後端
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	AI          AIConfig        `mapstructure:"ai"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Gemini      GeminiConfig    `mapstructure:"gemini"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Image       ImageConfig     `mapstructure:"image"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
	LogMode     string          `mapstructure:"log_mode"` // concise 時只輸出關鍵訊息
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// AIConfig 模型調用共用設定
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Temperature       float64       `mapstructure:"temperature"`
	AnalysisMaxTokens int           `mapstructure:"analysis_max_tokens"`
	NutritionTokens   int           `mapstructure:"nutrition_max_tokens"`
	SubstituteTokens  int           `mapstructure:"substitute_max_tokens"`
	ComparisonTokens  int           `mapstructure:"comparison_max_tokens"`
	ExtractionRetries int           `mapstructure:"extraction_retries"`
}

// OpenAIConfig OpenAI 相容端點設定（OpenAI、OpenRouter）
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// GeminiConfig Google Gemini 設定
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DatabaseConfig SQLite 設定
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Type            string        `mapstructure:"type"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

// QueueConfig 請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig 載入設定：.env（可選）、環境變數、預設值
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(viper.New())
}

// Load 使用指定的 viper 實例解析設定
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"ai.provider":           "AI_PROVIDER",
		"openai.api_key":        "OPENAI_API_KEY",
		"openai.base_url":       "OPENAI_BASE_URL",
		"openai.model":          "OPENAI_MODEL",
		"gemini.api_key":        "GEMINI_API_KEY",
		"gemini.model":          "GEMINI_MODEL",
		"database.path":         "DATABASE_PATH",
		"cache.enabled":         "CACHE_ENABLED",
		"cache.type":            "CACHE_TYPE",
		"cache.redis_addr":      "REDIS_ADDR",
		"cache.redis_password":  "REDIS_PASSWORD",
		"rate_limit.enabled":    "RATE_LIMIT_ENABLED",
		"rate_limit.requests":   "RATE_LIMIT_REQUESTS",
		"rate_limit.window":     "RATE_LIMIT_WINDOW",
		"dedup_window":          "DEDUP_WINDOW",
		"log_level":             "LOG_LEVEL",
		"log_dir":               "LOG_DIR",
		"log_mode":              "LOG_MODE",
		"server.port":           "PORT",
		"ai.extraction_retries": "EXTRACTION_RETRIES",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Cache.Type = strings.ToLower(strings.TrimSpace(config.Cache.Type))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// Model 回傳目前提供者使用的模型名稱
func (c *Config) Model() string {
	if c.AI.Provider == ProviderGemini {
		return c.Gemini.Model
	}
	return c.OpenAI.Model
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "food-analyzer")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 12<<20)

	// 模型設定
	v.SetDefault("ai.provider", ProviderOpenAI)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.analysis_max_tokens", 1000)
	v.SetDefault("ai.nutrition_max_tokens", 500)
	v.SetDefault("ai.substitute_max_tokens", 500)
	v.SetDefault("ai.comparison_max_tokens", 800)
	v.SetDefault("ai.extraction_retries", 1)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	// 資料庫設定
	v.SetDefault("database.path", "food_analyzer.db")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", CacheMemory)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "food-analyzer:llm:")

	// 隊列設定
	v.SetDefault("queue.workers", 5)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_mode", "")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.AI.Provider {
	case ProviderOpenAI:
		if config.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", config.AI.Provider)
		}
		if config.OpenAI.BaseURL == "" {
			return fmt.Errorf("openai base url is required")
		}
	case ProviderGemini:
		if config.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", config.AI.Provider)
		}
	default:
		return fmt.Errorf("unknown ai provider %q", config.AI.Provider)
	}

	if config.AI.ExtractionRetries < 0 {
		return fmt.Errorf("invalid extraction retries")
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Type {
		case CacheMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unknown cache type %q", config.Cache.Type)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
