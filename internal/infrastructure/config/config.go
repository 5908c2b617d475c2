package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	API         APIConfig       `mapstructure:"api"`
	Matching    MatchingConfig  `mapstructure:"matching"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	CORS        CORSConfig      `mapstructure:"cors"`
	Seed        SeedConfig      `mapstructure:"seed"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
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
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig API 路徑設定
type APIConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// MatchingConfig 匹配引擎設定
type MatchingConfig struct {
	DefaultAlgorithm                string  `mapstructure:"default_algorithm"`
	MaxRecipeResults                int     `mapstructure:"max_recipe_results"`
	MaxSubstitutionResults          int     `mapstructure:"max_substitution_results"`
	BacktrackingMaxExplorations     int     `mapstructure:"backtracking_max_explorations"`
	MinRecipeMatchScore             float64 `mapstructure:"min_recipe_match_score"`
	MinSubstitutionSimilarity       float64 `mapstructure:"min_substitution_similarity"`
	GreedyRecipeThreshold           int     `mapstructure:"greedy_recipe_threshold"`
	GreedyIngredientThreshold       int     `mapstructure:"greedy_ingredient_threshold"`
	BacktrackingRecipeThreshold     int     `mapstructure:"backtracking_recipe_threshold"`
	BacktrackingIngredientThreshold int     `mapstructure:"backtracking_ingredient_threshold"`
	CentralityCacheTTLSeconds       int     `mapstructure:"centrality_cache_ttl"`
}

// CentralityCacheTTL 中心性快取存活時間
func (m MatchingConfig) CentralityCacheTTL() time.Duration {
	return time.Duration(m.CentralityCacheTTLSeconds) * time.Second
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory 或 redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// QueueConfig 請求隊列設定
type QueueConfig struct {
	Workers int           `mapstructure:"workers"`
	MaxSize int           `mapstructure:"max_size"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CORSConfig 跨域設定
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// SeedConfig 初始資料集設定
type SeedConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"` // 空值表示使用內建範例資料
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetricsConfig 監控指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時僅使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvs()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Matching.DefaultAlgorithm = strings.ToLower(strings.TrimSpace(config.Matching.DefaultAlgorithm))
	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// bindEnvs 綁定沿用的環境變數名稱
func bindEnvs() {
	bindings := map[string]string{
		"server.port":                                "PORT",
		"app.debug":                                  "DEBUG",
		"api.prefix":                                 "API_PREFIX",
		"cors.origins":                               "CORS_ORIGINS",
		"matching.default_algorithm":                 "DEFAULT_ALGORITHM",
		"matching.max_recipe_results":                "MAX_RECIPE_RESULTS",
		"matching.max_substitution_results":          "MAX_SUBSTITUTION_RESULTS",
		"matching.backtracking_max_explorations":     "BACKTRACKING_MAX_EXPLORATIONS",
		"matching.centrality_cache_ttl":              "GRAPH_CENTRALITY_CACHE_TTL",
		"matching.min_recipe_match_score":            "MIN_RECIPE_MATCH_SCORE",
		"matching.min_substitution_similarity":       "MIN_SUBSTITUTION_SIMILARITY",
		"matching.greedy_recipe_threshold":           "GREEDY_RECIPE_THRESHOLD",
		"matching.greedy_ingredient_threshold":       "GREEDY_INGREDIENT_THRESHOLD",
		"matching.backtracking_recipe_threshold":     "BACKTRACKING_RECIPE_THRESHOLD",
		"matching.backtracking_ingredient_threshold": "BACKTRACKING_INGREDIENT_THRESHOLD",
		"cache.enabled":                              "ENABLE_CACHING",
		"cache.backend":                              "CACHE_BACKEND",
		"redis.addr":                                 "REDIS_ADDR",
		"redis.password":                             "REDIS_PASSWORD",
		"rate_limit.enabled":                         "ENABLE_RATE_LIMITING",
		"rate_limit.requests":                        "RATE_LIMIT_REQUESTS",
		"rate_limit.window":                          "RATE_LIMIT_WINDOW",
		"seed.path":                                  "SEED_PATH",
		"seed.url":                                   "SEED_URL",
		"dedup_window":                               "DEDUP_WINDOW",
		"log_level":                                  "LOG_LEVEL",
	}
	for key, env := range bindings {
		_ = viper.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "flavorgraph")

	// 伺服器設定
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.max_body_bytes", 1<<20)
	viper.SetDefault("server.shutdown_timeout", "5s")

	viper.SetDefault("api.prefix", "/api/v1")

	// 匹配引擎設定
	viper.SetDefault("matching.default_algorithm", "graph")
	viper.SetDefault("matching.max_recipe_results", 10)
	viper.SetDefault("matching.max_substitution_results", 5)
	viper.SetDefault("matching.backtracking_max_explorations", 10000)
	viper.SetDefault("matching.centrality_cache_ttl", 3600)
	viper.SetDefault("matching.min_recipe_match_score", 0.1)
	viper.SetDefault("matching.min_substitution_similarity", 0.3)
	viper.SetDefault("matching.greedy_recipe_threshold", 1000)
	viper.SetDefault("matching.greedy_ingredient_threshold", 20)
	viper.SetDefault("matching.backtracking_recipe_threshold", 100)
	viper.SetDefault("matching.backtracking_ingredient_threshold", 10)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "10m")
	viper.SetDefault("cache.cleanup_interval", "1m")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "flavorgraph:")

	// 隊列設定
	viper.SetDefault("queue.workers", 4)
	viper.SetDefault("queue.max_size", 100)
	viper.SetDefault("queue.timeout", "30s")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", false)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("cors.origins", []string{"*"})

	viper.SetDefault("seed.enabled", true)
	viper.SetDefault("seed.path", "")
	viper.SetDefault("seed.url", "")
	viper.SetDefault("seed.timeout", "10s")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

var validAlgorithms = map[string]struct{}{
	"graph":        {},
	"greedy":       {},
	"backtracking": {},
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	m := config.Matching
	if _, ok := validAlgorithms[m.DefaultAlgorithm]; !ok {
		return fmt.Errorf("invalid default algorithm %q", m.DefaultAlgorithm)
	}
	if m.MaxRecipeResults <= 0 {
		return fmt.Errorf("invalid max recipe results")
	}
	if m.MaxSubstitutionResults <= 0 {
		return fmt.Errorf("invalid max substitution results")
	}
	if m.BacktrackingMaxExplorations <= 0 {
		return fmt.Errorf("invalid backtracking max explorations")
	}
	if m.MinRecipeMatchScore < 0 || m.MinRecipeMatchScore > 1 {
		return fmt.Errorf("min recipe match score must be within [0,1]")
	}
	if m.MinSubstitutionSimilarity < 0 || m.MinSubstitutionSimilarity > 1 {
		return fmt.Errorf("min substitution similarity must be within [0,1]")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
			return fmt.Errorf("invalid cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
		if config.Cache.Backend == "redis" && config.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for redis cache backend")
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
