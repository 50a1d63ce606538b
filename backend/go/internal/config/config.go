package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SQLConfig 定义了关系型存储（知识库、规则、对话历史、日志）的连接配置。
type SQLConfig struct {
	Driver          string `yaml:"driver"`          // "sqlite" 或 "mysql"
	Path            string `yaml:"path"`            // SQLite 文件路径 (":memory:" 表示内存库)
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// KafkaConfig 定义了审计日志投递到 Kafka 的配置。
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 审计日志主题
}

// DatabaseConfigs 包含所有存储后端的配置。
type DatabaseConfigs struct {
	SQL   SQLConfig   `yaml:"sql"`
	Redis RedisConfig `yaml:"redis"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 服务名称，也用于健康检查的返回值
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address   string `yaml:"address"`   // 监听地址，例如 ":10000"
	StaticDir string `yaml:"staticDir"` // 前端构建产物目录，为空则不提供静态文件
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider       string               `yaml:"provider"` // "gemini", "openai" 或 "ollama"
	Gemini         GeminiConfig         `yaml:"gemini"`
	OpenAI         OpenAIConfig         `yaml:"openai"`
	Ollama         OllamaConfig         `yaml:"ollama"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"` // 包裹所有模型调用的熔断器
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API 密钥
	Model  string `yaml:"model"`  // Gemini 模型名称
}

// OpenAIConfig 包含了 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`
}

// OllamaConfig 包含了本地 Ollama 服务的配置。
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// IntentConfig 选择意图分类器的实现。
type IntentConfig struct {
	Classifier string `yaml:"classifier"` // "oracle" 或 "keyword"
}

// DialogueConfig 定义了多轮教学对话状态的存储方式。
type DialogueConfig struct {
	Store    string `yaml:"store"`    // "sql" 或 "redis"
	Lock     string `yaml:"lock"`     // "local" 或 "redis"
	StateTTL string `yaml:"stateTTL"` // 对话状态的有效期，例如 "30m"
	LockTTL  string `yaml:"lockTTL"`  // Redis 租约的有效期，例如 "30s"；持有期间每 1/3 周期续租
}

// ConversationConfig 定义了对话历史的读取方式。
type ConversationConfig struct {
	HistoryLimit int `yaml:"historyLimit"` // 传给模型的最近历史条数
}

// RulesConfig 定义了规则引擎的配置。
type RulesConfig struct {
	PatternCacheSize int `yaml:"patternCacheSize"` // 已编译模式的缓存容量
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App          AppInfo            `yaml:"app"`
	Logger       LoggerConfig       `yaml:"logger"`
	Server       ServerConfig       `yaml:"server"`
	LLM          LLMConfig          `yaml:"llm"`
	Intent       IntentConfig       `yaml:"intent"`
	Dialogue     DialogueConfig     `yaml:"dialogue"`
	Conversation ConversationConfig `yaml:"conversation"`
	Rules        RulesConfig        `yaml:"rules"`
	Databases    DatabaseConfigs    `yaml:"databases"`
	Middleware   MiddlewareConfig   `yaml:"middleware"`
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "tokenBucket", "fixedWindow", "slidingLog"
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
	SlidingLog  SlidingLogConfig  `yaml:"slidingLog"`
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
}

// FixedWindowConfig 定义了固定窗口计数器算法的配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
}

// SlidingLogConfig 定义了滑动窗口日志算法的配置。
type SlidingLogConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

const (
	// DefaultGeminiModel 是未设置 GEMINI_MODEL_NAME 时使用的模型。
	DefaultGeminiModel = "gemini-1.5-pro-latest"
	// DefaultServiceName 是健康检查返回的服务名称。
	DefaultServiceName = "JARVIS Backend"
)

// Default 返回一份无需任何配置文件即可运行的配置。
func Default() *AppConfig {
	return &AppConfig{
		App:    AppInfo{Name: DefaultServiceName, Version: "1.0.0", Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Address: ":10000"},
		LLM: LLMConfig{
			Provider: "gemini",
			Gemini:   GeminiConfig{Model: DefaultGeminiModel},
			Ollama:   OllamaConfig{BaseURL: "http://localhost:11434"},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 1,
				Timeout:          "30s",
			},
		},
		Intent:       IntentConfig{Classifier: "oracle"},
		Dialogue:     DialogueConfig{Store: "sql", Lock: "local", StateTTL: "30m", LockTTL: "30s"},
		Conversation: ConversationConfig{HistoryLimit: 20},
		Rules:        RulesConfig{PatternCacheSize: 512},
		Databases: DatabaseConfigs{
			SQL: SQLConfig{
				Driver:       "sqlite",
				Path:         "/tmp/jarvis.db",
				MaxOpenConns: 1,
				MaxIdleConns: 1,
			},
			Kafka: KafkaConfig{Topic: "jarvis_logs"},
		},
	}
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 路径为空时只使用默认值；最后总会叠加环境变量。
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置。getenv 通常为 os.Getenv，测试中可替换。
func (c *AppConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.Gemini.APIKey = v
	}
	if v := getenv("GEMINI_MODEL_NAME"); v != "" {
		c.LLM.Gemini.Model = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAI.APIKey = v
	}
	if v := getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.Server.Address = ":" + v
		}
	}
	if v := getenv("JARVIS_DB_PATH"); v != "" {
		c.Databases.SQL.Path = v
	}
}

// Validate 检查配置中可以提前发现的错误，例如无法解析的时间间隔。
func (c *AppConfig) Validate() error {
	if _, err := c.Dialogue.StateTTLDuration(); err != nil {
		return fmt.Errorf("dialogue.stateTTL 无效: %w", err)
	}
	if _, err := c.Dialogue.LockTTLDuration(); err != nil {
		return fmt.Errorf("dialogue.lockTTL 无效: %w", err)
	}
	switch c.Dialogue.Store {
	case "sql", "redis":
	default:
		return fmt.Errorf("未知的 dialogue.store: %q", c.Dialogue.Store)
	}
	switch c.Dialogue.Lock {
	case "local", "redis":
	default:
		return fmt.Errorf("未知的 dialogue.lock: %q", c.Dialogue.Lock)
	}
	switch c.Intent.Classifier {
	case "oracle", "keyword":
	default:
		return fmt.Errorf("未知的 intent.classifier: %q", c.Intent.Classifier)
	}
	if c.Conversation.HistoryLimit < 0 {
		return fmt.Errorf("conversation.historyLimit 不能为负数")
	}
	return nil
}

// StateTTLDuration 解析对话状态的有效期。
func (d DialogueConfig) StateTTLDuration() (time.Duration, error) {
	return parseDuration(d.StateTTL, 30*time.Minute)
}

// LockTTLDuration 解析 Redis 租约的有效期。
func (d DialogueConfig) LockTTLDuration() (time.Duration, error) {
	return parseDuration(d.LockTTL, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
