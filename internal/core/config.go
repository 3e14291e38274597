package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

// DefaultUserAgent 标签页默认UA
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config 应用程序配置
type Config struct {
	Collect  models.CollectConfig  `mapstructure:"collect"`
	Classify models.ClassifyConfig `mapstructure:"classify"`
	Enrich   models.EnrichConfig   `mapstructure:"enrich"`
	Resource ResourceConfig        `mapstructure:"resource"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Output   OutputConfig          `mapstructure:"output"`
	Service  ServiceConfig         `mapstructure:"service"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// ResourceConfig 连接前的资源检查
type ResourceConfig struct {
	MinAvailableMemoryMB int `mapstructure:"min_available_memory_mb"`
	CPULoadThreshold     int `mapstructure:"cpu_load_threshold"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	ReportsDir string `mapstructure:"reports_dir"`
}

// ServiceConfig 查询服务配置
type ServiceConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoadConfig 加载配置文件
//
// 优先级: 环境变量 (BOOKMARKSCOPE_*) > 配置文件 > 默认值.
// 当前目录下的 .env 会先被加载到环境变量中.
func LoadConfig(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bookmarkscope"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("BOOKMARKSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("enrich.api_key", "BOOKMARKSCOPE_ENRICH_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 收集配置默认值
	v.SetDefault("collect.endpoint", "localhost:9222")
	v.SetDefault("collect.landing_url", "https://twitter.com")
	v.SetDefault("collect.target_url", "https://twitter.com/i/bookmarks")
	v.SetDefault("collect.login_path", "/login")
	v.SetDefault("collect.login_selector", `[data-testid="loginButton"]`)
	v.SetDefault("collect.user_agent", DefaultUserAgent)
	v.SetDefault("collect.viewport_width", 1280)
	v.SetDefault("collect.viewport_height", 800)
	v.SetDefault("collect.landing_settle", "5s")
	v.SetDefault("collect.target_settle", "10s")
	v.SetDefault("collect.settle_delay", "5s")
	v.SetDefault("collect.nav_timeout", "60s")
	v.SetDefault("collect.max_stall_iterations", 30)
	v.SetDefault("collect.snapshot_path", "bookmarked_tweets.json")

	// 分类配置默认值
	v.SetDefault("classify.rules_file", "")
	v.SetDefault("classify.example_limit", 3)
	v.SetDefault("classify.excerpt_width", 100)

	// 描述配置默认值
	v.SetDefault("enrich.api_key", "")
	v.SetDefault("enrich.model", "claude-3-5-sonnet-latest")
	v.SetDefault("enrich.batch_size", 5)
	v.SetDefault("enrich.batch_delay", "2s")
	v.SetDefault("enrich.max_tokens", 1024)
	v.SetDefault("enrich.output_path", "enriched_tweets.json")

	// 资源检查默认值
	v.SetDefault("resource.min_available_memory_mb", 512)
	v.SetDefault("resource.cpu_load_threshold", 90)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.reports_dir", "reports")

	// 服务配置默认值
	v.SetDefault("service.cache_ttl", "5m")
}

// Settings 返回生效配置的map形式 (用于展示)
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"collect": map[string]interface{}{
			"endpoint":             c.Collect.Endpoint,
			"landing_url":          c.Collect.LandingURL,
			"target_url":           c.Collect.TargetURL,
			"login_path":           c.Collect.LoginPath,
			"login_selector":       c.Collect.LoginSelector,
			"user_agent":           c.Collect.UserAgent,
			"viewport_width":       c.Collect.ViewportWidth,
			"viewport_height":      c.Collect.ViewportHeight,
			"landing_settle":       c.Collect.LandingSettle.String(),
			"target_settle":        c.Collect.TargetSettle.String(),
			"settle_delay":         c.Collect.SettleDelay.String(),
			"nav_timeout":          c.Collect.NavTimeout.String(),
			"max_stall_iterations": c.Collect.MaxStallIterations,
			"snapshot_path":        c.Collect.SnapshotPath,
		},
		"classify": map[string]interface{}{
			"rules_file":    c.Classify.RulesFile,
			"example_limit": c.Classify.ExampleLimit,
			"excerpt_width": c.Classify.ExcerptWidth,
		},
		"enrich": map[string]interface{}{
			"api_key":     c.Enrich.APIKey,
			"model":       c.Enrich.Model,
			"batch_size":  c.Enrich.BatchSize,
			"batch_delay": c.Enrich.BatchDelay.String(),
			"max_tokens":  c.Enrich.MaxTokens,
			"output_path": c.Enrich.OutputPath,
		},
		"resource": map[string]interface{}{
			"min_available_memory_mb": c.Resource.MinAvailableMemoryMB,
			"cpu_load_threshold":      c.Resource.CPULoadThreshold,
		},
		"logging": map[string]interface{}{
			"level":   c.Logging.Level,
			"log_dir": c.Logging.LogDir,
		},
		"output": map[string]interface{}{
			"reports_dir": c.Output.ReportsDir,
		},
		"service": map[string]interface{}{
			"cache_ttl": c.Service.CacheTTL.String(),
		},
	}
}

// MergeCLIFlags 合并命令行参数到配置
// 空值或非正数表示未设置
func (c *Config) MergeCLIFlags(endpoint, targetURL, snapshotPath string, maxStall int) {
	if endpoint != "" {
		c.Collect.Endpoint = endpoint
	}
	if targetURL != "" {
		c.Collect.TargetURL = targetURL
	}
	if snapshotPath != "" {
		c.Collect.SnapshotPath = snapshotPath
	}
	if maxStall > 0 {
		c.Collect.MaxStallIterations = maxStall
	}
}
