package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus 收集任务状态
type RunStatus string

const (
	RunStatusPending       RunStatus = "pending"        // 待执行
	RunStatusRunning       RunStatus = "running"        // 执行中
	RunStatusSuccess       RunStatus = "success"        // 成功
	RunStatusLoginRequired RunStatus = "login_required" // 需要登录
	RunStatusError         RunStatus = "error"          // 失败
)

// CollectConfig 收集配置
type CollectConfig struct {
	Endpoint           string        `mapstructure:"endpoint" json:"endpoint"`                         // 浏览器调试端点 (默认:localhost:9222)
	LandingURL         string        `mapstructure:"landing_url" json:"landing_url"`                   // 站点首页
	TargetURL          string        `mapstructure:"target_url" json:"target_url"`                     // 书签页
	LoginPath          string        `mapstructure:"login_path" json:"login_path"`                     // 登录页路径片段
	LoginSelector      string        `mapstructure:"login_selector" json:"login_selector"`             // 登录控件选择器
	UserAgent          string        `mapstructure:"user_agent" json:"user_agent"`                     // 标签页UA
	ViewportWidth      int           `mapstructure:"viewport_width" json:"viewport_width"`             // 视口宽度 (默认:1280)
	ViewportHeight     int           `mapstructure:"viewport_height" json:"viewport_height"`           // 视口高度 (默认:800)
	LandingSettle      time.Duration `mapstructure:"landing_settle" json:"landing_settle"`             // 首页等待 (默认:5s)
	TargetSettle       time.Duration `mapstructure:"target_settle" json:"target_settle"`               // 书签页等待 (默认:10s)
	SettleDelay        time.Duration `mapstructure:"settle_delay" json:"settle_delay"`                 // 每轮滚动后等待 (默认:5s)
	NavTimeout         time.Duration `mapstructure:"nav_timeout" json:"nav_timeout"`                   // 导航超时 (默认:60s)
	MaxStallIterations int           `mapstructure:"max_stall_iterations" json:"max_stall_iterations"` // 连续无新增轮数上限 (默认:30)
	SnapshotPath       string        `mapstructure:"snapshot_path" json:"snapshot_path"`               // 快照路径
}

// Validate 验证配置
func (c *CollectConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("浏览器端点不能为空")
	}
	if err := ValidateURL(c.LandingURL); err != nil {
		return fmt.Errorf("首页地址无效: %w", err)
	}
	if err := ValidateURL(c.TargetURL); err != nil {
		return fmt.Errorf("书签页地址无效: %w", err)
	}
	if c.MaxStallIterations < 1 || c.MaxStallIterations > 1000 {
		return fmt.Errorf("无新增轮数上限必须在1-1000之间")
	}
	if c.ViewportWidth < 320 || c.ViewportHeight < 240 {
		return fmt.Errorf("视口尺寸过小")
	}
	if c.SettleDelay < 0 || c.LandingSettle < 0 || c.TargetSettle < 0 {
		return fmt.Errorf("等待时间不能为负数")
	}
	if c.NavTimeout <= 0 || c.NavTimeout > 10*time.Minute {
		return fmt.Errorf("导航超时必须在0-10分钟之间")
	}
	if c.SnapshotPath == "" {
		return fmt.Errorf("快照路径不能为空")
	}
	return nil
}

// EnrichConfig 语义描述配置
type EnrichConfig struct {
	APIKey     string        `mapstructure:"api_key" json:"api_key"`         // API密钥
	Model      string        `mapstructure:"model" json:"model"`             // 模型名称
	BatchSize  int           `mapstructure:"batch_size" json:"batch_size"`   // 每批条数 (默认:5)
	BatchDelay time.Duration `mapstructure:"batch_delay" json:"batch_delay"` // 批次间隔 (默认:2s)
	MaxTokens  int           `mapstructure:"max_tokens" json:"max_tokens"`   // 最大输出token (默认:1024)
	OutputPath string        `mapstructure:"output_path" json:"output_path"` // 输出路径
}

// Validate 验证配置
func (c *EnrichConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("未配置API密钥")
	}
	if c.Model == "" {
		return fmt.Errorf("模型名称不能为空")
	}
	if c.BatchSize < 1 || c.BatchSize > 50 {
		return fmt.Errorf("批大小必须在1-50之间")
	}
	if c.MaxTokens < 1 || c.MaxTokens > 8192 {
		return fmt.Errorf("最大token必须在1-8192之间")
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("批次间隔不能为负数")
	}
	return nil
}

// ClassifyConfig 分类配置
type ClassifyConfig struct {
	RulesFile    string `mapstructure:"rules_file" json:"rules_file"`       // 自定义规则文件 (为空使用内置规则)
	ExampleLimit int    `mapstructure:"example_limit" json:"example_limit"` // 每类示例数 (默认:3)
	ExcerptWidth int    `mapstructure:"excerpt_width" json:"excerpt_width"` // 摘要宽度 (默认:100)
}

// RunTask 一次收集任务
type RunTask struct {
	// 基本信息
	ID          string     `json:"id"`                     // 任务唯一ID (UUID)
	TargetURL   string     `json:"target_url"`             // 目标URL
	Domain      string     `json:"domain"`                 // 解析的域名
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间

	// 配置参数
	Config CollectConfig `json:"config"`

	// 执行状态
	Status RunStatus `json:"status"`

	// 错误信息
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRunTask 创建新任务
func NewRunTask(targetURL string, config CollectConfig) (*RunTask, error) {
	parsed, err := parsePageURL(targetURL)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RunTask{
		ID:        uuid.NewString(),
		TargetURL: targetURL,
		Domain:    parsed.Host,
		CreatedAt: time.Now(),
		Config:    config,
		Status:    RunStatusPending,
	}, nil
}

// Start 标记开始
func (t *RunTask) Start() {
	now := time.Now()
	t.StartedAt = &now
	t.Status = RunStatusRunning
}

// Finish 标记结束, err非nil时记录错误信息
func (t *RunTask) Finish(status RunStatus, err error) {
	now := time.Now()
	t.CompletedAt = &now
	t.Status = status
	if err != nil {
		t.ErrorMessage = err.Error()
	}
}

// Duration 任务耗时(秒)
func (t *RunTask) Duration() float64 {
	if t.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if t.CompletedAt != nil {
		end = *t.CompletedAt
	}
	return end.Sub(*t.StartedAt).Seconds()
}

// ToJSON 序列化为JSON
func (t *RunTask) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON 从JSON反序列化
func (t *RunTask) FromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}

// ValidateURL 检查落地页/书签页地址: 必须是带主机名的 http(s) 地址
func ValidateURL(raw string) error {
	_, err := parsePageURL(raw)
	return err
}

func parsePageURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) != raw {
		return nil, fmt.Errorf("URL首尾不能有空白: %q", raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("无效的URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("不支持的协议 %q, 页面地址只能是 http 或 https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("URL缺少主机名: %s", raw)
	}
	return parsed, nil
}
