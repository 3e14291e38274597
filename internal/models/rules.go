package models

import (
	"fmt"
)

// RuleSpec 单个分类规则的声明形式
// 从YAML文件加载或由内置规则导出
type RuleSpec struct {
	// Key 类别键, 如 "technical"
	Key string `mapstructure:"key" yaml:"key" json:"key"`

	// Name 显示名称
	Name string `mapstructure:"name" yaml:"name" json:"name"`

	// Description 类别说明
	Description string `mapstructure:"description" yaml:"description" json:"description"`

	// Patterns 正则表达式列表 (匹配时忽略大小写)
	Patterns []string `mapstructure:"patterns" yaml:"patterns" json:"patterns"`
}

// RuleFile 表示rules.yaml配置文件的结构
type RuleFile struct {
	Rules []RuleSpec `mapstructure:"rules" yaml:"rules"`
}

// ValidationError 规则验证错误
type ValidationError struct {
	// Field 出错的字段 ("key"/"name"/"patterns")
	Field string

	// RuleKey 规则键
	RuleKey string

	// Reason 错误原因
	Reason string

	// Suggestion 修复建议 (可选)
	Suggestion string
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("规则验证失败 [%s.%s]: %s", e.RuleKey, e.Field, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError 配置文件错误
type ConfigError struct {
	// FilePath 配置文件路径
	FilePath string

	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
