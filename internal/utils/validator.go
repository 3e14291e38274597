package utils

import (
	"fmt"
	"regexp"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

const (
	// MaxPatternLength 单个正则最大长度
	MaxPatternLength = 1024

	// MaxRules 规则数量上限
	MaxRules = 64
)

var (
	// ReservedLabels 由结构特征决定的类别, 规则不能占用 (resource除外, 它同时有文本规则)
	ReservedLabels = []string{"visual"}
)

// RuleValidator 验证分类规则
type RuleValidator struct {
	// keyRegex 验证类别键 (小写字母数字下划线连字符)
	keyRegex *regexp.Regexp

	maxPatternLength int
	reserved         map[string]bool
}

// NewRuleValidator 创建验证器
func NewRuleValidator() *RuleValidator {
	reserved := make(map[string]bool)
	for _, l := range ReservedLabels {
		reserved[l] = true
	}

	return &RuleValidator{
		keyRegex:         regexp.MustCompile(`^[a-z0-9_-]+$`),
		maxPatternLength: MaxPatternLength,
		reserved:         reserved,
	}
}

// ValidateKey 验证类别键
func (rv *RuleValidator) ValidateKey(key string) error {
	if key == "" {
		return &models.ValidationError{
			Field:   "key",
			RuleKey: key,
			Reason:  "类别键不能为空",
		}
	}

	if !rv.keyRegex.MatchString(key) {
		return &models.ValidationError{
			Field:      "key",
			RuleKey:    key,
			Reason:     "类别键包含非法字符",
			Suggestion: "使用小写字母、数字、下划线和连字符 (如 'technical', 'side_project')",
		}
	}

	if rv.reserved[key] {
		return &models.ValidationError{
			Field:      "key",
			RuleKey:    key,
			Reason:     "该类别由条目结构决定, 不能定义文本规则",
			Suggestion: fmt.Sprintf("换一个类别键, 不要使用 '%s'", key),
		}
	}
	return nil
}

// ValidatePattern 验证单个正则
func (rv *RuleValidator) ValidatePattern(key, pattern string) error {
	if pattern == "" {
		return &models.ValidationError{
			Field:   "patterns",
			RuleKey: key,
			Reason:  "正则表达式不能为空",
		}
	}

	if len(pattern) > rv.maxPatternLength {
		return &models.ValidationError{
			Field:      "patterns",
			RuleKey:    key,
			Reason:     fmt.Sprintf("正则表达式过长: %d 字节 (最大 %d)", len(pattern), rv.maxPatternLength),
			Suggestion: "拆分为多个较短的正则",
		}
	}

	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return &models.ValidationError{
			Field:      "patterns",
			RuleKey:    key,
			Reason:     fmt.Sprintf("正则表达式无效: %v", err),
			Suggestion: "检查括号与转义字符",
		}
	}
	return nil
}

// ValidateRule 验证单条规则
func (rv *RuleValidator) ValidateRule(spec models.RuleSpec) error {
	if err := rv.ValidateKey(spec.Key); err != nil {
		return err
	}

	if spec.Name == "" {
		return &models.ValidationError{
			Field:   "name",
			RuleKey: spec.Key,
			Reason:  "显示名称不能为空",
		}
	}

	if len(spec.Patterns) == 0 {
		return &models.ValidationError{
			Field:      "patterns",
			RuleKey:    spec.Key,
			Reason:     "至少需要一个正则表达式",
			Suggestion: "添加 patterns 列表",
		}
	}

	for _, p := range spec.Patterns {
		if err := rv.ValidatePattern(spec.Key, p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRuleSet 验证整组规则
// 返回: 第一个ValidationError
func (rv *RuleValidator) ValidateRuleSet(specs []models.RuleSpec) error {
	if len(specs) == 0 {
		return &models.ValidationError{Field: "rules", Reason: "规则列表为空"}
	}
	if len(specs) > MaxRules {
		return &models.ValidationError{
			Field:  "rules",
			Reason: fmt.Sprintf("规则过多: %d (最大 %d)", len(specs), MaxRules),
		}
	}

	seen := make(map[string]bool)
	for _, spec := range specs {
		if err := rv.ValidateRule(spec); err != nil {
			return err
		}
		if seen[spec.Key] {
			return &models.ValidationError{
				Field:      "key",
				RuleKey:    spec.Key,
				Reason:     "类别键重复",
				Suggestion: "合并两条规则的 patterns",
			}
		}
		seen[spec.Key] = true
	}
	return nil
}
