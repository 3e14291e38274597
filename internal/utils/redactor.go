package utils

import (
	"strings"
)

var (
	// SensitiveKeywords 敏感配置项名称关键字 (用于脱敏)
	SensitiveKeywords = []string{
		"authorization",
		"token",
		"key",
		"secret",
		"password",
		"credential",
	}
)

// SecretRedactor 配置脱敏器
// 负责识别并脱敏API密钥等敏感配置
type SecretRedactor struct {
	sensitiveKeywords []string
}

// NewSecretRedactor 创建脱敏器
func NewSecretRedactor() *SecretRedactor {
	return &SecretRedactor{
		sensitiveKeywords: SensitiveKeywords,
	}
}

// IsSensitive 根据配置项名称判断是否敏感
func (sr *SecretRedactor) IsSensitive(name string) bool {
	nameLower := strings.ToLower(name)
	for _, keyword := range sr.sensitiveKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}
	return false
}

// RedactValue 脱敏单个值
func (sr *SecretRedactor) RedactValue(name, value string) string {
	if !sr.IsSensitive(name) || value == "" {
		return value
	}

	// Bearer Token - 仅显示前缀
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer ***"
	}

	// 长密钥 - 显示前4位+后4位
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}

	return "***"
}

// RedactMap 递归脱敏配置map (如 viper.AllSettings 的结果)
func (sr *SecretRedactor) RedactMap(settings map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(settings))
	for name, value := range settings {
		switch v := value.(type) {
		case map[string]interface{}:
			result[name] = sr.RedactMap(v)
		case string:
			result[name] = sr.RedactValue(name, v)
		default:
			result[name] = v
		}
	}
	return result
}
