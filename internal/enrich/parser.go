package enrich

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// ```json {...} ``` 代码块
	fencePattern = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")

	// 第一个 {...}
	objectPattern = regexp.MustCompile(`\{[\s\S]*?\}`)
)

// ParseResult 模型输出的解析结果
type ParseResult struct {
	Parsed      bool   // 是否得到了描述
	Description string // 描述文本
	Raw         string // 原始输出
	Stage       int    // 成功的阶段 (1:整体JSON 2:代码块 3:首个对象), 失败为0
}

// ParseDescription 从模型输出中取出 {"description": "..."}
//
// 依次尝试: 整体解析, ```json 代码块, 文本中第一个花括号对象.
func ParseDescription(raw string) ParseResult {
	result := ParseResult{Raw: raw}

	if desc, ok := decode(strings.TrimSpace(raw)); ok {
		result.Parsed, result.Description, result.Stage = true, desc, 1
		return result
	}

	if m := fencePattern.FindStringSubmatch(raw); len(m) == 2 {
		if desc, ok := decode(m[1]); ok {
			result.Parsed, result.Description, result.Stage = true, desc, 2
			return result
		}
	}

	if m := objectPattern.FindString(raw); m != "" {
		if desc, ok := decode(m); ok {
			result.Parsed, result.Description, result.Stage = true, desc, 3
			return result
		}
	}

	return result
}

func decode(s string) (string, bool) {
	var payload struct {
		Description *string `json:"description"`
	}
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return "", false
	}
	if payload.Description == nil {
		return "", false
	}
	return *payload.Description, true
}
