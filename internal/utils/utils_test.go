package utils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

func TestRuleValidator_ValidateRule(t *testing.T) {
	v := NewRuleValidator()

	tests := []struct {
		name      string
		spec      models.RuleSpec
		wantField string
	}{
		{"有效规则", models.RuleSpec{Key: "golang", Name: "Go", Patterns: []string{`\bgo(lang)?\b`}}, ""},
		{"键为空", models.RuleSpec{Name: "Go", Patterns: []string{"go"}}, "key"},
		{"键含大写", models.RuleSpec{Key: "GoLang", Name: "Go", Patterns: []string{"go"}}, "key"},
		{"占用结构类别", models.RuleSpec{Key: "visual", Name: "Visual", Patterns: []string{"img"}}, "key"},
		{"名称为空", models.RuleSpec{Key: "golang", Patterns: []string{"go"}}, "name"},
		{"没有正则", models.RuleSpec{Key: "golang", Name: "Go"}, "patterns"},
		{"空正则", models.RuleSpec{Key: "golang", Name: "Go", Patterns: []string{""}}, "patterns"},
		{"正则无效", models.RuleSpec{Key: "golang", Name: "Go", Patterns: []string{"(go"}}, "patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRule(tt.spec)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve), "应返回ValidationError: %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestRuleValidator_ValidateRuleSet(t *testing.T) {
	v := NewRuleValidator()
	rule := models.RuleSpec{Key: "golang", Name: "Go", Patterns: []string{"go"}}

	assert.NoError(t, v.ValidateRuleSet([]models.RuleSpec{rule}))
	assert.Error(t, v.ValidateRuleSet(nil), "空规则集")
	assert.Error(t, v.ValidateRuleSet([]models.RuleSpec{rule, rule}), "键重复")
}

func TestSecretRedactor(t *testing.T) {
	r := NewSecretRedactor()

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"长密钥", "api_key", "sk-ant-1234567890abcd", "sk-a***abcd"},
		{"短密钥", "api_key", "short", "***"},
		{"Bearer", "authorization", "Bearer abc.def", "Bearer ***"},
		{"普通配置", "endpoint", "localhost:9222", "localhost:9222"},
		{"空值", "api_key", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.RedactValue(tt.key, tt.value))
		})
	}

	redacted := r.RedactMap(map[string]interface{}{
		"enrich":  map[string]interface{}{"api_key": "sk-ant-1234567890abcd", "max_tokens": 1024},
		"collect": map[string]interface{}{"endpoint": "localhost:9222"},
	})
	assert.Equal(t, "sk-a***abcd", redacted["enrich"].(map[string]interface{})["api_key"])
	assert.Equal(t, 1024, redacted["enrich"].(map[string]interface{})["max_tokens"])
	assert.Equal(t, "localhost:9222", redacted["collect"].(map[string]interface{})["endpoint"])
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, SleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "abc", Excerpt("abcdef", 3))
	assert.Equal(t, "ab", Excerpt("ab", 3))
	assert.Equal(t, "你好", Excerpt("你好世界", 2), "按字符截断")
	assert.Equal(t, "abcdef", Excerpt("abcdef", 0))
}

func TestReporter_GenerateRunReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := NewReporter(dir)

	path, err := r.GenerateRunReport(&models.RunReport{RunID: "abc", Status: models.RunStatusSuccess})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "latest_run.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded models.RunReport
	require.NoError(t, decoded.FromJSON(data))
	assert.Equal(t, models.RunStatusSuccess, decoded.Status)
}

func TestPrintClassificationSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintClassificationSummary(&buf, models.ClassificationSummary{
		Total:  1,
		Labels: []string{"technical"},
		Counts: map[string]int{"technical": 1},
		Examples: map[string][]models.LabelExample{
			"technical": {{Excerpt: "rust vs go", Handle: "alice"}},
		},
	}, map[string]string{"technical": "Technical"})

	out := buf.String()
	assert.Contains(t, out, "Technical")
	assert.Contains(t, out, "@alice: rust vs go")
}
