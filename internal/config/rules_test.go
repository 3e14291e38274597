package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/bookmarkscope/internal/classify"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

func TestRulesLoader_LoadRules(t *testing.T) {
	t.Run("首次运行自动生成规则文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "configs", "rules.yaml")
		loader := NewRulesLoader(path)

		if err := loader.EnsureConfigExists(); err != nil {
			t.Fatalf("生成规则文件失败: %v", err)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Fatal("规则文件应该被自动生成")
		}

		rules, err := loader.LoadRules()
		if err != nil {
			t.Fatalf("加载规则失败: %v", err)
		}
		if len(rules) != len(classify.DefaultRuleSpecs()) {
			t.Errorf("规则数量 = %d, want %d", len(rules), len(classify.DefaultRuleSpecs()))
		}
	})

	t.Run("加载自定义规则", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := `rules:
  - key: golang
    name: Go
    description: Go language
    patterns:
      - '\bgolang\b'
      - 'goroutine'
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("写入测试规则失败: %v", err)
		}

		rules, err := NewRulesLoader(path).LoadRules()
		if err != nil {
			t.Fatalf("加载规则失败: %v", err)
		}
		if len(rules) != 1 || rules[0].Key != "golang" || len(rules[0].Patterns) != 2 {
			t.Errorf("规则内容不正确: %+v", rules)
		}
		if !rules[0].Matches("spawning a GOROUTINE") {
			t.Error("规则应忽略大小写")
		}
	})
}

func TestRulesLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"YAML语法错误", "rules: [\n  - key: a\n"},
		{"正则无效", "rules:\n  - key: bad\n    name: Bad\n    patterns: ['(']\n"},
		{"规则为空", "rules: []\n"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.Repeat("r", i+1)+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("写入测试规则失败: %v", err)
			}

			_, err := NewRulesLoader(path).LoadRules()
			var ce *models.ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("LoadRules() error = %v, want ConfigError", err)
			}
		})
	}
}

func TestRulesLoader_FileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, make([]byte, MaxConfigFileSize+1), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}

	err := NewRulesLoader(path).ValidateFileSize()
	var ce *models.ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("ValidateFileSize() error = %v, want ConfigError", err)
	}
}

func TestMarshalRules_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported.yaml")
	if err := WriteRuleFile(path, classify.DefaultRuleSpecs()); err != nil {
		t.Fatalf("WriteRuleFile() error = %v", err)
	}

	specs, err := NewRulesLoader(path).LoadSpecs()
	if err != nil {
		t.Fatalf("LoadSpecs() error = %v", err)
	}

	want := classify.DefaultRuleSpecs()
	if len(specs) != len(want) {
		t.Fatalf("规则数量 = %d, want %d", len(specs), len(want))
	}
	for i := range want {
		if specs[i].Key != want[i].Key || strings.Join(specs[i].Patterns, "\n") != strings.Join(want[i].Patterns, "\n") {
			t.Errorf("第%d条规则不一致: got %+v, want %+v", i, specs[i], want[i])
		}
	}
}
