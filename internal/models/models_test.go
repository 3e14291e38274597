package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func validCollectConfig() CollectConfig {
	return CollectConfig{
		Endpoint:           "localhost:9222",
		LandingURL:         "https://x.com",
		TargetURL:          "https://x.com/i/bookmarks",
		LoginPath:          "/login",
		LoginSelector:      `[data-testid="loginButton"]`,
		ViewportWidth:      1280,
		ViewportHeight:     800,
		LandingSettle:      5 * time.Second,
		TargetSettle:       10 * time.Second,
		SettleDelay:        5 * time.Second,
		NavTimeout:         60 * time.Second,
		MaxStallIterations: 30,
		SnapshotPath:       "bookmarked_tweets.json",
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.com", false},
		{"有效的HTTPS URL", "https://x.com/i/bookmarks", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"无协议", "example.com", true},
		{"首尾空白", " https://x.com/i/bookmarks ", true},
		{"只有协议", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCollectConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CollectConfig)
		wantErr bool
	}{
		{"有效配置", func(c *CollectConfig) {}, false},
		{"端点为空", func(c *CollectConfig) { c.Endpoint = "" }, true},
		{"书签页地址无效", func(c *CollectConfig) { c.TargetURL = "bookmarks" }, true},
		{"轮数上限为0", func(c *CollectConfig) { c.MaxStallIterations = 0 }, true},
		{"轮数上限为1", func(c *CollectConfig) { c.MaxStallIterations = 1 }, false},
		{"负等待时间", func(c *CollectConfig) { c.SettleDelay = -time.Second }, true},
		{"零等待时间", func(c *CollectConfig) { c.SettleDelay = 0 }, false},
		{"导航超时为0", func(c *CollectConfig) { c.NavTimeout = 0 }, true},
		{"视口过小", func(c *CollectConfig) { c.ViewportWidth = 100 }, true},
		{"快照路径为空", func(c *CollectConfig) { c.SnapshotPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCollectConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnrichConfig_Validate(t *testing.T) {
	base := EnrichConfig{APIKey: "sk-test", Model: "claude-3-5-haiku-latest", BatchSize: 5, MaxTokens: 1024, BatchDelay: 2 * time.Second}
	tests := []struct {
		name    string
		mutate  func(c *EnrichConfig)
		wantErr bool
	}{
		{"有效配置", func(c *EnrichConfig) {}, false},
		{"缺少密钥", func(c *EnrichConfig) { c.APIKey = "" }, true},
		{"批大小为0", func(c *EnrichConfig) { c.BatchSize = 0 }, true},
		{"token过大", func(c *EnrichConfig) { c.MaxTokens = 100000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRunTask(t *testing.T) {
	task, err := NewRunTask("https://x.com/i/bookmarks", validCollectConfig())
	if err != nil {
		t.Fatalf("NewRunTask() error = %v", err)
	}

	if task.ID == "" {
		t.Error("任务ID不应为空")
	}
	if task.Domain != "x.com" {
		t.Errorf("Domain = %v, want %v", task.Domain, "x.com")
	}
	if task.Status != RunStatusPending {
		t.Errorf("Status = %v, want %v", task.Status, RunStatusPending)
	}

	task.Start()
	task.Finish(RunStatusError, errors.New("boom"))
	if task.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want boom", task.ErrorMessage)
	}

	report := NewRunReport(task, RunStats{Admitted: 3})
	if report.Status != RunStatusError || report.Stats.Admitted != 3 {
		t.Errorf("报告内容不正确: %+v", report)
	}
}

func TestRecord_JSONShape(t *testing.T) {
	r := Record{
		ID:   StringPtr("1"),
		Text: "hello",
		Media: Media{
			Photos: []string{},
			Links:  []string{},
		},
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"id", "url", "user", "text", "timestamp", "metrics", "media", "quotedTweet"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("缺少字段 %q", key)
		}
	}
	if raw["url"] != nil || raw["quotedTweet"] != nil {
		t.Errorf("缺失字段应序列化为null: %s", data)
	}
}

func TestRecord_Identity(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		wantID string
		wantOK bool
	}{
		{"有ID", Record{ID: StringPtr("42")}, "42", true},
		{"ID为nil", Record{}, "", false},
		{"ID为空串", Record{ID: StringPtr("")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.record.Identity()
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("Identity() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestRecord_ContentText(t *testing.T) {
	r := Record{Text: "Learn Go", QuotedTweet: &QuotedRecord{Text: "With TESTS"}}
	if got := r.ContentText(); got != "learn go with tests" {
		t.Errorf("ContentText() = %q", got)
	}

	if got := (Record{Text: "Only"}).ContentText(); got != "only " {
		t.Errorf("ContentText() = %q", got)
	}
}

func TestRecord_PublishedAt(t *testing.T) {
	if _, ok := (Record{Timestamp: StringPtr("2024-03-01T10:00:00.000Z")}).PublishedAt(); !ok {
		t.Error("带毫秒的时间戳应可解析")
	}
	if _, ok := (Record{Timestamp: StringPtr("yesterday")}).PublishedAt(); ok {
		t.Error("无效时间戳不应解析成功")
	}
	if _, ok := (Record{}).PublishedAt(); ok {
		t.Error("缺失时间戳不应解析成功")
	}
}

func TestCorpus_Immutable(t *testing.T) {
	src := []Record{{ID: StringPtr("1")}, {ID: StringPtr("2")}}
	corpus := NewCorpus(src)
	src[0].Text = "changed"

	records := corpus.Records()
	records[1].Text = "changed too"

	for _, r := range corpus.Records() {
		if r.Text != "" {
			t.Errorf("语料不应被外部修改: %+v", r)
		}
	}
	if corpus.Len() != 2 {
		t.Errorf("Len() = %d, want 2", corpus.Len())
	}
}

func TestPhaseError(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewConnectionError("localhost:9222", cause)

	if !errors.Is(err, ErrConnection) {
		t.Error("应能识别错误类别")
	}
	if !errors.Is(err, cause) {
		t.Error("应能识别底层错误")
	}
	if PhaseOf(err) != PhaseConnect {
		t.Errorf("PhaseOf() = %v, want %v", PhaseOf(err), PhaseConnect)
	}

	wrapped := fmt.Errorf("收集失败: %w", NewLoginRequiredError("https://x.com/login"))
	if !errors.Is(wrapped, ErrLoginRequired) {
		t.Error("包装后仍应识别登录错误")
	}
	if errors.Is(wrapped, ErrConnection) {
		t.Error("不应识别为连接错误")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "patterns", RuleKey: "tech", Reason: "正则无效", Suggestion: "检查括号"}
	want := "规则验证失败 [tech.patterns]: 正则无效 (建议: 检查括号)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
