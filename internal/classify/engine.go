// Package classify 按关键词规则给书签条目打标签
//
// 规则作用于正文与引用正文拼接后的小写文本, 另外两个结构类别由条目本身决定:
// 含图片为 visual, 含外部链接为 resource. 一个条目可以同时属于多个类别.
package classify

import (
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// Option 引擎选项
type Option func(*Engine)

// WithExampleLimit 每类最多保留的示例数
func WithExampleLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.exampleLimit = n
		}
	}
}

// WithExcerptWidth 示例摘要宽度(字符)
func WithExcerptWidth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.excerptWidth = n
		}
	}
}

// Engine 分类引擎
type Engine struct {
	rules        []Rule
	exampleLimit int
	excerptWidth int
}

// NewEngine 创建分类引擎, rules为空时使用内置规则
func NewEngine(rules []Rule, opts ...Option) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	e := &Engine{rules: rules, exampleLimit: 3, excerptWidth: 100}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Labels 全部类别: 规则声明顺序, 然后是未出现过的结构类别
func (e *Engine) Labels() []string {
	labels := make([]string, 0, len(e.rules)+2)
	seen := make(map[string]bool)
	for _, r := range e.rules {
		if !seen[r.Key] {
			seen[r.Key] = true
			labels = append(labels, r.Key)
		}
	}
	for _, l := range []string{LabelVisual, LabelResource} {
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	return labels
}

// Rule 按键查找规则
func (e *Engine) Rule(key string) (Rule, bool) {
	for _, r := range e.rules {
		if r.Key == key {
			return r, true
		}
	}
	return Rule{}, false
}

// Classify 返回条目的类别集合 (不重复, 按 Labels 顺序)
func (e *Engine) Classify(record models.Record) []string {
	content := record.ContentText()
	hit := make(map[string]bool)

	for _, r := range e.rules {
		if r.Matches(content) {
			hit[r.Key] = true
		}
	}
	if record.HasPhotos() {
		hit[LabelVisual] = true
	}
	if record.HasLinks() {
		hit[LabelResource] = true
	}

	labels := make([]string, 0, len(hit))
	for _, l := range e.Labels() {
		if hit[l] {
			labels = append(labels, l)
		}
	}
	return labels
}

// Summarize 汇总一组条目的分类结果
func (e *Engine) Summarize(records []models.Record) models.ClassificationSummary {
	labels := e.Labels()
	summary := models.ClassificationSummary{
		Total:    len(records),
		Labels:   labels,
		Counts:   make(map[string]int, len(labels)),
		Examples: make(map[string][]models.LabelExample, len(labels)),
	}
	for _, l := range labels {
		summary.Counts[l] = 0
		summary.Examples[l] = []models.LabelExample{}
	}

	for _, r := range records {
		got := e.Classify(r)
		switch {
		case len(got) == 0:
			summary.Unlabeled++
		case len(got) > 1:
			summary.MultiLabel++
		}

		for _, l := range got {
			summary.Counts[l]++
			if len(summary.Examples[l]) < e.exampleLimit {
				summary.Examples[l] = append(summary.Examples[l], models.LabelExample{
					Excerpt: utils.Excerpt(r.ContentText(), e.excerptWidth),
					URL:     r.URL,
					Handle:  r.HandleOr("unknown"),
				})
			}
		}
	}
	return summary
}

// ByLabel 返回属于label的条目, 保持原顺序
func (e *Engine) ByLabel(records []models.Record, label string) []models.Record {
	out := make([]models.Record, 0)
	for _, r := range records {
		for _, l := range e.Classify(r) {
			if l == label {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
