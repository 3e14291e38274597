package classify

import (
	"fmt"
	"regexp"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// 结构类别, 不依赖文本规则
const (
	LabelVisual   = "visual"   // 含图片
	LabelResource = "resource" // 含外部链接
)

// Rule 编译后的分类规则
type Rule struct {
	Key         string
	Name        string
	Description string
	Patterns    []*regexp.Regexp
}

// Matches 任一正则命中即匹配
func (r Rule) Matches(content string) bool {
	for _, p := range r.Patterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}

// DefaultRuleSpecs 内置规则
func DefaultRuleSpecs() []models.RuleSpec {
	return []models.RuleSpec{
		{
			Key:         "actionable",
			Name:        "Actionable",
			Description: "Tweets containing specific actions, tutorials, or how-to content",
			Patterns: []string{
				`how to|tutorial|guide|tips|steps|learn|implement|build|create|start|try|use`,
				`\b\d+\s+ways?\b|\b\d+\s+tips?\b|\b\d+\s+steps?\b`,
				`you can|you should|you need to|if you want`,
			},
		},
		{
			Key:         "ponderable",
			Name:        "Ponderable",
			Description: "Philosophical, thought-provoking, or reflective content",
			Patterns: []string{
				`think|thought|believe|wonder|question|perhaps|maybe|opinion|theory`,
				`what if|why do|how come|imagine if`,
				`life|meaning|purpose|truth|reality|perspective`,
			},
		},
		{
			Key:         "technical",
			Name:        "Technical",
			Description: "Technical content, coding, tools, or technology discussions",
			Patterns: []string{
				`code|programming|software|dev|api|framework|library|tool|tech`,
				`\b(js|javascript|python|react|node|ai|ml|api)\b`,
				`algorithm|database|backend|frontend|fullstack`,
			},
		},
		{
			Key:         LabelResource,
			Name:        "Resource",
			Description: "Links to resources, tools, articles, or references",
			Patterns: []string{
				`resource|tool|library|framework|platform|service`,
				`check out|look at|great|awesome|useful|helpful`,
				`free|open source|available|released`,
			},
		},
		{
			Key:         "insight",
			Name:        "Insight",
			Description: "Observations, insights, and analysis",
			Patterns: []string{
				`realize|understand|notice|observe|find|discover`,
				`interesting|fascinating|surprising|turns out`,
				`actually|basically|fundamentally|essentially`,
			},
		},
		{
			Key:         "career",
			Name:        "Career & Business",
			Description: "Career advice, business insights, and professional growth",
			Patterns: []string{
				`career|job|work|business|startup|company|industry`,
				`salary|promotion|interview|hire|hiring|team|leadership`,
				`success|fail|growth|opportunity|market|strategy`,
			},
		},
		{
			Key:         "announcement",
			Name:        "Announcement",
			Description: "Product launches, updates, or news",
			Patterns: []string{
				`announce|launch|release|update|new|introducing|coming soon`,
				`just shipped|now available|check out our`,
				`proud to|excited to|happy to`,
			},
		},
	}
}

// DefaultRules 编译后的内置规则
func DefaultRules() []Rule {
	rules, err := CompileRules(DefaultRuleSpecs())
	if err != nil {
		panic(fmt.Sprintf("内置规则无效: %v", err))
	}
	return rules
}

// CompileRules 验证并编译规则, 所有正则忽略大小写
func CompileRules(specs []models.RuleSpec) ([]Rule, error) {
	validator := utils.NewRuleValidator()
	if err := validator.ValidateRuleSet(specs); err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		rule := Rule{Key: spec.Key, Name: spec.Name, Description: spec.Description}
		for _, src := range spec.Patterns {
			re, err := regexp.Compile("(?i)" + src)
			if err != nil {
				return nil, &models.ValidationError{Field: "patterns", RuleKey: spec.Key, Reason: err.Error()}
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ExportSpecs 把编译后的规则还原为声明形式
func ExportSpecs(rules []Rule) []models.RuleSpec {
	specs := make([]models.RuleSpec, 0, len(rules))
	for _, r := range rules {
		spec := models.RuleSpec{Key: r.Key, Name: r.Name, Description: r.Description}
		for _, p := range r.Patterns {
			src := p.String()
			if len(src) > 4 && src[:4] == "(?i)" {
				src = src[4:]
			}
			spec.Patterns = append(spec.Patterns, src)
		}
		specs = append(specs, spec)
	}
	return specs
}
