// Package enrich 调用语言模型为书签条目生成一句话语义描述
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

const systemPrompt = `You analyze saved social media posts. Describe what the post is about, ` +
	`what kind of content it is, and why someone might have bookmarked it. ` +
	`Respond only with JSON in the form {"description": "..."}.`

// Describer 为单个条目生成描述
type Describer interface {
	Describe(ctx context.Context, record models.Record) (string, error)
}

// AnthropicDescriber 基于Anthropic Messages API的描述器
type AnthropicDescriber struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicDescriber 创建描述器
func NewAnthropicDescriber(cfg models.EnrichConfig, opts ...option.RequestOption) *AnthropicDescriber {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &AnthropicDescriber{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: 0.2,
	}
}

// Describe 实现 Describer 接口
func (d *AnthropicDescriber) Describe(ctx context.Context, record models.Record) (string, error) {
	msg, err := d.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(d.model),
		MaxTokens:   d.maxTokens,
		Temperature: anthropic.Float(d.temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(FormatPrompt(record))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("调用模型失败: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}

	result := ParseDescription(sb.String())
	if !result.Parsed {
		return "", fmt.Errorf("无法解析模型输出: %q", utils.Excerpt(result.Raw, 200))
	}
	return result.Description, nil
}

// FormatPrompt 把条目格式化为模型输入
func FormatPrompt(record models.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tweet: %s\n", record.Text)
	if record.QuotedTweet != nil {
		fmt.Fprintf(&sb, "Quoted Tweet: %s\n", record.QuotedTweet.Text)
	}
	if n := len(record.Media.Photos); n > 0 {
		fmt.Fprintf(&sb, "Images: %d photos\n", n)
	}
	if len(record.Media.Links) > 0 {
		sb.WriteString("Links:\n")
		for _, link := range record.Media.Links {
			fmt.Fprintf(&sb, "- %s\n", link)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
