package extract

import (
	"context"
	"fmt"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// PageSource 提供渲染后的页面内容
// browser.Session 实现了该接口
type PageSource interface {
	HTML(ctx context.Context) (string, error)
	Location(ctx context.Context) (string, error)
}

// RodAdapter 从浏览器标签页提取可见条目
type RodAdapter struct {
	source PageSource
	parser *DOMParser
}

// NewRodAdapter 创建提取适配器
func NewRodAdapter(source PageSource, parser *DOMParser) *RodAdapter {
	return &RodAdapter{source: source, parser: parser}
}

// ExtractVisible 实现 Extractor 接口
func (a *RodAdapter) ExtractVisible(ctx context.Context) ([]models.Record, error) {
	location, err := a.source.Location(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取页面地址失败: %w", err)
	}

	content, err := a.source.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取页面HTML失败: %w", err)
	}

	records, err := a.parser.Parse(content, location)
	if err != nil {
		return nil, err
	}

	utils.Debugf("当前可见条目: %d (页面 %d 字节)", len(records), len(content))
	return records, nil
}
