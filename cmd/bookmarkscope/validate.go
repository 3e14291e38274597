package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/query"
)

// ValidateCollectFlags 验证 collect 命令的参数
// 空值/0 表示沿用配置文件
func ValidateCollectFlags(targetURL string, maxStall int) error {
	if targetURL != "" {
		if err := models.ValidateURL(targetURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	if maxStall < 0 || maxStall > 1000 {
		return fmt.Errorf("连续无新增轮数必须在1-1000之间,当前值: %d", maxStall)
	}

	return nil
}

// ValidateSearchFlags 验证 search 命令的参数
func ValidateSearchFlags(mediaType string, limit int) error {
	if mediaType != "" {
		switch strings.ToLower(mediaType) {
		case query.MediaPhotos, query.MediaLinks, query.MediaQuotes:
		default:
			return fmt.Errorf("无效的媒体类型: %s (有效值: %s, %s, %s)",
				mediaType, query.MediaPhotos, query.MediaLinks, query.MediaQuotes)
		}
	}

	if limit < 0 {
		return fmt.Errorf("结果数量不能为负数,当前值: %d", limit)
	}

	return nil
}

// ValidateTopK 验证排行数量
func ValidateTopK(topK int) error {
	if topK < 1 || topK > 1000 {
		return fmt.Errorf("排行数量必须在1-1000之间,当前值: %d", topK)
	}
	return nil
}

// NormalizeURL 规范化URL
func NormalizeURL(urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	// 如果没有协议,默认使用https
	if parsed.Scheme == "" {
		urlStr = "https://" + urlStr
		parsed, err = url.Parse(urlStr)
		if err != nil {
			return "", err
		}
	}

	return parsed.String(), nil
}
