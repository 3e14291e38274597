// Package extract 把当前可见的书签条目映射为 models.Record
//
// 页面结构的知识全部集中在 Selectors 中, 站点改版时只需要替换一组选择器.
// RodAdapter 从浏览器标签页取出渲染后的HTML, DOMParser 负责解析, 两者可以分开测试.
package extract

import (
	"context"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

// Extractor 提取当前可见的条目
//
// 返回顺序与页面从上到下的顺序一致, 同一条目在不同调用中可能重复出现.
type Extractor interface {
	ExtractVisible(ctx context.Context) ([]models.Record, error)
}

// Selectors 页面结构选择器
type Selectors struct {
	Container   string // 条目容器
	StatusLink  string // 条目permalink
	UserLink    string // 作者链接
	Text        string // 正文
	Time        string // 时间 (读取datetime属性)
	Replies     string
	Retweets    string
	Likes       string
	Views       string
	Photo       string // 图片容器 (读取其中img的src)
	Links       string // 所有链接
	Quoted      string // 引用条目容器
	StatusToken string // permalink中ID之前的路径片段
}

// DefaultSelectors 当前站点版本的选择器
func DefaultSelectors() Selectors {
	return Selectors{
		Container:   `article[data-testid="tweet"]`,
		StatusLink:  `a[href*="/status/"]`,
		UserLink:    `a[href^="/"][role="link"]`,
		Text:        `[data-testid="tweetText"]`,
		Time:        `time`,
		Replies:     `[data-testid="reply"]`,
		Retweets:    `[data-testid="retweet"]`,
		Likes:       `[data-testid="like"]`,
		Views:       `a[href$="/analytics"]`,
		Photo:       `[data-testid="tweetPhoto"]`,
		Links:       `a[href]`,
		Quoted:      `[data-testid="quotedTweet"]`,
		StatusToken: "/status/",
	}
}
