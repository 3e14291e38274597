package models

import (
	"strings"
	"time"
)

// User 书签作者信息
type User struct {
	Name   *string `json:"name"`   // 显示名称
	Handle *string `json:"handle"` // 账号handle (不含@)
}

// Metrics 互动计数 (保留页面上的原始文本, 如 "1.2K")
type Metrics struct {
	Replies  *string `json:"replies"`
	Retweets *string `json:"retweets"`
	Likes    *string `json:"likes"`
	Views    *string `json:"views"`
}

// Media 附带的图片与外部链接
type Media struct {
	Photos []string `json:"photos"` // 图片地址
	Links  []string `json:"links"`  // 外部链接
}

// QuotedRecord 引用的书签条目 (与Record结构相同, 但不再嵌套)
type QuotedRecord struct {
	ID   *string `json:"id,omitempty"`
	URL  *string `json:"url"`
	Text string  `json:"text"`
	User User    `json:"user"`
}

// Record 一条已收集的书签条目
//
// 除ID与Text外所有字段都可能缺失, 缺失以nil表示并序列化为null.
type Record struct {
	ID          *string       `json:"id"`          // 条目ID, 从permalink中解析
	URL         *string       `json:"url"`         // 条目permalink (绝对地址)
	User        User          `json:"user"`        // 作者
	Text        string        `json:"text"`        // 正文
	Timestamp   *string       `json:"timestamp"`   // 发布时间 (ISO-8601)
	Metrics     Metrics       `json:"metrics"`     // 互动计数
	Media       Media         `json:"media"`       // 媒体
	QuotedTweet *QuotedRecord `json:"quotedTweet"` // 引用条目
}

// Identity 返回条目的去重键
// 没有ID (或ID为空) 的条目视为匿名条目
func (r Record) Identity() (string, bool) {
	if r.ID == nil || *r.ID == "" {
		return "", false
	}
	return *r.ID, true
}

// HasPhotos 是否包含图片
func (r Record) HasPhotos() bool {
	return len(r.Media.Photos) > 0
}

// HasLinks 是否包含外部链接
func (r Record) HasLinks() bool {
	return len(r.Media.Links) > 0
}

// HasQuote 是否包含引用条目
func (r Record) HasQuote() bool {
	return r.QuotedTweet != nil
}

// QuotedText 返回引用条目正文, 没有引用时返回空串
func (r Record) QuotedText() string {
	if r.QuotedTweet == nil {
		return ""
	}
	return r.QuotedTweet.Text
}

// ContentText 正文与引用正文拼接后的小写文本, 用于分类
func (r Record) ContentText() string {
	return strings.ToLower(r.Text + " " + r.QuotedText())
}

// HandleOr 返回作者handle, 缺失时返回fallback
func (r Record) HandleOr(fallback string) string {
	if r.User.Handle == nil || *r.User.Handle == "" {
		return fallback
	}
	return *r.User.Handle
}

// PublishedAt 解析发布时间
// 时间戳缺失或无法解析时返回false
func (r Record) PublishedAt() (time.Time, bool) {
	if r.Timestamp == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, *r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}

// StringValue 解引用, nil返回空串
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
