// Package query 在已加载的语料上做只读查询
package query

import (
	"strings"
	"time"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

// Options 搜索选项
type Options struct {
	CaseSensitive bool       // 区分大小写 (默认不区分)
	IncludeNested bool       // 同时搜索引用条目正文
	From          *time.Time // 起始时间 (含)
	To            *time.Time // 结束时间 (含)
}

// DefaultOptions 默认选项: 不区分大小写, 包含引用正文
func DefaultOptions() Options {
	return Options{IncludeNested: true}
}

// Search 按子串搜索正文 (及引用正文), 再按时间范围过滤
//
// 只有给出边界且条目时间戳可解析时才会按时间排除条目.
func Search(corpus *models.Corpus, q string, opts Options) []models.Record {
	needle := q
	if !opts.CaseSensitive {
		needle = strings.ToLower(q)
	}

	out := make([]models.Record, 0)
	corpus.Each(func(_ int, r models.Record) bool {
		if matchesText(r, needle, opts) && withinRange(r, opts.From, opts.To) {
			out = append(out, r)
		}
		return true
	})
	return out
}

func matchesText(r models.Record, needle string, opts Options) bool {
	haystacks := []string{r.Text}
	if opts.IncludeNested && r.QuotedTweet != nil {
		haystacks = append(haystacks, r.QuotedTweet.Text)
	}

	for _, h := range haystacks {
		if !opts.CaseSensitive {
			h = strings.ToLower(h)
		}
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func withinRange(r models.Record, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	ts, ok := r.PublishedAt()
	if !ok {
		return true
	}
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}

const dateOnly = "2006-01-02"

// ParseBound 解析起始时间边界, 支持RFC3339和YYYY-MM-DD (当天0点, UTC)
// 空串返回nil
func ParseBound(value string) (*time.Time, error) {
	ts, _, err := parseBound(value)
	return ts, err
}

// ParseUpperBound 解析结束时间边界
// YYYY-MM-DD 取当天最后一纳秒, 使当天的条目都在范围内
func ParseUpperBound(value string) (*time.Time, error) {
	ts, dayOnly, err := parseBound(value)
	if err != nil || ts == nil || !dayOnly {
		return ts, err
	}
	end := ts.Add(24*time.Hour - time.Nanosecond)
	return &end, nil
}

func parseBound(value string) (*time.Time, bool, error) {
	if value == "" {
		return nil, false, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, false, nil
	}
	if ts, err := time.Parse(dateOnly, value); err == nil {
		return &ts, true, nil
	}
	return nil, false, models.NewInvalidQueryError("无法解析时间: " + value)
}

// ByDate 按时间范围过滤 (不做文本匹配)
func ByDate(corpus *models.Corpus, from, to *time.Time) []models.Record {
	out := make([]models.Record, 0)
	corpus.Each(func(_ int, r models.Record) bool {
		if withinRange(r, from, to) {
			out = append(out, r)
		}
		return true
	})
	return out
}

// ByUser 返回handle匹配的条目 (不区分大小写, 可带@)
func ByUser(corpus *models.Corpus, handle string) []models.Record {
	handle = strings.TrimPrefix(handle, "@")
	out := make([]models.Record, 0)
	corpus.Each(func(_ int, r models.Record) bool {
		if r.User.Handle != nil && strings.EqualFold(*r.User.Handle, handle) {
			out = append(out, r)
		}
		return true
	})
	return out
}

// 媒体类型
const (
	MediaPhotos = "photos"
	MediaLinks  = "links"
	MediaQuotes = "quotes"
)

// ByMediaType 返回带指定媒体的条目
// 未知类型返回 InvalidQueryError
func ByMediaType(corpus *models.Corpus, mediaType string) ([]models.Record, error) {
	var pred func(models.Record) bool
	switch mediaType {
	case MediaPhotos:
		pred = models.Record.HasPhotos
	case MediaLinks:
		pred = models.Record.HasLinks
	case MediaQuotes:
		pred = models.Record.HasQuote
	default:
		return nil, models.NewInvalidQueryError("未知媒体类型: " + mediaType)
	}

	out := make([]models.Record, 0)
	corpus.Each(func(_ int, r models.Record) bool {
		if pred(r) {
			out = append(out, r)
		}
		return true
	})
	return out, nil
}
