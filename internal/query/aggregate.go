package query

import (
	"sort"
	"time"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

// UserAggregates 按作者handle统计条目数, 数量降序
//
// 数量相同的作者按首次出现顺序排列. topK <= 0 返回全部.
// 没有handle的条目不参与统计.
func UserAggregates(corpus *models.Corpus, topK int) []models.UserAggregate {
	counts := make(map[string]int)
	names := make(map[string]*string)
	order := make([]string, 0)

	corpus.Each(func(_ int, r models.Record) bool {
		if r.User.Handle == nil || *r.User.Handle == "" {
			return true
		}
		h := *r.User.Handle
		if _, ok := counts[h]; !ok {
			order = append(order, h)
			names[h] = r.User.Name
		}
		counts[h]++
		return true
	})

	aggs := make([]models.UserAggregate, 0, len(order))
	for _, h := range order {
		aggs = append(aggs, models.UserAggregate{Handle: h, Name: names[h], Count: counts[h]})
	}
	sort.SliceStable(aggs, func(i, j int) bool {
		return aggs[i].Count > aggs[j].Count
	})

	if topK > 0 && len(aggs) > topK {
		aggs = aggs[:topK]
	}
	return aggs
}

// Stats 语料统计
func Stats(corpus *models.Corpus, topK int) models.CorpusStats {
	stats := models.CorpusStats{
		Total:    corpus.Len(),
		TopUsers: UserAggregates(corpus, topK),
	}

	var earliest, latest *models.Record
	var earliestTS, latestTS time.Time

	corpus.Each(func(_ int, r models.Record) bool {
		if r.HasPhotos() {
			stats.WithPhotos++
		}
		if r.HasQuote() {
			stats.WithQuotes++
		}
		if r.HasLinks() {
			stats.WithLinks++
		}

		if ts, ok := r.PublishedAt(); ok {
			rec := r
			if earliest == nil || ts.Before(earliestTS) {
				earliest, earliestTS = &rec, ts
			}
			if latest == nil || ts.After(latestTS) {
				latest, latestTS = &rec, ts
			}
		}
		return true
	})

	if earliest != nil {
		stats.DateRange.Earliest = earliest.Timestamp
		stats.DateRange.Latest = latest.Timestamp
	}
	return stats
}
