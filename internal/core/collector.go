package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	om "github.com/wk8/go-ordered-map/v2"

	"github.com/RecoveryAshes/bookmarkscope/internal/extract"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// Paginator 触发页面加载更多条目
type Paginator interface {
	ScrollToEnd(ctx context.Context) error
}

// CollectorConfig 收集循环参数
type CollectorConfig struct {
	MaxStallIterations int           // 连续无新增轮数上限
	SettleDelay        time.Duration // 每轮滚动后的等待
}

// CollectResult 收集结果
type CollectResult struct {
	Records    []models.Record // 按首次出现顺序
	Admitted   int             // 收录条目数 (含匿名条目)
	Anonymous  int             // 无ID条目数
	Iterations int             // 提取轮数
}

// Collector 反复 提取 -> 去重 -> 滚动, 直到连续 MaxStallIterations 轮没有新条目
//
// 有ID的条目只在首次出现时收录. 没有ID的条目无法去重, 每次出现都会收录.
// 出错时丢弃已收集的条目并返回错误.
type Collector struct {
	extractor extract.Extractor
	paginator Paginator
	config    CollectorConfig
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewCollector 创建收集器
func NewCollector(extractor extract.Extractor, paginator Paginator, config CollectorConfig) *Collector {
	if config.MaxStallIterations < 1 {
		config.MaxStallIterations = 1
	}
	return &Collector{
		extractor: extractor,
		paginator: paginator,
		config:    config,
		sleep:     utils.SleepContext,
	}
}

// Collect 执行收集循环
func (c *Collector) Collect(ctx context.Context) (*CollectResult, error) {
	acc := om.New[string, models.Record]()
	result := &CollectResult{}
	stall := 0

	for stall < c.config.MaxStallIterations {
		if err := ctx.Err(); err != nil {
			return nil, models.NewExtractionError(result.Iterations+1, err)
		}
		result.Iterations++

		batch, err := c.extractor.ExtractVisible(ctx)
		if err != nil {
			return nil, models.NewExtractionError(result.Iterations, err)
		}

		admitted := 0
		for _, record := range batch {
			id, ok := record.Identity()
			if !ok {
				acc.Set("anonymous:"+uuid.NewString(), record)
				result.Anonymous++
				admitted++
				utils.Debugf("收录匿名条目 (第%d轮)", result.Iterations)
				continue
			}
			if _, exists := acc.Get(id); exists {
				continue
			}
			acc.Set(id, record)
			admitted++
		}

		if admitted == 0 {
			stall++
		} else {
			stall = 0
		}
		result.Admitted += admitted

		utils.Infof("📥 第%d轮: 可见 %d, 新增 %d, 累计 %d (连续无新增 %d/%d)",
			result.Iterations, len(batch), admitted, acc.Len(), stall, c.config.MaxStallIterations)

		if err := c.paginator.ScrollToEnd(ctx); err != nil {
			return nil, models.NewPaginationError(result.Iterations, err)
		}
		if err := c.sleep(ctx, c.config.SettleDelay); err != nil {
			return nil, models.NewPaginationError(result.Iterations, err)
		}
	}

	result.Records = make([]models.Record, 0, acc.Len())
	for pair := acc.Oldest(); pair != nil; pair = pair.Next() {
		result.Records = append(result.Records, pair.Value)
	}

	utils.Infof("✅ 收集完成: %d 条 (%d 轮, 匿名 %d)", len(result.Records), result.Iterations, result.Anonymous)
	return result, nil
}
