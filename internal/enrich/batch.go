package enrich

import (
	"context"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// BatchEnricher 分批并发生成描述
//
// 批内并发, 批与批之间等待 batchDelay. 单条失败不会中止整批,
// 该条描述替换为 models.FailedDescription.
type BatchEnricher struct {
	describer  Describer
	batchSize  int
	batchDelay time.Duration
	progress   bool

	// 每批完成后回调, 参数为目前为止的全部结果
	onBatch func(done []models.EnrichedRecord) error

	sleep func(ctx context.Context, d time.Duration) error
}

// BatchSummary 描述生成摘要
type BatchSummary struct {
	Total         int
	SuccessCount  int
	FailCount     int
	Batches       int
	TotalDuration float64
}

// NewBatchEnricher 创建批处理器
func NewBatchEnricher(describer Describer, batchSize int, batchDelay time.Duration) *BatchEnricher {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchEnricher{
		describer:  describer,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		sleep:      utils.SleepContext,
	}
}

// WithProgress 显示进度条
func (be *BatchEnricher) WithProgress(show bool) *BatchEnricher {
	be.progress = show
	return be
}

// OnBatch 设置每批完成后的回调 (如保存中间结果)
func (be *BatchEnricher) OnBatch(fn func(done []models.EnrichedRecord) error) *BatchEnricher {
	be.onBatch = fn
	return be
}

// Enrich 处理全部条目, 返回结果与输入顺序一致
// ctx取消时返回已完成的部分和ctx错误
func (be *BatchEnricher) Enrich(ctx context.Context, records []models.Record) ([]models.EnrichedRecord, *BatchSummary, error) {
	utils.Infof("🚀 开始生成描述: %d 条, 每批 %d 条", len(records), be.batchSize)

	summary := &BatchSummary{Total: len(records)}
	done := make([]models.EnrichedRecord, 0, len(records))
	startTime := time.Now()

	var bar *progressbar.ProgressBar
	if be.progress {
		bar = utils.NewProgressBar(len(records), "生成描述")
		defer bar.Finish()
	}

	for start := 0; start < len(records); start += be.batchSize {
		end := start + be.batchSize
		if end > len(records) {
			end = len(records)
		}

		results, err := be.runBatch(ctx, records[start:end], bar)
		if err != nil {
			summary.TotalDuration = time.Since(startTime).Seconds()
			return done, summary, err
		}
		summary.Batches++
		for _, r := range results {
			if r.DescriptionStatus == models.DescriptionOK {
				summary.SuccessCount++
			} else {
				summary.FailCount++
			}
		}
		done = append(done, results...)

		if be.onBatch != nil {
			if err := be.onBatch(done); err != nil {
				utils.Warnf("保存中间结果失败: %v", err)
			}
		}

		if end < len(records) && be.batchDelay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一批...", be.batchDelay.Seconds())
			if err := be.sleep(ctx, be.batchDelay); err != nil {
				summary.TotalDuration = time.Since(startTime).Seconds()
				return done, summary, err
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()
	be.printSummary(summary)
	return done, summary, nil
}

func (be *BatchEnricher) runBatch(ctx context.Context, batch []models.Record, bar *progressbar.ProgressBar) ([]models.EnrichedRecord, error) {
	results := make([]models.EnrichedRecord, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(be.batchSize)

	for i, record := range batch {
		i, record := i, record
		g.Go(func() error {
			desc, err := be.describer.Describe(gctx, record)
			if err != nil {
				id, _ := record.Identity()
				utils.Warnf("❌ 描述失败: %v", models.NewEnrichmentError(id, err))
				results[i] = models.EnrichedRecord{
					Record:            record,
					Description:       models.FailedDescription,
					DescriptionStatus: models.DescriptionFailed,
				}
			} else {
				results[i] = models.EnrichedRecord{
					Record:            record,
					Description:       desc,
					DescriptionStatus: models.DescriptionOK,
				}
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// printSummary 打印摘要
func (be *BatchEnricher) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("📊 描述生成摘要")
	utils.Infof("总条目数: %d (%d 批)", summary.Total, summary.Batches)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")
}
