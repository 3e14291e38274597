package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/bookmarkscope/internal/enrich"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/service"
	"github.com/RecoveryAshes/bookmarkscope/internal/snapshot"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// enrich 参数
var (
	enrichOutput string
	enrichModel  string
	enrichBatch  int
	noProgress   bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "调用语言模型为每个书签生成一句话描述",
	Long: `分批调用 Anthropic Messages API, 为快照中的每个条目生成描述.
批内并发, 批与批之间等待 enrich.batch_delay. 单条失败时描述为
"Failed to analyze tweet" 且 description_status 为 failed, 不影响其他条目.
每批完成后都会保存一次结果.

API密钥从 ANTHROPIC_API_KEY 或 BOOKMARKSCOPE_ENRICH_API_KEY 读取 (支持 .env).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.Enrich
		if enrichOutput != "" {
			cfg.OutputPath = enrichOutput
		}
		if enrichModel != "" {
			cfg.Model = enrichModel
		}
		if enrichBatch > 0 {
			cfg.BatchSize = enrichBatch
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("描述配置无效: %w", err)
		}

		svc := service.New(nil, snapshotInput(), appConfig.Service.CacheTTL)
		corpus, err := svc.Corpus(cmd.Context())
		if err != nil {
			return err
		}

		enricher := enrich.NewBatchEnricher(enrich.NewAnthropicDescriber(cfg), cfg.BatchSize, cfg.BatchDelay).
			WithProgress(!noProgress).
			OnBatch(func(done []models.EnrichedRecord) error {
				return snapshot.WriteJSON(cfg.OutputPath, done)
			})

		results, summary, err := enricher.Enrich(cmd.Context(), corpus.Records())
		if err != nil {
			utils.Warnf("描述生成中断, 已完成 %d/%d 条", len(results), corpus.Len())
			return err
		}

		if err := snapshot.WriteJSON(cfg.OutputPath, results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 已生成 %d 条描述 (失败 %d), 保存到 %s\n",
			summary.SuccessCount, summary.FailCount, cfg.OutputPath)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "", "结果文件路径 (默认使用配置 enrich.output_path)")
	enrichCmd.Flags().StringVar(&enrichModel, "model", "", "模型名称")
	enrichCmd.Flags().IntVar(&enrichBatch, "batch-size", 0, "每批条数 (1-50)")
	enrichCmd.Flags().BoolVar(&noProgress, "no-progress", false, "不显示进度条")

	rootCmd.AddCommand(enrichCmd)
}
