package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/bookmarkscope/internal/classify"
	"github.com/RecoveryAshes/bookmarkscope/internal/config"
	"github.com/RecoveryAshes/bookmarkscope/internal/service"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// classify 参数
var (
	rulesFile   string
	labelFilter string
	writeReport bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "按规则表对快照分类",
	Long: `按规则表对每个条目打标签 (一个条目可以有多个标签), 输出每类数量和示例.
含图片的条目额外标记为 visual, 含外部链接的标记为 resource.

使用 --label 时只列出该类别的条目.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		svc := service.New(nil, snapshotInput(), appConfig.Service.CacheTTL)
		corpus, err := svc.Corpus(cmd.Context())
		if err != nil {
			return err
		}

		if labelFilter != "" {
			if !hasLabel(engine, labelFilter) {
				return fmt.Errorf("未知类别: %s (可用: %v)", labelFilter, engine.Labels())
			}
			return printRecords(cmd.OutOrStdout(), engine.ByLabel(corpus.Records(), labelFilter), jsonOutput)
		}

		summary := engine.Summarize(corpus.Records())

		if writeReport {
			reporter := utils.NewReporter(appConfig.Output.ReportsDir)
			path, err := reporter.GenerateClassificationReport(&summary)
			if err != nil {
				return err
			}
			utils.Infof("✅ 分类报告已保存: %s", path)
		}

		if jsonOutput {
			data, err := summary.ToJSON()
			if err != nil {
				return fmt.Errorf("序列化JSON失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		utils.PrintClassificationSummary(cmd.OutOrStdout(), summary, labelNames(engine))
		return nil
	},
}

// newEngine 按 --rules 或配置中的规则文件创建分类引擎, 都未指定时使用内置规则
func newEngine() (*classify.Engine, error) {
	path := rulesFile
	if path == "" {
		path = appConfig.Classify.RulesFile
	}

	var rules []classify.Rule
	if path != "" {
		loaded, err := config.NewRulesLoader(path).LoadRules()
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	var opts []classify.Option
	if appConfig.Classify.ExampleLimit > 0 {
		opts = append(opts, classify.WithExampleLimit(appConfig.Classify.ExampleLimit))
	}
	if appConfig.Classify.ExcerptWidth > 0 {
		opts = append(opts, classify.WithExcerptWidth(appConfig.Classify.ExcerptWidth))
	}
	return classify.NewEngine(rules, opts...), nil
}

func hasLabel(engine *classify.Engine, label string) bool {
	for _, l := range engine.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// labelNames 类别键 -> 显示名称
func labelNames(engine *classify.Engine) map[string]string {
	names := map[string]string{
		classify.LabelVisual:   "Visual Content",
		classify.LabelResource: "External Resources",
	}
	for _, l := range engine.Labels() {
		if r, ok := engine.Rule(l); ok && r.Name != "" {
			names[l] = r.Name
		}
	}
	return names
}

func init() {
	classifyCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "规则文件路径 (YAML)")
	classifyCmd.Flags().StringVarP(&labelFilter, "label", "l", "", "只列出该类别的条目")
	classifyCmd.Flags().BoolVar(&writeReport, "report", false, "把汇总写入报告目录")

	rootCmd.AddCommand(classifyCmd)
}
