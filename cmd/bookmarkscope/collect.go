package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/bookmarkscope/internal/browser"
	"github.com/RecoveryAshes/bookmarkscope/internal/core"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/service"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// collect 参数
var (
	endpoint     string
	targetURL    string
	snapshotPath string
	maxStall     int
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "连接浏览器并收集书签",
	Long: `连接调试端口上已登录的浏览器, 打开书签页并不断滚动,
直到连续若干轮没有新条目为止. 结果按首次出现顺序写入快照文件 (覆盖).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if targetURL != "" {
			normalized, err := NormalizeURL(targetURL)
			if err != nil {
				return fmt.Errorf("无效的目标URL: %w", err)
			}
			targetURL = normalized
		}
		if err := ValidateCollectFlags(targetURL, maxStall); err != nil {
			return err
		}
		appConfig.MergeCLIFlags(endpoint, targetURL, snapshotPath, maxStall)

		svc := newCollectService(appConfig)
		outcome := svc.RunCollection(cmd.Context(), appConfig.Collect.TargetURL)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n==================================================")
		fmt.Fprintln(out, "📊 收集结果")
		fmt.Fprintln(out, "==================================================")
		fmt.Fprintf(out, "状态: %s\n", outcome.Status)
		fmt.Fprintf(out, "%s\n", outcome.Message)

		switch outcome.Status {
		case models.RunStatusSuccess:
			fmt.Fprintf(out, "✅ 收集条目: %d\n", outcome.Count)
			fmt.Fprintf(out, "💾 快照文件: %s\n", appConfig.Collect.SnapshotPath)
			fmt.Fprintln(out, "==================================================")
			utils.Info("✨ 收集任务完成!")
			return nil
		case models.RunStatusLoginRequired:
			fmt.Fprintln(out, "==================================================")
			return fmt.Errorf("浏览器未登录")
		default:
			fmt.Fprintln(out, "==================================================")
			return fmt.Errorf("收集失败")
		}
	},
}

// newCollectService 按配置组装 连接器 -> 协调器 -> 服务
func newCollectService(config *core.Config) *service.Service {
	monitor := browser.NewResourceMonitor(browser.ResourceMonitorConfig{
		MinAvailableMemory: int64(config.Resource.MinAvailableMemoryMB) * 1024 * 1024,
		CPULoadThreshold:   config.Resource.CPULoadThreshold,
	})
	connector := browser.NewConnector(browser.ConnectorConfig{
		UserAgent:      config.Collect.UserAgent,
		ViewportWidth:  config.Collect.ViewportWidth,
		ViewportHeight: config.Collect.ViewportHeight,
	}, monitor)

	runner := core.NewRunner(config.Collect, core.ConnectorSource(connector), utils.NewReporter(config.Output.ReportsDir))
	return service.New(runner, config.Collect.SnapshotPath, config.Service.CacheTTL)
}

func init() {
	collectCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "浏览器调试端点 (默认使用配置 collect.endpoint)")
	collectCmd.Flags().StringVarP(&targetURL, "url", "u", "", "书签页地址 (默认使用配置 collect.target_url)")
	collectCmd.Flags().StringVarP(&snapshotPath, "output", "o", "", "快照文件路径")
	collectCmd.Flags().IntVar(&maxStall, "max-stall", 0, "连续无新增轮数上限 (1-1000)")

	rootCmd.AddCommand(collectCmd)
}
