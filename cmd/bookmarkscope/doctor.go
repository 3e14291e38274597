package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RecoveryAshes/bookmarkscope/internal/browser"
	"github.com/RecoveryAshes/bookmarkscope/internal/snapshot"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "检查运行环境",
	Long:  "检查浏览器调试端点是否可达、系统资源、快照文件和API密钥配置.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "==============================================")
		fmt.Fprintln(out, "  bookmarkscope 环境检查")
		fmt.Fprintln(out, "==============================================")

		allOK := true

		fmt.Fprintf(out, "✅ Go版本: %s\n", runtime.Version())
		fmt.Fprintf(out, "✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

		// 浏览器调试端点
		endpoint := appConfig.Collect.Endpoint
		if wsURL, err := browser.ResolveEndpoint(endpoint); err != nil {
			fmt.Fprintf(out, "❌ 无法连接浏览器调试端点 %s: %v\n", endpoint, err)
			fmt.Fprintln(out, "   请使用 --remote-debugging-port=9222 启动浏览器")
			allOK = false
		} else {
			fmt.Fprintf(out, "✅ 浏览器调试端点: %s\n", wsURL)
		}

		// 系统资源
		monitor := browser.NewResourceMonitor(browser.ResourceMonitorConfig{
			MinAvailableMemory: int64(appConfig.Resource.MinAvailableMemoryMB) * 1024 * 1024,
			CPULoadThreshold:   appConfig.Resource.CPULoadThreshold,
		})
		status := monitor.GetMemoryStatus()
		if ok, reason := monitor.CheckResourceAvailability(); ok {
			fmt.Fprintf(out, "✅ 系统资源: 可用内存 %dMB, CPU %.1f%% (%s)\n",
				status.AvailableMemory/(1024*1024), status.CPUUsage, status.MemoryPressure)
		} else {
			fmt.Fprintf(out, "⚠️  系统资源紧张: %s\n", reason)
		}

		// 快照
		if corpus, err := snapshot.Read(appConfig.Collect.SnapshotPath); err == nil {
			fmt.Fprintf(out, "✅ 快照文件: %s (%d 条)\n", appConfig.Collect.SnapshotPath, corpus.Len())
		} else if _, statErr := os.Stat(appConfig.Collect.SnapshotPath); os.IsNotExist(statErr) {
			fmt.Fprintf(out, "⚠️  快照文件不存在: %s (运行 collect 生成)\n", appConfig.Collect.SnapshotPath)
		} else {
			fmt.Fprintf(out, "❌ 快照文件无法读取: %v\n", err)
			allOK = false
		}

		// API密钥
		if appConfig.Enrich.APIKey != "" {
			fmt.Fprintf(out, "✅ API密钥: %s\n", utils.NewSecretRedactor().RedactValue("api_key", appConfig.Enrich.APIKey))
		} else {
			fmt.Fprintln(out, "⚠️  未配置API密钥 - enrich 命令不可用")
		}

		fmt.Fprintln(out, "==============================================")
		if !allOK {
			return fmt.Errorf("环境检查未通过")
		}
		fmt.Fprintln(out, "✅ 环境检查通过")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "查看生效配置",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "以YAML输出生效配置 (敏感项已脱敏)",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := utils.NewSecretRedactor().RedactMap(appConfig.Settings())
		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("序列化配置失败: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(doctorCmd, configCmd)
}
