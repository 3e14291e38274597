package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/service"
)

var topK int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "快照统计与作者排行",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateTopK(topK); err != nil {
			return err
		}

		svc := service.New(nil, snapshotInput(), appConfig.Service.CacheTTL)
		stats, err := svc.Stats(cmd.Context(), topK)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("序列化JSON失败: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintln(out, "\n==================================================")
		fmt.Fprintln(out, "📊 快照统计")
		fmt.Fprintln(out, "==================================================")
		fmt.Fprintf(out, "总条目数: %d\n", stats.Total)
		fmt.Fprintf(out, "🖼️  含图片: %d\n", stats.WithPhotos)
		fmt.Fprintf(out, "💬 含引用: %d\n", stats.WithQuotes)
		fmt.Fprintf(out, "🔗 含外链: %d\n", stats.WithLinks)
		fmt.Fprintf(out, "📅 时间范围: %s ~ %s\n",
			models.StringValue(stats.DateRange.Earliest), models.StringValue(stats.DateRange.Latest))

		fmt.Fprintf(out, "\n作者排行 (前%d)\n", topK)
		printTopUsers(out, stats.TopUsers)
		fmt.Fprintln(out, "==================================================")
		return nil
	},
}

// printTopUsers 输出作者排行, 没有显示名称时用 - 占位
func printTopUsers(w io.Writer, users []models.UserAggregate) {
	for i, u := range users {
		name := models.StringValue(u.Name)
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%3d. @%-20s %-24s %5d\n", i+1, u.Handle, name, u.Count)
	}
}

func init() {
	statsCmd.Flags().IntVar(&topK, "top", 10, "作者排行数量")

	rootCmd.AddCommand(statsCmd)
}
