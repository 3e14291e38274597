package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/query"
	"github.com/RecoveryAshes/bookmarkscope/internal/service"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// 读取快照的公共参数
var (
	inputPath  string
	jsonOutput bool
)

// search 参数
var (
	fromDate      string
	toDate        string
	byUser        string
	mediaType     string
	caseSensitive bool
	noNested      bool
	limit         int
)

var searchCmd = &cobra.Command{
	Use:   "search [关键字]",
	Short: "在快照中搜索书签",
	Long: `按关键字搜索正文 (默认包含引用条目的正文, 不区分大小写),
可以再按时间范围、作者和媒体类型过滤. 不给关键字时只按过滤条件筛选.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateSearchFlags(mediaType, limit); err != nil {
			return err
		}

		from, err := query.ParseBound(fromDate)
		if err != nil {
			return err
		}
		to, err := query.ParseUpperBound(toDate)
		if err != nil {
			return err
		}

		opts := query.DefaultOptions()
		opts.CaseSensitive = caseSensitive
		opts.IncludeNested = !noNested
		opts.From, opts.To = from, to

		svc := service.New(nil, snapshotInput(), appConfig.Service.CacheTTL).WithSearchOptions(opts)

		var q string
		if len(args) == 1 {
			q = args[0]
		}
		results, err := svc.Search(cmd.Context(), q)
		if err != nil {
			return err
		}

		if byUser != "" {
			results = query.ByUser(models.NewCorpus(results), byUser)
		}
		if mediaType != "" {
			results, err = query.ByMediaType(models.NewCorpus(results), strings.ToLower(mediaType))
			if err != nil {
				return err
			}
		}

		utils.Debugf("搜索 %q: %d 条结果", q, len(results))
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}
		return printRecords(cmd.OutOrStdout(), results, jsonOutput)
	},
}

// snapshotInput 命令行指定的快照路径, 否则使用配置
func snapshotInput() string {
	if inputPath != "" {
		return inputPath
	}
	return appConfig.Collect.SnapshotPath
}

// printRecords 输出条目列表
func printRecords(w io.Writer, records []models.Record, asJSON bool) error {
	if asJSON {
		if records == nil {
			records = []models.Record{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化JSON失败: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	for _, r := range records {
		fmt.Fprintf(w, "@%s  %s\n", r.HandleOr("?"), models.StringValue(r.Timestamp))
		fmt.Fprintf(w, "    %s\n", utils.Excerpt(strings.ReplaceAll(r.Text, "\n", " "), 120))
		if r.QuotedTweet != nil {
			fmt.Fprintf(w, "    ↳ %s\n", utils.Excerpt(strings.ReplaceAll(r.QuotedTweet.Text, "\n", " "), 100))
		}
		if r.URL != nil {
			fmt.Fprintf(w, "    %s\n", *r.URL)
		}
	}
	fmt.Fprintf(w, "\n共 %d 条\n", len(records))
	return nil
}

func init() {
	searchCmd.Flags().StringVar(&fromDate, "from", "", "起始时间 (YYYY-MM-DD 或 RFC3339)")
	searchCmd.Flags().StringVar(&toDate, "to", "", "结束时间, 含 (YYYY-MM-DD 包含当天全天, 或 RFC3339)")
	searchCmd.Flags().StringVar(&byUser, "user", "", "作者handle (可带@)")
	searchCmd.Flags().StringVar(&mediaType, "media", "", "媒体类型 (photos|links|quotes)")
	searchCmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "区分大小写")
	searchCmd.Flags().BoolVar(&noNested, "no-nested", false, "不搜索引用条目的正文")
	searchCmd.Flags().IntVarP(&limit, "limit", "n", 0, "最多显示条数 (0为不限)")

	for _, c := range []*cobra.Command{searchCmd, statsCmd, classifyCmd, enrichCmd} {
		c.Flags().StringVarP(&inputPath, "input", "i", "", "快照文件路径 (默认使用配置 collect.snapshot_path)")
	}
	for _, c := range []*cobra.Command{searchCmd, statsCmd, classifyCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "以JSON格式输出")
	}

	rootCmd.AddCommand(searchCmd)
}
