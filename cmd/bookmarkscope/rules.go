package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/bookmarkscope/internal/classify"
	"github.com/RecoveryAshes/bookmarkscope/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "管理分类规则文件",
}

var rulesExportCmd = &cobra.Command{
	Use:   "export [路径]",
	Short: "导出内置规则为YAML",
	Long:  "不给路径时输出到终端, 给出路径时写入文件 (可在此基础上修改后通过 --rules 或 classify.rules_file 使用).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs := classify.ExportSpecs(classify.DefaultRules())

		if len(args) == 0 {
			data, err := config.MarshalRules(specs)
			if err != nil {
				return fmt.Errorf("序列化规则失败: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		if err := config.WriteRuleFile(args[0], specs); err != nil {
			return fmt.Errorf("写入规则文件失败: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 已导出 %d 条规则: %s\n", len(specs), args[0])
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [路径]",
	Short: "验证规则文件",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appConfig.Classify.RulesFile
		if len(args) == 1 {
			path = args[0]
		}
		loader := config.NewRulesLoader(path)

		rules, err := loader.LoadRules()
		if err != nil {
			return fmt.Errorf("规则验证失败: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ 规则验证通过: %s (%d 条)\n", loader.Path(), len(rules))
		for _, r := range rules {
			fmt.Fprintf(out, "  %-14s %-16s %d 个模式\n", r.Key, r.Name, len(r.Patterns))
		}
		return nil
	},
}

var rulesInitCmd = &cobra.Command{
	Use:   "init [路径]",
	Short: "生成默认规则文件 (已存在时不覆盖)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		loader := config.NewRulesLoader(path)
		if err := loader.EnsureConfigExists(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "规则文件: %s\n", loader.Path())
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesInitCmd, rulesExportCmd, rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}
