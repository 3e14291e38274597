package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

// Reporter 报告生成器
type Reporter struct {
	reportsDir string
}

// NewReporter 创建报告生成器
func NewReporter(reportsDir string) *Reporter {
	return &Reporter{reportsDir: reportsDir}
}

// GenerateRunReport 保存一次收集的报告, 文件名带上运行ID
func (r *Reporter) GenerateRunReport(report *models.RunReport) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	filename := fmt.Sprintf("run_%s.json", report.RunID)
	if err := r.saveJSONReport(filename, report); err != nil {
		return "", err
	}
	if err := r.saveJSONReport("latest_run.json", report); err != nil {
		return "", err
	}

	path := filepath.Join(r.reportsDir, filename)
	Infof("✅ 报告已生成: %s", path)
	return path, nil
}

// GenerateClassificationReport 保存分类汇总
func (r *Reporter) GenerateClassificationReport(summary *models.ClassificationSummary) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}
	if err := r.saveJSONReport("classification.json", summary); err != nil {
		return "", err
	}
	return filepath.Join(r.reportsDir, "classification.json"), nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(filename string, data interface{}) error {
	path := filepath.Join(r.reportsDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// PrintClassificationSummary 以表格形式输出分类汇总
func PrintClassificationSummary(w io.Writer, summary models.ClassificationSummary, names map[string]string) {
	fmt.Fprintf(w, "\n📊 分类汇总 (共 %d 条)\n", summary.Total)
	fmt.Fprintf(w, "%s\n", "────────────────────────────────────────")
	for _, label := range summary.Labels {
		name := names[label]
		if name == "" {
			name = label
		}
		fmt.Fprintf(w, "%-20s %5d\n", name, summary.Counts[label])
		for _, ex := range summary.Examples[label] {
			fmt.Fprintf(w, "    @%s: %s\n", ex.Handle, ex.Excerpt)
		}
	}
	fmt.Fprintf(w, "%s\n", "────────────────────────────────────────")
	fmt.Fprintf(w, "多类别: %d  无类别: %d\n", summary.MultiLabel, summary.Unlabeled)
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
