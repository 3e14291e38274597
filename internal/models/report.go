package models

import (
	"encoding/json"
	"time"
)

// RunStats 收集统计
type RunStats struct {
	Iterations int     `json:"iterations"` // 提取轮数
	Admitted   int     `json:"admitted"`   // 收录条目数
	Anonymous  int     `json:"anonymous"`  // 无ID条目数
	Duration   float64 `json:"duration"`   // 总耗时(秒)
}

// RunReport 收集报告
type RunReport struct {
	// 任务信息
	RunID     string    `json:"run_id"`
	TargetURL string    `json:"target_url"`
	Endpoint  string    `json:"endpoint"`
	Status    RunStatus `json:"status"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// 统计信息
	Stats RunStats `json:"stats"`

	// 输出
	SnapshotPath string `json:"snapshot_path"`

	// 错误信息
	ErrorPhase   Phase  `json:"error_phase,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRunReport 由任务生成报告
func NewRunReport(task *RunTask, stats RunStats) *RunReport {
	report := &RunReport{
		RunID:        task.ID,
		TargetURL:    task.TargetURL,
		Endpoint:     task.Config.Endpoint,
		Status:       task.Status,
		StartTime:    task.CreatedAt,
		EndTime:      time.Now(),
		Stats:        stats,
		SnapshotPath: task.Config.SnapshotPath,
		ErrorMessage: task.ErrorMessage,
	}
	if task.StartedAt != nil {
		report.StartTime = *task.StartedAt
	}
	if task.CompletedAt != nil {
		report.EndTime = *task.CompletedAt
	}
	report.Stats.Duration = report.EndTime.Sub(report.StartTime).Seconds()
	return report
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}

// LabelExample 类别示例
type LabelExample struct {
	Excerpt string  `json:"excerpt"` // 内容摘要
	URL     *string `json:"url"`
	Handle  string  `json:"handle"` // 缺失时为 "unknown"
}

// ClassificationSummary 分类汇总
type ClassificationSummary struct {
	Total      int                       `json:"total"`       // 条目总数
	Labels     []string                  `json:"labels"`      // 全部类别 (声明顺序)
	Counts     map[string]int            `json:"counts"`      // 每类条目数
	Examples   map[string][]LabelExample `json:"examples"`    // 每类示例
	MultiLabel int                       `json:"multi_label"` // 多类别条目数
	Unlabeled  int                       `json:"unlabeled"`   // 无类别条目数
}

// ToJSON 序列化为JSON
func (s *ClassificationSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UserAggregate 作者聚合
type UserAggregate struct {
	Handle string  `json:"handle"`
	Name   *string `json:"name"` // 该handle首条记录上的显示名称
	Count  int     `json:"count"`
}

// DateRange 时间范围
type DateRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}

// CorpusStats 语料统计
type CorpusStats struct {
	Total      int             `json:"total"`
	WithPhotos int             `json:"with_photos"`
	WithQuotes int             `json:"with_quotes"`
	WithLinks  int             `json:"with_links"`
	TopUsers   []UserAggregate `json:"top_users"`
	DateRange  DateRange       `json:"date_range"`
}

// DescriptionStatus 语义描述状态
type DescriptionStatus string

const (
	DescriptionOK     DescriptionStatus = "ok"
	DescriptionFailed DescriptionStatus = "failed"
)

// FailedDescription 描述失败时使用的占位文本
const FailedDescription = "Failed to analyze tweet"

// EnrichedRecord 附带语义描述的条目
type EnrichedRecord struct {
	Record
	Description       string            `json:"description"`
	DescriptionStatus DescriptionStatus `json:"description_status"`
}
