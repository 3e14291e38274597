package core

import (
	"context"
	"errors"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/bookmarkscope/internal/browser"
	"github.com/RecoveryAshes/bookmarkscope/internal/extract"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/snapshot"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// BrowserSession 一次收集所需的全部标签页能力
type BrowserSession interface {
	browser.Surface
	extract.PageSource
	Paginator
	Release() error
}

// SessionSource 连接到endpoint并返回会话
type SessionSource func(ctx context.Context, endpoint string) (BrowserSession, error)

// ConnectorSource 把 browser.Connector 包装为 SessionSource
func ConnectorSource(connector *browser.Connector) SessionSource {
	return func(ctx context.Context, endpoint string) (BrowserSession, error) {
		session, err := connector.Acquire(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// RunResult 一次收集的结果
type RunResult struct {
	Task       *models.RunTask
	Status     models.RunStatus
	Records    []models.Record
	Stats      models.RunStats
	ReportPath string
}

// Runner 收集流程协调器
//
// 执行流程:
//  1. 连接浏览器并打开标签页
//  2. 先访问首页再访问书签页, 判断登录状态
//  3. 滚动收集所有条目
//  4. 写入快照文件
//  5. 生成运行报告
//
// 无论成功与否都会释放会话 (只关闭自己打开的标签页).
type Runner struct {
	config    models.CollectConfig
	acquire   SessionSource
	navigator *browser.Navigator
	parser    *extract.DOMParser
	reporter  *utils.Reporter
}

// NewRunner 创建协调器, reporter为nil时不生成报告
func NewRunner(config models.CollectConfig, acquire SessionSource, reporter *utils.Reporter) *Runner {
	hosts := []string{"twitter.com", "x.com", "mobile.twitter.com"}
	if u, err := url.Parse(config.LandingURL); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}

	return &Runner{
		config:  config,
		acquire: acquire,
		navigator: browser.NewNavigator(browser.NavigatorConfig{
			LandingURL:    config.LandingURL,
			LoginPath:     config.LoginPath,
			LoginSelector: config.LoginSelector,
			LandingSettle: config.LandingSettle,
			TargetSettle:  config.TargetSettle,
			NavTimeout:    config.NavTimeout,
		}),
		parser:   extract.NewDOMParser(extract.DefaultSelectors(), hosts...),
		reporter: reporter,
	}
}

// Run 执行一次收集, target为空时使用配置中的目标地址
//
// 未登录时返回 Status=login_required 且错误为 ErrLoginRequired.
// 其他失败返回 Status=error 和带阶段信息的错误, 此时不写快照.
func (r *Runner) Run(ctx context.Context, target string) (*RunResult, error) {
	if target == "" {
		target = r.config.TargetURL
	}

	task, err := models.NewRunTask(target, r.config)
	if err != nil {
		return nil, err
	}
	task.Start()

	utils.Infof("🚀 开始收集任务 %s", task.ID)
	utils.Infof("目标URL: %s", target)
	utils.Infof("浏览器: %s", r.config.Endpoint)

	result := &RunResult{Task: task}
	runErr := r.run(ctx, task, result)

	switch {
	case runErr == nil:
		result.Status = models.RunStatusSuccess
	case errors.Is(runErr, models.ErrLoginRequired):
		result.Status = models.RunStatusLoginRequired
	default:
		result.Status = models.RunStatusError
		result.Records = nil
	}
	task.Finish(result.Status, runErr)
	result.Stats.Duration = task.Duration()

	r.writeReport(result, runErr)

	if runErr != nil {
		utils.Errorf("❌ 收集失败 [%s]: %v", models.PhaseOf(runErr), runErr)
		return result, runErr
	}

	utils.Infof("✅ 收集任务完成: %d 条", len(result.Records))
	utils.Infof("快照文件: %s", r.config.SnapshotPath)
	utils.Infof("总耗时: %.2f秒", result.Stats.Duration)
	return result, nil
}

func (r *Runner) run(ctx context.Context, task *models.RunTask, result *RunResult) error {
	session, err := r.acquire(ctx, r.config.Endpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Release(); err != nil {
			log.Warn().Err(err).Str("run_id", task.ID).Msg("释放会话失败")
		}
	}()

	state, err := r.navigator.Goto(ctx, session, task.TargetURL)
	if err != nil {
		return err
	}
	if state == browser.AuthLoginRequired {
		location, _ := session.Location(ctx)
		return models.NewLoginRequiredError(location)
	}

	collector := NewCollector(
		extract.NewRodAdapter(session, r.parser),
		session,
		CollectorConfig{
			MaxStallIterations: r.config.MaxStallIterations,
			SettleDelay:        r.config.SettleDelay,
		},
	)

	collected, err := collector.Collect(ctx)
	if err != nil {
		return err
	}
	result.Stats.Iterations = collected.Iterations
	result.Stats.Admitted = collected.Admitted
	result.Stats.Anonymous = collected.Anonymous

	if err := snapshot.Write(r.config.SnapshotPath, collected.Records); err != nil {
		return err
	}
	result.Records = collected.Records
	return nil
}

func (r *Runner) writeReport(result *RunResult, runErr error) {
	if r.reporter == nil {
		return
	}

	report := models.NewRunReport(result.Task, result.Stats)
	if runErr != nil {
		report.ErrorPhase = models.PhaseOf(runErr)
	}

	path, err := r.reporter.GenerateRunReport(report)
	if err != nil {
		utils.Warnf("生成报告失败: %v", err)
		return
	}
	result.ReportPath = path
}
