// Package service 对外提供收集触发和只读搜索
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/RecoveryAshes/bookmarkscope/internal/core"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/query"
	"github.com/RecoveryAshes/bookmarkscope/internal/snapshot"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// ErrRunInProgress 已有收集任务在运行
var ErrRunInProgress = errors.New("已有收集任务在运行")

// Runner 执行一次收集, *core.Runner 实现了该接口
type Runner interface {
	Run(ctx context.Context, target string) (*core.RunResult, error)
}

// Outcome 收集触发结果
type Outcome struct {
	Status  models.RunStatus `json:"status"`
	Count   int              `json:"count"`
	Records []models.Record  `json:"records,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Service 收集触发 + 基于快照的只读搜索
//
// 快照按 路径+修改时间 缓存, 文件被新一次收集覆盖后自动失效.
type Service struct {
	runner       Runner
	snapshotPath string
	searchOpts   query.Options

	cache  *cache.Cache
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
}

// New 创建服务, ttl<=0 时使用默认的5分钟
func New(runner Runner, snapshotPath string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		runner:       runner,
		snapshotPath: snapshotPath,
		searchOpts:   query.DefaultOptions(),
		cache:        cache.New(ttl, 2*ttl),
		logger:       utils.Component("service"),
	}
}

// WithSearchOptions 设置搜索选项
func (s *Service) WithSearchOptions(opts query.Options) *Service {
	s.searchOpts = opts
	return s
}

// RunCollection 触发一次收集
//
// 同一时间只允许一个收集任务, 重复触发直接返回 error 结果.
func (s *Service) RunCollection(ctx context.Context, locator string) Outcome {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Outcome{Status: models.RunStatusError, Message: ErrRunInProgress.Error()}
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result, err := s.runner.Run(ctx, locator)
	switch {
	case err == nil:
		s.cache.Flush()
		return Outcome{
			Status:  models.RunStatusSuccess,
			Count:   len(result.Records),
			Records: result.Records,
			Message: fmt.Sprintf("成功收集 %d 条书签", len(result.Records)),
		}
	case errors.Is(err, models.ErrLoginRequired):
		return Outcome{
			Status:  models.RunStatusLoginRequired,
			Message: "需要登录: 请在浏览器中登录后重试",
		}
	default:
		s.logger.Error().Err(err).Str("phase", string(models.PhaseOf(err))).Msg("收集失败")
		return Outcome{Status: models.RunStatusError, Message: err.Error()}
	}
}

// Corpus 返回当前快照对应的语料 (带缓存)
func (s *Service) Corpus(ctx context.Context) (*models.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.snapshotPath)
	if err != nil {
		return nil, models.NewCorpusLoadError(s.snapshotPath, err)
	}
	key := fmt.Sprintf("%s@%d:%d", s.snapshotPath, info.ModTime().UnixNano(), info.Size())

	if cached, found := s.cache.Get(key); found {
		s.logger.Debug().Str("key", key).Msg("命中语料缓存")
		return cached.(*models.Corpus), nil
	}

	corpus, err := snapshot.Read(s.snapshotPath)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, corpus, cache.DefaultExpiration)
	return corpus, nil
}

// Search 在快照中搜索正文
func (s *Service) Search(ctx context.Context, q string) ([]models.Record, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return query.Search(corpus, q, s.searchOpts), nil
}

// Stats 快照统计
func (s *Service) Stats(ctx context.Context, topK int) (models.CorpusStats, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return models.CorpusStats{}, err
	}
	return query.Stats(corpus, topK), nil
}
