package models

import (
	"errors"
	"fmt"
)

// Phase 出错阶段
type Phase string

const (
	PhaseConnect  Phase = "connect"  // 连接浏览器
	PhaseNavigate Phase = "navigate" // 页面导航
	PhaseExtract  Phase = "extract"  // 条目提取
	PhasePaginate Phase = "paginate" // 触发加载更多
	PhasePersist  Phase = "persist"  // 写入快照
	PhaseLoad     Phase = "load"     // 读取快照
	PhaseClassify Phase = "classify" // 分类
	PhaseQuery    Phase = "query"    // 查询
	PhaseEnrich   Phase = "enrich"   // 语义描述
)

// 错误类别, 可通过 errors.Is 判断
var (
	ErrConnection    = errors.New("无法连接浏览器")
	ErrNavigation    = errors.New("页面导航失败")
	ErrLoginRequired = errors.New("需要登录")
	ErrExtraction    = errors.New("条目提取失败")
	ErrPagination    = errors.New("加载更多失败")
	ErrPersistence   = errors.New("快照写入失败")
	ErrCorpusLoad    = errors.New("快照读取失败")
	ErrInvalidQuery  = errors.New("无效查询")
	ErrEnrichment    = errors.New("语义描述失败")
)

// PhaseError 带阶段信息的错误
type PhaseError struct {
	// Phase 出错阶段
	Phase Phase

	// Kind 错误类别 (上面的 Err* 之一)
	Kind error

	// Detail 补充信息, 如端点地址或迭代次数
	Detail string

	// Cause 底层错误
	Cause error
}

// Error 实现error接口
func (e *PhaseError) Error() string {
	msg := fmt.Sprintf("[%s] %v", e.Phase, e.Kind)
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap 同时暴露错误类别与底层错误
func (e *PhaseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewConnectionError 浏览器端点不可达或初始化失败
func NewConnectionError(endpoint string, cause error) error {
	return &PhaseError{Phase: PhaseConnect, Kind: ErrConnection, Detail: "endpoint=" + endpoint, Cause: cause}
}

// NewNavigationError 导航失败或超时
func NewNavigationError(target string, cause error) error {
	return &PhaseError{Phase: PhaseNavigate, Kind: ErrNavigation, Detail: "url=" + target, Cause: cause}
}

// NewLoginRequiredError 目标页面被登录页拦截
func NewLoginRequiredError(location string) error {
	return &PhaseError{Phase: PhaseNavigate, Kind: ErrLoginRequired, Detail: "location=" + location}
}

// NewExtractionError 第iteration轮提取失败
func NewExtractionError(iteration int, cause error) error {
	return &PhaseError{Phase: PhaseExtract, Kind: ErrExtraction, Detail: fmt.Sprintf("iteration=%d", iteration), Cause: cause}
}

// NewPaginationError 第iteration轮滚动失败
func NewPaginationError(iteration int, cause error) error {
	return &PhaseError{Phase: PhasePaginate, Kind: ErrPagination, Detail: fmt.Sprintf("iteration=%d", iteration), Cause: cause}
}

// NewPersistenceError 快照写入失败
func NewPersistenceError(path string, cause error) error {
	return &PhaseError{Phase: PhasePersist, Kind: ErrPersistence, Detail: "path=" + path, Cause: cause}
}

// NewCorpusLoadError 快照缺失或格式错误
func NewCorpusLoadError(path string, cause error) error {
	return &PhaseError{Phase: PhaseLoad, Kind: ErrCorpusLoad, Detail: "path=" + path, Cause: cause}
}

// NewInvalidQueryError 查询参数无效
func NewInvalidQueryError(detail string) error {
	return &PhaseError{Phase: PhaseQuery, Kind: ErrInvalidQuery, Detail: detail}
}

// NewEnrichmentError 单条语义描述失败
func NewEnrichmentError(id string, cause error) error {
	return &PhaseError{Phase: PhaseEnrich, Kind: ErrEnrichment, Detail: "id=" + id, Cause: cause}
}

// PhaseOf 返回错误所属阶段, 非PhaseError返回空串
func PhaseOf(err error) Phase {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}
