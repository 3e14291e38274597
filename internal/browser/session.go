package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// ErrBrowserCrashed 浏览器连接意外中断
var ErrBrowserCrashed = errors.New("浏览器崩溃")

// ErrSessionReleased 会话已释放
var ErrSessionReleased = errors.New("会话已释放")

// Session 已连接浏览器中的一个标签页
//
// Release 只关闭自己创建的标签页并断开连接, 不会关闭外部浏览器.
type Session struct {
	endpoint string
	browser  *rod.Browser
	page     *rod.Page

	// 取消后停止rod的事件订阅
	cancel context.CancelFunc
	// CDP websocket, 关闭后读循环才会退出
	conn io.Closer

	mu       sync.Mutex
	released bool
}

// Endpoint 调试端点地址
func (s *Session) Endpoint() string {
	return s.endpoint
}

// recoverCrash 把rod内部的panic转换为 ErrBrowserCrashed
func recoverCrash(err *error, op string) {
	if r := recover(); r != nil {
		utils.Errorf("捕获panic: 操作=%s, 错误=%v", op, r)
		*err = fmt.Errorf("%s: %w (%v)", op, ErrBrowserCrashed, r)
	}
}

func (s *Session) livePage() (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrSessionReleased
	}
	return s.page, nil
}

// configure 设置视口和UA
func (s *Session) configure(cfg ConnectorConfig) (err error) {
	defer recoverCrash(&err, "配置标签页")

	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.ViewportWidth,
			Height:            cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			return fmt.Errorf("设置视口失败: %w", err)
		}
	}

	if cfg.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: cfg.UserAgent,
		}); err != nil {
			return fmt.Errorf("设置UA失败: %w", err)
		}
	}
	return nil
}

// Navigate 打开url并等待DOMContentLoaded
// 超时由ctx控制
func (s *Session) Navigate(ctx context.Context, url string) (err error) {
	defer recoverCrash(&err, "页面导航")

	page, err := s.livePage()
	if err != nil {
		return err
	}
	p := page.Context(ctx)

	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

// Location 当前页面地址
func (s *Session) Location(ctx context.Context) (loc string, err error) {
	defer recoverCrash(&err, "读取页面地址")

	page, err := s.livePage()
	if err != nil {
		return "", err
	}
	info, err := page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// Has 页面中是否存在匹配selector的元素 (不等待)
func (s *Session) Has(ctx context.Context, selector string) (found bool, err error) {
	defer recoverCrash(&err, "查询元素")

	page, err := s.livePage()
	if err != nil {
		return false, err
	}
	found, _, err = page.Context(ctx).Has(selector)
	return found, err
}

// HTML 当前渲染后的HTML
func (s *Session) HTML(ctx context.Context) (content string, err error) {
	defer recoverCrash(&err, "读取页面HTML")

	page, err := s.livePage()
	if err != nil {
		return "", err
	}
	return page.Context(ctx).HTML()
}

// ScrollToEnd 滚动到页面底部, 触发加载更多
func (s *Session) ScrollToEnd(ctx context.Context) (err error) {
	defer recoverCrash(&err, "滚动页面")

	page, err := s.livePage()
	if err != nil {
		return err
	}
	_, err = page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

// Release 关闭标签页并断开连接
// 可重复调用, 失败只记录日志
func (s *Session) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	page := s.page
	s.mu.Unlock()

	var closeErr error
	func() {
		defer recoverCrash(&closeErr, "关闭标签页")
		if page != nil {
			closeErr = page.Close()
		}
	}()
	if closeErr != nil {
		utils.Warnf("关闭标签页失败: %v", closeErr)
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			utils.Debugf("关闭websocket: %v", err)
		}
	}
	utils.Debugf("已断开浏览器连接: %s", s.endpoint)
	return nil
}
