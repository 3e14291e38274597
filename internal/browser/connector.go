package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// ConnectorConfig 标签页初始化参数
type ConnectorConfig struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// Connector 连接用户已登录的浏览器
type Connector struct {
	config  ConnectorConfig
	monitor *ResourceMonitor
}

// NewConnector 创建连接器, monitor可为nil
func NewConnector(config ConnectorConfig, monitor *ResourceMonitor) *Connector {
	return &Connector{config: config, monitor: monitor}
}

// Acquire 连接endpoint上的浏览器并打开一个新标签页
//
// endpoint 可以是 "9222", "localhost:9222", "http://host:9222" 或 ws:// 地址.
// 初始化失败时已创建的资源会被释放.
func (c *Connector) Acquire(ctx context.Context, endpoint string) (session *Session, err error) {
	if c.monitor != nil {
		if ok, reason := c.monitor.CheckResourceAvailability(); !ok {
			utils.Warnf("⚠️  系统资源紧张: %s, 继续连接", reason)
		}
	}

	wsURL, err := resolveEndpoint(endpoint)
	if err != nil {
		return nil, models.NewConnectionError(endpoint, err)
	}
	utils.Debugf("调试端点: %s", wsURL)

	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, wsURL, nil); err != nil {
		return nil, models.NewConnectionError(endpoint, fmt.Errorf("websocket连接失败: %w", err))
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer func() {
		if err != nil && session == nil {
			cancel()
			_ = ws.Close()
		}
	}()

	browser := rod.New().Client(cdp.New().Start(ws)).Context(connCtx)
	if err := connect(browser); err != nil {
		return nil, models.NewConnectionError(endpoint, err)
	}

	page, err := newPage(browser)
	if err != nil {
		return nil, models.NewConnectionError(endpoint, fmt.Errorf("创建标签页失败: %w", err))
	}

	s := &Session{
		endpoint: endpoint,
		browser:  browser,
		page:     page,
		cancel:   cancel,
		conn:     ws,
	}
	if err := s.configure(c.config); err != nil {
		_ = s.Release()
		return nil, models.NewConnectionError(endpoint, err)
	}

	utils.Infof("✅ 已连接浏览器: %s", endpoint)
	return s, nil
}

// ResolveEndpoint 查询endpoint对应的DevTools websocket地址, 不建立连接
func ResolveEndpoint(endpoint string) (string, error) {
	wsURL, err := resolveEndpoint(endpoint)
	if err != nil {
		return "", models.NewConnectionError(endpoint, err)
	}
	return wsURL, nil
}

func resolveEndpoint(endpoint string) (u string, err error) {
	defer recoverCrash(&err, "解析调试端点")
	return launcher.ResolveURL(endpoint)
}

func connect(b *rod.Browser) (err error) {
	defer recoverCrash(&err, "连接浏览器")
	return b.Connect()
}

func newPage(b *rod.Browser) (p *rod.Page, err error) {
	defer recoverCrash(&err, "创建标签页")
	return b.Page(proto.TargetCreateTarget{URL: "about:blank"})
}
