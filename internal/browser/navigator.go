package browser

import (
	"context"
	"strings"
	"time"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// AuthState 到达目标页面后的登录状态
type AuthState string

const (
	AuthOK            AuthState = "authenticated"
	AuthLoginRequired AuthState = "login_required"
)

// Surface 导航所需的标签页操作, Session 实现了该接口
type Surface interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Has(ctx context.Context, selector string) (bool, error)
}

// NavigatorConfig 导航参数
type NavigatorConfig struct {
	LandingURL    string        // 先访问的站点首页, 为空则跳过
	LoginPath     string        // 地址中出现即视为被重定向到登录页
	LoginSelector string        // 页面中存在即视为未登录
	LandingSettle time.Duration // 首页加载后的等待
	TargetSettle  time.Duration // 目标页加载后的等待
	NavTimeout    time.Duration // 单次导航超时
}

// Navigator 打开书签页并判断登录状态
type Navigator struct {
	config NavigatorConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewNavigator 创建导航器
func NewNavigator(config NavigatorConfig) *Navigator {
	return &Navigator{config: config, sleep: utils.SleepContext}
}

// Goto 先访问首页再访问target, 返回登录状态
// 导航失败或超时返回 NavigationError
func (n *Navigator) Goto(ctx context.Context, surface Surface, target string) (AuthState, error) {
	if n.config.LandingURL != "" {
		if err := n.visit(ctx, surface, n.config.LandingURL, n.config.LandingSettle); err != nil {
			return "", err
		}
	}

	if err := n.visit(ctx, surface, target, n.config.TargetSettle); err != nil {
		return "", err
	}

	location, err := surface.Location(ctx)
	if err != nil {
		return "", models.NewNavigationError(target, err)
	}
	if n.config.LoginPath != "" && strings.Contains(location, n.config.LoginPath) {
		utils.Warnf("页面被重定向到登录页: %s", location)
		return AuthLoginRequired, nil
	}

	if n.config.LoginSelector != "" {
		found, err := surface.Has(ctx, n.config.LoginSelector)
		if err != nil {
			return "", models.NewNavigationError(target, err)
		}
		if found {
			utils.Warnf("页面中存在登录控件: %s", n.config.LoginSelector)
			return AuthLoginRequired, nil
		}
	}

	utils.Infof("已到达目标页面: %s", location)
	return AuthOK, nil
}

func (n *Navigator) visit(ctx context.Context, surface Surface, url string, settle time.Duration) error {
	utils.Infof("🌐 访问页面: %s", url)

	navCtx := ctx
	if n.config.NavTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, n.config.NavTimeout)
		defer cancel()
	}

	if err := surface.Navigate(navCtx, url); err != nil {
		return models.NewNavigationError(url, err)
	}

	if err := n.sleep(ctx, settle); err != nil {
		return models.NewNavigationError(url, err)
	}
	return nil
}
