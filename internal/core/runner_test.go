package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/snapshot"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

func article(id string) string {
	return fmt.Sprintf(`<article data-testid="tweet">
  <a href="/user%[1]s" role="link">User %[1]s</a>
  <a href="/user%[1]s/status/%[1]s"><time datetime="2024-03-0%[1]sT10:00:00.000Z">Mar</time></a>
  <div data-testid="tweetText">entry %[1]s</div>
</article>`, id)
}

func page(ids ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for _, id := range ids {
		sb.WriteString(article(id))
	}
	sb.WriteString("</main></body></html>")
	return sb.String()
}

// fakeSession 每次滚动后显示下一页内容, 最后一页保持不变
type fakeSession struct {
	pages      []string
	location   string
	redirectTo string
	loginShown bool
	navErr     error

	visited  []string
	scrolls  int
	released int
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.visited = append(f.visited, url)
	if f.navErr != nil {
		return f.navErr
	}
	f.location = url
	if f.redirectTo != "" {
		f.location = f.redirectTo
	}
	return nil
}

func (f *fakeSession) Location(ctx context.Context) (string, error) {
	return f.location, nil
}

func (f *fakeSession) Has(ctx context.Context, selector string) (bool, error) {
	return f.loginShown, nil
}

func (f *fakeSession) HTML(ctx context.Context) (string, error) {
	i := f.scrolls
	if i >= len(f.pages) {
		i = len(f.pages) - 1
	}
	return f.pages[i], nil
}

func (f *fakeSession) ScrollToEnd(ctx context.Context) error {
	f.scrolls++
	return nil
}

func (f *fakeSession) Release() error {
	f.released++
	return nil
}

func testCollectConfig(dir string) models.CollectConfig {
	return models.CollectConfig{
		Endpoint:           "localhost:9222",
		LandingURL:         "https://x.com",
		TargetURL:          "https://x.com/i/bookmarks",
		LoginPath:          "/login",
		LoginSelector:      `[data-testid="loginButton"]`,
		ViewportWidth:      1280,
		ViewportHeight:     800,
		NavTimeout:         time.Minute,
		MaxStallIterations: 2,
		SnapshotPath:       filepath.Join(dir, "bookmarked_tweets.json"),
	}
}

func sourceOf(s *fakeSession) SessionSource {
	return func(ctx context.Context, endpoint string) (BrowserSession, error) {
		return s, nil
	}
}

func TestRunner_Success(t *testing.T) {
	dir := t.TempDir()
	cfg := testCollectConfig(dir)
	session := &fakeSession{pages: []string{page("1", "2"), page("2", "3"), page("2", "3")}}

	runner := NewRunner(cfg, sourceOf(session), utils.NewReporter(filepath.Join(dir, "reports")))
	result, err := runner.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusSuccess, result.Status)
	assert.Equal(t, []string{"1", "2", "3"}, ids(result.Records))
	assert.Equal(t, 4, result.Stats.Iterations)
	assert.Equal(t, 3, result.Stats.Admitted)
	assert.Equal(t, []string{"https://x.com", "https://x.com/i/bookmarks"}, session.visited)
	assert.Equal(t, 1, session.released)

	corpus, err := snapshot.Read(cfg.SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(corpus.Records()))

	require.NotEmpty(t, result.ReportPath)
	data, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	var report models.RunReport
	require.NoError(t, report.FromJSON(data))
	assert.Equal(t, models.RunStatusSuccess, report.Status)
	assert.Equal(t, 3, report.Stats.Admitted)
}

func TestRunner_LoginRequired(t *testing.T) {
	tests := []struct {
		name    string
		session *fakeSession
	}{
		{"重定向到登录页", &fakeSession{pages: []string{page()}, redirectTo: "https://x.com/i/flow/login"}},
		{"页面存在登录按钮", &fakeSession{pages: []string{page()}, loginShown: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := testCollectConfig(dir)

			result, err := NewRunner(cfg, sourceOf(tt.session), nil).Run(context.Background(), "")
			assert.ErrorIs(t, err, models.ErrLoginRequired)
			require.NotNil(t, result)
			assert.Equal(t, models.RunStatusLoginRequired, result.Status)
			assert.Empty(t, result.Records)
			assert.Equal(t, 0, tt.session.scrolls, "未登录时不应开始收集")
			assert.Equal(t, 1, tt.session.released)

			_, statErr := os.Stat(cfg.SnapshotPath)
			assert.True(t, os.IsNotExist(statErr), "未登录时不写快照")
		})
	}
}

func TestRunner_ConnectionError(t *testing.T) {
	cfg := testCollectConfig(t.TempDir())
	failing := func(ctx context.Context, endpoint string) (BrowserSession, error) {
		return nil, models.NewConnectionError(endpoint, errors.New("connection refused"))
	}

	result, err := NewRunner(cfg, failing, nil).Run(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrConnection)
	assert.Equal(t, models.PhaseConnect, models.PhaseOf(err))
	require.NotNil(t, result)
	assert.Equal(t, models.RunStatusError, result.Status)
}

func TestRunner_NavigationError(t *testing.T) {
	cfg := testCollectConfig(t.TempDir())
	session := &fakeSession{pages: []string{page()}, navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}

	result, err := NewRunner(cfg, sourceOf(session), nil).Run(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrNavigation)
	assert.Equal(t, models.RunStatusError, result.Status)
	assert.Equal(t, 1, session.released, "失败时也要释放会话")
}

func TestRunner_InvalidTarget(t *testing.T) {
	cfg := testCollectConfig(t.TempDir())
	session := &fakeSession{pages: []string{page()}}

	_, err := NewRunner(cfg, sourceOf(session), nil).Run(context.Background(), "not a url")
	assert.Error(t, err)
	assert.Empty(t, session.visited)
}

func TestRunner_SnapshotWriteFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := testCollectConfig(dir)
	// 父路径是文件, 无法创建
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.SnapshotPath = filepath.Join(blocker, "out.json")

	session := &fakeSession{pages: []string{page("1")}}
	result, err := NewRunner(cfg, sourceOf(session), nil).Run(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.Equal(t, models.RunStatusError, result.Status)
	assert.Nil(t, result.Records)
}
