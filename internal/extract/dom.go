package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

// DOMParser 从渲染后的HTML中解析条目
type DOMParser struct {
	sel Selectors

	// 站内主机名, 指向这些主机的链接不算外部链接
	internalHosts map[string]bool
}

// NewDOMParser 创建解析器
// internalHosts 为额外的站内主机名, 页面自身的主机总是视为站内
func NewDOMParser(sel Selectors, internalHosts ...string) *DOMParser {
	hosts := make(map[string]bool, len(internalHosts))
	for _, h := range internalHosts {
		hosts[strings.ToLower(h)] = true
	}
	return &DOMParser{sel: sel, internalHosts: hosts}
}

// Parse 解析HTML, pageURL用于把相对链接转换为绝对地址
func (p *DOMParser) Parse(htmlContent, pageURL string) ([]models.Record, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("无效的页面地址: %q", pageURL)
	}

	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	records := make([]models.Record, 0)
	doc.Find(p.sel.Container).Each(func(_ int, s *goquery.Selection) {
		records = append(records, p.parseRecord(s, base))
	})
	return records, nil
}

func (p *DOMParser) parseRecord(s *goquery.Selection, base *url.URL) models.Record {
	rec := models.Record{
		Media: models.Media{
			Photos: []string{},
			Links:  []string{},
		},
	}

	if href, ok := s.Find(p.sel.StatusLink).First().Attr("href"); ok {
		permalink := resolve(base, href)
		rec.URL = &permalink
		if id := p.statusID(permalink); id != "" {
			rec.ID = &id
		}
	}

	rec.User = p.parseUser(s.Find(p.sel.UserLink).First(), base)

	// 引用条目内的正文不算作本条正文
	own := s.Find(p.sel.Text).FilterFunction(func(_ int, t *goquery.Selection) bool {
		return t.Closest(p.sel.Quoted).Length() == 0
	})
	if text := own.First(); text.Length() > 0 {
		rec.Text = strings.TrimSpace(text.Text())
	}

	if ts, ok := s.Find(p.sel.Time).First().Attr("datetime"); ok {
		rec.Timestamp = &ts
	}

	rec.Metrics = models.Metrics{
		Replies:  optionalText(s.Find(p.sel.Replies).First()),
		Retweets: optionalText(s.Find(p.sel.Retweets).First()),
		Likes:    optionalText(s.Find(p.sel.Likes).First()),
		Views:    optionalText(s.Find(p.sel.Views).First()),
	}

	s.Find(p.sel.Photo).Each(func(_ int, photo *goquery.Selection) {
		if src, ok := photo.Find("img").First().Attr("src"); ok && src != "" {
			rec.Media.Photos = append(rec.Media.Photos, resolve(base, src))
		}
	})

	seen := make(map[string]bool)
	s.Find(p.sel.Links).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := resolve(base, href)
		if !p.isExternal(link, base) || seen[link] {
			return
		}
		seen[link] = true
		rec.Media.Links = append(rec.Media.Links, link)
	})

	if quoted := s.Find(p.sel.Quoted).First(); quoted.Length() > 0 {
		rec.QuotedTweet = p.parseQuoted(quoted, base)
	}

	return rec
}

func (p *DOMParser) parseQuoted(q *goquery.Selection, base *url.URL) *models.QuotedRecord {
	nested := &models.QuotedRecord{
		User: p.parseUser(q.Find(p.sel.UserLink).First(), base),
	}
	if href, ok := q.Find(p.sel.StatusLink).First().Attr("href"); ok {
		permalink := resolve(base, href)
		nested.URL = &permalink
		if id := p.statusID(permalink); id != "" {
			nested.ID = &id
		}
	}
	if text := q.Find(p.sel.Text).First(); text.Length() > 0 {
		nested.Text = strings.TrimSpace(text.Text())
	}
	return nested
}

func (p *DOMParser) parseUser(link *goquery.Selection, base *url.URL) models.User {
	var user models.User
	if link.Length() == 0 {
		return user
	}

	name := strings.TrimSpace(link.Text())
	user.Name = &name

	if href, ok := link.Attr("href"); ok {
		if u, err := url.Parse(resolve(base, href)); err == nil {
			segment := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
			if segment != "" {
				user.Handle = &segment
			}
		}
	}
	return user
}

// statusID 取permalink中 "/status/" 之后的第一个路径片段
func (p *DOMParser) statusID(permalink string) string {
	idx := strings.Index(permalink, p.sel.StatusToken)
	if idx < 0 {
		return ""
	}
	rest := permalink[idx+len(p.sel.StatusToken):]
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}

func (p *DOMParser) isExternal(link string, base *url.URL) bool {
	if link == "" || strings.Contains(link, p.sel.StatusToken) {
		return false
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == strings.ToLower(base.Hostname()) {
		return false
	}
	return !p.internalHosts[host]
}

func optionalText(s *goquery.Selection) *string {
	if s.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(s.Text())
	return &text
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
