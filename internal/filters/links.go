package filters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/post"
	"git.home.luguber.info/inful/sitepress/internal/util/sets"
)

// ExternalLinks opens off-site links in a new tab.
type ExternalLinks struct {
	siteHost string
	exclude  sets.Set[string]
}

// NewExternalLinks returns a rewriter treating siteURL's host and the
// exclude hosts as local.
func NewExternalLinks(siteURL string, exclude []string) *ExternalLinks {
	l := &ExternalLinks{exclude: sets.New[string]()}
	if u, err := url.Parse(siteURL); err == nil {
		l.siteHost = strings.ToLower(u.Hostname())
	}
	for _, h := range exclude {
		l.exclude.Add(strings.ToLower(strings.TrimSpace(h)))
	}
	return l
}

func (l *ExternalLinks) Name() string { return "external_link" }

func (l *ExternalLinks) Apply(_ context.Context, payload any, _ hooks.Options) (any, error) {
	data, ok := payload.(*post.RenderData)
	if !ok {
		return nil, errors.InternalError(fmt.Sprintf("external_link payload is %T", payload)).Build()
	}
	data.Content = l.Rewrite(data.Content)
	return nil, nil
}

// Rewrite adds target="_blank" and rel="noopener" to anchors pointing off-site.
// Anchors that already carry a target are left alone, as is all other markup.
func (l *ExternalLinks) Rewrite(s string) string {
	if !strings.Contains(s, "<a") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s) + 64)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		if tt != html.StartTagToken {
			b.WriteString(raw)
			continue
		}
		tok := z.Token()
		if tok.Data != "a" || !l.rewrite(&tok) {
			b.WriteString(raw)
			continue
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

func (l *ExternalLinks) rewrite(tok *html.Token) bool {
	href, hasTarget := "", false
	relIdx := -1
	for i, a := range tok.Attr {
		switch a.Key {
		case "href":
			href = a.Val
		case "target":
			hasTarget = true
		case "rel":
			relIdx = i
		}
	}
	if hasTarget || !l.isExternal(href) {
		return false
	}

	tok.Attr = append(tok.Attr, html.Attribute{Key: "target", Val: "_blank"})
	if relIdx < 0 {
		tok.Attr = append(tok.Attr, html.Attribute{Key: "rel", Val: "noopener"})
	} else if !strings.Contains(tok.Attr[relIdx].Val, "noopener") {
		tok.Attr[relIdx].Val = strings.TrimSpace(tok.Attr[relIdx].Val + " noopener")
	}
	return true
}

func (l *ExternalLinks) isExternal(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == l.siteHost {
		return false
	}
	return !l.exclude.Has(host)
}
