package tmpl

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
)

// TagFunc renders one tag. body is the rendered block content, empty for inline tags.
type TagFunc func(ctx context.Context, args []string, body string) (string, error)

// Tag describes a registered tag.
type Tag struct {
	Name string
	// Ends is true for block tags closed by "end<name>".
	Ends bool
	Fn   TagFunc
}

// TagRegistry maps tag names to implementations. It is safe for concurrent use.
type TagRegistry struct {
	mu   sync.RWMutex
	tags map[string]Tag
}

// NewTagRegistry returns a registry holding the built-in tags.
func NewTagRegistry() *TagRegistry {
	r := &TagRegistry{tags: map[string]Tag{}}
	r.Register("blockquote", true, blockquoteTag)
	r.Register("iframe", false, iframeTag)
	r.Register("link", false, linkTag)
	return r
}

// Register adds or replaces a tag.
func (r *TagRegistry) Register(name string, ends bool, fn TagFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[name] = Tag{Name: name, Ends: ends, Fn: fn}
}

// Get returns the tag called name.
func (r *TagRegistry) Get(name string) (Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tags[name]
	return t, ok
}

// {% blockquote [author[, source]] [link] %}
func blockquoteTag(_ context.Context, args []string, body string) (string, error) {
	var b strings.Builder
	b.WriteString("<blockquote>")
	b.WriteString(strings.TrimSpace(body))

	var source, link string
	author := strings.Join(args, " ")
	if n := len(args); n > 0 && isURL(args[n-1]) {
		link = args[n-1]
		author = strings.Join(args[:n-1], " ")
	}
	if before, after, ok := strings.Cut(author, ","); ok {
		author, source = strings.TrimSpace(before), strings.TrimSpace(after)
	}

	if author != "" {
		b.WriteString("<footer><strong>")
		b.WriteString(html.EscapeString(author))
		b.WriteString("</strong>")
		switch {
		case link != "":
			title := source
			if title == "" {
				title = link
			}
			fmt.Fprintf(&b, `<cite><a href="%s">%s</a></cite>`, html.EscapeString(link), html.EscapeString(title))
		case source != "":
			fmt.Fprintf(&b, "<cite>%s</cite>", html.EscapeString(source))
		}
		b.WriteString("</footer>")
	}
	b.WriteString("</blockquote>")
	return b.String(), nil
}

// {% iframe url [width] [height] %}
func iframeTag(_ context.Context, args []string, _ string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("iframe: url is required")
	}
	width, height := "100%", "300"
	if len(args) > 1 {
		width = args[1]
	}
	if len(args) > 2 {
		height = args[2]
	}
	return fmt.Sprintf(`<iframe src="%s" width="%s" height="%s" frameborder="0" loading="lazy" allowfullscreen></iframe>`,
		html.EscapeString(args[0]), html.EscapeString(width), html.EscapeString(height)), nil
}

// {% link text url [external] [title] %}
func linkTag(_ context.Context, args []string, _ string) (string, error) {
	at := -1
	for i, a := range args {
		if isURL(a) {
			at = i
			break
		}
	}
	if at < 1 {
		return "", fmt.Errorf("link: text and url are required")
	}

	text := strings.Join(args[:at], " ")
	url := args[at]
	rest := args[at+1:]
	external := false
	if len(rest) > 0 && (rest[0] == "true" || rest[0] == "false") {
		external = rest[0] == "true"
		rest = rest[1:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a href="%s"`, html.EscapeString(url))
	if len(rest) > 0 {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(strings.Join(rest, " ")))
	}
	if external {
		b.WriteString(` target="_blank" rel="noopener"`)
	}
	fmt.Fprintf(&b, ">%s</a>", html.EscapeString(text))
	return b.String(), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/")
}
