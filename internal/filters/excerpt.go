package filters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/post"
)

// MoreAnchor replaces the excerpt marker in the rendered content.
const MoreAnchor = `<span id="more"></span>`

var moreMarker = regexp.MustCompile(`(?i)<!-- ?more ?-->`)

// Excerpt splits rendered content at the first <!-- more --> marker.
type Excerpt struct{}

func (Excerpt) Name() string { return "excerpt" }

func (Excerpt) Apply(_ context.Context, payload any, _ hooks.Options) (any, error) {
	data, ok := payload.(*post.RenderData)
	if !ok {
		return nil, errors.InternalError(fmt.Sprintf("excerpt payload is %T", payload)).Build()
	}
	SplitExcerpt(data)
	return nil, nil
}

// SplitExcerpt fills Excerpt and More. An excerpt set earlier is kept and
// More becomes the whole content. Without a marker the excerpt is empty.
func SplitExcerpt(data *post.RenderData) {
	if data.Excerpt != "" {
		data.More = data.Content
		return
	}
	loc := moreMarker.FindStringIndex(data.Content)
	if loc == nil {
		data.More = data.Content
		return
	}
	content := data.Content
	data.Excerpt = strings.TrimSpace(content[:loc[0]])
	data.More = strings.TrimSpace(content[loc[1]:])
	data.Content = content[:loc[0]] + MoreAnchor + content[loc[1]:]
}
