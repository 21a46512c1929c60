package filters

import (
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/post"
)

// Options selects the optional built-in filters.
type Options struct {
	SyntaxHighlighter bool
	HighlightTheme    string
	ExternalLink      bool
	SiteURL           string
	ExcludeHosts      []string
}

// Register adds the built-in hooks to reg at the default priority.
func Register(reg *hooks.Registry, fs afero.Fs, cfg post.Config, opts Options) {
	reg.Register(hooks.NewPostPath, hooks.DefaultPriority, post.NewPathResolver(fs, cfg))

	if opts.SyntaxHighlighter {
		reg.Register(hooks.BeforePostRender, hooks.DefaultPriority, NewHighlighter(opts.HighlightTheme))
	}

	reg.Register(hooks.AfterPostRender, hooks.DefaultPriority, Excerpt{})
	if opts.ExternalLink {
		reg.Register(hooks.AfterPostRender, hooks.DefaultPriority, NewExternalLinks(opts.SiteURL, opts.ExcludeHosts))
	}
}
