package scaffold

import (
	"context"
	"sort"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/frontmatter"
)

// Reserved fields drive document creation and are not copied into front matter.
var Reserved = []string{"title", "slug", "path", "layout", "date", "content"}

// IsReserved reports whether key is a reserved field.
func IsReserved(key string) bool {
	for _, r := range Reserved {
		if r == key {
			return true
		}
	}
	return false
}

// TemplateRenderer evaluates template expressions in a scaffold.
type TemplateRenderer interface {
	Render(ctx context.Context, text string, vars map[string]any) (string, error)
}

// Composer builds document text from a scaffold and metadata.
type Composer struct {
	store Getter
	tmpl  TemplateRenderer
}

// NewComposer returns a composer.
func NewComposer(store Getter, tmpl TemplateRenderer) *Composer {
	return &Composer{store: store, tmpl: tmpl}
}

// Resolve returns the scaffold for layout, falling back to the normal layout.
func (c *Composer) Resolve(ctx context.Context, layout string) (string, error) {
	for _, name := range []string{layout, Normal} {
		text, ok, err := c.store.Get(ctx, name)
		if err != nil {
			return "", err
		}
		if ok {
			return text, nil
		}
	}
	return "", errors.ConfigError("no scaffold for layout and no normal scaffold").
		WithContext("layout", layout).
		Build()
}

// Compose renders the document text for meta using the scaffold of layout.
//
// The scaffold front matter is evaluated with meta as variables, parsed,
// completed with the non-reserved fields of meta it does not already set, and
// serialized in the scaffold's dialect. The scaffold body follows, and a
// non-empty "content" value is appended after a newline.
func (c *Composer) Compose(ctx context.Context, meta map[string]any, layout string) (string, error) {
	text, err := c.Resolve(ctx, layout)
	if err != nil {
		return "", err
	}

	sc := frontmatter.SplitScaffold(text)
	if !sc.HasFrontMatter() {
		sc.Separator = frontmatter.YAML.DefaultSeparator()
		sc.PrefixSeparator = true
	}
	dialect := sc.Dialect()

	vars := frontmatter.PrepareValues(meta, dialect)
	rendered, err := c.tmpl.Render(ctx, sc.Data, vars)
	if err != nil {
		return "", err
	}

	fields, err := frontmatter.Parse(rendered, dialect)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFrontMatter, "scaffold produced malformed front matter").
			WithContext("layout", layout).
			Build()
	}
	Merge(fields, meta)

	head, err := frontmatter.Stringify(fields, dialect, sc.Separator)
	if err != nil {
		return "", err
	}

	out := head + sc.Content
	if sc.PrefixSeparator {
		out = sc.Separator + "\n" + out
	}
	if content, ok := meta["content"].(string); ok && content != "" {
		out += "\n" + content
	}
	return out, nil
}

// Merge copies the non-reserved entries of meta into fields unless fields
// already holds a non-null value for the key. Nil values are skipped.
func Merge(fields *frontmatter.Fields, meta map[string]any) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := meta[k]
		if v == nil || IsReserved(k) {
			continue
		}
		if existing, ok := fields.Get(k); ok && existing != nil {
			continue
		}
		fields.Set(k, v)
	}
}
