package post

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/scaffold"
)

// PathRequest is the payload of the new_post_path phase. A hook sets Path.
type PathRequest struct {
	Meta    *Metadata
	Replace bool
	Path    string
}

// DefaultNewPostName is used when Config.NewPostName is empty.
const DefaultNewPostName = ":title.md"

var namePlaceholder = regexp.MustCompile(`:(\w+)`)

// PathResolver is the built-in new_post_path hook.
type PathResolver struct {
	fs  afero.Fs
	cfg Config
}

// NewPathResolver returns the built-in path resolver for cfg.
func NewPathResolver(fs afero.Fs, cfg Config) *PathResolver {
	return &PathResolver{fs: fs, cfg: cfg.withDefaults()}
}

func (r *PathResolver) Name() string { return "new_post_path" }

// Apply resolves req.Path unless an earlier hook already did.
func (r *PathResolver) Apply(_ context.Context, payload any, _ hooks.Options) (any, error) {
	req, ok := payload.(*PathRequest)
	if !ok {
		return nil, errors.InternalError(fmt.Sprintf("new_post_path payload is %T", payload)).Build()
	}
	if req.Path != "" {
		return nil, nil
	}
	p, err := r.Resolve(req.Meta, req.Replace)
	if err != nil {
		return nil, err
	}
	req.Path = p
	return nil, nil
}

// Resolve computes the target path of meta.
//
// Pages go to <source>/<path|slug/index>, drafts to <source>/_drafts and
// everything else to <source>/_posts, named by new_post_name unless an
// explicit path is given. Without replace an existing file gets a -1, -2,
// ... suffix.
func (r *PathResolver) Resolve(meta *Metadata, replace bool) (string, error) {
	if meta.Path == "" && meta.Slug == "" {
		return "", errors.InputError("either path or slug is required").Build()
	}

	src := r.cfg.SourceDir
	var target string
	switch {
	case meta.Path != "":
		switch meta.Layout {
		case "page":
			target = filepath.Join(src, meta.Path)
		case "draft":
			target = filepath.Join(src, "_drafts", meta.Path)
		default:
			target = filepath.Join(src, "_posts", meta.Path)
		}
	case meta.Layout == "page":
		target = filepath.Join(src, meta.Slug, "index")
	case meta.Layout == "draft":
		target = filepath.Join(src, "_drafts", meta.Slug)
	default:
		target = filepath.Join(src, "_posts", r.postName(meta))
	}

	if filepath.Ext(target) == "" {
		ext := filepath.Ext(r.cfg.NewPostName)
		if ext == "" {
			ext = ".md"
		}
		target += ext
	}
	if replace {
		return target, nil
	}
	return r.ensureFree(target)
}

func (r *PathResolver) postName(meta *Metadata) string {
	date := meta.Date
	if date.IsZero() {
		date = time.Now()
	}
	values := map[string]string{
		"title":   meta.Slug,
		"year":    date.Format("2006"),
		"month":   date.Format("01"),
		"i_month": date.Format("1"),
		"day":     date.Format("02"),
		"i_day":   date.Format("2"),
	}
	for k, v := range meta.Fields {
		if _, taken := values[k]; taken || scaffold.IsReserved(k) || v == nil {
			continue
		}
		values[k] = stringValue(v)
	}
	return namePlaceholder.ReplaceAllStringFunc(r.cfg.NewPostName, func(m string) string {
		return values[m[1:]]
	})
}

func (r *PathResolver) ensureFree(target string) (string, error) {
	exists, err := afero.Exists(r.fs, target)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "stat target").WithContext("path", target).Build()
	}
	if !exists {
		return target, nil
	}
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(target, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		exists, err := afero.Exists(r.fs, candidate)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "stat target").WithContext("path", candidate).Build()
		}
		if !exists {
			return candidate, nil
		}
	}
}
