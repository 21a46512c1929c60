package post

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/frontmatter"
)

// Metadata describes a document to create or publish.
//
// The reserved fields drive path resolution and scaffold selection. Every
// other key lives in Fields and ends up in the document front matter.
type Metadata struct {
	Title   string
	Slug    string
	Path    string
	Layout  string
	Date    time.Time
	Content string
	Fields  map[string]any
}

// Document is the result of a create or publish call.
type Document struct {
	Path    string
	Content string
}

// Set assigns key, routing reserved keys to their typed field.
func (m *Metadata) Set(key string, v any) error {
	switch key {
	case "title":
		m.Title = stringValue(v)
	case "slug":
		m.Slug = stringValue(v)
	case "path":
		m.Path = stringValue(v)
	case "layout":
		m.Layout = stringValue(v)
	case "content":
		m.Content = stringValue(v)
	case "date":
		t, err := parseDate(v)
		if err != nil {
			return err
		}
		m.Date = t
	default:
		if m.Fields == nil {
			m.Fields = map[string]any{}
		}
		m.Fields[key] = v
	}
	return nil
}

// has reports whether the caller already supplied key.
func (m *Metadata) has(key string) bool {
	switch key {
	case "title":
		return m.Title != ""
	case "slug":
		return m.Slug != ""
	case "path":
		return m.Path != ""
	case "layout":
		return m.Layout != ""
	case "content":
		return m.Content != ""
	case "date":
		return !m.Date.IsZero()
	}
	_, ok := m.Fields[key]
	return ok
}

// mergeDraft fills the keys the caller left unset from a parsed draft. The
// draft body becomes the content unless the caller supplied one.
func (m *Metadata) mergeDraft(fields *frontmatter.Fields, body string) error {
	if fields != nil {
		for _, k := range fields.Keys() {
			if m.has(k) {
				continue
			}
			v, _ := fields.Get(k)
			if err := m.Set(k, v); err != nil {
				return err
			}
		}
	}
	if m.Content == "" {
		m.Content = body
	}
	return nil
}

// Vars returns the metadata as the variable map used by scaffolds and path hooks.
func (m *Metadata) Vars() map[string]any {
	out := make(map[string]any, len(m.Fields)+6)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["title"] = m.Title
	out["slug"] = m.Slug
	out["layout"] = m.Layout
	out["date"] = m.Date
	if m.Path != "" {
		out["path"] = m.Path
	}
	if m.Content != "" {
		out["content"] = m.Content
	}
	return out
}

func stringValue(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprint(vv)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	frontmatter.DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

func parseDate(v any) (time.Time, error) {
	switch vv := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return vv, nil
	case *time.Time:
		if vv == nil {
			return time.Time{}, nil
		}
		return *vv, nil
	case string:
		s := strings.TrimSpace(vv)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errors.InputError(fmt.Sprintf("invalid date %v", v)).Build()
}
