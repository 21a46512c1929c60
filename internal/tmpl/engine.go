package tmpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// Engine renders templates against a variable map.
type Engine struct {
	tags *TagRegistry
}

// New returns an engine using tags; nil selects the built-in registry.
func New(tags *TagRegistry) *Engine {
	if tags == nil {
		tags = NewTagRegistry()
	}
	return &Engine{tags: tags}
}

// Tags returns the engine's tag registry.
func (e *Engine) Tags() *TagRegistry {
	return e.tags
}

// Render evaluates text with vars.
func (e *Engine) Render(ctx context.Context, text string, vars map[string]any) (string, error) {
	toks, err := lex(text)
	if err != nil {
		return "", err
	}
	nodes, err := e.parse(toks)
	if err != nil {
		return "", err
	}

	c := &compiler{}
	main, err := c.emit(nodes)
	if err != nil {
		return "", err
	}

	var tpl *template.Template
	funcs := c.funcs(ctx, vars, func(name string) (string, error) {
		var buf bytes.Buffer
		err := tpl.ExecuteTemplate(&buf, name, nil)
		return buf.String(), err
	})
	tpl, err = template.New("content").Funcs(funcs).Parse(main + strings.Join(c.defs, ""))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "cannot compile template").Build()
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, nil); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "template execution failed").Build()
	}
	return buf.String(), nil
}

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeVar
	nodeTag
)

type node struct {
	kind     nodeKind
	text     string
	tag      Tag
	args     string
	children []node
}

type frame struct {
	tag   Tag
	args  string
	nodes []node
}

func (e *Engine) parse(toks []token) ([]node, error) {
	stack := []*frame{{}}
	for _, t := range toks {
		top := stack[len(stack)-1]
		switch t.kind {
		case tokenText:
			top.nodes = append(top.nodes, node{kind: nodeText, text: t.val})
		case tokenVar:
			top.nodes = append(top.nodes, node{kind: nodeVar, text: t.val})
		case tokenBlock:
			name := tagName(t.val)
			if strings.HasPrefix(name, "end") && len(stack) > 1 && "end"+top.tag.Name == name {
				stack = stack[:len(stack)-1]
				parent := stack[len(stack)-1]
				parent.nodes = append(parent.nodes, node{kind: nodeTag, tag: top.tag, args: top.args, children: top.nodes})
				continue
			}
			tag, ok := e.tags.Get(name)
			if !ok {
				return nil, errors.RenderError("unknown tag").WithContext("tag", name).Build()
			}
			if tag.Ends {
				stack = append(stack, &frame{tag: tag, args: tagArgs(t.val)})
				continue
			}
			top.nodes = append(top.nodes, node{kind: nodeTag, tag: tag, args: tagArgs(t.val)})
		}
	}
	if len(stack) > 1 {
		return nil, errors.RenderError("unclosed block tag").
			WithContext("tag", stack[len(stack)-1].tag.Name).
			Build()
	}
	return stack[0].nodes, nil
}

type tagCall struct {
	tag  Tag
	args []string
	body string // name of the body template, empty for inline tags
}

type compiler struct {
	lits  []string
	calls []tagCall
	defs  []string
}

func (c *compiler) emit(nodes []node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			c.lits = append(c.lits, n.text)
			fmt.Fprintf(&b, "{{lit %d}}", len(c.lits)-1)
		case nodeVar:
			pipe, err := translate(n.text)
			if err != nil {
				return "", err
			}
			b.WriteString("{{" + pipe + "}}")
		case nodeTag:
			call := tagCall{tag: n.tag, args: SplitArgs(n.args)}
			if n.tag.Ends {
				body, err := c.emit(n.children)
				if err != nil {
					return "", err
				}
				call.body = fmt.Sprintf("body%d", len(c.defs))
				c.defs = append(c.defs, fmt.Sprintf("{{define %q}}%s{{end}}", call.body, body))
			}
			c.calls = append(c.calls, call)
			fmt.Fprintf(&b, "{{tag %d}}", len(c.calls)-1)
		}
	}
	return b.String(), nil
}

func (c *compiler) funcs(ctx context.Context, vars map[string]any, execBody func(string) (string, error)) template.FuncMap {
	fm := template.FuncMap{
		"lit": func(i int) string { return c.lits[i] },
		"var": func(path string) any { return lookup(vars, path) },
		"tag": func(i int) (string, error) {
			call := c.calls[i]
			body := ""
			if call.body != "" {
				var err error
				if body, err = execBody(call.body); err != nil {
					return "", err
				}
			}
			out, err := call.tag.Fn(ctx, call.args, body)
			if err != nil {
				return "", errors.WrapError(err, errors.CategoryRender, "tag failed").
					WithContext("tag", call.tag.Name).
					Build()
			}
			return out, nil
		},
	}
	for name, fn := range filters {
		fm["f_"+name] = fn
	}
	return fm
}

var filters = map[string]any{
	"upper": func(v any) string { return strings.ToUpper(toString(v)) },
	"lower": func(v any) string { return strings.ToLower(toString(v)) },
	"trim":  func(v any) string { return strings.TrimSpace(toString(v)) },
	"safe":  func(v any) any { return v },
	"default": func(def, v any) any {
		if isEmpty(v) {
			return def
		}
		return v
	},
	"join": func(sep string, v any) string {
		items, ok := v.([]any)
		if !ok {
			return toString(v)
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = toString(it)
		}
		return strings.Join(parts, sep)
	},
	"json": func(v any) (string, error) {
		out, err := json.Marshal(v)
		return string(out), err
	},
}

var (
	identPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)
	number    = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
	filterRe  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\((.*)\))?$`)
)

// translate turns "a.b | upper | default('x')" into a text/template pipeline.
func translate(expr string) (string, error) {
	parts := splitOutsideQuotes(expr, '|')
	if strings.TrimSpace(parts[0]) == "" {
		return "", errors.RenderError("empty expression").Build()
	}
	head, err := operand(parts[0])
	if err != nil {
		return "", err
	}

	out := head
	for _, p := range parts[1:] {
		m := filterRe.FindStringSubmatch(strings.TrimSpace(p))
		if m == nil {
			return "", errors.RenderError("malformed filter").WithContext("filter", strings.TrimSpace(p)).Build()
		}
		if _, ok := filters[m[1]]; !ok {
			return "", errors.RenderError("unknown filter").WithContext("filter", m[1]).Build()
		}
		out += " | f_" + m[1]
		if strings.TrimSpace(m[2]) != "" {
			for _, a := range splitOutsideQuotes(m[2], ',') {
				arg, err := operand(a)
				if err != nil {
					return "", err
				}
				out += " " + arg
			}
		}
	}
	return out, nil
}

func operand(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]:
		return strconv.Quote(s[1 : len(s)-1]), nil
	case number.MatchString(s), s == "true", s == "false":
		return s, nil
	case identPath.MatchString(s):
		return fmt.Sprintf("(var %q)", s), nil
	default:
		return "", errors.RenderError("unsupported expression").WithContext("expression", s).Build()
	}
}

func splitOutsideQuotes(s string, sep byte) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func lookup(vars map[string]any, path string) any {
	var cur any = vars
	for _, key := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			cur = m[key]
		case map[string]string:
			cur = m[key]
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(m) {
				return ""
			}
			cur = m[i]
		default:
			return ""
		}
		if cur == nil {
			return ""
		}
	}
	return cur
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isEmpty(v any) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return vv == ""
	case []any:
		return len(vv) == 0
	}
	return false
}
