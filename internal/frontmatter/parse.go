package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// Parse decodes a front matter block in the given dialect.
//
// JSON data is decoded after wrapping it in braces. YAML timestamps are
// returned as time.Time; all other scalars keep their YAML types.
func Parse(data string, d Dialect) (*Fields, error) {
	var (
		fields *Fields
		err    error
	)
	if d == JSON {
		fields, err = parseJSON(data)
	} else {
		fields, err = parseYAML(data)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFrontMatter, "malformed front matter").
			WithContext("dialect", d.String()).
			Build()
	}
	return fields, nil
}

// ParseDocument splits text and decodes its front matter.
//
// The returned body is the text after the front matter; documents without
// front matter yield empty fields and the whole text as body. A leading block
// closed by a single separator only counts as front matter when it decodes to
// a mapping, so "Heading\n---\ntext" stays body text.
func ParseDocument(text string) (*Fields, string, error) {
	sc := SplitScaffold(text)
	if !sc.HasFrontMatter() {
		return NewFields(), sc.Content, nil
	}
	fields, err := Parse(sc.Data, sc.Dialect())
	if err != nil {
		if !sc.PrefixSeparator {
			return NewFields(), strings.ReplaceAll(text, "\r\n", "\n"), nil
		}
		return nil, "", err
	}
	return fields, sc.Content, nil
}

func parseYAML(data string) (*Fields, error) {
	fields := NewFields()
	if strings.TrimSpace(data) == "" {
		return fields, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return fields, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("front matter must be a mapping, got %s", kindName(root.Kind))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		v, err := nodeToAny(root.Content[i+1])
		if err != nil {
			return nil, err
		}
		fields.Set(root.Content[i].Value, v)
	}
	return fields, nil
}

func nodeToAny(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeToAny(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeToAny(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToAny(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			var t time.Time
			if err := n.Decode(&t); err == nil {
				return t, nil
			}
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, nil
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "node"
	}
}

func parseJSON(data string) (*Fields, error) {
	fields := NewFields()
	dec := json.NewDecoder(bytes.NewBufferString("{" + data + "}"))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		fields.Set(key, normalizeJSON(v))
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after front matter")
	}
	return fields, nil
}

// normalizeJSON turns json.Number into int or float64.
func normalizeJSON(v any) any {
	switch vv := v.(type) {
	case json.Number:
		if i, err := vv.Int64(); err == nil {
			return int(i)
		}
		f, _ := vv.Float64()
		return f
	case map[string]any:
		for k, x := range vv {
			vv[k] = normalizeJSON(x)
		}
		return vv
	case []any:
		for i, x := range vv {
			vv[i] = normalizeJSON(x)
		}
		return vv
	default:
		return v
	}
}
