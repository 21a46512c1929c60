package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// DateLayout is the layout used for timestamps written to front matter.
const DateLayout = "2006-01-02 15:04:05"

// Stringify serializes fields in the given dialect followed by the closing
// separator line. An empty separator selects the dialect default.
//
// JSON output is the indented object with its outer braces and first level
// of indentation removed, so that it can sit between two ";;;" lines.
func Stringify(fields *Fields, d Dialect, separator string) (string, error) {
	if separator == "" {
		separator = d.DefaultSeparator()
	}

	var (
		body string
		err  error
	)
	if d == JSON {
		body, err = stringifyJSON(fields)
	} else {
		body, err = stringifyYAML(fields)
	}
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFrontMatter, "cannot serialize front matter").
			WithContext("dialect", d.String()).
			Build()
	}
	return body + separator + "\n", nil
}

func stringifyYAML(fields *Fields) (string, error) {
	if fields.Len() == 0 {
		return "", nil
	}

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range fields.Keys() {
		v, _ := fields.Get(k)
		valNode, err := nodeFromAny(v)
		if err != nil {
			return "", err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, valNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		_ = enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func stringifyJSON(fields *Fields) (string, error) {
	if fields.Len() == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range fields.Keys() {
		v, _ := fields.Get(k)
		key, err := marshalJSON(k, "")
		if err != nil {
			return "", err
		}
		val, err := marshalJSON(jsonValue(v), "  ")
		if err != nil {
			return "", err
		}
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(val)
		if i < fields.Len()-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")

	out := strings.ReplaceAll(b.String(), "\n  ", "\n")
	out = strings.TrimPrefix(out, "{")
	out = strings.TrimSuffix(out, "}")
	return out, nil
}

func marshalJSON(v any, prefix string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// jsonValue formats timestamps the way YAML output does.
func jsonValue(v any) any {
	switch vv := v.(type) {
	case time.Time:
		return vv.UTC().Format(DateLayout)
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, x := range vv {
			out[k] = jsonValue(x)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, x := range vv {
			out[i] = jsonValue(x)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nodeFromStringMap(m map[string]any) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range sortedKeys(m) {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode, err := nodeFromAny(m[k])
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, keyNode, valNode)
	}
	return n, nil
}

func nodeFromAny(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: vv}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(vv)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(vv)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(vv, 10)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(vv, 'g', -1, 64)}, nil
	case time.Time:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: vv.UTC().Format(DateLayout)}, nil
	case *Fields:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range vv.Keys() {
			x, _ := vv.Get(k)
			valNode, err := nodeFromAny(x)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, valNode)
		}
		return n, nil
	case map[string]any:
		return nodeFromStringMap(vv)
	case map[any]any:
		converted := make(map[string]any, len(vv))
		for k, val := range vv {
			converted[fmt.Sprint(k)] = val
		}
		return nodeFromStringMap(converted)
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range vv {
			node, err := nodeFromAny(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, node)
		}
		return seq, nil
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range vv {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		}
		return seq, nil
	default:
		// Fall back to yaml's own encoding for uncommon scalar types.
		var node yaml.Node
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return &node, nil
	}
}
