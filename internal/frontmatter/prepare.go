package frontmatter

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PrepareValues returns a copy of values that is safe to interpolate into a
// front matter template of the given dialect.
//
// Timestamps become DateLayout strings in UTC. Strings are wrapped in double
// quotes (escaping inner quotes) in JSON mode, or in YAML mode when they would
// otherwise be read as something other than a plain string. Other values are
// copied unchanged.
func PrepareValues(values map[string]any, d Dialect) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch vv := v.(type) {
		case time.Time:
			out[k] = vv.UTC().Format(DateLayout)
		case *time.Time:
			if vv == nil {
				out[k] = v
				continue
			}
			out[k] = vv.UTC().Format(DateLayout)
		case string:
			if d == JSON || needsQuoting(vv) {
				out[k] = Quote(vv)
			} else {
				out[k] = vv
			}
		default:
			out[k] = v
		}
	}
	return out
}

var quoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Quote wraps s in double quotes. Backslashes, quotes and line breaks are
// escaped so that YAML and JSON both read back s.
func Quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// indicators start YAML syntax when they lead a plain scalar.
const indicators = "*&|>%@`!,?-"

func needsQuoting(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, `:{}[]'"\`+"\n\r\t") ||
		strings.HasPrefix(s, "#") ||
		strings.HasPrefix(s, "!!") ||
		strings.ContainsRune(indicators, rune(s[0])) ||
		strings.TrimSpace(s) != s {
		return true
	}
	// Plain scalars such as "true", "null" or "2024" would not read back as strings.
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return true
	}
	str, ok := v.(string)
	return !ok || str != s
}
