package frontmatter

import (
	"strings"
)

// Dialect selects the front matter serialization.
type Dialect int

const (
	// YAML front matter, delimited by "---".
	YAML Dialect = iota
	// JSON front matter without the outer braces, delimited by ";;;".
	JSON
)

func (d Dialect) String() string {
	if d == JSON {
		return "json"
	}
	return "yaml"
}

// DefaultSeparator returns the separator a dialect uses when none is known.
func (d Dialect) DefaultSeparator() string {
	if d == JSON {
		return ";;;"
	}
	return "---"
}

// Scaffold is a document split into its front matter block and body.
type Scaffold struct {
	// Separator is the delimiter line, e.g. "---" or ";;;".
	Separator string
	// PrefixSeparator is true when the document opens with the separator.
	PrefixSeparator bool
	Data            string
	Content         string
}

// HasFrontMatter reports whether a separator was found.
func (s Scaffold) HasFrontMatter() bool {
	return s.Separator != ""
}

// Dialect is JSON iff the separator begins with ';'.
func (s Scaffold) Dialect() Dialect {
	if strings.HasPrefix(s.Separator, ";") {
		return JSON
	}
	return YAML
}

// SplitScaffold separates the front matter block of text from its body.
//
// Two layouts are recognised: a block enclosed by a separator line on both
// sides ("---\ndata\n---\nbody"), and a leading data block closed by a single
// separator line ("data\n---\nbody"). A separator is three or more '-' or ';'.
// Text matching neither layout is returned as Content only.
func SplitScaffold(text string) Scaffold {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if sep := separatorAt(text); sep != "" && strings.HasPrefix(text[len(sep):], "\n") {
		rest := text[len(sep)+1:]
		// The closing separator must match the opening one exactly.
		if i := indexClosing(rest, sep); i > 0 {
			data := rest[:i]
			content := strings.TrimPrefix(rest[i+1+len(sep):], "\n")
			return Scaffold{Separator: sep, PrefixSeparator: true, Data: data, Content: content}
		}
	}

	for i := 0; i < len(text); {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			break
		}
		lineStart := i + nl + 1
		if lineStart > 1 {
			if sep := separatorAt(text[lineStart:]); sep != "" {
				after := text[lineStart+len(sep):]
				if after == "" || after[0] == '\n' {
					return Scaffold{
						Separator: sep,
						Data:      text[:i+nl],
						Content:   strings.TrimPrefix(after, "\n"),
					}
				}
			}
		}
		i = lineStart
	}

	return Scaffold{Content: text}
}

// indexClosing finds "\n<sep>" followed by a newline or end of text, at a
// position leaving a non-empty data block.
func indexClosing(rest, sep string) int {
	needle := "\n" + sep
	from := 0
	for {
		i := strings.Index(rest[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(needle)
		if i > 0 && (end == len(rest) || rest[end] == '\n') {
			return i
		}
		from = i + 1
	}
}

// separatorAt returns the run of three or more '-' or ';' at the start of s.
func separatorAt(s string) string {
	if s == "" || (s[0] != '-' && s[0] != ';') {
		return ""
	}
	c := s[0]
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return s[:n]
}
