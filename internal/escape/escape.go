package escape

import (
	"regexp"
	"strconv"
	"strings"
)

// Sentinels wrapping pre-rendered code (e.g. syntax highlighted blocks).
const (
	CodeBlockOpen  = "<hexoPostRenderCodeBlock>"
	CodeBlockClose = "</hexoPostRenderCodeBlock>"
)

// Placeholder kinds.
const (
	KindCode = "code"
	KindTag  = "swig"
)

// delimiter separates the kind from the index inside a placeholder.
const delimiter = "￼"

var (
	codeBlockPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(CodeBlockOpen) + `(.+?)` + regexp.QuoteMeta(CodeBlockClose))

	// Renderers may HTML-escape placeholders that ended up inside code, so both forms are accepted.
	tagPlaceholder  = placeholderPattern(KindTag)
	codePlaceholder = placeholderPattern(KindCode)
)

func placeholderPattern(kind string) *regexp.Regexp {
	return regexp.MustCompile(`(?:<|&lt;)!--` + kind + delimiter + `(\d+)--(?:>|&gt;)`)
}

// Placeholder returns the marker text used for index i of the given kind.
func Placeholder(kind string, i int) string {
	return "<!--" + kind + delimiter + strconv.Itoa(i) + "-->"
}

// Stats counts what an Escaper has done so far.
type Stats struct {
	CodeBlocks int
	Tags       int
	// PairedTags counts block tags with a matching end tag somewhere in the input.
	PairedTags int
	Comments   int
}

// Escaper escapes and restores the fragile regions of one document.
type Escaper struct {
	table Table
	stats Stats
}

// New returns an Escaper with an empty table.
func New() *Escaper {
	return &Escaper{}
}

// Stats returns the escape counters.
func (e *Escaper) Stats() Stats {
	return e.stats
}

// Table exposes the escaper's table for inspection.
func (e *Escaper) Table() *Table {
	return &e.table
}

func (e *Escaper) store(kind, s string) string {
	return Placeholder(kind, e.table.Put(s))
}

// EscapeCodeBlocks replaces every sentinel-wrapped code region with a code placeholder.
func (e *Escaper) EscapeCodeBlocks(s string) string {
	if !strings.Contains(s, CodeBlockOpen) {
		return s
	}
	return codeBlockPattern.ReplaceAllStringFunc(s, func(m string) string {
		inner := m[len(CodeBlockOpen) : len(m)-len(CodeBlockClose)]
		e.stats.CodeBlocks++
		return e.store(KindCode, inner)
	})
}

// RestoreAllTags substitutes tag placeholders with their original text.
func (e *Escaper) RestoreAllTags(s string) (string, error) {
	return e.restore(tagPlaceholder, s)
}

// RestoreCodeBlocks substitutes code placeholders with their original text.
func (e *Escaper) RestoreCodeBlocks(s string) (string, error) {
	return e.restore(codePlaceholder, s)
}

func (e *Escaper) restore(re *regexp.Regexp, s string) (string, error) {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		idx, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil {
			idx = -1
		}
		value, err := e.table.Take(idx)
		if err != nil {
			return "", err
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}
