// Package slug derives file and URL safe identifiers from titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Case is the case transform applied to a slug.
type Case int

const (
	CaseNone Case = iota
	CaseLower
	CaseUpper
)

func (c Case) String() string {
	switch c {
	case CaseLower:
		return "lower"
	case CaseUpper:
		return "upper"
	default:
		return "none"
	}
}

var (
	control = regexp.MustCompile(`[\x00-\x1f]`)
	special = regexp.MustCompile(`[\s~` + "`" + `!@#$%^&*()\-_+=\[\]{}|\\;:"'<>,.?/]+`)
)

// Make slugifies s with "-" as separator.
//
// Diacritics are removed, control characters dropped, runs of whitespace and
// punctuation become a single separator and separators at either end are
// trimmed.
func Make(s string, c Case) string {
	return MakeWith(s, "-", c)
}

// MakeWith slugifies s with a custom separator.
func MakeWith(s, sep string, c Case) string {
	s = stripDiacritics(s)
	s = control.ReplaceAllString(s, "")
	s = special.ReplaceAllString(s, sep)
	if sep != "" {
		s = collapse(s, sep)
		for strings.HasPrefix(s, sep) {
			s = s[len(sep):]
		}
		for strings.HasSuffix(s, sep) {
			s = s[:len(s)-len(sep)]
		}
	}

	switch c {
	case CaseLower:
		return cases.Lower(language.Und).String(s)
	case CaseUpper:
		return cases.Upper(language.Und).String(s)
	default:
		return s
	}
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func collapse(s, sep string) string {
	double := sep + sep
	for strings.Contains(s, double) {
		s = strings.ReplaceAll(s, double, sep)
	}
	return s
}
