package tmpl

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVar
	tokenBlock
)

type token struct {
	kind tokenKind
	val  string
}

var endRaw = regexp.MustCompile(`\{%-?\s*endraw\s*-?%\}`)

// lex splits src into text, variable and block tokens. Comments are dropped.
// An unterminated opening delimiter is kept as text.
func lex(src string) ([]token, error) {
	var toks []token
	text := func(s string) {
		if s == "" {
			return
		}
		if n := len(toks); n > 0 && toks[n-1].kind == tokenText {
			toks[n-1].val += s
			return
		}
		toks = append(toks, token{kind: tokenText, val: s})
	}

	pos := 0
	for pos < len(src) {
		i, closer := nextOpening(src, pos)
		if i < 0 {
			text(src[pos:])
			break
		}
		text(src[pos:i])

		j := strings.Index(src[i+2:], closer)
		if j < 0 {
			text(src[i:])
			break
		}
		inner := src[i+2 : i+2+j]
		pos = i + 2 + j + len(closer)

		switch closer {
		case "#}":
		case "}}":
			toks = append(toks, token{kind: tokenVar, val: strings.TrimSpace(trimDash(inner))})
		case "%}":
			body := strings.TrimSpace(trimDash(inner))
			if tagName(body) != "raw" {
				toks = append(toks, token{kind: tokenBlock, val: body})
				continue
			}
			loc := endRaw.FindStringIndex(src[pos:])
			if loc == nil {
				return nil, errors.RenderError("unclosed raw tag").Build()
			}
			text(src[pos : pos+loc[0]])
			pos += loc[1]
		}
	}
	return toks, nil
}

func nextOpening(src string, from int) (int, string) {
	for i := from; i+1 < len(src); i++ {
		if src[i] != '{' {
			continue
		}
		switch src[i+1] {
		case '{':
			return i, "}}"
		case '%':
			return i, "%}"
		case '#':
			return i, "#}"
		}
	}
	return -1, ""
}

func trimDash(s string) string {
	s = strings.TrimPrefix(s, "-")
	return strings.TrimSuffix(s, "-")
}

func tagName(body string) string {
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		return body[:i]
	}
	return body
}

func tagArgs(body string) string {
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		return strings.TrimSpace(body[i:])
	}
	return ""
}

// SplitArgs splits tag arguments on whitespace, honouring single and double quotes.
func SplitArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote byte
		have  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
				continue
			}
			cur.WriteByte(c)
		case c == '"' || c == '\'':
			quote = c
			have = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if have {
				args = append(args, cur.String())
				cur.Reset()
				have = false
			}
		default:
			cur.WriteByte(c)
			have = true
		}
	}
	if have {
		args = append(args, cur.String())
	}
	return args
}
