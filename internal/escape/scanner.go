package escape

import (
	"regexp"
	"strings"
)

// ScanState is the state of the tag scanner.
type ScanState int

const (
	StatePlaintext ScanState = iota
	StateVariableTag
	StateCommentTag
	StateBlockTag
)

func (s ScanState) String() string {
	switch s {
	case StatePlaintext:
		return "plaintext"
	case StateVariableTag:
		return "variable"
	case StateCommentTag:
		return "comment"
	case StateBlockTag:
		return "block"
	default:
		return "unknown"
	}
}

var tagOpening = regexp.MustCompile(`\{[{#%]`)

// stateHandler consumes input at the scanner position and returns the next state.
type stateHandler func(*scanner) ScanState

var handlers = [...]stateHandler{
	StatePlaintext:   (*scanner).plaintext,
	StateVariableTag: (*scanner).variableTag,
	StateCommentTag:  (*scanner).commentTag,
	StateBlockTag:    (*scanner).blockTag,
}

// openers maps each tag state to its opening delimiter.
var openers = map[ScanState]string{
	StateVariableTag: "{{",
	StateCommentTag:  "{#",
	StateBlockTag:    "{%",
}

type scanner struct {
	src string
	pos int
	out strings.Builder
	buf strings.Builder
	e   *Escaper
}

// EscapeAllTags replaces variable and block tags with tag placeholders and drops comments.
//
// Text without any tag opening is returned unchanged.
func (e *Escaper) EscapeAllTags(s string) string {
	if !tagOpening.MatchString(s) {
		return s
	}

	sc := &scanner{src: s, e: e}
	sc.out.Grow(len(s))
	state := StatePlaintext
	for sc.pos < len(sc.src) {
		state = handlers[state](sc)
	}

	// An unterminated tag is kept as literal text.
	if state != StatePlaintext {
		sc.out.WriteString(openers[state])
		sc.out.WriteString(sc.buf.String())
	}
	return sc.out.String()
}

// at reports whether the two bytes at the current position equal pair.
func (s *scanner) at(pair string) bool {
	return strings.HasPrefix(s.src[s.pos:], pair)
}

func (s *scanner) plaintext() ScanState {
	if s.src[s.pos] == '{' && s.pos+1 < len(s.src) {
		var next ScanState
		switch s.src[s.pos+1] {
		case '{':
			next = StateVariableTag
		case '#':
			next = StateCommentTag
		case '%':
			next = StateBlockTag
		}
		if next != StatePlaintext {
			s.pos += 2
			s.buf.Reset()
			return next
		}
	}
	s.out.WriteByte(s.src[s.pos])
	s.pos++
	return StatePlaintext
}

func (s *scanner) variableTag() ScanState {
	if s.at("}}") {
		s.pos += 2
		s.e.stats.Tags++
		s.out.WriteString(s.e.store(KindTag, "{{"+s.buf.String()+"}}"))
		return StatePlaintext
	}
	s.buf.WriteByte(s.src[s.pos])
	s.pos++
	return StateVariableTag
}

func (s *scanner) commentTag() ScanState {
	if s.at("#}") {
		s.pos += 2
		s.e.stats.Comments++
		return StatePlaintext
	}
	s.buf.WriteByte(s.src[s.pos])
	s.pos++
	return StateCommentTag
}

func (s *scanner) blockTag() ScanState {
	if s.at("%}") {
		s.pos += 2
		body := s.buf.String()
		// Paired and standalone tags are escaped the same way; the pairing is
		// resolved later by the template engine.
		if IsFullTag(s.src, body) {
			s.e.stats.PairedTags++
		}
		s.e.stats.Tags++
		s.out.WriteString(s.e.store(KindTag, "{%"+body+"%}"))
		return StatePlaintext
	}
	s.buf.WriteByte(s.src[s.pos])
	s.pos++
	return StateBlockTag
}

// TagName returns the name of a block tag body such as " include foo.html ".
func TagName(body string) string {
	body = strings.Trim(body, " \t\r\n-")
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		body = body[:i]
	}
	return body
}

// IsFullTag reports whether the block tag with the given body has a matching end tag in src.
func IsFullTag(src, body string) bool {
	name := TagName(body)
	if name == "" || strings.HasPrefix(name, "end") {
		return false
	}
	return strings.Contains(src, "end"+name)
}
