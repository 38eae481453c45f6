package engine

import "strings"

// preprocessSource rewrites script source into something zygomys reads the
// way model authors expect:
//
//	:chamber-radius   ->  "__kw_chamber-radius"
//	sculpted-ribs     ->  sculpted_ribs
//	; comment         ->  // comment
//
// Keywords become string literals so they can never shadow or be shadowed
// by script variables. A hyphen between identifier characters is part of
// the name, not subtraction. Quoted text passes through unchanged, and
// := is left alone.
func preprocessSource(source string) string {
	r := rewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		r.step()
	}
	return r.out.String()
}

type rewriter struct {
	src string
	pos int
	out strings.Builder
}

func (r *rewriter) peek(off int) byte {
	if i := r.pos + off; i >= 0 && i < len(r.src) {
		return r.src[i]
	}
	return 0
}

func (r *rewriter) step() {
	c := r.src[r.pos]
	switch {
	case c == '"':
		r.quoted('"', true)
	case c == '`':
		r.quoted('`', false)
	case c == ';':
		r.comment()
	case c == ':' && r.peek(1) == '=':
		r.copy(2)
	case c == ':' && isLetter(r.peek(1)):
		r.keyword()
	case c == '-' && r.pos > 0 && isIdentChar(r.peek(-1)) && isLetter(r.peek(1)):
		r.out.WriteByte('_')
		r.pos++
	default:
		r.copy(1)
	}
}

func (r *rewriter) copy(n int) {
	end := min(r.pos+n, len(r.src))
	r.out.WriteString(r.src[r.pos:end])
	r.pos = end
}

// quoted copies a literal through its closing delimiter. An unterminated
// literal runs to the end of input.
func (r *rewriter) quoted(delim byte, escapes bool) {
	r.copy(1)
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == delim:
			r.copy(1)
			return
		case escapes && c == '\\':
			r.copy(2)
		default:
			r.copy(1)
		}
	}
}

// comment turns a run of ';' into "//" and copies the rest of the line.
func (r *rewriter) comment() {
	r.out.WriteString("//")
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	end := strings.IndexByte(r.src[r.pos:], '\n')
	if end < 0 {
		end = len(r.src) - r.pos
	}
	r.copy(end)
}

func (r *rewriter) keyword() {
	end := r.pos + 1
	for end < len(r.src) && isKWChar(r.src[end]) {
		end++
	}
	r.out.WriteByte('"')
	r.out.WriteString(kwPrefix)
	r.out.WriteString(r.src[r.pos+1 : end])
	r.out.WriteByte('"')
	r.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
