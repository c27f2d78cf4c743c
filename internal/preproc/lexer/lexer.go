package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
)

// Scanner turns source bytes into a flat TokenStream, one file at a time.
// A Scanner is not safe for concurrent use; callers preprocessing multiple
// translation units in parallel (spec.md §5) each construct their own.
type Scanner struct {
	reg  *preproc.Registry
	sink *diag.Sink
}

// NewScanner returns a Scanner reporting diagnostics to sink and interning
// filenames through reg.
func NewScanner(reg *preproc.Registry, sink *diag.Sink) *Scanner {
	return &Scanner{reg: reg, sink: sink}
}

// ScanFile appends data to out as a flat sequence of tokens, one per name,
// number, string/char literal, comment, or single punctuation character.
// Multi-character operators are fused later by CombineOperators. ScanFile
// returns an error only for conditions simplecpp.cpp treats as fatal for
// the whole translation unit (a non-ASCII byte outside any literal).
func (sc *Scanner) ScanFile(path string, data []byte, out *preproc.TokenStream) error {
	decoded, err := stripBOMAndDecode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	fid := sc.reg.Intern(path)
	src := string(decoded)
	c := &scan{sc: sc, fid: fid, src: src, n: len(src), cur: newCursor(), out: out}
	return c.run()
}

type scan struct {
	sc  *Scanner
	fid preproc.FileID
	src string
	n   int
	i   int
	cur cursor
	out *preproc.TokenStream
}

func (c *scan) loc() preproc.Location {
	return preproc.Location{File: c.fid, Line: c.cur.line, Col: c.cur.col}
}

func (c *scan) peek() byte {
	if c.i >= c.n {
		return 0
	}
	return c.src[c.i]
}

func (c *scan) peekAt(off int) byte {
	if c.i+off >= c.n {
		return 0
	}
	return c.src[c.i+off]
}

// advanceBytes moves the cursor past the given byte range of c.src, handling
// line/column bookkeeping rune by rune.
func (c *scan) advanceBytes(b int) {
	end := c.i + b
	for c.i < end {
		r, size := utf8.DecodeRuneInString(c.src[c.i:])
		c.cur = c.cur.advance(r)
		c.i += size
	}
}

func (c *scan) emit(str string, op byte, flags preproc.Flags) {
	c.out.PushBack(preproc.Token{Str: str, Op: op, Location: c.loc(), Flags: flags})
}

func (c *scan) run() error {
	for c.i < c.n {
		b := c.src[c.i]

		switch {
		case b == '\r':
			c.advanceBytes(1)

		case b == '\\' && (c.peekAt(1) == '\n' || c.peekAt(1) == '\r'):
			c.advanceLineContinuation()

		case b == ' ' || b == '\t' || b == '\v' || b == '\f':
			c.advanceBytes(1)

		case b == '\n':
			c.advanceBytes(1)

		case b == '#' && c.atLineStart() && c.lineMarkerAhead():
			if err := c.consumeLineMarker(); err != nil {
				return err
			}

		case b == '/' && c.peekAt(1) == '/':
			c.consumeLineComment()

		case b == '/' && c.peekAt(1) == '*':
			c.consumeBlockComment()

		case isIdentStart(b):
			c.consumeIdentOrRawString()

		case isDigit(b):
			c.consumeNumber()

		case b == '"':
			c.consumeQuoted('"')

		case b == '\'':
			c.consumeQuoted('\'')

		case b < 0x80:
			loc := c.loc()
			c.emit(string(b), b, 0)
			_ = loc
			c.advanceBytes(1)

		default:
			c.sc.sink.Reportf(diag.UnhandledCharError, c.loc().Diag(c.sc.reg),
				"unhandled character 0x%02x", b)
			return fmt.Errorf("unhandled character 0x%02x at %s", b, c.loc().Diag(c.sc.reg))
		}
	}
	return nil
}

// advanceLineContinuation consumes a backslash immediately followed by a
// newline, folding the two physical lines into one logical line without
// emitting a token. A backslash separated from the newline by whitespace is
// not handled here: run emits it as an ordinary punctuation token and no
// portability diagnostic is reported.
func (c *scan) advanceLineContinuation() {
	start := c.i
	c.advanceBytes(1) // the backslash
	if c.peek() == '\r' {
		c.advanceBytes(1)
	}
	if c.peek() == '\n' {
		c.advanceBytes(1)
	}
	_ = start
}

func (c *scan) atLineStart() bool {
	return c.cur.col == 1
}

// lineMarkerAhead reports whether the text at c.i looks like a GCC-style
// line marker (`# line N "file"`, `# N "file"`, `# file "..."`, `# endfile`)
// rather than an ordinary `#` operator token.
func (c *scan) lineMarkerAhead() bool {
	rest := c.src[c.i:]
	rest = strings.TrimPrefix(rest, "#")
	rest = strings.TrimLeft(rest, " \t")
	return strings.HasPrefix(rest, "line ") ||
		strings.HasPrefix(rest, "file ") ||
		strings.HasPrefix(rest, "endfile") ||
		(len(rest) > 0 && isDigit(rest[0]))
}

// consumeLineMarker parses one `#line`-family marker and repositions the
// scanner's reported file/line for subsequent tokens, per simplecpp.cpp's
// lastLine() handling. The marker itself produces no token.
func (c *scan) consumeLineMarker() error {
	lineStart := c.i
	for c.i < c.n && c.src[c.i] != '\n' {
		c.i++
	}
	text := c.src[lineStart:c.i]
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(text), "#"))

	var lineNum string
	var file string
	switch {
	case len(fields) >= 1 && fields[0] == "endfile":
		// The marker line is skipped. No stack of earlier markers is kept,
		// so the previous file/line is not restored.
	case len(fields) >= 1 && fields[0] == "line" && len(fields) >= 2:
		lineNum = fields[1]
		if len(fields) >= 3 {
			file = strings.Trim(fields[2], `"`)
		}
	case len(fields) >= 1 && fields[0] == "file" && len(fields) >= 2:
		file = strings.Trim(fields[1], `"`)
	case len(fields) >= 1 && isDigit(fields[0][0]):
		lineNum = fields[0]
		if len(fields) >= 2 {
			file = strings.Trim(fields[1], `"`)
		}
	}
	if file != "" {
		c.fid = c.sc.reg.Intern(file)
	}
	if lineNum != "" {
		if v, ok := preproc.ParseIntLiteral(lineNum); ok {
			c.cur.line = uint32(v)
		}
	}
	c.cur.col = 1
	if c.i < c.n {
		c.i++ // consume the newline
		c.cur.line++
		c.cur.col = 1
	}
	return nil
}

func (c *scan) consumeLineComment() {
	loc := c.loc()
	start := c.i
	for c.i < c.n && c.src[c.i] != '\n' {
		// A backslash-newline inside a line comment continues the comment
		// onto the next physical line, per simplecpp.cpp.
		if c.src[c.i] == '\\' && c.peekAt(1) == '\n' {
			c.i += 2
			continue
		}
		c.i++
	}
	text := c.src[start:c.i]
	c.advanceBytes(c.i - start)
	c.out.PushBack(preproc.Token{Str: text, Location: loc, Flags: preproc.FlagComment})
}

func (c *scan) consumeBlockComment() {
	loc := c.loc()
	start := c.i
	end := c.i + 2
	for end < c.n && !(c.src[end] == '*' && end+1 < c.n && c.src[end+1] == '/') {
		end++
	}
	if end < c.n {
		end += 2
	}
	text := c.src[start:end]
	c.advanceBytes(end - start)
	c.out.PushBack(preproc.Token{Str: text, Location: loc, Flags: preproc.FlagComment})
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// rawStringMarkers lists every recognized raw-string introducer, longest
// first so "u8R" is tried before a spurious match against "uR"/"R". prefix
// is the encoding prefix simplecpp.cpp's escapeString step reattaches to
// the final token (the marker's own trailing "R" is never part of it).
var rawStringMarkers = []struct {
	marker string
	prefix string
}{
	{"u8R", "u8"},
	{"LR", "L"},
	{"uR", "u"},
	{"UR", "U"},
	{"R", ""},
}

// consumeIdentOrRawString handles identifiers/keywords, and the special
// R"delim(...)delim" raw string form (with its optional u8/L/u/U
// encoding prefix), mirroring simplecpp.cpp's isStringLiteralPrefix
// handling.
func (c *scan) consumeIdentOrRawString() {
	for _, m := range rawStringMarkers {
		if c.peekAt(len(m.marker)) == '"' && strings.HasPrefix(c.src[c.i:], m.marker) {
			if c.consumeRawString(m.marker, m.prefix) {
				return
			}
			break
		}
	}
	loc := c.loc()
	start := c.i
	for c.i < c.n && isIdentCont(c.src[c.i]) {
		c.i++
	}
	text := c.src[start:c.i]
	c.cur.col += uint32(len(text))
	flags := preproc.FlagName
	if isKeyword(text) {
		flags |= preproc.FlagKeyword
	}
	if isControlFlowKeyword(text) {
		flags |= preproc.FlagControlFlowKeyword
	}
	if isStandardType(text) {
		flags |= preproc.FlagStandardType
	}
	if text == "true" || text == "false" {
		flags |= preproc.FlagBool
	}
	c.out.PushBack(preproc.Token{Str: text, Location: loc, Flags: flags})
}

// consumeRawString consumes marker+"delim(body)delim\"" and emits it as one
// string token whose value is prefix followed by the escaped form of body,
// matching simplecpp.cpp's escapeString + prefix-reattachment handling:
// the delimiters and the marker's own "R" never survive into the token,
// only the body (re-escaped as an ordinary string) and any encoding
// prefix. Returns false (consuming nothing) if the text at the cursor is
// not actually a raw string literal opener.
func (c *scan) consumeRawString(marker, prefix string) bool {
	loc := c.loc()
	start := c.i
	i := c.i + len(marker) + 1 // past the marker and the opening quote
	delimStart := i
	for i < c.n && c.src[i] != '(' && c.src[i] != '"' && c.src[i] != '\\' && c.src[i] != ' ' {
		i++
	}
	if i >= c.n || c.src[i] != '(' {
		return false
	}
	delim := c.src[delimStart:i]
	closer := ")" + delim + `"`
	bodyStart := i + 1
	rel := strings.Index(c.src[bodyStart:], closer)
	if rel < 0 {
		return false
	}
	body := c.src[bodyStart : bodyStart+rel]
	stop := bodyStart + rel + len(closer)
	text := prefix + escapeRawStringBody(body)
	c.advanceBytes(stop - start)
	c.out.PushBack(preproc.Token{Str: text, Location: loc, Flags: preproc.FlagLiteral})
	return true
}

// escapeRawStringBody renders body (the raw text between a raw string's
// delimiters) as an ordinary escaped string literal: backslash, double
// quote, and single quote each gain a preceding backslash, matching
// simplecpp.cpp's escapeString. Nothing else in body is touched.
func escapeRawStringBody(body string) string {
	var b strings.Builder
	b.Grow(len(body) + 2)
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch == '\\' || ch == '"' || ch == '\'' {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteByte('"')
	return b.String()
}

func (c *scan) consumeNumber() {
	loc := c.loc()
	start := c.i
	for c.i < c.n && (isDigit(c.src[c.i]) || c.src[c.i] == '\'' ||
		isIdentCont(c.src[c.i]) || c.src[c.i] == '.' ||
		((c.src[c.i] == '+' || c.src[c.i] == '-') && c.i > start &&
			(c.src[c.i-1] == 'e' || c.src[c.i-1] == 'E' || c.src[c.i-1] == 'p' || c.src[c.i-1] == 'P'))) {
		c.i++
	}
	text := c.src[start:c.i]
	c.cur.col += uint32(len(text))
	c.out.PushBack(preproc.Token{Str: text, Location: loc, Flags: preproc.FlagNumber})
}

// consumeQuoted scans a "..." or '...' literal, honoring backslash escapes,
// and emits it as a single token including its delimiters.
func (c *scan) consumeQuoted(delim byte) {
	loc := c.loc()
	start := c.i
	c.i++
	for c.i < c.n && c.src[c.i] != delim {
		if c.src[c.i] == '\\' && c.i+1 < c.n {
			c.i += 2
			continue
		}
		if c.src[c.i] == '\n' {
			break
		}
		c.i++
	}
	if c.i < c.n && c.src[c.i] == delim {
		c.i++
	}
	text := c.src[start:c.i]
	c.cur.col += uint32(len(text))
	flags := preproc.FlagLiteral
	c.out.PushBack(preproc.Token{Str: text, Location: loc, Flags: flags})
}

func isKeyword(s string) bool {
	switch s {
	case "if", "else", "for", "while", "do", "break", "continue", "return",
		"switch", "case", "default", "struct", "class", "enum", "void",
		"const", "static", "global", "public", "private", "protected",
		"new", "delete", "this", "true", "false", "and", "or", "not",
		"bitand", "bitor", "xor", "compl", "not_eq":
		return true
	default:
		return false
	}
}

func isControlFlowKeyword(s string) bool {
	switch s {
	case "if", "else", "for", "while", "do", "break", "continue", "return",
		"switch", "case", "default":
		return true
	default:
		return false
	}
}

func isStandardType(s string) bool {
	switch s {
	case "int", "float", "bool", "string", "char", "long", "uint",
		"unsigned", "dyn_string", "anytype", "mapping":
		return true
	default:
		return false
	}
}
