package preproc

import (
	"strconv"
	"strings"
)

// Match implements the Token::Match pattern language from the original
// checker's lib/token.cpp: a whitespace-separated sequence of pattern words,
// each matched against one token in turn. Supported word forms:
//
//	%var%, %num%, %name%, %str%, %char%, %bool%, %any%   class wildcards
//	%op%, %cop%, %or%, %oror%, %comp%, %assign%          operator wildcards
//	[abc]                                                one char of a set
//	a|b|c                                                literal alternatives
//	!!x                                                  anything but x
//	literal text                                         exact match
//
// id is the first token to test; Match returns the token following the last
// matched word, or NoToken if the pattern does not match starting at id.
func (s *TokenStream) Match(id TokenID, pattern string) (TokenID, bool) {
	words := strings.Fields(pattern)
	cur := id
	for _, w := range words {
		if cur == NoToken {
			return NoToken, false
		}
		tok := s.At(cur)
		if !matchWord(tok, w) {
			return NoToken, false
		}
		cur = s.Next(cur)
	}
	return cur, true
}

func matchWord(tok *Token, word string) bool {
	if strings.HasPrefix(word, "!!") {
		return !matchWord(tok, word[2:])
	}
	if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") && len(word) >= 2 {
		set := word[1 : len(word)-1]
		return len(tok.Str) == 1 && strings.IndexByte(set, tok.Str[0]) >= 0
	}
	if strings.Contains(word, "|") && !strings.HasPrefix(word, "%") {
		for _, alt := range strings.Split(word, "|") {
			if matchWord(tok, alt) {
				return true
			}
		}
		return false
	}
	if strings.HasPrefix(word, "%") && strings.HasSuffix(word, "%") {
		return matchPercent(tok, word)
	}
	return tok.Str == word
}

func matchPercent(tok *Token, class string) bool {
	switch class {
	case "%any%":
		return true
	case "%var%", "%name%":
		return tok.IsName()
	case "%num%":
		return tok.IsNumber()
	case "%bool%":
		return tok.Str == "true" || tok.Str == "false"
	case "%str%":
		return len(tok.Str) >= 2 && tok.Str[0] == '"'
	case "%char%":
		return len(tok.Str) >= 2 && tok.Str[0] == '\''
	case "%type%":
		return tok.IsName() && !tok.Flags.Has(FlagKeyword)
	case "%op%":
		return tok.Op != 0 || isMultiCharOp(tok.Str)
	case "%cop%":
		return tok.Str == "++" || tok.Str == "--"
	case "%or%":
		return tok.Str == "|"
	case "%oror%":
		return tok.Str == "||"
	case "%comp%":
		return tok.IsComparisonOp()
	case "%assign%":
		return tok.IsAssignmentOp()
	default:
		return false
	}
}

func isMultiCharOp(s string) bool {
	switch s {
	case "==", "!=", "<=", ">=", "&&", "||", "<<", ">>", "::", "->",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "++", "--":
		return true
	default:
		return false
	}
}

// ParseIntLiteral parses a CTRL/C-style integer literal (decimal, 0x hex, 0
// octal, with optional digit separators and u/l/ll suffixes), mirroring
// simplecpp.cpp's numeric handling during constant folding.
func ParseIntLiteral(s string) (int64, bool) {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimRight(s, "uUlL")
	if s == "" {
		return 0, false
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		uv, uerr := strconv.ParseUint(s, base, 64)
		if uerr != nil {
			return 0, false
		}
		return int64(uv), true
	}
	return v, true
}
