package preproc

import (
	"strconv"
	"strings"
)

// UserDefines holds user-supplied name-to-replacement-text substitutions
// applied during rewriting, the Go analogue of simplecpp.cpp's
// preprocessDefines pass (distinct from #define macros, which are expanded
// earlier by the directive driver).
type UserDefines map[string]string

// RewriteOaConst replaces a lone `__FILE__` token with the quoted current
// filename and a lone `__LINE__` token with its line number, in place,
// mirroring preprocessOaConst.
func RewriteOaConst(s *TokenStream, reg *Registry) {
	for id := s.Front(); id != NoToken; id = s.Next(id) {
		tok := s.At(id)
		switch tok.Str {
		case "__FILE__":
			tok.Str = strconv.Quote(reg.Path(tok.Location.File))
		case "__LINE__":
			tok.Str = strconv.FormatUint(uint64(tok.Location.Line), 10)
		}
	}
}

// RewriteUserDefines substitutes every occurrence of a user-defined name
// with its replacement text, mirroring preprocessDefines. Unlike #define
// macro expansion, these are whole-token literal substitutions with no
// argument lists.
func RewriteUserDefines(s *TokenStream, defs UserDefines) {
	if len(defs) == 0 {
		return
	}
	for id := s.Front(); id != NoToken; id = s.Next(id) {
		tok := s.At(id)
		if !tok.IsName() {
			continue
		}
		if repl, ok := defs[tok.Str]; ok {
			tok.Str = repl
		}
	}
}

// varType strips a type name from its last '_'-separated component and
// lowercases the remainder, matching simplecpp.cpp's getVarType (e.g.
// "STRING_VAR" -> "string", "DYN_UINT_VAR" -> "dyn_uint").
func varType(s string) string {
	idx := strings.LastIndex(s, "_")
	if idx < 0 {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:idx])
}

// varName strips the surrounding quotes from a string literal, returning ""
// (which signals "abort this rewrite, leave the source untouched") if s is
// not a properly quoted non-empty literal, matching getVarName.
func varName(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ""
	}
	return s[1 : len(s)-1]
}

// RewriteSharedPtr finds every `shared_ptr < TYPE >` token run and replaces
// it with the single lowercased/stripped TYPE token, mirroring
// preprocessSharedPtr. Only a single, non-nested type argument is
// supported, exactly as the original handles only one level of template
// nesting.
func RewriteSharedPtr(s *TokenStream) {
	for id := s.Front(); id != NoToken; {
		if _, ok := s.Match(id, "shared_ptr < %name% >"); !ok {
			id = s.Next(id)
			continue
		}
		lt := s.Next(id)
		typeID := s.Next(lt)
		gt := s.Next(typeID)

		s.At(id).Str = varType(s.At(typeID).Str)
		s.At(id).Flags = FlagName
		next := s.Next(gt)
		s.Delete(gt)
		s.Delete(typeID)
		s.Delete(lt)
		id = next
	}
}

// RewriteAddGlobal finds every
//
//	addGlobal ( "NAME" , TYPE_VAR )
//
// token run and replaces it with `global TYPE NAME`, mirroring
// preprocessAddGlobal. If the name token is not a properly quoted string
// literal the call is left untouched (the original's getVarName "abort"
// signal).
func RewriteAddGlobal(s *TokenStream) {
	for id := s.Front(); id != NoToken; id = s.Next(id) {
		_, ok := s.Match(id, "addGlobal ( %str% , %name% )")
		if !ok {
			continue
		}
		openParen := s.Next(id)
		nameTok := s.Next(openParen)
		comma := s.Next(nameTok)
		typeTok := s.Next(comma)
		closeParen := s.Next(typeTok)

		name := varName(s.At(nameTok).Str)
		if name == "" {
			continue
		}
		typ := varType(s.At(typeTok).Str)

		s.At(id).Str = "global"
		s.At(id).Flags = FlagKeyword
		s.Delete(openParen)
		s.Delete(nameTok)
		s.Delete(comma)
		s.Delete(closeParen)
		s.At(typeTok).Str = typ
		s.At(typeTok).Flags = FlagName
		s.InsertAfter(typeTok, Token{Str: name, Location: s.At(typeTok).Location, Flags: FlagName})
	}
}
