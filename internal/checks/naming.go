package checks

import (
	"unicode"

	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
)

// NamingStyle is a convention CheckVariableNaming enforces.
type NamingStyle int

const (
	// StyleCamelCase requires identifiers to start with a lowercase letter
	// and contain no underscores, the convention
	// checknaming.cpp::checkVariableNaming defaults to.
	StyleCamelCase NamingStyle = iota
	// StylePrefixedGlobal additionally requires global declarations (the
	// `global TYPE NAME` form C8 rewrites `addGlobal` calls into) to be
	// prefixed with "g_".
	StylePrefixedGlobal
)

// CheckVariableNaming walks the preprocessed output of one translation unit
// for `global TYPE NAME` declarations (the form C8's RewriteAddGlobal
// produces) and reports names that don't match style, mirroring
// checknaming.cpp's CheckNaming::checkVariableNaming, gated the same way on
// a single style setting rather than a full symbol database.
func CheckVariableNaming(s *preproc.TokenStream, reg *preproc.Registry, sink *diag.Sink, style NamingStyle) {
	for id := s.Front(); id != preproc.NoToken; id = s.Next(id) {
		end, ok := s.Match(id, "global %name% %name%")
		if !ok {
			continue
		}
		nameID := s.Next(s.Next(id))
		name := s.At(nameID).Str
		if !validName(name, style) {
			sink.Reportf(diag.Warning, s.At(nameID).Location.Diag(reg),
				"global variable %q does not follow naming convention", name)
		}
		_ = end
	}
}

func validName(name string, style NamingStyle) bool {
	if name == "" {
		return false
	}
	if style == StylePrefixedGlobal {
		const prefix = "g_"
		if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			return false
		}
		name = name[len(prefix):]
	}
	r := []rune(name)
	if !unicode.IsLower(r[0]) {
		return false
	}
	for _, c := range r {
		if c == '_' {
			return false
		}
	}
	return true
}
