package checks

import (
	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
)

// CheckIgnoredReturnValue walks the preprocessed output looking for
// `NAME ( ... ) ;` statements that call a known library function whose
// return value must not be discarded (UseRetVal), and reports each one,
// mirroring checkfunctions.cpp's ignored-return-value check. It is a
// syntactic approximation: without a full AST it reports every known call
// whose closing parenthesis is followed by `;`, so `x = f(y);` is reported
// just like the bare call statement `f(y);`.
func CheckIgnoredReturnValue(s *preproc.TokenStream, reg *preproc.Registry, sink *diag.Sink, lib Library) {
	for id := s.Front(); id != preproc.NoToken; id = s.Next(id) {
		tok := s.At(id)
		if !tok.IsName() {
			continue
		}
		next := s.Next(id)
		if next == preproc.NoToken || s.At(next).Op != '(' {
			continue
		}
		fn, known := lib[tok.Str]
		if !known || !fn.UseRetVal {
			continue
		}
		closeParen := matchingParen(s, next)
		if closeParen == preproc.NoToken {
			continue
		}
		afterCall := s.Next(closeParen)
		if afterCall != preproc.NoToken && s.At(afterCall).Op == ';' {
			sink.Reportf(diag.Warning, tok.Location.Diag(reg),
				"return value of %q is ignored", tok.Str)
		}
	}
}

// CheckMinArgs reports calls to known library functions passing fewer
// arguments than MinArgs declares, a lightweight arity check in the spirit
// of checkfunctions.cpp's argument-count validation.
func CheckMinArgs(s *preproc.TokenStream, reg *preproc.Registry, sink *diag.Sink, lib Library) {
	for id := s.Front(); id != preproc.NoToken; id = s.Next(id) {
		tok := s.At(id)
		if !tok.IsName() {
			continue
		}
		next := s.Next(id)
		if next == preproc.NoToken || s.At(next).Op != '(' {
			continue
		}
		fn, known := lib[tok.Str]
		if !known || fn.MinArgs <= 0 {
			continue
		}
		closeParen := matchingParen(s, next)
		if closeParen == preproc.NoToken {
			continue
		}
		n := countArgs(s, next, closeParen)
		if n < fn.MinArgs {
			sink.Reportf(diag.Warning, tok.Location.Diag(reg),
				"%q called with %d argument(s), expected at least %d", tok.Str, n, fn.MinArgs)
		}
	}
}

func matchingParen(s *preproc.TokenStream, open preproc.TokenID) preproc.TokenID {
	depth := 0
	for id := open; id != preproc.NoToken; id = s.Next(id) {
		switch s.At(id).Op {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return id
			}
		}
	}
	return preproc.NoToken
}

func countArgs(s *preproc.TokenStream, open, closeParen preproc.TokenID) int {
	if s.Next(open) == closeParen {
		return 0
	}
	depth := 0
	n := 1
	for id := s.Next(open); id != closeParen; id = s.Next(id) {
		switch s.At(id).Op {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				n++
			}
		}
	}
	return n
}
