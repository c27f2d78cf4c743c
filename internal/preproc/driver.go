package preproc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc/include"
)

// IfState is one level of the #if/#elif/#else nesting stack (spec.md §4.5).
type IfState int

const (
	IfTrue IfState = iota
	IfElseIsTrue
	IfAlwaysFalse
)

// Loader loads and fully lexes (scans + combines operators) one source
// file by path, returning a fresh token stream for it. The driver never
// scans files itself — that would require importing the lexer package,
// which itself depends on preproc's types — so callers (typically
// internal/batch) supply a Loader backed by lexer.Scanner.
type Loader func(path string) (*TokenStream, error)

// Driver runs the C7 main preprocessing loop: tracking the #if nesting
// state, resolving and inlining #include/#uses directives, expanding
// #define macros, and applying the single-token rewrites (__FILE__,
// __LINE__, user defines) to every token that survives; the addGlobal and
// shared_ptr rewrites are not run here but by the caller on the output.
// It is grounded on simplecpp::preprocess().
type Driver struct {
	Reg      *Registry
	Sink     *diag.Sink
	Resolver *include.Resolver
	Load     Loader
	Defines  UserDefines
	Macros   MacroTable

	depth int
}

// NewDriver returns a Driver ready to preprocess one translation unit.
func NewDriver(reg *Registry, sink *diag.Sink, resolver *include.Resolver, load Loader) *Driver {
	return &Driver{
		Reg:      reg,
		Sink:     sink,
		Resolver: resolver,
		Load:     load,
		Defines:  UserDefines{},
		Macros:   NewMacroTable(),
	}
}

// includeFrame is one entry of the textual include stack: the token stream
// being consumed and the cursor within it.
type includeFrame struct {
	stream *TokenStream
	cur    TokenID
	dir    string
}

// Preprocess runs the full directive-driven pass over root (the already
// scanned+combined root file, whose directory is rootDir), returning the
// preprocessed output stream. RewriteAddGlobal and RewriteSharedPtr are not
// applied to it here.
func (d *Driver) Preprocess(root *TokenStream, rootDir string) (*TokenStream, error) {
	out := NewTokenStream()
	ifstates := []IfState{IfTrue}
	stack := []*includeFrame{{stream: root, cur: root.Front(), dir: rootDir}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.cur == NoToken {
			stack = stack[:len(stack)-1]
			d.depth--
			continue
		}
		s := top.stream
		tok := s.At(top.cur)

		if tok.Flags.Has(FlagComment) {
			top.cur = s.Next(top.cur)
			continue
		}

		if tok.Op == '#' && s.Prev(top.cur) != NoToken && s.At(s.Prev(top.cur)).Location.SameLine(tok.Location) {
			// A '#' not at the start of its line is an ordinary token and is
			// copied (or dropped) as-is; stringize and paste are not applied,
			// here or when a #define body is stored.
			if ifstates[len(ifstates)-1] == IfTrue {
				top.cur = d.emitRewritten(s, top.cur, out)
			} else {
				top.cur = d.skipLine(s, top.cur)
			}
			continue
		}

		if tok.Op != '#' {
			if ifstates[len(ifstates)-1] != IfTrue {
				top.cur = d.skipLine(s, top.cur)
				continue
			}
			top.cur = d.emitRewritten(s, top.cur, out)
			continue
		}

		// tok is a directive-introducing '#' at line start.
		directive := s.Next(top.cur)
		name := ""
		if directive != NoToken {
			name = s.At(directive).Str
		}

		switch name {
		case "if", "ifdef", "ifndef", "elif":
			next, err := d.handleConditional(s, top.cur, name, &ifstates)
			if err != nil {
				return nil, err
			}
			top.cur = next

		case "else":
			if len(ifstates) <= 1 {
				return nil, d.syntaxError(tok.Location, "#else with no matching #if")
			}
			switch ifstates[len(ifstates)-1] {
			case IfTrue:
				ifstates[len(ifstates)-1] = IfAlwaysFalse
			case IfElseIsTrue:
				ifstates[len(ifstates)-1] = IfTrue
			}
			top.cur = d.skipLine(s, top.cur)

		case "endif":
			if len(ifstates) <= 1 {
				return nil, d.syntaxError(tok.Location, "#endif with no matching #if")
			}
			ifstates = ifstates[:len(ifstates)-1]
			top.cur = d.skipLine(s, top.cur)

		case "define":
			if ifstates[len(ifstates)-1] == IfTrue {
				top.cur = d.handleDefine(s, top.cur)
			} else {
				top.cur = d.skipLine(s, top.cur)
			}

		case "undef":
			if ifstates[len(ifstates)-1] == IfTrue {
				nameID := s.Next(directive)
				if nameID != NoToken {
					delete(d.Macros, s.At(nameID).Str)
				}
			}
			top.cur = d.skipLine(s, top.cur)

		case "include", "uses":
			if ifstates[len(ifstates)-1] == IfTrue {
				next, frame, err := d.handleInclude(s, top.cur, top.dir)
				if err != nil {
					return nil, err
				}
				top.cur = next
				if frame != nil {
					if d.depth >= include.MaxIncludeDepth {
						d.Sink.Reportf(diag.IncludeNestedTooDeeply, tok.Location.Diag(d.Reg), "include nested too deeply")
						continue
					}
					d.depth++
					stack = append(stack, frame)
				}
				continue
			}
			top.cur = d.skipLine(s, top.cur)

		case "pragma":
			if ifstates[len(ifstates)-1] == IfTrue && d.isPragmaOnce(s, directive) {
				d.Resolver.MarkPragmaOnce(d.Reg.Path(tok.Location.File))
			}
			top.cur = d.skipLine(s, top.cur)

		case "error":
			if ifstates[len(ifstates)-1] == IfTrue {
				msg, _ := d.collectDirectiveText(s, directive)
				d.Sink.Reportf(diag.Error, tok.Location.Diag(d.Reg), "%s", msg)
				return out, fmt.Errorf("#error: %s", msg)
			}
			top.cur = d.skipLine(s, top.cur)

		case "warning":
			if ifstates[len(ifstates)-1] == IfTrue {
				msg, next := d.collectDirectiveText(s, directive)
				d.Sink.Reportf(diag.Warning, tok.Location.Diag(d.Reg), "%s", msg)
				top.cur = next
			} else {
				top.cur = d.skipLine(s, top.cur)
			}

		default:
			// Unknown directive: pass through untouched while active, drop
			// while inactive, matching the original's lenient handling of
			// directives it doesn't specifically recognise.
			if ifstates[len(ifstates)-1] == IfTrue {
				top.cur = d.emitRewritten(s, top.cur, out)
			} else {
				top.cur = d.skipLine(s, top.cur)
			}
		}
	}

	if len(ifstates) != 1 {
		return out, d.syntaxError(Location{}, "unterminated #if")
	}
	return out, nil
}

func (d *Driver) syntaxError(loc Location, msg string) error {
	d.Sink.Reportf(diag.SyntaxError, loc.Diag(d.Reg), "%s", msg)
	return fmt.Errorf("syntax error: %s", msg)
}

// skipLine advances past every token on the current line (used to drop
// source code inside an inactive #if branch, and to step over directives
// once handled).
func (d *Driver) skipLine(s *TokenStream, id TokenID) TokenID {
	if id == NoToken {
		return NoToken
	}
	line := s.At(id).Location
	next := s.Next(id)
	for next != NoToken && s.At(next).Location.SameLine(line) {
		next = s.Next(next)
	}
	return next
}

// collectDirectiveText joins the raw text of every token on the line
// following a directive keyword, space-separated, for #error/#warning.
func (d *Driver) collectDirectiveText(s *TokenStream, directive TokenID) (string, TokenID) {
	var parts []string
	id := s.Next(directive)
	line := s.At(directive).Location
	for id != NoToken && s.At(id).Location.SameLine(line) {
		parts = append(parts, s.At(id).Str)
		id = s.Next(id)
	}
	return strings.Join(parts, " "), id
}

func (d *Driver) isPragmaOnce(s *TokenStream, directive TokenID) bool {
	next := s.Next(directive)
	return next != NoToken && s.At(next).Str == "once"
}

// emitRewritten copies one source token into out, applying the domain
// rewrite passes (C8) that apply to single standalone tokens: __FILE__ /
// __LINE__ substitution and user-define substitution. The structural
// rewrites (addGlobal, shared_ptr) run as a second pass over the whole
// output stream once preprocessing finishes, since they match multi-token
// sequences that may straddle directive boundaries.
func (d *Driver) emitRewritten(s *TokenStream, id TokenID, out *TokenStream) TokenID {
	tok := *s.At(id)
	if tok.Str == "__FILE__" {
		tok.Str = fmt.Sprintf("%q", d.Reg.Path(tok.Location.File))
	} else if tok.Str == "__LINE__" {
		tok.Str = fmt.Sprintf("%d", tok.Location.Line)
	} else if tok.IsName() {
		if repl, ok := d.Defines[tok.Str]; ok {
			tok.Str = repl
			tok.Flags = classify(repl)
		} else if macro, ok := d.Macros[tok.Str]; ok && macro.Params == nil {
			for _, piece := range macro.Body {
				out.PushBack(Token{Str: piece, Op: classifyOp(piece), Location: tok.Location, Flags: classify(piece)})
			}
			return s.Next(id)
		}
	}
	out.PushBack(tok)
	return s.Next(id)
}

func (d *Driver) handleDefine(s *TokenStream, hashID TokenID) TokenID {
	directive := s.Next(hashID)
	nameID := s.Next(directive)
	if nameID == NoToken {
		return d.skipLine(s, hashID)
	}
	name := s.At(nameID).Str
	line := s.At(hashID).Location

	cur := s.Next(nameID)
	var params []string
	variadic := false
	if cur != NoToken && s.At(cur).Op == '(' && s.At(cur).Location.Col == s.At(nameID).Location.Col+uint32(len(name)) {
		cur = s.Next(cur)
		for cur != NoToken && s.At(cur).Op != ')' {
			if s.At(cur).Str == "..." {
				variadic = true
			} else if s.At(cur).Op != ',' {
				params = append(params, s.At(cur).Str)
			}
			cur = s.Next(cur)
		}
		if cur != NoToken {
			cur = s.Next(cur)
		}
	} else {
		params = nil
	}

	var body []string
	for cur != NoToken && s.At(cur).Location.SameLine(line) {
		if !s.At(cur).Flags.Has(FlagComment) {
			body = append(body, s.At(cur).Str)
		}
		cur = s.Next(cur)
	}

	d.Macros[name] = MacroDef{Params: params, Variadic: variadic, Body: body}
	return cur
}

func (d *Driver) handleInclude(s *TokenStream, hashID TokenID, dir string) (next TokenID, frame *includeFrame, err error) {
	directive := s.Next(hashID)
	headerTok := s.Next(directive)
	if headerTok == NoToken {
		return d.skipLine(s, hashID), nil, nil
	}
	line := s.At(hashID).Location
	header := s.At(headerTok).Str
	isSystem := false
	if strings.HasPrefix(header, "<") {
		isSystem = true
		header = strings.Trim(header, "<>")
	} else {
		header = strings.Trim(header, `"`)
	}

	end := d.skipLine(s, hashID)

	sourcePath := d.Reg.Path(s.At(hashID).Location.File)
	resolved, ok := d.Resolver.Resolve(dir, sourcePath, header, isSystem)
	if !ok {
		d.Sink.Reportf(diag.MissingHeader, line.Diag(d.Reg), "cannot find header %q", header)
		return end, nil, nil
	}
	if d.Resolver.HasPragmaOnce(resolved) {
		return end, nil, nil
	}
	included, loadErr := d.Load(resolved)
	if loadErr != nil {
		return end, nil, fmt.Errorf("loading %s: %w", resolved, loadErr)
	}
	return end, &includeFrame{stream: included, cur: included.Front(), dir: filepath.Dir(resolved)}, nil
}

// handleConditional evaluates #if/#ifdef/#ifndef/#elif and applies the
// TRUE/ELSE_IS_TRUE/ALWAYS_FALSE transition table (spec.md §4.5).
func (d *Driver) handleConditional(s *TokenStream, hashID TokenID, kind string, states *[]IfState) (TokenID, error) {
	directive := s.Next(hashID)
	line := s.At(hashID).Location
	end := d.skipLine(s, hashID)

	if kind == "elif" {
		top := (*states)[len(*states)-1]
		if top == IfTrue {
			// An earlier branch in this chain already matched; every
			// subsequent elif/else is permanently dead.
			(*states)[len(*states)-1] = IfAlwaysFalse
			return end, nil
		}
		if top != IfElseIsTrue {
			// Already dead, either because a prior branch matched or
			// because the enclosing scope itself is inactive.
			return end, nil
		}
	}

	if kind == "if" || kind == "ifdef" || kind == "ifndef" {
		parentActive := len(*states) == 0 || (*states)[len(*states)-1] == IfTrue
		if !parentActive {
			// Nested inside a dead branch: never evaluate the condition
			// (its macros may be undefined there) and never emit.
			*states = append(*states, IfAlwaysFalse)
			return end, nil
		}
	}

	var truth bool
	var err error
	switch kind {
	case "ifdef":
		nameID := s.Next(directive)
		truth = nameID != NoToken && (d.Macros.Defined(s.At(nameID).Str) || d.Defines[s.At(nameID).Str] != "")
	case "ifndef":
		nameID := s.Next(directive)
		truth = !(nameID != NoToken && (d.Macros.Defined(s.At(nameID).Str) || d.Defines[s.At(nameID).Str] != ""))
	default: // if, elif
		truth, err = d.evalCondition(s, directive, line)
		if err != nil {
			return end, err
		}
	}

	if kind == "if" || kind == "ifdef" || kind == "ifndef" {
		if truth {
			*states = append(*states, IfTrue)
		} else {
			*states = append(*states, IfElseIsTrue)
		}
		return end, nil
	}
	// elif with top == IfElseIsTrue
	if truth {
		(*states)[len(*states)-1] = IfTrue
	}
	return end, nil
}

// evalCondition builds a scratch expression token stream from the
// condition tokens on directive's line, replacing every `defined(X)` /
// `defined X` with the literal "0" (Open Question #1: always folded to
// false, matching simplecpp.cpp's behaviour verbatim regardless of whether
// X is actually defined) before folding it to an integer with evalFold.
func (d *Driver) evalCondition(s *TokenStream, directive TokenID, line Location) (bool, error) {
	expr := NewTokenStream()
	id := s.Next(directive)
	for id != NoToken && s.At(id).Location.SameLine(line) {
		tok := s.At(id)
		if tok.Flags.Has(FlagComment) {
			id = s.Next(id)
			continue
		}
		if tok.Str == "defined" {
			next := s.Next(id)
			if next != NoToken && s.At(next).Op == '(' {
				// skip `defined ( NAME )`
				after := s.Next(s.Next(next))
				if after != NoToken {
					id = s.Next(after)
				} else {
					id = s.Next(next)
				}
			} else if next != NoToken {
				id = s.Next(next)
			} else {
				id = s.Next(id)
			}
			expr.PushBack(Token{Str: "0", Flags: FlagNumber, Location: tok.Location})
			continue
		}
		if tok.IsName() {
			if repl, ok := d.Defines[tok.Str]; ok {
				expr.PushBack(Token{Str: repl, Flags: classify(repl), Location: tok.Location})
				id = s.Next(id)
				continue
			}
			if macro, ok := d.Macros[tok.Str]; ok && macro.Params == nil && len(macro.Body) > 0 {
				expr.PushBack(Token{Str: macro.Body[0], Flags: classify(macro.Body[0]), Location: tok.Location})
				id = s.Next(id)
				continue
			}
			if isAltOperatorKeyword(tok.Str) {
				// Preserve the keyword spelling; substituteAlternativeOperators
				// below decides whether it's actually in operator position.
				expr.PushBack(Token{Str: tok.Str, Flags: FlagName, Location: tok.Location})
				id = s.Next(id)
				continue
			}
			expr.PushBack(Token{Str: "0", Flags: FlagNumber, Location: tok.Location})
			id = s.Next(id)
			continue
		}
		expr.PushBack(*tok)
		id = s.Next(id)
	}
	substituteAlternativeOperators(expr)
	CombineOperators(expr)
	v, err := evalFold(expr)
	if err != nil {
		d.Sink.Reportf(diag.SyntaxError, line.Diag(d.Reg), "invalid expression in #if: %v", err)
		return false, err
	}
	return v != 0, nil
}
