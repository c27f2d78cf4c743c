package checks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
)

func push(s *preproc.TokenStream, toks ...preproc.Token) {
	for _, t := range toks {
		s.PushBack(t)
	}
}

func TestCheckIgnoredReturnValueReportsBareCallStatement(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s,
		preproc.Token{Str: "dpSet", Flags: preproc.FlagName},
		preproc.Token{Str: "(", Op: '('},
		preproc.Token{Str: "x", Flags: preproc.FlagName},
		preproc.Token{Str: ")", Op: ')'},
		preproc.Token{Str: ";", Op: ';'},
	)
	lib := Library{"dpSet": {Name: "dpSet", UseRetVal: true}}

	CheckIgnoredReturnValue(s, reg, sink, lib)

	require.Len(t, sink.Entries(), 1)
}

func TestCheckIgnoredReturnValueIgnoresCallUsedAsSubExpression(t *testing.T) {
	// "if ( dpSet ( x ) )" — the call's closing paren is followed by another
	// ')', not ';', so it isn't a bare call statement.
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s,
		preproc.Token{Str: "if", Flags: preproc.FlagControlFlowKeyword | preproc.FlagName},
		preproc.Token{Str: "(", Op: '('},
		preproc.Token{Str: "dpSet", Flags: preproc.FlagName},
		preproc.Token{Str: "(", Op: '('},
		preproc.Token{Str: "x", Flags: preproc.FlagName},
		preproc.Token{Str: ")", Op: ')'},
		preproc.Token{Str: ")", Op: ')'},
	)
	lib := Library{"dpSet": {Name: "dpSet", UseRetVal: true}}

	CheckIgnoredReturnValue(s, reg, sink, lib)

	require.Empty(t, sink.Entries())
}

func TestCheckMinArgsReportsTooFewArguments(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s,
		preproc.Token{Str: "dpSet", Flags: preproc.FlagName},
		preproc.Token{Str: "(", Op: '('},
		preproc.Token{Str: "x", Flags: preproc.FlagName},
		preproc.Token{Str: ")", Op: ')'},
	)
	lib := Library{"dpSet": {Name: "dpSet", MinArgs: 2}}

	CheckMinArgs(s, reg, sink, lib)

	require.Len(t, sink.Entries(), 1)
}

func TestCheckMinArgsAcceptsEnoughArguments(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s,
		preproc.Token{Str: "dpSet", Flags: preproc.FlagName},
		preproc.Token{Str: "(", Op: '('},
		preproc.Token{Str: "x", Flags: preproc.FlagName},
		preproc.Token{Str: ",", Op: ','},
		preproc.Token{Str: "y", Flags: preproc.FlagName},
		preproc.Token{Str: ")", Op: ')'},
	)
	lib := Library{"dpSet": {Name: "dpSet", MinArgs: 2}}

	CheckMinArgs(s, reg, sink, lib)

	require.Empty(t, sink.Entries())
}
