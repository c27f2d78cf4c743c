package checks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
)

func globalDecl(typ, name string) []preproc.Token {
	return []preproc.Token{
		{Str: "global", Flags: preproc.FlagKeyword},
		{Str: typ, Flags: preproc.FlagName},
		{Str: name, Flags: preproc.FlagName},
	}
}

func TestCheckVariableNamingAcceptsCamelCase(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s, globalDecl("int", "myCounter")...)

	CheckVariableNaming(s, reg, sink, StyleCamelCase)

	require.Empty(t, sink.Entries())
}

func TestCheckVariableNamingRejectsUnderscore(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s, globalDecl("int", "my_counter")...)

	CheckVariableNaming(s, reg, sink, StyleCamelCase)

	require.Len(t, sink.Entries(), 1)
}

func TestCheckVariableNamingPrefixedGlobalStyle(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s, globalDecl("int", "g_counter")...)

	CheckVariableNaming(s, reg, sink, StylePrefixedGlobal)

	require.Empty(t, sink.Entries())
}

func TestCheckVariableNamingPrefixedGlobalStyleRejectsMissingPrefix(t *testing.T) {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	s := preproc.NewTokenStream()
	push(s, globalDecl("int", "counter")...)

	CheckVariableNaming(s, reg, sink, StylePrefixedGlobal)

	require.Len(t, sink.Entries(), 1)
}
