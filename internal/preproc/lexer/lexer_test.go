package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
)

func scanString(t *testing.T, src string) (*preproc.TokenStream, *preproc.Registry) {
	t.Helper()
	reg := preproc.NewRegistry()
	sc := NewScanner(reg, nil)
	ts := preproc.NewTokenStream()
	require.NoError(t, sc.ScanFile("test.ctl", []byte(src), ts))
	return ts, reg
}

func strs(ts *preproc.TokenStream) []string {
	var out []string
	for id := ts.Front(); id != preproc.NoToken; id = ts.Next(id) {
		out = append(out, ts.At(id).Str)
	}
	return out
}

func TestScanIdentifiersAndOperators(t *testing.T) {
	ts, _ := scanString(t, "int x = 1;")
	require.Equal(t, []string{"int", "x", "=", "1", ";"}, strs(ts))
}

func TestScanLineComment(t *testing.T) {
	ts, _ := scanString(t, "x // comment\ny")
	got := strs(ts)
	require.Contains(t, got, "x")
	require.Contains(t, got, "y")
}

func TestScanStringLiteral(t *testing.T) {
	ts, _ := scanString(t, `"hello world"`)
	require.Equal(t, []string{`"hello world"`}, strs(ts))
}

func TestScanNumberWithSeparators(t *testing.T) {
	ts, _ := scanString(t, "1'000")
	require.Equal(t, []string{"1'000"}, strs(ts))
}

func TestScanRawStringEscapesBody(t *testing.T) {
	ts, _ := scanString(t, `const char* p = R"xy(foo)bar)xy";`)
	got := strs(ts)
	require.Equal(t, []string{"const", "char", "*", "p", "=", `"foo)bar"`, ";"}, got)
}

func TestScanRawStringReattachesEncodingPrefix(t *testing.T) {
	ts, _ := scanString(t, `u8R"(hi)"`)
	require.Equal(t, []string{`u8"hi"`}, strs(ts))
}

func TestScanRawStringEscapesQuotesAndBackslashes(t *testing.T) {
	ts, _ := scanString(t, `LR"(a"b\c)"`)
	require.Equal(t, []string{`L"a\"b\\c"`}, strs(ts))
}
