package preproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pushTokens(s *TokenStream, toks ...Token) {
	for _, t := range toks {
		s.PushBack(t)
	}
}

func TestMatchLiteralSequence(t *testing.T) {
	s := NewTokenStream()
	pushTokens(s,
		Token{Str: "global", Flags: FlagName},
		Token{Str: "int", Flags: FlagName},
		Token{Str: "x", Flags: FlagName},
	)
	end, ok := s.Match(s.Front(), "global %name% %name%")
	require.True(t, ok)
	require.Equal(t, NoToken, end)
}

func TestMatchFailsOnWrongClass(t *testing.T) {
	s := NewTokenStream()
	pushTokens(s, Token{Str: "42", Flags: FlagNumber})
	_, ok := s.Match(s.Front(), "%name%")
	require.False(t, ok)
}

func TestMatchNegation(t *testing.T) {
	s := NewTokenStream()
	pushTokens(s, Token{Str: ";", Op: ';'})
	_, ok := s.Match(s.Front(), "!!{")
	require.True(t, ok)
}

func TestMatchCharSet(t *testing.T) {
	s := NewTokenStream()
	pushTokens(s, Token{Str: "+", Op: '+'})
	_, ok := s.Match(s.Front(), "[+-]")
	require.True(t, ok)
}

func TestParseIntLiteralHex(t *testing.T) {
	v, ok := ParseIntLiteral("0x1F")
	require.True(t, ok)
	require.EqualValues(t, 31, v)
}

func TestParseIntLiteralSeparators(t *testing.T) {
	v, ok := ParseIntLiteral("1'000'000")
	require.True(t, ok)
	require.EqualValues(t, 1000000, v)
}
