package preproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimplifyPathCollapsesDoubleSlash(t *testing.T) {
	require.Equal(t, "a/b", SimplifyPath("a//b"))
}

func TestSimplifyPathDropsDotSegments(t *testing.T) {
	require.Equal(t, "a/b", SimplifyPath("./a/./b"))
}

func TestSimplifyPathCollapsesParent(t *testing.T) {
	require.Equal(t, "a/c", SimplifyPath("a/b/../c"))
}

func TestSimplifyPathKeepsLeadingParent(t *testing.T) {
	require.Equal(t, "../a", SimplifyPath("../a"))
}

func TestSimplifyPathBackslashes(t *testing.T) {
	require.Equal(t, "a/b", SimplifyPath(`a\b`))
}

func TestIsAbsolutePathPosix(t *testing.T) {
	require.True(t, IsAbsolutePath("/usr/lib"))
	require.False(t, IsAbsolutePath("usr/lib"))
}

func TestIsAbsolutePathWindowsDrive(t *testing.T) {
	require.True(t, IsAbsolutePath(`C:\Windows`))
}
