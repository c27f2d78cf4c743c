package include

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeFileInfo struct {
	name  string
	isDir bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.isDir }
func (f fakeFileInfo) Sys() any           { return nil }

func fakeStat(existing map[string]bool) func(string) (os.FileInfo, error) {
	return func(path string) (os.FileInfo, error) {
		if existing[filepath.ToSlash(path)] {
			return fakeFileInfo{name: filepath.Base(path)}, nil
		}
		return nil, os.ErrNotExist
	}
}

func TestResolveFindsInIncludePath(t *testing.T) {
	cache := NewCache()
	r := NewResolver(cache, []string{"/opt/include"})
	r.stat = fakeStat(map[string]bool{"/opt/include/foo.h": true})

	path, ok := r.Resolve("/src", "/src/main.cpp", "foo.h", true)
	require.True(t, ok)
	require.Equal(t, "/opt/include/foo.h", path)
}

func TestResolveMissingHeaderCached(t *testing.T) {
	cache := NewCache()
	r := NewResolver(cache, nil)
	r.stat = fakeStat(map[string]bool{})

	_, ok := r.Resolve("/src", "/src/main.cpp", "missing.h", true)
	require.False(t, ok)
	require.True(t, r.checked.Contains("missing.h"))

	// Second resolve short-circuits via the checked set without calling stat.
	r.stat = func(string) (os.FileInfo, error) {
		t.Fatal("stat should not be called for an already-checked header")
		return nil, nil
	}
	_, ok = r.Resolve("/src", "/src/main.cpp", "missing.h", true)
	require.False(t, ok)
}

func TestResolveQuotedIncludeRelativeToSource(t *testing.T) {
	cache := NewCache()
	r := NewResolver(cache, nil)
	r.stat = fakeStat(map[string]bool{"/src/local.h": true})

	path, ok := r.Resolve("/src", "/src/main.cpp", "local.h", false)
	require.True(t, ok)
	require.Equal(t, "/src/local.h", path)
}

func TestPragmaOnceTracking(t *testing.T) {
	cache := NewCache()
	r := NewResolver(cache, nil)
	require.False(t, r.HasPragmaOnce("/src/a.ctl"))
	r.MarkPragmaOnce("/src/a.ctl")
	require.True(t, r.HasPragmaOnce("/src/a.ctl"))
}

func TestCtrlLibraryLookup(t *testing.T) {
	// The CTRL scripts/libs special case is gated on the INCLUDING file's
	// own extension, not the header's: a ".ctl" source looking up "util"
	// resolves under the nearest ancestor scripts/libs directory, with
	// ".ctl" appended to the header.
	cache := NewCache()
	r := NewResolver(cache, []string{"/proj"})
	r.stat = fakeStat(map[string]bool{"/proj/scripts/libs/util.ctl": true})

	path, ok := r.Resolve("/proj/scripts/panels", "/proj/scripts/panels/view.ctl", "util", false)
	require.True(t, ok)
	require.Equal(t, "/proj/scripts/libs/util.ctl", path)
}

func TestCtrlLibraryLookupIgnoresNonCtrlSource(t *testing.T) {
	// A non-CTRL including file never triggers the scripts/libs fallback,
	// even when the header itself happens to end in ".ctl".
	cache := NewCache()
	r := NewResolver(cache, []string{"/proj"})
	r.stat = fakeStat(map[string]bool{
		"/proj/scripts/libs/util.ctl.ctl": true,
		"/src/util.ctl":                   true,
	})

	path, ok := r.Resolve("/src", "/src/main.cpp", "util.ctl", false)
	require.True(t, ok)
	require.Equal(t, "/src/util.ctl", path)
}
