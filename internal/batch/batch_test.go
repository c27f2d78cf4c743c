package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siemens/CtrlppCheck-sub002/internal/config"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc/include"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunPreprocessesMultipleTUsInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ctl")
	b := filepath.Join(dir, "b.ctl")
	writeFile(t, a, "#define FOO 1\n#if FOO\nhello\n#endif\n")
	writeFile(t, b, "main\n")

	cfg := config.Default()
	cache := include.NewCache()
	results, err := Run(context.Background(), cfg, cache, []string{a, b})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, a, results[0].Path)
	require.NoError(t, results[0].Err)
	require.Equal(t, "hello", results[0].Output.Stringify(results[0].Reg))

	require.Equal(t, b, results[1].Path)
	require.NoError(t, results[1].Err)
	require.Equal(t, "main", results[1].Output.Stringify(results[1].Reg))
}

func TestRunAppliesCLIDefines(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.ctl")
	writeFile(t, main, "VERSION\n")

	cfg := config.Default()
	cfg.Defines["VERSION"] = "2"
	cache := include.NewCache()
	results, err := Run(context.Background(), cfg, cache, []string{main})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Equal(t, "2", results[0].Output.Stringify(results[0].Reg))
}

func TestRunReportsPerFileErrorWithoutFailingTheBatch(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.ctl")

	cfg := config.Default()
	cache := include.NewCache()
	results, err := Run(context.Background(), cfg, cache, []string{missing})
	require.NoError(t, err)
	require.Error(t, results[0].Err)
}
