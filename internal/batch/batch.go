// Package batch runs the preprocessor across many translation units
// concurrently (spec.md §5: "Multiple TUs may be preprocessed in parallel").
// Each TU gets its own Registry, Sink and Driver; only the include
// resolver's path-canonicalisation and negative caches are shared across
// goroutines, guarded by the mutex already inside include.Cache.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/siemens/CtrlppCheck-sub002/internal/config"
	"github.com/siemens/CtrlppCheck-sub002/internal/diag"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc/include"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc/lexer"
)

// Result is the outcome of preprocessing one translation unit.
type Result struct {
	Path   string
	Output *preproc.TokenStream
	Reg    *preproc.Registry
	Sink   *diag.Sink
	Err    error
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Run preprocesses every path in paths concurrently and returns one Result
// per input, in the same order paths was given (not completion order).
func Run(ctx context.Context, cfg *config.Config, cache *include.Cache, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = preprocessOne(cfg, cache, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch preprocessing: %w", err)
	}
	return results, nil
}

func preprocessOne(cfg *config.Config, cache *include.Cache, path string) Result {
	reg := preproc.NewRegistry()
	sink := diag.NewSink()
	resolver := include.NewResolver(cache, cfg.IncludePaths)
	scanner := lexer.NewScanner(reg, sink)

	load := func(p string) (*preproc.TokenStream, error) {
		data, err := readFile(p)
		if err != nil {
			return nil, err
		}
		ts := preproc.NewTokenStream()
		if err := scanner.ScanFile(p, data, ts); err != nil {
			return nil, err
		}
		preproc.CombineOperators(ts)
		return ts, nil
	}

	root, err := load(path)
	if err != nil {
		return Result{Path: path, Reg: reg, Sink: sink, Err: err}
	}

	driver := preproc.NewDriver(reg, sink, resolver, load)
	driver.Defines = preproc.UserDefines(cfg.Defines)
	for _, name := range cfg.Undefines {
		delete(driver.Defines, name)
	}

	out, err := driver.Preprocess(root, filepath.Dir(path))
	if err == nil {
		preproc.RewriteOaConst(out, reg)
		preproc.RewriteAddGlobal(out)
		preproc.RewriteSharedPtr(out)
	}
	return Result{Path: path, Output: out, Reg: reg, Sink: sink, Err: err}
}
