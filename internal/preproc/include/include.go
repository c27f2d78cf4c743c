// Package include implements header resolution (C6): the layered search
// policy for `#include`/`#uses` headers, the pragma-once set, and the
// process-wide caches of resolved and known-missing paths. It is grounded
// on simplecpp.cpp's openHeader/getFileName and its NonExistingFilesCache,
// generalised to run on any OS (the original cache was Windows-only; here
// the cache always applies since stat calls are never free).
package include

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/siemens/CtrlppCheck-sub002/internal/collections"
)

// scriptsLibsHeader finds a CTRL source's ".ctl" header under the nearest
// ancestor "scripts/libs" directory, matching simplecpp.cpp's isCtrlFile +
// openHeader special case for .ctl sources. The ".ctl" extension is always
// appended to header, exactly as openHeader builds `header + ".ctl"`.
func scriptsLibsHeader(sourceDir, header string) string {
	idx := strings.LastIndex(sourceDir+"/", "/scripts/")
	root := sourceDir
	if idx >= 0 {
		root = sourceDir[:idx]
	}
	return filepath.Join(root, "scripts", "libs", header+".ctl")
}

func isCtrlFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".ctl")
}

// Cache holds the two process-wide, mutex-protected caches shared by every
// translation unit preprocessed concurrently in one run (spec.md §5): the
// canonical-path cache and the negative (known-missing) cache.
type Cache struct {
	mu       sync.Mutex
	resolved map[string]string
	missing  collections.Set[string]
}

// NewCache returns an empty, ready-to-use resolution cache.
func NewCache() *Cache {
	return &Cache{resolved: make(map[string]string), missing: collections.Set[string]{}}
}

func (c *Cache) lookupResolved(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.resolved[key]
	return v, ok
}

func (c *Cache) storeResolved(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved[key] = path
}

func (c *Cache) isKnownMissing(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.missing.Contains(key)
}

func (c *Cache) markMissing(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missing.Add(key)
}

// Resolver resolves #include/#uses headers for one translation unit. The
// pragma-once set and checked-headers set belong to one TU (the checked set
// is keyed on the raw header spelling, as simplecpp.cpp's checkedHeaders
// is; the pragma-once set is keyed on the resolved file path) while the
// path/negative caches in Cache are shared process-wide.
type Resolver struct {
	cache        *Cache
	includePaths []string
	pragmaOnce   collections.Set[string]
	checked      collections.Set[string]
	stat         func(string) (os.FileInfo, error)
}

// NewResolver returns a Resolver searching includePaths, in order, after the
// source-relative and CWD-relative candidates.
func NewResolver(cache *Cache, includePaths []string) *Resolver {
	return &Resolver{
		cache:        cache,
		includePaths: includePaths,
		pragmaOnce:   collections.Set[string]{},
		checked:      collections.Set[string]{},
		stat:         os.Stat,
	}
}

// MarkPragmaOnce records that resolvedPath requested `#pragma once`.
func (r *Resolver) MarkPragmaOnce(resolvedPath string) { r.pragmaOnce.Add(resolvedPath) }

// HasPragmaOnce reports whether resolvedPath was previously marked
// `#pragma once`.
func (r *Resolver) HasPragmaOnce(resolvedPath string) bool { return r.pragmaOnce.Contains(resolvedPath) }

// Resolve finds the file a `#include <header>` / `#include "header"` /
// `#uses "header"` directive refers to, given the directory and full path
// of the including file. sourcePath drives the CTRL scripts/libs special
// case (isCtrlFile checks the INCLUDING file's own extension, exactly as
// openHeader/getFileName check sourcefile, never header). isSystem is true
// for angle-bracket includes. It returns ok=false, with no error, when the
// header is a previously-seen miss (the checkedHeaders short-circuit
// simplecpp.cpp applies before even touching the filesystem).
func (r *Resolver) Resolve(sourceDir, sourcePath, header string, isSystem bool) (path string, ok bool) {
	if r.checked.Contains(header) {
		return "", false
	}
	if filepath.IsAbs(header) {
		if r.exists(header) {
			return header, true
		}
		r.checked.Add(header)
		return "", false
	}

	candidates := r.candidates(sourceDir, sourcePath, header, isSystem)
	for _, cand := range candidates {
		if resolved, hit := r.cache.lookupResolved(cand); hit {
			return resolved, true
		}
		if r.cache.isKnownMissing(cand) {
			continue
		}
		if r.exists(cand) {
			r.cache.storeResolved(cand, cand)
			return cand, true
		}
		r.cache.markMissing(cand)
	}
	r.checked.Add(header)
	return "", false
}

// candidates enumerates the search path, in priority order, for header
// relative to a TU whose own file lives in sourceDir: when the INCLUDING
// file itself is CTRL source (sourcePath ends in .ctl), only the
// scripts/libs layered lookup applies — a .ctl source never falls back to
// a plain source-relative or include-path join, matching openHeader's
// mutually exclusive isCtrlFile(sourcefile)/else-if(!systemheader) branches
// and its per-include-path "scripts/libs/" + header + ".ctl" substitution.
func (r *Resolver) candidates(sourceDir, sourcePath, header string, isSystem bool) []string {
	var out []string
	ctrlSource := isCtrlFile(sourcePath)
	switch {
	case ctrlSource:
		out = append(out, scriptsLibsHeader(sourceDir, header))
	case !isSystem:
		out = append(out, filepath.Join(sourceDir, header), header)
	}
	for _, dir := range r.includePaths {
		if ctrlSource {
			out = append(out, filepath.Join(dir, "scripts", "libs", header+".ctl"))
		} else {
			out = append(out, filepath.Join(dir, header))
		}
	}
	return out
}

func (r *Resolver) exists(path string) bool {
	info, err := r.stat(path)
	return err == nil && !info.IsDir()
}

// MaxIncludeDepth is the nesting limit simplecpp.cpp enforces before
// reporting INCLUDE_NESTED_TOO_DEEPLY.
const MaxIncludeDepth = 400
