// Package preproc implements the C/C++-style preprocessor core for the CTRL
// dialect: the location registry and token stream (C1/C2), the operator
// combiner (C4), the domain rewriter (C8), the path normaliser (C9), and the
// driver that ties the lexer, constant-folder and include resolver together
// (C7). It is grounded on github.com/EngFlow/gazelle_cc's
// language/internal/cc packages and on the original simplecpp.cpp this
// dialect's preprocessor was derived from.
package preproc

import "github.com/siemens/CtrlppCheck-sub002/internal/diag"

// FileID is a small integer handle for an interned source path. The zero
// value never denotes a real file.
type FileID uint32

// Registry interns filenames into small integer indices (C1). It never
// removes entries; lookups go through a map from path to index. A Registry
// is owned by the caller and
// may be shared across every TokenStream belonging to one TU, but is not
// meant to be shared across TUs preprocessed concurrently — each TU gets its
// own Registry.
type Registry struct {
	paths []string
	index map[string]FileID
}

// NewRegistry returns an empty file registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]FileID)}
}

// Intern returns the FileID for path, assigning a new one if path has not
// been seen before.
func (r *Registry) Intern(path string) FileID {
	if id, ok := r.index[path]; ok {
		return id
	}
	r.paths = append(r.paths, path)
	id := FileID(len(r.paths))
	r.index[path] = id
	return id
}

// Path returns the filename associated with id, or "" if id is unknown.
func (r *Registry) Path(id FileID) string {
	if id == 0 || int(id) > len(r.paths) {
		return ""
	}
	return r.paths[id-1]
}

// Len returns the number of distinct files interned so far.
func (r *Registry) Len() int { return len(r.paths) }

// Location identifies a single source position: the file it came from
// (resolved through a Registry) plus a 1-based line and column.
type Location struct {
	File FileID
	Line uint32
	Col  uint32
}

// SameLine reports whether l and other refer to the same line of the same
// file.
func (l Location) SameLine(other Location) bool {
	return l.File == other.File && l.Line == other.Line
}

// Diag converts l into a diag.Location by resolving its FileID through reg.
func (l Location) Diag(reg *Registry) diag.Location {
	return diag.Location{File: reg.Path(l.File), Line: l.Line, Col: l.Col}
}

// AdvancedBy returns a new Location advanced past the given text, assuming
// the receiver points at the beginning of text. Newlines increment Line and
// reset Col; other runes increment Col. This mirrors
// lexer.Cursor.AdvancedBy in the teacher repo, generalised with a FileID.
func (l Location) AdvancedBy(text string) Location {
	for _, r := range text {
		if r == '\n' {
			l.Line++
			l.Col = 1
		} else {
			l.Col++
		}
	}
	return l
}
