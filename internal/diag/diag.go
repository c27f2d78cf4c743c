// Package diag implements the structured diagnostics sink (C10): an
// append-only collection of kind-tagged entries produced by every other
// component of the preprocessor. The sink never interprets or recovers from
// what it is told; it is the sole user-visible channel (spec.md §7).
package diag

import (
	"fmt"
	"sync"
)

// Kind classifies a diagnostic entry.
type Kind int

const (
	Error Kind = iota
	Warning
	SyntaxError
	PortabilityBackslash
	UnhandledCharError
	ExplicitIncludeNotFound
	MissingHeader
	IncludeNestedTooDeeply
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case SyntaxError:
		return "syntax error"
	case PortabilityBackslash:
		return "portability"
	case UnhandledCharError:
		return "unhandled character"
	case ExplicitIncludeNotFound:
		return "include not found"
	case MissingHeader:
		return "missing header"
	case IncludeNestedTooDeeply:
		return "include nested too deeply"
	default:
		return "unknown"
	}
}

// Location is the file-position a diagnostic refers to. It is a plain string
// path rather than the preprocessor's interned FileID so this package has no
// dependency on the preprocessor's file registry.
type Location struct {
	File string
	Line uint32
	Col  uint32
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Entry is one diagnostic record.
type Entry struct {
	Kind     Kind
	Location Location
	Message  string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Message)
}

// Sink collects diagnostics. It is append-only and safe for concurrent use so
// that multiple translation units preprocessed in parallel (spec.md §5) can
// share one sink, or each use their own and merge afterwards.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a diagnostic entry.
func (s *Sink) Report(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// Reportf is a convenience wrapper around Report that formats the message.
func (s *Sink) Reportf(kind Kind, loc Location, format string, args ...any) {
	s.Report(Entry{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a snapshot of every diagnostic reported so far.
func (s *Sink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// HasFatal reports whether any entry is of a kind that halts preprocessing
// (Error or SyntaxError or UnhandledCharError).
func (s *Sink) HasFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		switch e.Kind {
		case Error, SyntaxError, UnhandledCharError:
			return true
		}
	}
	return false
}

// Merge appends all entries from other into s.
func (s *Sink) Merge(other *Sink) {
	for _, e := range other.Entries() {
		s.Report(e)
	}
}
