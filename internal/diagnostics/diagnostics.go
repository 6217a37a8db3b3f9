// Package diagnostics implements the batched-error collection used by the
// resolver, type checker, and elaborator: compilation keeps going past the
// first error where feasible, so a caller (the CLI, a test, an LSP-style
// embedder) can report a useful batch instead of stopping at the first
// failure.
package diagnostics

import (
	"fmt"
	"strings"
)

// Pos is a source location. The real lexer/parser (out of scope for this
// module) is expected to populate it; resolver/typecheck/elaborator stages
// thread it through without interpreting it.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Diagnostic is one collected error, with the position it was raised at.
type Diagnostic struct {
	Pos Pos
	Err error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Err)
}

// Batch accumulates diagnostics across a compilation pipeline stage.
// It is intentionally not safe for concurrent use: every stage in this
// module is run single-threaded (spec.md §5).
type Batch struct {
	items []Diagnostic
}

// Add records a diagnostic at pos.
func (b *Batch) Add(pos Pos, err error) {
	b.items = append(b.items, Diagnostic{Pos: pos, Err: err})
}

// Addf records a diagnostic built from a format string.
func (b *Batch) Addf(pos Pos, format string, args ...any) {
	b.Add(pos, fmt.Errorf(format, args...))
}

// Items returns the collected diagnostics in insertion order.
func (b *Batch) Items() []Diagnostic { return b.items }

// HasErrors reports whether anything was collected.
func (b *Batch) HasErrors() bool { return len(b.items) > 0 }

// Err returns nil if the batch is empty, or an error whose message lists
// every collected diagnostic, one per line.
func (b *Batch) Err() error {
	if !b.HasErrors() {
		return nil
	}
	lines := make([]string, len(b.items))
	for i, d := range b.items {
		lines[i] = d.Error()
	}
	return fmt.Errorf("%d error(s):\n%s", len(b.items), strings.Join(lines, "\n"))
}
