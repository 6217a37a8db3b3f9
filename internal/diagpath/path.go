// Package diagpath implements the dotted-path and late-bound reference
// primitives shared by every stage of the compiler and simulator.
package diagpath

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Path is a non-empty dotted sequence of identifier segments, e.g. "top.cpu.pc".
type Path string

// New builds a Path from a raw dotted string. The caller is responsible for
// ensuring it is non-empty; an empty Path is a programming error and will
// panic on Parent().
func New(s string) Path { return Path(s) }

// Join appends a child segment, producing "p.child".
func (p Path) Join(child string) Path {
	if p == "" {
		return Path(child)
	}
	return Path(string(p) + "." + child)
}

// Parent drops the last segment. Panics if p has only one segment.
func (p Path) Parent() Path {
	segs := p.Segments()
	if len(segs) <= 1 {
		panic("diagpath: Parent() called on single-segment path " + string(p))
	}
	return Path(strings.Join(segs[:len(segs)-1], "."))
}

// Set appends the literal segment "set", used to address a register's
// latched input terminal.
func (p Path) Set() Path { return p.Join("set") }

// Segments splits the path on '.'.
func (p Path) Segments() []string { return strings.Split(string(p), ".") }

// Last returns the final segment.
func (p Path) Last() string {
	segs := p.Segments()
	return segs[len(segs)-1]
}

// HasPrefix reports whether prefix is a leading run of p's segments (compared
// as a path, not a raw string), including the case where the two are equal.
func (p Path) HasPrefix(prefix Path) bool {
	ps, qs := p.Segments(), prefix.Segments()
	if len(qs) > len(ps) {
		return false
	}
	for i, seg := range qs {
		if ps[i] != seg {
			return false
		}
	}
	return true
}

// TrimPrefix removes a leading dotted prefix (and its separating dot),
// returning the remainder. Used to recover a port name from an external
// instance's child terminal path.
func (p Path) TrimPrefix(prefix Path) string {
	s, pre := string(p), string(prefix)
	if s == pre {
		return ""
	}
	return strings.TrimPrefix(s, pre+".")
}

func (p Path) String() string { return string(p) }

// Less provides a total order over paths for deterministic iteration,
// matching the Rust original's reliance on BTreeMap/BTreeSet ordering.
func (p Path) Less(other Path) bool { return p < other }

// SortPaths sorts a slice of Path in place, ascending, matching the Rust
// original's reliance on BTreeMap/BTreeSet ordering (nettle/src/sim.rs).
func SortPaths(paths []Path) {
	slices.SortFunc(paths, func(a, b Path) int { return strings.Compare(string(a), string(b)) })
}

// DedupSorted removes adjacent duplicates from an already-sorted slice.
func DedupSorted(paths []Path) []Path {
	return slices.CompactFunc(paths, func(a, b Path) bool { return a == b })
}
