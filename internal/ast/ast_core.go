// Package ast defines the surface syntax tree consumed by the resolver.
// The grammar/lexer that produces it is an out-of-scope external
// collaborator (spec.md §1, §6); this package exists only to give the
// resolver a concrete input shape, named and shaped after bitsy's own
// ast.rs item/expression split and funxy's internal/ast node-per-struct
// convention.
package ast

import "github.com/bitsysim/bitsysim/internal/diagnostics"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() diagnostics.Pos
}

// Item is a top-level declaration: a module, external, or user-defined
// type/function.
type Item interface {
	Node
	ItemName() string
	itemNode()
}

// Package is the unresolved input to the resolver: an ordered list of
// top-level items. Source order is preserved for diagnostics only — the
// resolver reorders items by dependency (spec.md §4.3).
type Package struct {
	Items []Item
}
