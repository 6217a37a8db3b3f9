// Package expr implements the resolved expression IR: a tagged tree with a
// once-settable per-node type cell, shared by the type checker, elaborator,
// and evaluator. It mirrors spec.md §3's Expression IR node list and is
// grounded on funxy's internal/ast node-per-struct shape, adapted to carry
// a type cell directly on each node (per bitsy's OnceCell<Arc<Type>> field)
// rather than funxy's side-table TypeMap.
package expr

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/types"
)

// Expr is any resolved expression IR node.
type Expr interface {
	Pos() diagnostics.Pos
	exprNode()
	// Cell returns this node's type cell, populated by a successful
	// typecheck/typeinfer call (spec.md §4.4, §8 "Type cell population").
	Cell() *TypeCell
}

// TypeCell is a write-once (but overwrite-with-identical-value-tolerant)
// holder for an expression node's inferred/checked type.
type TypeCell struct {
	typ types.Type
	set bool
}

// Set populates the cell. Returns an error if already set to a different
// type; setting the same type twice (e.g. infer then check) is not an error.
func (c *TypeCell) Set(t types.Type) error {
	if c.set {
		if c.typ.Equal(t) {
			return nil
		}
		return fmt.Errorf("type cell already set to %s, cannot set to %s", c.typ, t)
	}
	c.typ = t
	c.set = true
	return nil
}

// Get returns the populated type, or false if not yet set.
func (c *TypeCell) Get() (types.Type, bool) { return c.typ, c.set }

// base is embedded by every node to supply Pos()/Cell() without repetition.
type base struct {
	pos  diagnostics.Pos
	cell TypeCell
}

func (b *base) Pos() diagnostics.Pos { return b.pos }
func (b *base) Cell() *TypeCell      { return &b.cell }

func newBase(pos diagnostics.Pos) base { return base{pos: pos} }
