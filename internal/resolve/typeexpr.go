package resolve

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/ast"
	"github.com/bitsysim/bitsysim/internal/types"
)

// resolveTypeExpr converts a surface TypeExpr into the shared algebraic
// Type model, looking up NamedType references against user-defined types
// resolved earlier in dependency order (spec.md §4.3 step 2).
func (r *Resolver) resolveTypeExpr(t ast.TypeExpr) (types.Type, error) {
	switch n := t.(type) {
	case *ast.WordType:
		return types.Word{W: n.Width}, nil
	case *ast.VecType:
		elem, err := r.resolveTypeExpr(n.Elem)
		if err != nil {
			return nil, err
		}
		return types.Vec{Elem: elem, Length: n.Length}, nil
	case *ast.ValidType:
		inner, err := r.resolveTypeExpr(n.Inner)
		if err != nil {
			return nil, err
		}
		return types.Valid{Inner: inner}, nil
	case *ast.NamedType:
		typ, ok := r.typeCtx[n.Name]
		if !ok {
			return nil, fmt.Errorf("undefined type %q", n.Name)
		}
		return typ, nil
	default:
		return nil, fmt.Errorf("resolve: unhandled TypeExpr %T", t)
	}
}
