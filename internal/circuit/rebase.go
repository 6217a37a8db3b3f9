package circuit

import (
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
)

// Rebase rewrites every non-local Reference in e to be relative to prefix,
// i.e. "a.b" becomes "prefix.a.b" (spec.md §4.5 "push the prefix"). Locally
// bound (Let-shadowed) references are left untouched, mirroring the
// "shadowed" set in the original rebase walk but decided once at resolve
// time via expr.Reference.Local instead of threaded through this walk.
//
// Typechecking runs before elaboration and populates each node's type
// cell; since a ModDef's body can be instantiated under many prefixes,
// Rebase must clone rather than mutate, and copies the already-populated
// cell onto each clone so the elaborated tree is just as fully typed.
func Rebase(e expr.Expr, prefix diagpath.Path) expr.Expr {
	switch n := e.(type) {
	case *expr.Reference:
		if n.Local {
			return n
		}
		return withCell(n, expr.NewReference(n.Pos(), prefix.Join(string(n.Path))))
	case *expr.Net, *expr.Word, *expr.Enum, *expr.Hole:
		return n
	case *expr.Struct:
		fields := make([]expr.StructField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = expr.StructField{Name: f.Name, Value: Rebase(f.Value, prefix)}
		}
		return withCell(n, expr.NewStruct(n.Pos(), n.Def, fields))
	case *expr.Vec:
		return withCell(n, expr.NewVec(n.Pos(), rebaseAll(n.Elems, prefix)))
	case *expr.Ctor:
		return withCell(n, expr.NewCtor(n.Pos(), n.Name, rebaseAll(n.Args, prefix)))
	case *expr.Cat:
		return withCell(n, expr.NewCat(n.Pos(), rebaseAll(n.Elems, prefix)))
	case *expr.Sext:
		return withCell(n, expr.NewSext(n.Pos(), Rebase(n.E, prefix)))
	case *expr.Zext:
		return withCell(n, expr.NewZext(n.Pos(), Rebase(n.E, prefix)))
	case *expr.ToWord:
		return withCell(n, expr.NewToWord(n.Pos(), Rebase(n.E, prefix)))
	case *expr.TryCast:
		return withCell(n, expr.NewTryCast(n.Pos(), Rebase(n.E, prefix)))
	case *expr.Call:
		return withCell(n, expr.NewCall(n.Pos(), n.Fn, rebaseAll(n.Args, prefix)))
	case *expr.Let:
		return withCell(n, expr.NewLet(n.Pos(), n.Name, n.Annotation, Rebase(n.Value, prefix), Rebase(n.Body, prefix)))
	case *expr.If:
		return withCell(n, expr.NewIf(n.Pos(), Rebase(n.Cond, prefix), Rebase(n.T, prefix), Rebase(n.F, prefix)))
	case *expr.Mux:
		return withCell(n, expr.NewMux(n.Pos(), Rebase(n.Cond, prefix), Rebase(n.T, prefix), Rebase(n.F, prefix)))
	case *expr.UnOp:
		return withCell(n, expr.NewUnOp(n.Pos(), n.Op, Rebase(n.E, prefix)))
	case *expr.BinOp:
		return withCell(n, expr.NewBinOp(n.Pos(), n.Op, Rebase(n.E1, prefix), Rebase(n.E2, prefix)))
	case *expr.Idx:
		return withCell(n, expr.NewIdx(n.Pos(), Rebase(n.E, prefix), n.I))
	case *expr.IdxRange:
		return withCell(n, expr.NewIdxRange(n.Pos(), Rebase(n.E, prefix), n.J, n.I))
	case *expr.IdxField:
		return withCell(n, expr.NewIdxField(n.Pos(), Rebase(n.E, prefix), n.Field))
	case *expr.Match:
		arms := make([]expr.MatchArm, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = expr.MatchArm{Pattern: a.Pattern, Body: Rebase(a.Body, prefix)}
		}
		return withCell(n, expr.NewMatch(n.Pos(), Rebase(n.Scrutinee, prefix), arms))
	default:
		return n
	}
}

func rebaseAll(es []expr.Expr, prefix diagpath.Path) []expr.Expr {
	out := make([]expr.Expr, len(es))
	for i, e := range es {
		out[i] = Rebase(e, prefix)
	}
	return out
}

func withCell(orig, clone expr.Expr) expr.Expr {
	if t, ok := orig.Cell().Get(); ok {
		_ = clone.Cell().Set(t)
	}
	return clone
}
