package resolve

import (
	"fmt"
	"strings"

	"github.com/bitsysim/bitsysim/internal/ast"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

// resolveExpr converts a surface Expr into the resolved IR, under sc: the
// set of names currently Let/Match-bound in enclosing scopes (spec.md
// §4.3 step 3). Grounded on bitsy's resolve_expr, generalized to carry
// the shadowing decision on the node itself (expr.Reference.Local)
// instead of recomputing it later during elaboration's rebase walk.
func (r *Resolver) resolveExpr(e ast.Expr, sc *scope) (expr.Expr, error) {
	switch n := e.(type) {
	case *ast.Ident:
		if sc.has(n.Name) {
			return expr.NewLocalReference(n.TokPos, n.Name), nil
		}
		return expr.NewReference(n.TokPos, diagpath.New(n.Name)), nil

	case *ast.Dot:
		id, ok := n.Lhs.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("Dot applied to a non-identifier LHS")
		}
		return expr.NewReference(n.TokPos, diagpath.New(id.Name).Join(n.Field)), nil

	case *ast.WordLit:
		return expr.NewWord(n.TokPos, n.Width, n.Value), nil

	case *ast.EnumLit:
		def, ok := r.enumDefs[n.TypeName]
		if !ok {
			return nil, fmt.Errorf("undefined enum type %q", n.TypeName)
		}
		if _, ok := def.VariantByName(n.Variant); !ok {
			return nil, fmt.Errorf("enum %q has no variant %q", n.TypeName, n.Variant)
		}
		return expr.NewEnum(n.TokPos, def, n.Variant), nil

	case *ast.StructLit:
		def, ok := r.structDefs[n.TypeName]
		if !ok {
			return nil, fmt.Errorf("undefined struct type %q", n.TypeName)
		}
		fields := make([]expr.StructField, len(n.Fields))
		for i, f := range n.Fields {
			v, err := r.resolveExpr(f.Value, sc)
			if err != nil {
				return nil, err
			}
			fields[i] = expr.StructField{Name: f.Name, Value: v}
		}
		return expr.NewStruct(n.TokPos, def, fields), nil

	case *ast.VecLit:
		elems, err := r.resolveExprs(n.Elems, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewVec(n.TokPos, elems), nil

	case *ast.Call:
		return r.resolveCall(n, sc)

	case *ast.UnOp:
		v, err := r.resolveExpr(n.E, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewUnOp(n.TokPos, expr.UnOpKind(n.Op), v), nil

	case *ast.BinOp:
		e1, err := r.resolveExpr(n.E1, sc)
		if err != nil {
			return nil, err
		}
		e2, err := r.resolveExpr(n.E2, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewBinOp(n.TokPos, expr.BinOpKind(n.Op), e1, e2), nil

	case *ast.If:
		cond, t, f, err := r.resolveTriple(n.Cond, n.T, n.F, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewIf(n.TokPos, cond, t, f), nil

	case *ast.Mux:
		cond, t, f, err := r.resolveTriple(n.Cond, n.T, n.F, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewMux(n.TokPos, cond, t, f), nil

	case *ast.Let:
		value, err := r.resolveExpr(n.Value, sc)
		if err != nil {
			return nil, err
		}
		var annotation types.Type
		if n.Annotation != nil {
			annotation, err = r.resolveTypeExpr(n.Annotation)
			if err != nil {
				return nil, err
			}
		}
		body, err := r.resolveExpr(n.Body, sc.push(n.Name))
		if err != nil {
			return nil, err
		}
		return expr.NewLet(n.TokPos, n.Name, annotation, value, body), nil

	case *ast.Match:
		return r.resolveMatch(n, sc)

	case *ast.Idx:
		v, err := r.resolveExpr(n.E, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewIdx(n.TokPos, v, n.I), nil

	case *ast.IdxRange:
		v, err := r.resolveExpr(n.E, sc)
		if err != nil {
			return nil, err
		}
		if !(n.J >= n.I) {
			return nil, fmt.Errorf("IdxRange requires j >= i, got j=%d i=%d", n.J, n.I)
		}
		return expr.NewIdxRange(n.TokPos, v, n.J, n.I), nil

	case *ast.IdxField:
		v, err := r.resolveExpr(n.E, sc)
		if err != nil {
			return nil, err
		}
		return expr.NewIdxField(n.TokPos, v, n.Field), nil

	case *ast.Hole:
		return expr.NewHole(n.TokPos, n.Name), nil

	default:
		return nil, fmt.Errorf("resolve: unhandled Expr %T", e)
	}
}

func (r *Resolver) resolveTriple(c, t, f ast.Expr, sc *scope) (expr.Expr, expr.Expr, expr.Expr, error) {
	rc, err := r.resolveExpr(c, sc)
	if err != nil {
		return nil, nil, nil, err
	}
	rt, err := r.resolveExpr(t, sc)
	if err != nil {
		return nil, nil, nil, err
	}
	rf, err := r.resolveExpr(f, sc)
	if err != nil {
		return nil, nil, nil, err
	}
	return rc, rt, rf, nil
}

func (r *Resolver) resolveExprs(es []ast.Expr, sc *scope) ([]expr.Expr, error) {
	out := make([]expr.Expr, len(es))
	for i, e := range es {
		v, err := r.resolveExpr(e, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *Resolver) resolveCall(n *ast.Call, sc *scope) (expr.Expr, error) {
	args, err := r.resolveExprs(n.Args, sc)
	if err != nil {
		return nil, err
	}
	switch n.Callee {
	case "cat":
		return expr.NewCat(n.TokPos, args), nil
	case "mux":
		if len(args) != 3 {
			return nil, fmt.Errorf("mux expects 3 arguments, got %d", len(args))
		}
		return expr.NewMux(n.TokPos, args[0], args[1], args[2]), nil
	case "sext":
		if len(args) != 1 {
			return nil, fmt.Errorf("sext expects 1 argument, got %d", len(args))
		}
		return expr.NewSext(n.TokPos, args[0]), nil
	case "zext":
		if len(args) != 1 {
			return nil, fmt.Errorf("zext expects 1 argument, got %d", len(args))
		}
		return expr.NewZext(n.TokPos, args[0]), nil
	case "trycast":
		if len(args) != 1 {
			return nil, fmt.Errorf("trycast expects 1 argument, got %d", len(args))
		}
		return expr.NewTryCast(n.TokPos, args[0]), nil
	case "word":
		if len(args) != 1 {
			return nil, fmt.Errorf("word expects 1 argument, got %d", len(args))
		}
		return expr.NewToWord(n.TokPos, args[0]), nil
	case "@Valid":
		return expr.NewCtor(n.TokPos, "Valid", args), nil
	case "@Invalid":
		return expr.NewCtor(n.TokPos, "Invalid", nil), nil
	}
	if strings.HasPrefix(n.Callee, "@") {
		return expr.NewCtor(n.TokPos, strings.TrimPrefix(n.Callee, "@"), args), nil
	}
	fn, ok := r.fnCtx[n.Callee]
	if !ok {
		return nil, fmt.Errorf("call to undefined function %q", n.Callee)
	}
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("function %q expects %d argument(s), got %d", n.Callee, len(fn.Params), len(args))
	}
	return expr.NewCall(n.TokPos, fn, args), nil
}

func (r *Resolver) resolveMatch(n *ast.Match, sc *scope) (expr.Expr, error) {
	scrutinee, err := r.resolveExpr(n.Scrutinee, sc)
	if err != nil {
		return nil, err
	}
	arms := make([]expr.MatchArm, len(n.Arms))
	for i, a := range n.Arms {
		pat, bound, err := r.resolvePattern(a.Pattern)
		if err != nil {
			return nil, err
		}
		armScope := sc
		for _, name := range bound {
			armScope = armScope.push(name)
		}
		body, err := r.resolveExpr(a.Body, armScope)
		if err != nil {
			return nil, err
		}
		arms[i] = expr.MatchArm{Pattern: pat, Body: body}
	}
	return expr.NewMatch(n.TokPos, scrutinee, arms), nil
}

func (r *Resolver) resolvePattern(p ast.Pattern) (expr.Pattern, []string, error) {
	switch n := p.(type) {
	case *ast.CtorPattern:
		subpats := make([]expr.Pattern, len(n.SubPats))
		var bound []string
		for i, sp := range n.SubPats {
			rp, b, err := r.resolvePattern(sp)
			if err != nil {
				return nil, nil, err
			}
			subpats[i] = rp
			bound = append(bound, b...)
		}
		return expr.NewCtorPattern(n.TokPos, n.Name, subpats), bound, nil
	case *ast.BindPattern:
		return expr.NewBindPattern(n.TokPos, n.Name), []string{n.Name}, nil
	case *ast.WildcardPattern:
		return expr.NewWildcardPattern(n.TokPos), nil, nil
	default:
		return nil, nil, fmt.Errorf("resolve: unhandled Pattern %T", p)
	}
}
