package typecheck

import (
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

// Infer synthesizes e's type without an expected type, for the constructs
// that carry enough information to do so (spec.md §4.4). Every node it
// succeeds on has its type cell populated as a side effect.
func Infer(e expr.Expr, ctx Context) (types.Type, bool) {
	switch n := e.(type) {
	case *expr.Reference:
		t, ok := ctx[n.Path]
		if !ok {
			return nil, false
		}
		return settle(n, t)

	case *expr.Word:
		if n.Width == nil || !fits(n.Value, *n.Width) {
			return nil, false
		}
		return settle(n, types.Word{W: *n.Width})

	case *expr.Enum:
		return settle(n, types.Enum{Def: n.Def})

	case *expr.Idx:
		inner, ok := Infer(n.E, ctx)
		if !ok {
			return nil, false
		}
		switch u := types.Underlying(inner).(type) {
		case types.Word:
			if n.I >= u.W {
				return nil, false
			}
			return settle(n, types.Word{W: 1})
		case types.Vec:
			if n.I >= u.Length {
				return nil, false
			}
			return settle(n, u.Elem)
		default:
			return nil, false
		}

	case *expr.IdxRange:
		inner, ok := Infer(n.E, ctx)
		if !ok {
			return nil, false
		}
		w, isWord := types.Underlying(inner).(types.Word)
		if !isWord || n.J > w.W {
			return nil, false
		}
		return settle(n, types.Word{W: n.J - n.I})

	case *expr.Cat:
		var total uint64
		for _, el := range n.Elems {
			t, ok := Infer(el, ctx)
			if !ok {
				return nil, false
			}
			w, isWord := types.Underlying(t).(types.Word)
			if !isWord {
				return nil, false
			}
			total += w.W
		}
		return settle(n, types.Word{W: total})

	case *expr.ToWord:
		inner, ok := Infer(n.E, ctx)
		if !ok {
			return nil, false
		}
		en, isEnum := types.Underlying(inner).(types.Enum)
		if !isEnum {
			return nil, false
		}
		return settle(n, types.Word{W: en.Def.Width})

	case *expr.IdxField:
		inner, ok := Infer(n.E, ctx)
		if !ok {
			return nil, false
		}
		st, isStruct := types.Underlying(inner).(types.Struct)
		if !isStruct {
			return nil, false
		}
		f, ok := st.Def.FieldByName(n.Field)
		if !ok {
			return nil, false
		}
		return settle(n, f.Type)

	case *expr.Struct:
		for _, f := range n.Fields {
			fd, ok := n.Def.FieldByName(f.Name)
			if !ok {
				return nil, false
			}
			if _, ok := Infer(f.Value, ctx); !ok {
				var b diagnostics.Batch
				Check(f.Value, fd.Type, ctx, &b)
				if b.HasErrors() {
					return nil, false
				}
			}
		}
		return settle(n, types.Struct{Def: n.Def})

	case *expr.Let:
		vt, ok := Infer(n.Value, ctx)
		if !ok {
			if n.Annotation == nil {
				return nil, false
			}
			var b diagnostics.Batch
			Check(n.Value, n.Annotation, ctx, &b)
			if b.HasErrors() {
				return nil, false
			}
			vt = n.Annotation
		}
		bt, ok := Infer(n.Body, ctx.withLocal(n.Name, vt))
		if !ok {
			return nil, false
		}
		return settle(n, bt)

	case *expr.BinOp:
		if n.Op != expr.Eq && n.Op != expr.Neq && n.Op != expr.Lt {
			return nil, false
		}
		t1, ok := Infer(n.E1, ctx)
		if !ok {
			return nil, false
		}
		var b diagnostics.Batch
		Check(n.E2, t1, ctx, &b)
		if b.HasErrors() {
			return nil, false
		}
		return settle(n, types.Word{W: 1})

	default:
		return nil, false
	}
}

// Check verifies e against expected, collecting any failures into batch.
// It first tries Infer (mirroring the original's "typeinfer succeeds and
// matches, we're done" fast path) and falls back to the construct-specific
// checking rules that need an expected type to make progress (Word
// literals with no width annotation, operators, Sext/Zext, Vec, Let,
// Ctor, Match, Call, Struct, Hole).
func Check(e expr.Expr, expected types.Type, ctx Context, batch *diagnostics.Batch) {
	if t, ok := Infer(e, ctx); ok {
		if !t.Equal(expected) {
			batch.Addf(e.Pos(), "expected type %s, got %s", types.Format(expected), types.Format(t))
		}
		return
	}
	checkConstruct(e, expected, ctx, batch)
}

func checkConstruct(e expr.Expr, expected types.Type, ctx Context, batch *diagnostics.Batch) {
	switch n := e.(type) {
	case *expr.Word:
		w, ok := types.Underlying(expected).(types.Word)
		if !ok {
			batch.Addf(n.Pos(), "word literal is not a %s", types.Format(expected))
			return
		}
		if n.Width != nil && *n.Width != w.W {
			batch.Addf(n.Pos(), "word literal width %d does not match expected %s", *n.Width, types.Format(expected))
			return
		}
		if !fits(n.Value, w.W) {
			batch.Addf(n.Pos(), "literal %d does not fit in %s", n.Value, types.Format(expected))
			return
		}
		settle(n, expected)

	case *expr.Enum:
		en, ok := types.Underlying(expected).(types.Enum)
		if !ok || en.Def != n.Def {
			batch.Addf(n.Pos(), "enum literal %s is not a %s", n.Variant, types.Format(expected))
			return
		}
		if _, ok := n.Def.VariantByName(n.Variant); !ok {
			batch.Addf(n.Pos(), "enum %s has no variant %s", n.Def.Name, n.Variant)
			return
		}
		settle(n, expected)

	case *expr.UnOp:
		Check(n.E, expected, ctx, batch)
		settle(n, expected)

	case *expr.BinOp:
		checkBinOp(n, expected, ctx, batch)

	case *expr.If:
		Check(n.Cond, types.Word{W: 1}, ctx, batch)
		Check(n.T, expected, ctx, batch)
		Check(n.F, expected, ctx, batch)
		settle(n, expected)

	case *expr.Mux:
		Check(n.Cond, types.Word{W: 1}, ctx, batch)
		Check(n.T, expected, ctx, batch)
		Check(n.F, expected, ctx, batch)
		settle(n, expected)

	case *expr.Sext:
		checkExt(n, n.E, expected, ctx, batch, "sext")

	case *expr.Zext:
		checkExt(n, n.E, expected, ctx, batch, "zext")

	case *expr.TryCast:
		if _, ok := types.Underlying(expected).(types.Word); !ok {
			batch.Addf(n.Pos(), "trycast expects a Word result type, got %s", types.Format(expected))
			return
		}
		if _, ok := Infer(n.E, ctx); !ok {
			batch.Addf(n.Pos(), "cannot infer trycast operand type")
			return
		}
		settle(n, expected)

	case *expr.Vec:
		v, ok := types.Underlying(expected).(types.Vec)
		if !ok {
			batch.Addf(n.Pos(), "vec literal is not a %s", types.Format(expected))
			return
		}
		if uint64(len(n.Elems)) != v.Length {
			batch.Addf(n.Pos(), "vec literal has %d element(s), expected %d", len(n.Elems), v.Length)
			return
		}
		for _, el := range n.Elems {
			Check(el, v.Elem, ctx, batch)
		}
		settle(n, expected)

	case *expr.Ctor:
		checkCtor(n, expected, ctx, batch)

	case *expr.Let:
		var vt types.Type
		if t, ok := Infer(n.Value, ctx); ok {
			vt = t
		} else if n.Annotation != nil {
			Check(n.Value, n.Annotation, ctx, batch)
			vt = n.Annotation
		} else {
			batch.Addf(n.Pos(), "cannot infer type of let-bound value %q", n.Name)
			return
		}
		Check(n.Body, expected, ctx.withLocal(n.Name, vt), batch)
		settle(n, expected)

	case *expr.Match:
		checkMatch(n, expected, ctx, batch)

	case *expr.Call:
		if len(n.Args) != len(n.Fn.Params) {
			batch.Addf(n.Pos(), "function %q expects %d argument(s), got %d", n.Fn.Name, len(n.Fn.Params), len(n.Args))
			return
		}
		for i, a := range n.Args {
			Check(a, n.Fn.Params[i].Type, ctx, batch)
		}
		if !n.Fn.Return.Equal(expected) {
			batch.Addf(n.Pos(), "function %q returns %s, expected %s", n.Fn.Name, types.Format(n.Fn.Return), types.Format(expected))
			return
		}
		settle(n, expected)

	case *expr.Struct:
		st, ok := types.Underlying(expected).(types.Struct)
		if !ok || st.Def != n.Def {
			batch.Addf(n.Pos(), "struct literal %s is not a %s", n.Def.Name, types.Format(expected))
			return
		}
		for _, f := range n.Fields {
			fd, ok := n.Def.FieldByName(f.Name)
			if !ok {
				batch.Addf(n.Pos(), "struct %s has no field %q", n.Def.Name, f.Name)
				continue
			}
			Check(f.Value, fd.Type, ctx, batch)
		}
		settle(n, expected)

	case *expr.Hole:
		settle(n, expected)

	default:
		batch.Addf(e.Pos(), "cannot typecheck %T against %s", e, types.Format(expected))
	}
}

func checkExt(node expr.Expr, inner expr.Expr, expected types.Type, ctx Context, batch *diagnostics.Batch, name string) {
	w, ok := types.Underlying(expected).(types.Word)
	if !ok {
		batch.Addf(node.Pos(), "%s expects a Word result type, got %s", name, types.Format(expected))
		return
	}
	it, ok := Infer(inner, ctx)
	if !ok {
		batch.Addf(node.Pos(), "cannot infer %s operand type", name)
		return
	}
	iw, isWord := types.Underlying(it).(types.Word)
	if !isWord || iw.W > w.W {
		batch.Addf(node.Pos(), "%s operand width %s does not fit in %s", name, types.Format(it), types.Format(expected))
		return
	}
	settle(node, expected)
}

func checkBinOp(n *expr.BinOp, expected types.Type, ctx Context, batch *diagnostics.Batch) {
	switch n.Op {
	case expr.Add, expr.Sub, expr.And, expr.Or, expr.Xor:
		w, ok := types.Underlying(expected).(types.Word)
		if !ok {
			batch.Addf(n.Pos(), "%s expects a Word result type, got %s", binOpName(n.Op), types.Format(expected))
			return
		}
		Check(n.E1, w, ctx, batch)
		Check(n.E2, w, ctx, batch)
		settle(n, expected)

	case expr.AddCarry:
		w, ok := types.Underlying(expected).(types.Word)
		if !ok || w.W == 0 {
			batch.Addf(n.Pos(), "addcarry expects a Word<n> result type with n>=1, got %s", types.Format(expected))
			return
		}
		operand := types.Word{W: w.W - 1}
		Check(n.E1, operand, ctx, batch)
		Check(n.E2, operand, ctx, batch)
		settle(n, expected)

	case expr.Eq, expr.Neq, expr.Lt:
		w, ok := types.Underlying(expected).(types.Word)
		if !ok || w.W != 1 {
			batch.Addf(n.Pos(), "%s expects a Word<1> result type, got %s", binOpName(n.Op), types.Format(expected))
			return
		}
		t1, ok := Infer(n.E1, ctx)
		if !ok {
			batch.Addf(n.Pos(), "cannot infer left operand type for %s", binOpName(n.Op))
			return
		}
		Check(n.E2, t1, ctx, batch)
		settle(n, expected)

	default:
		batch.Addf(n.Pos(), "unhandled binary operator")
	}
}

func checkCtor(n *expr.Ctor, expected types.Type, ctx Context, batch *diagnostics.Batch) {
	switch n.Name {
	case "Valid":
		v, ok := types.Underlying(expected).(types.Valid)
		if !ok {
			batch.Addf(n.Pos(), "@Valid(...) is not a %s", types.Format(expected))
			return
		}
		if len(n.Args) != 1 {
			batch.Addf(n.Pos(), "@Valid expects 1 argument, got %d", len(n.Args))
			return
		}
		Check(n.Args[0], v.Inner, ctx, batch)
		settle(n, expected)

	case "Invalid":
		if _, ok := types.Underlying(expected).(types.Valid); !ok {
			batch.Addf(n.Pos(), "@Invalid() is not a %s", types.Format(expected))
			return
		}
		if len(n.Args) != 0 {
			batch.Addf(n.Pos(), "@Invalid expects 0 arguments, got %d", len(n.Args))
			return
		}
		settle(n, expected)

	default:
		alt, ok := types.Underlying(expected).(types.Alt)
		if !ok {
			batch.Addf(n.Pos(), "@%s(...) is not a %s", n.Name, types.Format(expected))
			return
		}
		ctor, ok := alt.Def.CtorByName(n.Name)
		if !ok {
			batch.Addf(n.Pos(), "%s has no alternative %q", alt.Def.Name, n.Name)
			return
		}
		if len(n.Args) != len(ctor.Payload) {
			batch.Addf(n.Pos(), "@%s expects %d argument(s), got %d", n.Name, len(ctor.Payload), len(n.Args))
			return
		}
		for i, a := range n.Args {
			Check(a, ctor.Payload[i], ctx, batch)
		}
		settle(n, expected)
	}
}

// checkMatch typechecks the scrutinee (its type must be inferable — a
// Valid or Alt — since patterns need a concrete shape to check against),
// then checks each arm's pattern against that shape and its body against
// expected, with pattern-bound names added to a per-arm context.
func checkMatch(n *expr.Match, expected types.Type, ctx Context, batch *diagnostics.Batch) {
	scrutTy, ok := Infer(n.Scrutinee, ctx)
	if !ok {
		batch.Addf(n.Pos(), "cannot infer type of match scrutinee")
		return
	}
	for _, arm := range n.Arms {
		armCtx, ok := checkPattern(arm.Pattern, scrutTy, ctx, batch)
		if !ok {
			continue
		}
		Check(arm.Body, expected, armCtx, batch)
	}
	settle(n, expected)
}

// checkPattern checks pat against scrutTy, returning a context extended
// with any names it binds. Grounded on bitsy's pattern-matching typecheck
// rules: @Valid/@Invalid unify against Valid<T>, a named ctor pattern
// unifies against the Alt alternative of the same name (arity must match),
// a bind pattern always matches and binds scrutTy, a wildcard always
// matches and binds nothing.
func checkPattern(pat expr.Pattern, scrutTy types.Type, ctx Context, batch *diagnostics.Batch) (Context, bool) {
	switch p := pat.(type) {
	case *expr.WildcardPattern:
		return ctx, true

	case *expr.BindPattern:
		return ctx.withLocal(p.Name, scrutTy), true

	case *expr.CtorPattern:
		switch p.Name {
		case "Valid":
			v, ok := types.Underlying(scrutTy).(types.Valid)
			if !ok || len(p.SubPats) != 1 {
				batch.Addf(p.Pos(), "@Valid(...) does not match scrutinee type %s", types.Format(scrutTy))
				return ctx, false
			}
			return checkPattern(p.SubPats[0], v.Inner, ctx, batch)

		case "Invalid":
			if _, ok := types.Underlying(scrutTy).(types.Valid); !ok || len(p.SubPats) != 0 {
				batch.Addf(p.Pos(), "@Invalid() does not match scrutinee type %s", types.Format(scrutTy))
				return ctx, false
			}
			return ctx, true

		default:
			alt, ok := types.Underlying(scrutTy).(types.Alt)
			if !ok {
				batch.Addf(p.Pos(), "@%s(...) does not match scrutinee type %s", p.Name, types.Format(scrutTy))
				return ctx, false
			}
			ctor, ok := alt.Def.CtorByName(p.Name)
			if !ok {
				batch.Addf(p.Pos(), "%s has no alternative %q", alt.Def.Name, p.Name)
				return ctx, false
			}
			if len(p.SubPats) != len(ctor.Payload) {
				batch.Addf(p.Pos(), "@%s expects %d sub-pattern(s), got %d", p.Name, len(ctor.Payload), len(p.SubPats))
				return ctx, false
			}
			out := ctx
			for i, sub := range p.SubPats {
				var ok bool
				out, ok = checkPattern(sub, ctor.Payload[i], out, batch)
				if !ok {
					return ctx, false
				}
			}
			return out, true
		}

	default:
		batch.Addf(pat.Pos(), "unhandled pattern kind")
		return ctx, false
	}
}

func binOpName(op expr.BinOpKind) string {
	switch op {
	case expr.Add:
		return "+"
	case expr.AddCarry:
		return "addcarry"
	case expr.Sub:
		return "-"
	case expr.And:
		return "&"
	case expr.Or:
		return "|"
	case expr.Xor:
		return "^"
	case expr.Eq:
		return "=="
	case expr.Neq:
		return "!="
	case expr.Lt:
		return "<"
	default:
		return "?"
	}
}

// fits reports whether v is representable in width bits.
func fits(v, width uint64) bool {
	if width >= 64 {
		return true
	}
	return v>>width == 0
}

// settle populates e's type cell with t and returns it, the common tail of
// every successful Infer/Check branch.
func settle(e expr.Expr, t types.Type) (types.Type, bool) {
	_ = e.Cell().Set(t)
	return t, true
}
