// Package evalexpr implements the pure expression evaluator: eval(expr,
// sim_view) -> Value (spec.md §4.7). It runs over a net-rewritten tree
// (every non-local Reference already replaced by a Net leaf) plus a
// path-keyed environment for Let/Match-bound locals, mirroring nettle's
// src/sim.rs call site `expr.eval(&self)` against its own Sim as the view.
package evalexpr

import (
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

// View supplies per-net values to the evaluator.
type View interface {
	NetValue(netID int) types.Value
}

// env is the Let/Match-bound name environment threaded alongside View,
// per spec.md §9 "Let-binding scope during evaluation".
type env map[string]types.Value

func (e env) extend(name string, v types.Value) env {
	out := make(env, len(e)+1)
	for k, val := range e {
		out[k] = val
	}
	out[name] = v
	return out
}

// Eval evaluates e against view. Pure: never mutates view or e.
func Eval(e expr.Expr, view View) types.Value {
	return evalEnv(e, view, nil)
}

func evalEnv(e expr.Expr, view View, en env) types.Value {
	switch n := e.(type) {
	case *expr.Net:
		return view.NetValue(n.NetID)

	case *expr.Reference:
		if v, ok := en[string(n.Path)]; ok {
			return v
		}
		return types.X

	case *expr.Word:
		return types.NewWord(n.Value, wordWidth(n))

	case *expr.Enum:
		variant, ok := n.Def.VariantByName(n.Variant)
		if !ok {
			return types.X
		}
		return types.EnumValue{Def: n.Def, Index: indexOfVariant(n.Def, n.Variant), Bits: variant.Value}

	case *expr.Struct:
		fields := make(map[string]types.Value, len(n.Fields))
		for _, f := range n.Fields {
			fields[f.Name] = evalEnv(f.Value, view, en)
		}
		return types.StructValue{Def: n.Def, Fields: fields}

	case *expr.Vec:
		elems := make([]types.Value, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = evalEnv(el, view, en)
		}
		return types.VecValue{Elems: elems}

	case *expr.Ctor:
		return evalCtor(n, view, en)

	case *expr.Cat:
		return evalCat(n, view, en)

	case *expr.Sext:
		v := evalEnv(n.E, view, en)
		wv, ok := v.(types.WordValue)
		if !ok {
			return types.X
		}
		return sextWord(wv, cellWidth(n))

	case *expr.Zext:
		v := evalEnv(n.E, view, en)
		wv, ok := v.(types.WordValue)
		if !ok {
			return types.X
		}
		return types.NewWord(wv.Val, cellWidth(n))

	case *expr.ToWord:
		v := evalEnv(n.E, view, en)
		ev, ok := v.(types.EnumValue)
		if !ok {
			return types.X
		}
		return types.NewWord(ev.Bits, ev.Def.Width)

	case *expr.TryCast:
		v := evalEnv(n.E, view, en)
		wv, ok := v.(types.WordValue)
		if !ok {
			return types.X
		}
		target := cellWidth(n)
		masked := types.NewWord(wv.Val, target)
		if masked.Val != wv.Val {
			return types.X
		}
		return masked

	case *expr.Call:
		args := make([]types.Value, len(n.Args))
		for i, a := range n.Args {
			args[i] = evalEnv(a, view, en)
		}
		callEnv := make(env, len(n.Fn.Params))
		for i, p := range n.Fn.Params {
			callEnv[p.Name] = args[i]
		}
		return evalEnv(n.Fn.Body, view, callEnv)

	case *expr.Let:
		v := evalEnv(n.Value, view, en)
		return evalEnv(n.Body, view, en.extend(n.Name, v))

	case *expr.If:
		return evalSelect(n.Cond, n.T, n.F, view, en)

	case *expr.Mux:
		return evalSelect(n.Cond, n.T, n.F, view, en)

	case *expr.UnOp:
		v := evalEnv(n.E, view, en)
		wv, ok := v.(types.WordValue)
		if !ok {
			return types.X
		}
		// Not is the only unary operator; invert and re-mask to width.
		return types.NewWord(^wv.Val, wv.Width)

	case *expr.BinOp:
		return evalBinOp(n, view, en)

	case *expr.Idx:
		return evalIdx(n, view, en)

	case *expr.IdxRange:
		v := evalEnv(n.E, view, en)
		wv, ok := v.(types.WordValue)
		if !ok {
			return types.X
		}
		return types.NewWord(wv.Val>>n.I, n.J-n.I)

	case *expr.IdxField:
		v := evalEnv(n.E, view, en)
		sv, ok := v.(types.StructValue)
		if !ok {
			return types.X
		}
		if fv, ok := sv.Fields[n.Field]; ok {
			return fv
		}
		return types.X

	case *expr.Match:
		return evalMatch(n, view, en)

	case *expr.Hole:
		return types.X

	default:
		return types.X
	}
}

func evalSelect(cond, t, f expr.Expr, view View, en env) types.Value {
	cv := evalEnv(cond, view, en)
	wv, ok := cv.(types.WordValue)
	if !ok {
		return types.X
	}
	if wv.Val != 0 {
		return evalEnv(t, view, en)
	}
	return evalEnv(f, view, en)
}

func evalCat(n *expr.Cat, view View, en env) types.Value {
	words := make([]types.WordValue, len(n.Elems))
	for i, el := range n.Elems {
		v := evalEnv(el, view, en)
		wv, ok := v.(types.WordValue)
		if !ok {
			return types.X
		}
		words[i] = wv
	}
	var acc, total uint64
	for _, wv := range words {
		acc = (acc << wv.Width) | wv.Val
		total += wv.Width
	}
	return types.NewWord(acc, total)
}

func evalIdx(n *expr.Idx, view View, en env) types.Value {
	v := evalEnv(n.E, view, en)
	switch val := v.(type) {
	case types.WordValue:
		return types.NewWord(val.Bit(n.I), 1)
	case types.VecValue:
		if int(n.I) < len(val.Elems) {
			return val.Elems[n.I]
		}
		return types.X
	default:
		return types.X
	}
}

func evalBinOp(n *expr.BinOp, view View, en env) types.Value {
	switch n.Op {
	case expr.Eq, expr.Neq, expr.Lt:
		v1 := evalEnv(n.E1, view, en)
		v2 := evalEnv(n.E2, view, en)
		if types.IsX(v1) || types.IsX(v2) {
			return types.X
		}
		switch n.Op {
		case expr.Eq:
			return boolWord(v1.Equal(v2))
		case expr.Neq:
			return boolWord(!v1.Equal(v2))
		default: // Lt
			w1, ok1 := v1.(types.WordValue)
			w2, ok2 := v2.(types.WordValue)
			if !ok1 || !ok2 {
				return types.X
			}
			return boolWord(w1.Val < w2.Val)
		}

	case expr.AddCarry:
		v1 := evalEnv(n.E1, view, en)
		v2 := evalEnv(n.E2, view, en)
		if types.IsX(v1) || types.IsX(v2) {
			return types.X
		}
		w1, ok1 := v1.(types.WordValue)
		w2, ok2 := v2.(types.WordValue)
		if !ok1 || !ok2 {
			return types.X
		}
		return types.NewWord(w1.Val+w2.Val, cellWidth(n))

	default:
		v1 := evalEnv(n.E1, view, en)
		v2 := evalEnv(n.E2, view, en)
		if types.IsX(v1) || types.IsX(v2) {
			return types.X
		}
		w1, ok1 := v1.(types.WordValue)
		w2, ok2 := v2.(types.WordValue)
		if !ok1 || !ok2 {
			return types.X
		}
		var raw uint64
		switch n.Op {
		case expr.Add:
			raw = w1.Val + w2.Val
		case expr.Sub:
			raw = w1.Val - w2.Val
		case expr.And:
			raw = w1.Val & w2.Val
		case expr.Or:
			raw = w1.Val | w2.Val
		case expr.Xor:
			raw = w1.Val ^ w2.Val
		}
		return types.NewWord(raw, w1.Width)
	}
}

func evalCtor(n *expr.Ctor, view View, en env) types.Value {
	switch n.Name {
	case "Valid":
		return types.ValidValue{Present: true, Payload: evalEnv(n.Args[0], view, en)}
	case "Invalid":
		return types.ValidValue{Present: false}
	default:
		args := make([]types.Value, len(n.Args))
		for i, a := range n.Args {
			args[i] = evalEnv(a, view, en)
		}
		t, ok := n.Cell().Get()
		if !ok {
			return types.X
		}
		altType, ok := types.Underlying(t).(types.Alt)
		if !ok {
			return types.X
		}
		return types.AltValue{Def: altType.Def, Ctor: n.Name, Args: args}
	}
}

func evalMatch(n *expr.Match, view View, en env) types.Value {
	scrutinee := evalEnv(n.Scrutinee, view, en)
	for _, arm := range n.Arms {
		bound, ok := matchPattern(arm.Pattern, scrutinee)
		if !ok {
			continue
		}
		armEnv := en
		for k, v := range bound {
			armEnv = armEnv.extend(k, v)
		}
		return evalEnv(arm.Body, view, armEnv)
	}
	// No arm unified with the scrutinee: exhaustiveness is not checked
	// (spec.md §9), so falling off the end is X.
	return types.X
}

// matchPattern reports whether pat structurally unifies with v, and if so
// the names it binds.
func matchPattern(pat expr.Pattern, v types.Value) (map[string]types.Value, bool) {
	switch p := pat.(type) {
	case *expr.WildcardPattern:
		return map[string]types.Value{}, true

	case *expr.BindPattern:
		return map[string]types.Value{p.Name: v}, true

	case *expr.CtorPattern:
		switch val := v.(type) {
		case types.ValidValue:
			switch p.Name {
			case "Valid":
				if !val.Present || len(p.SubPats) != 1 {
					return nil, false
				}
				return matchPattern(p.SubPats[0], val.Payload)
			case "Invalid":
				if val.Present || len(p.SubPats) != 0 {
					return nil, false
				}
				return map[string]types.Value{}, true
			default:
				return nil, false
			}
		case types.AltValue:
			if val.Ctor != p.Name || len(p.SubPats) != len(val.Args) {
				return nil, false
			}
			bound := map[string]types.Value{}
			for i, sub := range p.SubPats {
				got, ok := matchPattern(sub, val.Args[i])
				if !ok {
					return nil, false
				}
				for k, v := range got {
					bound[k] = v
				}
			}
			return bound, true
		default:
			return nil, false
		}

	default:
		return nil, false
	}
}

func boolWord(b bool) types.Value {
	if b {
		return types.NewWord(1, 1)
	}
	return types.NewWord(0, 1)
}

func indexOfVariant(def *types.EnumTypeDef, name string) int {
	for i, v := range def.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// wordWidth returns a Word literal's bit width: its own annotation if
// present, else whatever the type checker settled its cell to.
func wordWidth(n *expr.Word) uint64 {
	if n.Width != nil {
		return *n.Width
	}
	return cellWidth(n)
}

func cellWidth(n expr.Expr) uint64 {
	t, ok := n.Cell().Get()
	if !ok {
		return 0
	}
	w, err := t.Width()
	if err != nil {
		return 0
	}
	return w
}

// sextWord sign-extends wv to target bits, filling with its sign bit.
func sextWord(wv types.WordValue, target uint64) types.Value {
	if target <= wv.Width || wv.Width == 0 || wv.Bit(wv.Width-1) == 0 {
		return types.NewWord(wv.Val, target)
	}
	var ones uint64
	if target >= 64 {
		ones = ^uint64(0)
	} else {
		ones = (uint64(1) << target) - 1
	}
	var lowMask uint64
	if wv.Width >= 64 {
		lowMask = ^uint64(0)
	} else {
		lowMask = (uint64(1) << wv.Width) - 1
	}
	return types.NewWord(wv.Val|(ones&^lowMask), target)
}
