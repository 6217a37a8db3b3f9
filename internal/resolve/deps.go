package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bitsysim/bitsysim/internal/ast"
	"github.com/bitsysim/bitsysim/internal/config"
)

// itemDeps returns the names of every other item that it references: types
// named in field/port/parameter/return positions, modules and externals
// instantiated, and user functions called. Built-in call targets
// (config.IsBuiltinCallName) never contribute a dependency (spec.md §4.3
// step 1).
func itemDeps(it ast.Item) []string {
	var out []string
	switch n := it.(type) {
	case *ast.ModDef:
		out = append(out, declsDeps(n.Decls)...)
	case *ast.ExtDef:
		for _, p := range n.Ports {
			out = append(out, typeExprDeps(p.Type)...)
		}
	case *ast.EnumTypeDef:
		// width and variant values are literal; no dependencies.
	case *ast.StructTypeDef:
		for _, f := range n.Fields {
			out = append(out, typeExprDeps(f.Type)...)
		}
	case *ast.AltTypeDef:
		for _, a := range n.Alts {
			for _, t := range a.Payload {
				out = append(out, typeExprDeps(t)...)
			}
		}
	case *ast.FnDef:
		for _, p := range n.Params {
			out = append(out, typeExprDeps(p.Type)...)
		}
		out = append(out, typeExprDeps(n.Return)...)
		out = append(out, exprDeps(n.Body)...)
	}
	return out
}

func declsDeps(decls []ast.Decl) []string {
	var out []string
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.PortDecl:
			out = append(out, typeExprDeps(n.Type)...)
		case *ast.NodeDecl:
			out = append(out, typeExprDeps(n.Type)...)
		case *ast.RegDecl:
			out = append(out, typeExprDeps(n.Type)...)
			if n.Reset != nil {
				out = append(out, exprDeps(n.Reset)...)
			}
		case *ast.ModDecl:
			out = append(out, declsDeps(n.Body)...)
		case *ast.InstDecl:
			out = append(out, n.ModName)
		case *ast.ExtInstDecl:
			out = append(out, n.ExtName)
		case *ast.WireDecl:
			out = append(out, exprDeps(n.Expr)...)
		case *ast.WhenDecl:
			out = append(out, exprDeps(n.Cond)...)
			for _, w := range n.Wires {
				out = append(out, exprDeps(w.Expr)...)
			}
		}
	}
	return out
}

func typeExprDeps(t ast.TypeExpr) []string {
	switch n := t.(type) {
	case *ast.NamedType:
		return []string{n.Name}
	case *ast.VecType:
		return typeExprDeps(n.Elem)
	case *ast.ValidType:
		return typeExprDeps(n.Inner)
	default:
		return nil
	}
}

func exprDeps(e ast.Expr) []string {
	var out []string
	switch n := e.(type) {
	case *ast.Ident, *ast.WordLit, *ast.Hole:
		// no item dependency
	case *ast.Dot:
		out = append(out, exprDeps(n.Lhs)...)
	case *ast.EnumLit:
		out = append(out, n.TypeName)
	case *ast.StructLit:
		out = append(out, n.TypeName)
		for _, f := range n.Fields {
			out = append(out, exprDeps(f.Value)...)
		}
	case *ast.VecLit:
		for _, el := range n.Elems {
			out = append(out, exprDeps(el)...)
		}
	case *ast.Call:
		if !config.IsBuiltinCallName(n.Callee) {
			out = append(out, n.Callee)
		}
		for _, a := range n.Args {
			out = append(out, exprDeps(a)...)
		}
	case *ast.UnOp:
		out = append(out, exprDeps(n.E)...)
	case *ast.BinOp:
		out = append(out, exprDeps(n.E1)...)
		out = append(out, exprDeps(n.E2)...)
	case *ast.If:
		out = append(out, exprDeps(n.Cond)...)
		out = append(out, exprDeps(n.T)...)
		out = append(out, exprDeps(n.F)...)
	case *ast.Mux:
		out = append(out, exprDeps(n.Cond)...)
		out = append(out, exprDeps(n.T)...)
		out = append(out, exprDeps(n.F)...)
	case *ast.Let:
		if n.Annotation != nil {
			out = append(out, typeExprDeps(n.Annotation)...)
		}
		out = append(out, exprDeps(n.Value)...)
		out = append(out, exprDeps(n.Body)...)
	case *ast.Match:
		out = append(out, exprDeps(n.Scrutinee)...)
		for _, a := range n.Arms {
			out = append(out, exprDeps(a.Body)...)
		}
	case *ast.Idx:
		out = append(out, exprDeps(n.E)...)
	case *ast.IdxRange:
		out = append(out, exprDeps(n.E)...)
	case *ast.IdxField:
		out = append(out, exprDeps(n.E)...)
	}
	return out
}

// orderItems computes a dependency-first processing order over items,
// keyed by name, mirroring bitsy's toposort-then-reverse (here built
// directly via Kahn's algorithm so dependencies emerge first without a
// separate reversal step). Returns an error naming the participating items
// if a cycle is found.
func orderItems(itemByName map[string]ast.Item) ([]string, error) {
	// edge u -> v meaning "u must be processed before v" (u is a dependency
	// of v).
	succ := make(map[string][]string)
	indeg := make(map[string]int)
	names := make([]string, 0, len(itemByName))
	for name := range itemByName {
		names = append(names, name)
		indeg[name] = 0
	}
	sort.Strings(names) // deterministic edge-construction order

	for _, name := range names {
		it := itemByName[name]
		for _, dep := range itemDeps(it) {
			if _, ok := itemByName[dep]; !ok {
				return nil, fmt.Errorf("item %q references undefined item %q", name, dep)
			}
			if dep == name {
				return nil, fmt.Errorf("item %q depends on itself", name)
			}
			succ[dep] = append(succ[dep], name)
			indeg[name]++
		}
	}

	var ready []string
	for _, name := range names {
		if indeg[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var unlocked []string
		for _, v := range succ[n] {
			indeg[v]--
			if indeg[v] == 0 {
				unlocked = append(unlocked, v)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}

	if len(order) != len(names) {
		var remaining []string
		for _, name := range names {
			if indeg[name] > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return nil, fmt.Errorf("dependency cycle among items: %s", strings.Join(remaining, ", "))
	}
	return order, nil
}
