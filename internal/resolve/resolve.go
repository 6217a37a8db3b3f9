// Package resolve implements the first compiler stage: an unresolved
// ast.Package becomes a fully name-resolved, type-annotated circuit.Package
// ready for elaboration (spec.md §4.3). It processes items in
// dependency-first order so that, e.g., a struct type can be resolved
// before a module that declares a port of that type, and a submodule
// must be defined before it is instantiated.
//
// Grounded on bitsy's package/resolve.rs (order_items, resolve_item,
// resolve_type, resolve_expr, resolve_decls) and, for the "keep going and
// collect every error" shape, funxy's internal/analyzer processor.
package resolve

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/ast"
	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

// Resolver holds the incrementally-built contexts consulted while
// resolving later items: named types (for NamedType / EnumLit / StructLit
// lookups), module/external definitions (for instantiation), and
// functions (for Call dispatch).
type Resolver struct {
	typeCtx    map[string]types.Type
	enumDefs   map[string]*types.EnumTypeDef
	structDefs map[string]*types.StructTypeDef
	altDefs    map[string]*types.AltTypeDef
	fnCtx      map[string]*expr.FnDef
	modDefs    map[string]*circuit.ModDef
	extDefs    map[string]*circuit.ExtDef
}

func newResolver() *Resolver {
	return &Resolver{
		typeCtx:    make(map[string]types.Type),
		enumDefs:   make(map[string]*types.EnumTypeDef),
		structDefs: make(map[string]*types.StructTypeDef),
		altDefs:    make(map[string]*types.AltTypeDef),
		fnCtx:      make(map[string]*expr.FnDef),
		modDefs:    make(map[string]*circuit.ModDef),
		extDefs:    make(map[string]*circuit.ExtDef),
	}
}

// Resolve name-resolves and type-annotates pkg, returning the resolved
// circuit.Package plus a diagnostics batch. The returned Package is nil
// only if a dependency cycle or undefined-item reference makes ordering
// impossible; individual item resolution errors are instead collected in
// the batch, with the offending item simply absent from the result.
func Resolve(pkg *ast.Package) (*circuit.Package, *diagnostics.Batch) {
	batch := &diagnostics.Batch{}

	itemByName := make(map[string]ast.Item, len(pkg.Items))
	for _, it := range pkg.Items {
		name := it.ItemName()
		if _, dup := itemByName[name]; dup {
			batch.Addf(it.Pos(), "duplicate item name %q", name)
			continue
		}
		itemByName[name] = it
	}

	order, err := orderItems(itemByName)
	if err != nil {
		batch.Addf(diagnostics.Pos{}, "%s", err)
		return nil, batch
	}

	r := newResolver()
	for _, name := range order {
		it := itemByName[name]
		if err := r.resolveItem(it); err != nil {
			batch.Addf(it.Pos(), "resolving %q: %s", name, err)
			continue
		}
	}

	out := &circuit.Package{
		ModDefs:    r.modDefs,
		ExtDefs:    r.extDefs,
		EnumDefs:   r.enumDefs,
		StructDefs: r.structDefs,
		AltDefs:    r.altDefs,
		FnDefs:     r.fnCtx,
		Order:      order,
	}
	return out, batch
}

func (r *Resolver) resolveItem(it ast.Item) error {
	switch n := it.(type) {
	case *ast.EnumTypeDef:
		variants := make([]types.EnumVariant, len(n.Variants))
		for i, v := range n.Variants {
			variants[i] = types.EnumVariant{Name: v.Name, Value: v.Value}
		}
		def := &types.EnumTypeDef{Name: n.Name, Width: n.Width, Variants: variants}
		r.enumDefs[n.Name] = def
		r.typeCtx[n.Name] = types.Enum{Def: def}
		return nil

	case *ast.StructTypeDef:
		fields := make([]types.StructField, len(n.Fields))
		for i, f := range n.Fields {
			t, err := r.resolveTypeExpr(f.Type)
			if err != nil {
				return err
			}
			fields[i] = types.StructField{Name: f.Name, Type: t}
		}
		def := &types.StructTypeDef{Name: n.Name, Fields: fields}
		r.structDefs[n.Name] = def
		r.typeCtx[n.Name] = types.Struct{Def: def}
		return nil

	case *ast.AltTypeDef:
		alts := make([]types.AltCtor, len(n.Alts))
		for i, a := range n.Alts {
			payload := make([]types.Type, len(a.Payload))
			for j, p := range a.Payload {
				t, err := r.resolveTypeExpr(p)
				if err != nil {
					return err
				}
				payload[j] = t
			}
			alts[i] = types.AltCtor{Name: a.Name, Payload: payload}
		}
		def := &types.AltTypeDef{Name: n.Name, Alts: alts}
		r.altDefs[n.Name] = def
		r.typeCtx[n.Name] = types.Alt{Def: def}
		return nil

	case *ast.FnDef:
		params := make([]expr.FnParam, len(n.Params))
		sc := (*scope)(nil)
		for i, p := range n.Params {
			t, err := r.resolveTypeExpr(p.Type)
			if err != nil {
				return err
			}
			params[i] = expr.FnParam{Name: p.Name, Type: t}
			sc = sc.push(p.Name)
		}
		ret, err := r.resolveTypeExpr(n.Return)
		if err != nil {
			return err
		}
		body, err := r.resolveExpr(n.Body, sc)
		if err != nil {
			return err
		}
		var outside *expr.Reference
		var walk func(e expr.Expr)
		walk = func(e expr.Expr) {
			if ref, ok := e.(*expr.Reference); ok && !ref.Local && outside == nil {
				outside = ref
			}
			for _, c := range expr.Children(e) {
				walk(c)
			}
		}
		walk(body)
		if outside != nil {
			return fmt.Errorf("function body references %q, which is not a parameter", outside.Path)
		}
		r.fnCtx[n.Name] = &expr.FnDef{Name: n.Name, Params: params, Return: ret, Body: body}
		return nil

	case *ast.ModDef:
		m, err := r.resolveModDef(n)
		if err != nil {
			return err
		}
		r.modDefs[n.Name] = m
		return nil

	case *ast.ExtDef:
		e, err := r.resolveExtDef(n)
		if err != nil {
			return err
		}
		r.extDefs[n.Name] = e
		return nil

	default:
		return nil
	}
}
