package typecheck

import (
	"strings"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/types"
)

// CheckPackage typechecks every named ModDef in pkg exactly once, recursing
// into inline ModDecl bodies (which share their enclosing ModDef's pass) but
// not into InstDecl.ModDef bodies — a child ModDef instantiated elsewhere is
// itself a top-level item in pkg.ModDefs and gets its own pass.
func CheckPackage(pkg *circuit.Package) *diagnostics.Batch {
	batch := &diagnostics.Batch{}
	for _, name := range pkg.Order {
		if mod, ok := pkg.ModDefs[name]; ok {
			checkDecls(mod.Decls, batch)
		}
	}
	return batch
}

// checkDecls typechecks every WireDecl/WhenDecl visible at this nesting
// level, against the Context built from the decls at the same level, then
// recurses into any inline ModDecl children with their own nested Context.
func checkDecls(decls []circuit.Decl, batch *diagnostics.Batch) {
	ctx := buildContext(decls)
	for _, d := range decls {
		switch n := d.(type) {
		case *circuit.WireDecl:
			checkWire(n, ctx, batch)
		case *circuit.WhenDecl:
			checkWhen(n, ctx, batch)
		case *circuit.ModDecl:
			checkDecls(n.Decls, batch)
		case *circuit.RegDecl:
			if n.Reset != nil {
				Check(n.Reset, n.Type, ctx, batch)
			}
		}
	}
}

func checkWhen(w *circuit.WhenDecl, ctx Context, batch *diagnostics.Batch) {
	Check(w.Cond, types.Word{W: 1}, ctx, batch)
	for _, inner := range w.Wires {
		checkWire(inner, ctx, batch)
	}
}

func checkWire(w *circuit.WireDecl, ctx Context, batch *diagnostics.Batch) {
	t, ok := targetType(w.TargetPath, ctx)
	if !ok {
		batch.Addf(w.Pos(), "unknown wire target %q", w.TargetPath)
		return
	}
	Check(w.Expr, t, ctx, batch)
}

// targetType resolves a WireDecl's target path to its declared type. A
// Latch wire names the register itself (the elaborator appends ".set") and
// resolves by direct lookup; a target written with an explicit ".set"
// suffix falls back to the register's own type — the ".set" child is a
// write port onto it, not a separately-typed declaration.
func targetType(target string, ctx Context) (types.Type, bool) {
	if t, ok := ctx[diagpath.New(target)]; ok {
		return t, true
	}
	if base, ok := strings.CutSuffix(target, ".set"); ok {
		if t, ok := ctx[diagpath.New(base)]; ok {
			return t, true
		}
	}
	return nil, false
}
