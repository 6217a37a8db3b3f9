package circuit

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

// ComponentKind distinguishes the terminal/container kinds produced by
// elaboration (spec.md §3 Component).
type ComponentKind int

const (
	CompIncoming ComponentKind = iota
	CompOutgoing
	CompNode
	CompReg
	CompMod
	CompExt
)

// Component is one entry of the elaborated circuit's component map.
type Component struct {
	Kind   ComponentKind
	Type   types.Type // nil for Mod/Ext container entries
	Reset  expr.Expr  // CompReg only; nil if the register has no reset expr
	ExtDef *ExtDef    // CompExt only
}

// Wire is one entry of the elaborated circuit's wire map: the expression
// driving an absolute target path, and whether it drives the path itself
// (Connect) or the path's .set() child (Latch).
type Wire struct {
	Expr expr.Expr
	Kind WireKind
}

// Elaborated is the flat output of Elaborate: every component and wire
// under its canonical absolute path, rooted at the literal segment "top"
// regardless of the top ModDef's own name (spec.md §4.5).
type Elaborated struct {
	Top        diagpath.Path
	Components map[diagpath.Path]Component
	Wires      map[diagpath.Path]Wire
	RegPaths   []diagpath.Path
	ExtPaths   []diagpath.Path
}

// Terminals lists every addressable path: ports, nodes, and registers
// (both the register's own path and its .set child), sorted ascending
// (spec.md §3 "Terminal").
func (el *Elaborated) Terminals() []diagpath.Path {
	var out []diagpath.Path
	for path, c := range el.Components {
		switch c.Kind {
		case CompIncoming, CompOutgoing, CompNode:
			out = append(out, path)
		case CompReg:
			out = append(out, path, path.Set())
		}
	}
	diagpath.SortPaths(out)
	return out
}

// ResetFor returns the reset expression for a register path, or nil if
// path does not name a register or the register has no reset.
func (el *Elaborated) ResetFor(path diagpath.Path) expr.Expr {
	c, ok := el.Components[path]
	if !ok || c.Kind != CompReg {
		return nil
	}
	return c.Reset
}

// Elaborate flattens pkg's module hierarchy starting from the ModDef
// named topName into a single absolute-path namespace rooted at "top"
// (spec.md §4.5 steps 1-4).
func Elaborate(pkg *Package, topName string) (*Elaborated, error) {
	top, ok := pkg.ModDefs[topName]
	if !ok {
		return nil, fmt.Errorf("elaborate: no such top module %q", topName)
	}
	el := &Elaborated{
		Top:        diagpath.New("top"),
		Components: make(map[diagpath.Path]Component),
		Wires:      make(map[diagpath.Path]Wire),
	}
	fl := &flattener{el: el}
	if err := fl.flattenDecls(top.Decls, el.Top); err != nil {
		return nil, err
	}
	diagpath.SortPaths(el.RegPaths)
	diagpath.SortPaths(el.ExtPaths)
	return el, nil
}

type flattener struct {
	el *Elaborated
}

func (fl *flattener) flattenDecls(decls []Decl, prefix diagpath.Path) error {
	for _, d := range decls {
		if err := fl.flattenDecl(d, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (fl *flattener) flattenDecl(d Decl, prefix diagpath.Path) error {
	switch n := d.(type) {
	case *PortDecl:
		path := prefix.Join(n.Name)
		kind := CompIncoming
		if n.Dir == DirOutgoing {
			kind = CompOutgoing
		}
		fl.el.Components[path] = Component{Kind: kind, Type: n.Type}
		return nil

	case *NodeDecl:
		path := prefix.Join(n.Name)
		fl.el.Components[path] = Component{Kind: CompNode, Type: n.Type}
		return nil

	case *RegDecl:
		path := prefix.Join(n.Name)
		var reset expr.Expr
		if n.Reset != nil {
			reset = Rebase(n.Reset, prefix)
		}
		fl.el.Components[path] = Component{Kind: CompReg, Type: n.Type, Reset: reset}
		fl.el.RegPaths = append(fl.el.RegPaths, path)
		return nil

	case *ModDecl:
		childPrefix := prefix.Join(n.Name)
		fl.el.Components[childPrefix] = Component{Kind: CompMod}
		return fl.flattenDecls(n.Decls, childPrefix)

	case *InstDecl:
		childPrefix := prefix.Join(n.Name)
		fl.el.Components[childPrefix] = Component{Kind: CompMod}
		return fl.flattenDecls(n.ModDef.Decls, childPrefix)

	case *ExtInstDecl:
		childPrefix := prefix.Join(n.Name)
		fl.el.Components[childPrefix] = Component{Kind: CompExt, ExtDef: n.ExtDef}
		fl.el.ExtPaths = append(fl.el.ExtPaths, childPrefix)
		for _, p := range n.ExtDef.Ports {
			portPath := childPrefix.Join(p.Name)
			kind := CompIncoming
			if p.Dir == DirOutgoing {
				kind = CompOutgoing
			}
			fl.el.Components[portPath] = Component{Kind: kind, Type: p.Type}
		}
		return nil

	case *WireDecl:
		key := prefix.Join(n.TargetPath)
		if n.Kind == Latch {
			key = key.Set()
		}
		fl.el.Wires[key] = Wire{Expr: Rebase(n.Expr, prefix), Kind: n.Kind}
		return nil

	case *WhenDecl:
		cond := Rebase(n.Cond, prefix)
		for _, w := range n.Wires {
			key := prefix.Join(w.TargetPath)
			if w.Kind == Latch {
				key = key.Set()
			}
			rhs := Rebase(w.Expr, prefix)
			prior, hadPrior := fl.el.Wires[key]
			var fallback expr.Expr
			if hadPrior {
				fallback = prior.Expr
			} else {
				fallback = expr.NewHole(w.Pos(), nil)
			}
			fl.el.Wires[key] = Wire{Expr: expr.NewMux(w.Pos(), cond, rhs, fallback), Kind: w.Kind}
		}
		return nil

	default:
		return fmt.Errorf("elaborate: unhandled Decl %T", d)
	}
}

// WireKeys returns every wire target path, sorted ascending — used by
// tests asserting elaboration determinism (spec.md §8) and by the
// simulator when it needs a stable iteration order.
func (el *Elaborated) WireKeys() []diagpath.Path {
	keys := make([]diagpath.Path, 0, len(el.Wires))
	for k := range el.Wires {
		keys = append(keys, k)
	}
	diagpath.SortPaths(keys)
	return keys
}
