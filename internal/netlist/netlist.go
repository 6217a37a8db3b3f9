// Package netlist partitions an elaborated circuit's terminals into nets:
// equivalence classes connected by direct target <- reference(source)
// wires, each with one canonical driver (spec.md §4.6).
//
// Grounded on the "push/instantiate/nets" builder shape of nettle's
// src/circuit.rs (driver_for walking an immediate_driver_for map to a
// fixed point), adapted to this module's Elaborated/Component/Wire types.
package netlist

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
)

// Net is an equivalence class of terminals driven by a single expression
// (or left floating at X if nothing drives the group).
type Net struct {
	ID      int
	Driver  diagpath.Path
	Drivees []diagpath.Path // sorted, includes Driver
}

// Netlist is the result of Build: a dense vector of Nets plus a lookup
// from every terminal path to its net id.
type Netlist struct {
	Nets        []Net
	NetIDByPath map[diagpath.Path]int
}

// NetID looks up the net id for a terminal path.
func (nl *Netlist) NetID(p diagpath.Path) (int, bool) {
	id, ok := nl.NetIDByPath[p]
	return id, ok
}

// Build computes the net partition of el's terminals (spec.md §4.6 steps
// 1-2). Returns an error if a chain of pure-reference wires forms a cycle
// (a bug in the source circuit, never a property of a well-formed one).
func Build(el *circuit.Elaborated) (*Netlist, error) {
	immediateDriver := make(map[diagpath.Path]diagpath.Path)
	for target, w := range el.Wires {
		if ref, ok := w.Expr.(*expr.Reference); ok && !ref.Local {
			immediateDriver[target] = ref.Path
		}
	}

	terminals := el.Terminals()

	driverOf := make(map[diagpath.Path]diagpath.Path, len(terminals))
	driverSet := make(map[diagpath.Path]bool)
	for _, t := range terminals {
		d, err := chaseDriver(t, immediateDriver)
		if err != nil {
			return nil, err
		}
		driverOf[t] = d
		driverSet[d] = true
	}

	drivers := make([]diagpath.Path, 0, len(driverSet))
	for d := range driverSet {
		drivers = append(drivers, d)
	}
	diagpath.SortPaths(drivers)

	idByDriver := make(map[diagpath.Path]int, len(drivers))
	nets := make([]Net, len(drivers))
	for i, d := range drivers {
		idByDriver[d] = i
		nets[i] = Net{ID: i, Driver: d}
	}

	netIDByPath := make(map[diagpath.Path]int, len(terminals))
	for _, t := range terminals {
		id := idByDriver[driverOf[t]]
		netIDByPath[t] = id
		nets[id].Drivees = append(nets[id].Drivees, t)
	}
	for i := range nets {
		diagpath.SortPaths(nets[i].Drivees)
	}

	return &Netlist{Nets: nets, NetIDByPath: netIDByPath}, nil
}

// chaseDriver follows immediateDriver from start to its fixed point: the
// terminal with no further outgoing pure-reference edge.
func chaseDriver(start diagpath.Path, immediateDriver map[diagpath.Path]diagpath.Path) (diagpath.Path, error) {
	seen := make(map[diagpath.Path]bool)
	cur := start
	for {
		if seen[cur] {
			return "", fmt.Errorf("netlist: reference cycle detected at %s", cur)
		}
		seen[cur] = true
		next, ok := immediateDriver[cur]
		if !ok {
			return cur, nil
		}
		cur = next
	}
}

// RewriteToNets replaces every non-local Reference leaf of e whose path
// has a net id with the corresponding *expr.Net, leaving everything else
// unchanged. Used once per wire expression after Build, so the simulator
// evaluates against net ids rather than re-resolving paths every tick
// (spec.md §4.7 "Reference -> Net rewrite").
func RewriteToNets(e expr.Expr, nl *Netlist) expr.Expr {
	switch n := e.(type) {
	case *expr.Reference:
		if n.Local {
			return n
		}
		id, ok := nl.NetID(n.Path)
		if !ok {
			return n
		}
		return withCell(n, expr.NewNet(n.Pos(), id))
	case *expr.Net, *expr.Word, *expr.Enum, *expr.Hole:
		return n
	case *expr.Struct:
		fields := make([]expr.StructField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = expr.StructField{Name: f.Name, Value: RewriteToNets(f.Value, nl)}
		}
		return withCell(n, expr.NewStruct(n.Pos(), n.Def, fields))
	case *expr.Vec:
		return withCell(n, expr.NewVec(n.Pos(), rewriteAll(n.Elems, nl)))
	case *expr.Ctor:
		return withCell(n, expr.NewCtor(n.Pos(), n.Name, rewriteAll(n.Args, nl)))
	case *expr.Cat:
		return withCell(n, expr.NewCat(n.Pos(), rewriteAll(n.Elems, nl)))
	case *expr.Sext:
		return withCell(n, expr.NewSext(n.Pos(), RewriteToNets(n.E, nl)))
	case *expr.Zext:
		return withCell(n, expr.NewZext(n.Pos(), RewriteToNets(n.E, nl)))
	case *expr.ToWord:
		return withCell(n, expr.NewToWord(n.Pos(), RewriteToNets(n.E, nl)))
	case *expr.TryCast:
		return withCell(n, expr.NewTryCast(n.Pos(), RewriteToNets(n.E, nl)))
	case *expr.Call:
		return withCell(n, expr.NewCall(n.Pos(), n.Fn, rewriteAll(n.Args, nl)))
	case *expr.Let:
		return withCell(n, expr.NewLet(n.Pos(), n.Name, n.Annotation, RewriteToNets(n.Value, nl), RewriteToNets(n.Body, nl)))
	case *expr.If:
		return withCell(n, expr.NewIf(n.Pos(), RewriteToNets(n.Cond, nl), RewriteToNets(n.T, nl), RewriteToNets(n.F, nl)))
	case *expr.Mux:
		return withCell(n, expr.NewMux(n.Pos(), RewriteToNets(n.Cond, nl), RewriteToNets(n.T, nl), RewriteToNets(n.F, nl)))
	case *expr.UnOp:
		return withCell(n, expr.NewUnOp(n.Pos(), n.Op, RewriteToNets(n.E, nl)))
	case *expr.BinOp:
		return withCell(n, expr.NewBinOp(n.Pos(), n.Op, RewriteToNets(n.E1, nl), RewriteToNets(n.E2, nl)))
	case *expr.Idx:
		return withCell(n, expr.NewIdx(n.Pos(), RewriteToNets(n.E, nl), n.I))
	case *expr.IdxRange:
		return withCell(n, expr.NewIdxRange(n.Pos(), RewriteToNets(n.E, nl), n.J, n.I))
	case *expr.IdxField:
		return withCell(n, expr.NewIdxField(n.Pos(), RewriteToNets(n.E, nl), n.Field))
	case *expr.Match:
		arms := make([]expr.MatchArm, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = expr.MatchArm{Pattern: a.Pattern, Body: RewriteToNets(a.Body, nl)}
		}
		return withCell(n, expr.NewMatch(n.Pos(), RewriteToNets(n.Scrutinee, nl), arms))
	default:
		return n
	}
}

func rewriteAll(es []expr.Expr, nl *Netlist) []expr.Expr {
	out := make([]expr.Expr, len(es))
	for i, e := range es {
		out[i] = RewriteToNets(e, nl)
	}
	return out
}

func withCell(orig, clone expr.Expr) expr.Expr {
	if t, ok := orig.Cell().Get(); ok {
		_ = clone.Cell().Set(t)
	}
	return clone
}
