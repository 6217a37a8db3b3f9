package netlist

import (
	"testing"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

func pos() diagnostics.Pos { return diagnostics.Pos{File: "t.bitsy", Line: 1, Col: 1} }

func TestBuildPassThroughSharesNet(t *testing.T) {
	// mod Top { incoming a: Word<4>; outgoing b: Word<4>; b := a; }
	word4 := types.Word{W: 4}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "a", circuit.DirIncoming, word4),
			circuit.NewPortDecl(pos(), "b", circuit.DirOutgoing, word4),
			circuit.NewWireDecl(pos(), "b", expr.NewReference(pos(), diagpath.New("a")), circuit.Connect),
		},
	}
	el, err := circuit.Elaborate(&circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}, "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	nl, err := Build(el)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	idA, okA := nl.NetID(diagpath.New("top.a"))
	idB, okB := nl.NetID(diagpath.New("top.b"))
	if !okA || !okB {
		t.Fatalf("expected both top.a and top.b to have net ids")
	}
	if idA != idB {
		t.Fatalf("expected top.a and top.b in the same net (b is a pure reference to a), got %d vs %d", idA, idB)
	}
	net := nl.Nets[idA]
	if net.Driver != diagpath.New("top.a") {
		t.Fatalf("expected top.a to be the driver (nothing points at it), got %s", net.Driver)
	}
}

func TestBuildDetectsReferenceCycle(t *testing.T) {
	word1 := types.Word{W: 1}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewNodeDecl(pos(), "x", word1),
			circuit.NewNodeDecl(pos(), "y", word1),
			circuit.NewWireDecl(pos(), "x", expr.NewReference(pos(), diagpath.New("y")), circuit.Connect),
			circuit.NewWireDecl(pos(), "y", expr.NewReference(pos(), diagpath.New("x")), circuit.Connect),
		},
	}
	el, err := circuit.Elaborate(&circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}, "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if _, err := Build(el); err == nil {
		t.Fatalf("expected a reference-cycle error")
	}
}

func TestRewriteToNetsReplacesReferenceLeaves(t *testing.T) {
	word4 := types.Word{W: 4}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "a", circuit.DirIncoming, word4),
			circuit.NewPortDecl(pos(), "b", circuit.DirIncoming, word4),
			circuit.NewPortDecl(pos(), "s", circuit.DirOutgoing, word4),
			circuit.NewWireDecl(pos(), "s", expr.NewBinOp(pos(), expr.Add,
				expr.NewReference(pos(), diagpath.New("a")),
				expr.NewReference(pos(), diagpath.New("b"))), circuit.Connect),
		},
	}
	el, err := circuit.Elaborate(&circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}, "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	nl, err := Build(el)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wire := el.Wires[diagpath.New("top.s")]
	rewritten := RewriteToNets(wire.Expr, nl)
	bin := rewritten.(*expr.BinOp)
	if _, ok := bin.E1.(*expr.Net); !ok {
		t.Fatalf("expected E1 to become a Net leaf, got %T", bin.E1)
	}
	if _, ok := bin.E2.(*expr.Net); !ok {
		t.Fatalf("expected E2 to become a Net leaf, got %T", bin.E2)
	}
}
