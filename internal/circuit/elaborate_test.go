package circuit

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

func pos() diagnostics.Pos { return diagnostics.Pos{File: "t.bitsy", Line: 1, Col: 1} }

// adderPackage builds the resolved form of spec.md §8's Adder scenario
// directly (bypassing internal/resolve, which has its own tests) so this
// package's tests stay focused on elaboration.
func adderPackage() *Package {
	word8 := types.Word{W: 8}
	mod := &ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []Decl{
			NewPortDecl(pos(), "a", DirIncoming, word8),
			NewPortDecl(pos(), "b", DirIncoming, word8),
			NewPortDecl(pos(), "s", DirOutgoing, word8),
			NewWireDecl(pos(), "s", expr.NewBinOp(pos(), expr.Add,
				expr.NewReference(pos(), diagpath.New("a")),
				expr.NewReference(pos(), diagpath.New("b"))), Connect),
		},
	}
	return &Package{ModDefs: map[string]*ModDef{"Top": mod}}
}

func TestElaborateAdder(t *testing.T) {
	el, err := Elaborate(adderPackage(), "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	terminals := el.Terminals()
	if len(terminals) != 3 {
		t.Fatalf("expected 3 terminals, got %d: %v", len(terminals), terminals)
	}
	if len(el.Wires) != 1 {
		t.Fatalf("expected 1 wire, got %d", len(el.Wires))
	}
	wire, ok := el.Wires[diagpath.New("top.s")]
	if !ok {
		t.Fatalf("expected wire at top.s, got keys %v", el.WireKeys())
	}
	bin := wire.Expr.(*expr.BinOp)
	ref1 := bin.E1.(*expr.Reference)
	if ref1.Path != diagpath.New("top.a") {
		t.Fatalf("expected rebased reference top.a, got %s", ref1.Path)
	}
}

// counterPackage builds spec.md §8's Counter scenario: a register whose
// .set is driven by its own incremented value.
func counterPackage() *Package {
	word4 := types.Word{W: 4}
	zero := uint64(0)
	mod := &ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []Decl{
			NewPortDecl(pos(), "out", DirOutgoing, word4),
			NewRegDecl(pos(), "c", word4, expr.NewWord(pos(), nil, zero)),
			NewWireDecl(pos(), "c", expr.NewBinOp(pos(), expr.Add,
				expr.NewReference(pos(), diagpath.New("c")),
				expr.NewWord(pos(), nil, 1)), Latch),
			NewWireDecl(pos(), "out", expr.NewReference(pos(), diagpath.New("c")), Connect),
		},
	}
	return &Package{ModDefs: map[string]*ModDef{"Top": mod}}
}

func TestElaborateCounterRegisterSetChild(t *testing.T) {
	el, err := Elaborate(counterPackage(), "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if len(el.RegPaths) != 1 || el.RegPaths[0] != diagpath.New("top.c") {
		t.Fatalf("expected one register at top.c, got %v", el.RegPaths)
	}
	if _, ok := el.Wires[diagpath.New("top.c.set")]; !ok {
		t.Fatalf("expected a wire driving top.c.set, got keys %v", el.WireKeys())
	}
	reset := el.ResetFor(diagpath.New("top.c"))
	if reset == nil {
		t.Fatalf("expected a reset expression for top.c")
	}
	terminals := el.Terminals()
	found := false
	for _, p := range terminals {
		if p == diagpath.New("top.c.set") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected top.c.set to be a terminal, got %v", terminals)
	}
}

func TestElaborateWhenDesugarsToMuxChain(t *testing.T) {
	word1 := types.Word{W: 1}
	mod := &ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []Decl{
			NewPortDecl(pos(), "sel", DirIncoming, word1),
			NewPortDecl(pos(), "out", DirOutgoing, word1),
			NewWireDecl(pos(), "out", expr.NewWord(pos(), nil, 0), Connect),
			NewWhenDecl(pos(), expr.NewReference(pos(), diagpath.New("sel")),
				[]*WireDecl{NewWireDecl(pos(), "out", expr.NewWord(pos(), nil, 1), Connect)}),
		},
	}
	el, err := Elaborate(&Package{ModDefs: map[string]*ModDef{"Top": mod}}, "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	wire := el.Wires[diagpath.New("top.out")]
	mux, ok := wire.Expr.(*expr.Mux)
	if !ok {
		t.Fatalf("expected When to desugar top.out's driver into a Mux, got %T", wire.Expr)
	}
	if _, ok := mux.F.(*expr.Word); !ok {
		t.Fatalf("expected the unconditional default to become Mux's false branch, got %T", mux.F)
	}
}

func TestElaborateMissingTopModule(t *testing.T) {
	_, err := Elaborate(&Package{ModDefs: map[string]*ModDef{}}, "Top")
	if err == nil {
		t.Fatalf("expected an error for a missing top module")
	}
}

// elaborationSummary captures the parts of an Elaborated that spec.md §8's
// "Elaboration determinism" property requires to be byte-for-byte
// reproducible: wire target keys and the register/ext path lists, in the
// order Elaborate produced them.
type elaborationSummary struct {
	WireKeys []diagpath.Path
	RegPaths []diagpath.Path
	ExtPaths []diagpath.Path
}

func summarize(el *Elaborated) elaborationSummary {
	return elaborationSummary{
		WireKeys: el.WireKeys(),
		RegPaths: el.RegPaths,
		ExtPaths: el.ExtPaths,
	}
}

func TestElaborateIsDeterministic(t *testing.T) {
	first, err := Elaborate(counterPackage(), "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	second, err := Elaborate(counterPackage(), "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	a, b := summarize(first), summarize(second)
	if diff := pretty.Diff(a, b); len(diff) > 0 {
		t.Fatalf("elaborating the same package twice produced different results:\n%s", pretty.Sprint(diff))
	}
}
