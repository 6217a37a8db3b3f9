package sim

import (
	"testing"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/ext"
	"github.com/bitsysim/bitsysim/internal/types"
)

func pos() diagnostics.Pos { return diagnostics.Pos{File: "t.bitsy", Line: 1, Col: 1} }

func width(n uint64) *uint64 { return &n }

func mustElaborate(t *testing.T, pkg *circuit.Package) *circuit.Elaborated {
	t.Helper()
	el, err := circuit.Elaborate(pkg, "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	return el
}

// adderPackage mirrors spec.md §8 scenario 1.
func adderPackage() *circuit.Package {
	word8 := types.Word{W: 8}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "a", circuit.DirIncoming, word8),
			circuit.NewPortDecl(pos(), "b", circuit.DirIncoming, word8),
			circuit.NewPortDecl(pos(), "s", circuit.DirOutgoing, word8),
			circuit.NewWireDecl(pos(), "s", expr.NewBinOp(pos(), expr.Add,
				expr.NewReference(pos(), diagpath.New("a")),
				expr.NewReference(pos(), diagpath.New("b"))), circuit.Connect),
		},
	}
	return &circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}
}

func TestAdderScenario(t *testing.T) {
	el := mustElaborate(t, adderPackage())
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if err := s.Poke(diagpath.New("top.a"), types.NewWord(3, 8)); err != nil {
		t.Fatalf("poke a: %v", err)
	}
	if err := s.Poke(diagpath.New("top.b"), types.NewWord(5, 8)); err != nil {
		t.Fatalf("poke b: %v", err)
	}
	got, err := s.Peek(diagpath.New("top.s"))
	if err != nil {
		t.Fatalf("peek s: %v", err)
	}
	if !got.Equal(types.NewWord(8, 8)) {
		t.Fatalf("got %v, want 8", got)
	}

	if err := s.Poke(diagpath.New("top.a"), types.X); err != nil {
		t.Fatalf("poke a=X: %v", err)
	}
	got, _ = s.Peek(diagpath.New("top.s"))
	if !types.IsX(got) {
		t.Fatalf("expected X, got %v", got)
	}
}

func TestAdderUnknownPathIsError(t *testing.T) {
	el := mustElaborate(t, adderPackage())
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if _, err := s.Peek(diagpath.New("top.nope")); err == nil {
		t.Fatalf("expected an UnknownPathError")
	}
}

// counterPackage mirrors spec.md §8 scenario 2.
func counterPackage() *circuit.Package {
	word4 := types.Word{W: 4}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "out", circuit.DirOutgoing, word4),
			circuit.NewRegDecl(pos(), "c", word4, expr.NewWord(pos(), width(4), 0)),
			circuit.NewWireDecl(pos(), "c", expr.NewBinOp(pos(), expr.Add,
				expr.NewReference(pos(), diagpath.New("c")),
				expr.NewWord(pos(), width(4), 1)), circuit.Latch),
			circuit.NewWireDecl(pos(), "out", expr.NewReference(pos(), diagpath.New("c")), circuit.Connect),
		},
	}
	return &circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}
}

func TestCounterScenario(t *testing.T) {
	el := mustElaborate(t, counterPackage())
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ := s.Peek(diagpath.New("top.out"))
	if !got.Equal(types.NewWord(0, 4)) {
		t.Fatalf("after reset, got %v, want 0", got)
	}
	for i := 0; i < 3; i++ {
		if err := s.Clock(); err != nil {
			t.Fatalf("clock %d: %v", i, err)
		}
	}
	got, _ = s.Peek(diagpath.New("top.out"))
	if !got.Equal(types.NewWord(3, 4)) {
		t.Fatalf("after 3 clocks, got %v, want 3", got)
	}
}

func TestRegisterPokeIsDeferredUntilClock(t *testing.T) {
	el := mustElaborate(t, counterPackage())
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if err := s.Poke(diagpath.New("top.c.set"), types.NewWord(9, 4)); err != nil {
		t.Fatalf("poke c.set: %v", err)
	}
	got, _ := s.Peek(diagpath.New("top.c"))
	if got.Equal(types.NewWord(9, 4)) {
		t.Fatalf("expected poke to top.c.set not to be visible on top.c before clock()")
	}
	if err := s.Clock(); err != nil {
		t.Fatalf("clock: %v", err)
	}
	got, _ = s.Peek(diagpath.New("top.c"))
	if !got.Equal(types.NewWord(9, 4)) {
		t.Fatalf("after clock, got %v, want 9", got)
	}
}

// muxPackage mirrors spec.md §8 scenario 3.
func muxPackage() *circuit.Package {
	word1 := types.Word{W: 1}
	word8 := types.Word{W: 8}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "sel", circuit.DirIncoming, word1),
			circuit.NewPortDecl(pos(), "a", circuit.DirIncoming, word8),
			circuit.NewPortDecl(pos(), "b", circuit.DirIncoming, word8),
			circuit.NewPortDecl(pos(), "out", circuit.DirOutgoing, word8),
			circuit.NewWireDecl(pos(), "out", expr.NewMux(pos(),
				expr.NewReference(pos(), diagpath.New("sel")),
				expr.NewReference(pos(), diagpath.New("a")),
				expr.NewReference(pos(), diagpath.New("b"))), circuit.Connect),
		},
	}
	return &circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}
}

func TestMuxScenario(t *testing.T) {
	el := mustElaborate(t, muxPackage())
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	s.Poke(diagpath.New("top.sel"), types.NewWord(1, 1))
	s.Poke(diagpath.New("top.a"), types.NewWord(7, 8))
	s.Poke(diagpath.New("top.b"), types.NewWord(9, 8))
	got, _ := s.Peek(diagpath.New("top.out"))
	if !got.Equal(types.NewWord(7, 8)) {
		t.Fatalf("got %v, want 7", got)
	}

	s.Poke(diagpath.New("top.sel"), types.X)
	got, _ = s.Peek(diagpath.New("top.out"))
	if !types.IsX(got) {
		t.Fatalf("expected X, got %v", got)
	}
}

// echoPackage mirrors spec.md §8 scenario 5.
func echoPackage() *circuit.Package {
	word8 := types.Word{W: 8}
	extDef := &circuit.ExtDef{
		Pos:  pos(),
		Name: "Echo",
		Ports: []circuit.ExtPort{
			{Name: "i", Dir: circuit.DirIncoming, Type: word8},
			{Name: "o", Dir: circuit.DirOutgoing, Type: word8},
		},
	}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "in", circuit.DirIncoming, word8),
			circuit.NewPortDecl(pos(), "out", circuit.DirOutgoing, word8),
			circuit.NewExtInstDecl(pos(), "ext", extDef),
			circuit.NewWireDecl(pos(), "ext.i", expr.NewReference(pos(), diagpath.New("in")), circuit.Connect),
			circuit.NewWireDecl(pos(), "out", expr.NewReference(pos(), diagpath.New("ext.o")), circuit.Connect),
		},
	}
	return &circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}}
}

func TestExternalEchoScenario(t *testing.T) {
	el := mustElaborate(t, echoPackage())
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if err := s.Ext(diagpath.New("top.ext"), ext.NewEcho()); err != nil {
		t.Fatalf("attach ext: %v", err)
	}
	if err := s.Poke(diagpath.New("top.in"), types.NewWord(42, 8)); err != nil {
		t.Fatalf("poke in: %v", err)
	}
	got, err := s.Peek(diagpath.New("top.out"))
	if err != nil {
		t.Fatalf("peek out: %v", err)
	}
	if !got.Equal(types.NewWord(42, 8)) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestBroadcastUpdateConstantsAppliesAtConstruction(t *testing.T) {
	word4 := types.Word{W: 4}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewPortDecl(pos(), "out", circuit.DirOutgoing, word4),
			circuit.NewWireDecl(pos(), "out", expr.NewWord(pos(), width(4), 7), circuit.Connect),
		},
	}
	el := mustElaborate(t, &circuit.Package{ModDefs: map[string]*circuit.ModDef{"Top": mod}})
	s, err := New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	got, _ := s.Peek(diagpath.New("top.out"))
	if !got.Equal(types.NewWord(7, 4)) {
		t.Fatalf("expected constant wire applied at construction, got %v", got)
	}
}
