package main

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/ast"
	"github.com/bitsysim/bitsysim/internal/diagnostics"
)

func pos() diagnostics.Pos { return diagnostics.Pos{File: "<builtin>", Line: 1, Col: 1} }

func wordT(w uint64) *ast.WordType { return &ast.WordType{TokPos: pos(), Width: w} }

// fixtures are the built-in circuits available to the CLI. The real
// grammar/lexer is an out-of-scope external collaborator (spec.md §1, §6),
// so this acts as its stand-in: each entry is the already-parsed AST a real
// frontend would hand the resolver.
var fixtures = map[string]func() *ast.Package{
	"adder":   adderFixture,
	"counter": counterFixture,
	"mux":     muxFixture,
	"cat":     catFixture,
	"echo":    echoFixture,
}

func fixtureNames() []string {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	return names
}

// adderFixture: mod Top { incoming a: Word<8>; incoming b: Word<8>; outgoing s: Word<8>; s := a + b; }
func adderFixture() *ast.Package {
	top := &ast.ModDef{
		TokPos: pos(),
		Name:   "Top",
		Decls: []ast.Decl{
			&ast.PortDecl{TokPos: pos(), Name: "a", Dir: ast.DirIncoming, Type: wordT(8)},
			&ast.PortDecl{TokPos: pos(), Name: "b", Dir: ast.DirIncoming, Type: wordT(8)},
			&ast.PortDecl{TokPos: pos(), Name: "s", Dir: ast.DirOutgoing, Type: wordT(8)},
			&ast.WireDecl{
				TokPos:     pos(),
				TargetName: "s",
				Kind:       ast.Connect,
				Expr: &ast.BinOp{
					TokPos: pos(), Op: ast.Add,
					E1: &ast.Ident{TokPos: pos(), Name: "a"},
					E2: &ast.Ident{TokPos: pos(), Name: "b"},
				},
			},
		},
	}
	return &ast.Package{Items: []ast.Item{top}}
}

// counterFixture: mod Top { outgoing out: Word<4>; reg c: Word<4> reset 0; c.set := c + 1; out := c; }
func counterFixture() *ast.Package {
	top := &ast.ModDef{
		TokPos: pos(),
		Name:   "Top",
		Decls: []ast.Decl{
			&ast.PortDecl{TokPos: pos(), Name: "out", Dir: ast.DirOutgoing, Type: wordT(4)},
			&ast.RegDecl{TokPos: pos(), Name: "c", Type: wordT(4),
				Reset: &ast.WordLit{TokPos: pos(), Width: nil, Value: 0}},
			&ast.WireDecl{
				TokPos:     pos(),
				TargetName: "c",
				Kind:       ast.Latch,
				Expr: &ast.BinOp{
					TokPos: pos(), Op: ast.Add,
					E1: &ast.Ident{TokPos: pos(), Name: "c"},
					E2: &ast.WordLit{TokPos: pos(), Width: nil, Value: 1},
				},
			},
			&ast.WireDecl{TokPos: pos(), TargetName: "out", Kind: ast.Connect,
				Expr: &ast.Ident{TokPos: pos(), Name: "c"}},
		},
	}
	return &ast.Package{Items: []ast.Item{top}}
}

// muxFixture: mod Top { incoming sel: Word<1>; incoming a,b: Word<8>; outgoing out: Word<8>; out := mux(sel, a, b); }
func muxFixture() *ast.Package {
	top := &ast.ModDef{
		TokPos: pos(),
		Name:   "Top",
		Decls: []ast.Decl{
			&ast.PortDecl{TokPos: pos(), Name: "sel", Dir: ast.DirIncoming, Type: wordT(1)},
			&ast.PortDecl{TokPos: pos(), Name: "a", Dir: ast.DirIncoming, Type: wordT(8)},
			&ast.PortDecl{TokPos: pos(), Name: "b", Dir: ast.DirIncoming, Type: wordT(8)},
			&ast.PortDecl{TokPos: pos(), Name: "out", Dir: ast.DirOutgoing, Type: wordT(8)},
			&ast.WireDecl{TokPos: pos(), TargetName: "out", Kind: ast.Connect,
				Expr: &ast.Mux{
					TokPos: pos(),
					Cond:   &ast.Ident{TokPos: pos(), Name: "sel"},
					T:      &ast.Ident{TokPos: pos(), Name: "a"},
					F:      &ast.Ident{TokPos: pos(), Name: "b"},
				}},
		},
	}
	return &ast.Package{Items: []ast.Item{top}}
}

// catFixture: mod Top { outgoing out: Word<4>; out := cat(Word<2>(3), Word<2>(1)); }
func catFixture() *ast.Package {
	two := uint64(2)
	top := &ast.ModDef{
		TokPos: pos(),
		Name:   "Top",
		Decls: []ast.Decl{
			&ast.PortDecl{TokPos: pos(), Name: "out", Dir: ast.DirOutgoing, Type: wordT(4)},
			&ast.WireDecl{TokPos: pos(), TargetName: "out", Kind: ast.Connect,
				Expr: &ast.Call{
					TokPos: pos(), Callee: "cat",
					Args: []ast.Expr{
						&ast.WordLit{TokPos: pos(), Width: &two, Value: 3},
						&ast.WordLit{TokPos: pos(), Width: &two, Value: 1},
					},
				}},
		},
	}
	return &ast.Package{Items: []ast.Item{top}}
}

// echoFixture: mod Top { incoming in: Word<8>; outgoing out: Word<8>; ext e: Echo; e.i := in; out := e.o; }
func echoFixture() *ast.Package {
	echoDef := &ast.ExtDef{
		TokPos: pos(),
		Name:   "Echo",
		Ports: []ast.ExtPort{
			{Name: "i", Dir: ast.DirIncoming, Type: wordT(8)},
			{Name: "o", Dir: ast.DirOutgoing, Type: wordT(8)},
		},
	}
	top := &ast.ModDef{
		TokPos: pos(),
		Name:   "Top",
		Decls: []ast.Decl{
			&ast.PortDecl{TokPos: pos(), Name: "in", Dir: ast.DirIncoming, Type: wordT(8)},
			&ast.PortDecl{TokPos: pos(), Name: "out", Dir: ast.DirOutgoing, Type: wordT(8)},
			&ast.ExtInstDecl{TokPos: pos(), Name: "e", ExtName: "Echo"},
			&ast.WireDecl{TokPos: pos(), TargetName: "e.i", Kind: ast.Connect,
				Expr: &ast.Ident{TokPos: pos(), Name: "in"}},
			&ast.WireDecl{TokPos: pos(), TargetName: "out", Kind: ast.Connect,
				Expr: &ast.Dot{TokPos: pos(), Lhs: &ast.Ident{TokPos: pos(), Name: "e"}, Field: "o"}},
		},
	}
	return &ast.Package{Items: []ast.Item{top, echoDef}}
}

func describeFixtures() string {
	s := ""
	for _, n := range fixtureNames() {
		s += fmt.Sprintf("  %s\n", n)
	}
	return s
}
