package typecheck

import (
	"testing"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

func pos() diagnostics.Pos { return diagnostics.Pos{File: "t.bitsy", Line: 1, Col: 1} }

func width(n uint64) *uint64 { return &n }

func TestInferReferenceLooksUpContext(t *testing.T) {
	ctx := Context{diagpath.New("a"): types.Word{W: 8}}
	ref := expr.NewReference(pos(), diagpath.New("a"))
	got, ok := Infer(ref, ctx)
	if !ok || !got.Equal(types.Word{W: 8}) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestInferReferenceUnknownFails(t *testing.T) {
	if _, ok := Infer(expr.NewReference(pos(), diagpath.New("missing")), Context{}); ok {
		t.Fatalf("expected failure for unbound reference")
	}
}

func TestLetShadowsOuterBinding(t *testing.T) {
	ctx := Context{diagpath.New("x"): types.Word{W: 8}}
	local := expr.NewLocalReference(pos(), "x")
	letExpr := expr.NewLet(pos(), "x", nil, expr.NewWord(pos(), width(4), 3), local)
	got, ok := Infer(letExpr, ctx)
	if !ok || !got.Equal(types.Word{W: 4}) {
		t.Fatalf("expected inner binding (Word<4>) to shadow outer Word<8>, got %v, %v", got, ok)
	}
}

func TestCheckWordLiteralFitsWidth(t *testing.T) {
	var b diagnostics.Batch
	Check(expr.NewWord(pos(), nil, 15), types.Word{W: 4}, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckWordLiteralOverflowFails(t *testing.T) {
	var b diagnostics.Batch
	Check(expr.NewWord(pos(), nil, 16), types.Word{W: 4}, Context{}, &b)
	if !b.HasErrors() {
		t.Fatalf("expected overflow error")
	}
}

func TestCheckBinOpAddRequiresMatchingWidth(t *testing.T) {
	ctx := Context{}
	var b diagnostics.Batch
	e := expr.NewBinOp(pos(), expr.Add, expr.NewWord(pos(), nil, 1), expr.NewWord(pos(), nil, 2))
	Check(e, types.Word{W: 4}, ctx, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckAddCarryWidensOperandsByOne(t *testing.T) {
	var b diagnostics.Batch
	e := expr.NewBinOp(pos(), expr.AddCarry, expr.NewWord(pos(), width(3), 7), expr.NewWord(pos(), width(3), 7))
	Check(e, types.Word{W: 4}, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckAddCarryRejectsSameWidthResult(t *testing.T) {
	// addcarry operands must be one bit narrower than the result (the extra
	// bit carries the overflow); annotating an operand at the full result
	// width is a mismatch.
	var b diagnostics.Batch
	e := expr.NewBinOp(pos(), expr.AddCarry, expr.NewWord(pos(), width(4), 7), expr.NewWord(pos(), width(4), 7))
	Check(e, types.Word{W: 4}, Context{}, &b)
	if !b.HasErrors() {
		t.Fatalf("expected a width mismatch error")
	}
}

func TestInferEqInfersFromLeftOperand(t *testing.T) {
	ctx := Context{diagpath.New("a"): types.Word{W: 4}}
	e := expr.NewBinOp(pos(), expr.Eq, expr.NewReference(pos(), diagpath.New("a")), expr.NewWord(pos(), nil, 3))
	got, ok := Infer(e, ctx)
	if !ok || !got.Equal(types.Word{W: 1}) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestCheckIfChecksBothBranchesAndCond(t *testing.T) {
	ctx := Context{diagpath.New("c"): types.Word{W: 1}}
	var b diagnostics.Batch
	e := expr.NewIf(pos(), expr.NewReference(pos(), diagpath.New("c")),
		expr.NewWord(pos(), nil, 1), expr.NewWord(pos(), nil, 2))
	Check(e, types.Word{W: 4}, ctx, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckSextAcceptsNarrowerOperand(t *testing.T) {
	var b diagnostics.Batch
	e := expr.NewSext(pos(), expr.NewWord(pos(), width(4), 0b1010))
	Check(e, types.Word{W: 8}, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckZextRejectsWiderOperand(t *testing.T) {
	var b diagnostics.Batch
	e := expr.NewZext(pos(), expr.NewWord(pos(), width(8), 3))
	Check(e, types.Word{W: 4}, Context{}, &b)
	if !b.HasErrors() {
		t.Fatalf("expected a width error")
	}
}

func TestInferCatSumsWidths(t *testing.T) {
	e := expr.NewCat(pos(), []expr.Expr{
		expr.NewWord(pos(), width(2), 0b10),
		expr.NewWord(pos(), width(3), 0b011),
	})
	got, ok := Infer(e, Context{})
	if !ok || !got.Equal(types.Word{W: 5}) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestInferIdxOnWordYieldsBit(t *testing.T) {
	ctx := Context{diagpath.New("a"): types.Word{W: 4}}
	e := expr.NewIdx(pos(), expr.NewReference(pos(), diagpath.New("a")), 1)
	got, ok := Infer(e, ctx)
	if !ok || !got.Equal(types.Word{W: 1}) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestInferIdxOnVecYieldsElementType(t *testing.T) {
	ctx := Context{diagpath.New("v"): types.Vec{Elem: types.Word{W: 4}, Length: 3}}
	e := expr.NewIdx(pos(), expr.NewReference(pos(), diagpath.New("v")), 2)
	got, ok := Infer(e, ctx)
	if !ok || !got.Equal(types.Word{W: 4}) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestInferIdxOutOfBoundsFails(t *testing.T) {
	ctx := Context{diagpath.New("a"): types.Word{W: 4}}
	e := expr.NewIdx(pos(), expr.NewReference(pos(), diagpath.New("a")), 9)
	if _, ok := Infer(e, ctx); ok {
		t.Fatalf("expected out-of-bounds bit index to fail")
	}
}

func TestInferIdxRangeIsHalfOpen(t *testing.T) {
	ctx := Context{diagpath.New("a"): types.Word{W: 8}}
	e := expr.NewIdxRange(pos(), expr.NewReference(pos(), diagpath.New("a")), 5, 2)
	got, ok := Infer(e, ctx)
	if !ok || !got.Equal(types.Word{W: 3}) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestCheckCtorValidPayload(t *testing.T) {
	var b diagnostics.Batch
	valid := types.Valid{Inner: types.Word{W: 8}}
	e := expr.NewCtor(pos(), "Valid", []expr.Expr{expr.NewWord(pos(), width(8), 1)})
	Check(e, valid, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckCtorInvalidTakesNoArgs(t *testing.T) {
	var b diagnostics.Batch
	valid := types.Valid{Inner: types.Word{W: 8}}
	e := expr.NewCtor(pos(), "Invalid", nil)
	Check(e, valid, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckCtorAltArityMismatchFails(t *testing.T) {
	altDef := &types.AltTypeDef{Name: "Thing", Alts: []types.AltCtor{
		{Name: "Some", Payload: []types.Type{types.Word{W: 4}}},
	}}
	var b diagnostics.Batch
	e := expr.NewCtor(pos(), "Some", nil)
	Check(e, types.Alt{Def: altDef}, Context{}, &b)
	if !b.HasErrors() {
		t.Fatalf("expected arity mismatch error")
	}
}

func TestCheckMatchBindsCtorPayloadInArmContext(t *testing.T) {
	altDef := &types.AltTypeDef{Name: "Thing", Alts: []types.AltCtor{
		{Name: "Some", Payload: []types.Type{types.Word{W: 4}}},
		{Name: "None"},
	}}
	ctx := Context{diagpath.New("s"): types.Alt{Def: altDef}}
	scrutinee := expr.NewReference(pos(), diagpath.New("s"))
	bodyRef := expr.NewLocalReference(pos(), "payload")
	m := expr.NewMatch(pos(), scrutinee, []expr.MatchArm{
		{Pattern: expr.NewCtorPattern(pos(), "Some", []expr.Pattern{expr.NewBindPattern(pos(), "payload")}), Body: bodyRef},
		{Pattern: expr.NewCtorPattern(pos(), "None", nil), Body: expr.NewWord(pos(), nil, 0)},
	})
	var b diagnostics.Batch
	Check(m, types.Word{W: 4}, ctx, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckMatchWildcardArmMatchesAnything(t *testing.T) {
	altDef := &types.AltTypeDef{Name: "Thing", Alts: []types.AltCtor{{Name: "A"}, {Name: "B"}}}
	ctx := Context{diagpath.New("s"): types.Alt{Def: altDef}}
	m := expr.NewMatch(pos(), expr.NewReference(pos(), diagpath.New("s")), []expr.MatchArm{
		{Pattern: expr.NewWildcardPattern(pos()), Body: expr.NewWord(pos(), nil, 1)},
	})
	var b diagnostics.Batch
	Check(m, types.Word{W: 1}, ctx, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckCallVerifiesArityAndReturnType(t *testing.T) {
	fn := &expr.FnDef{
		Name:   "double",
		Params: []expr.FnParam{{Name: "x", Type: types.Word{W: 4}}},
		Return: types.Word{W: 4},
		Body:   expr.NewBinOp(pos(), expr.Add, expr.NewLocalReference(pos(), "x"), expr.NewLocalReference(pos(), "x")),
	}
	e := expr.NewCall(pos(), fn, []expr.Expr{expr.NewWord(pos(), width(4), 2)})
	var b diagnostics.Batch
	Check(e, types.Word{W: 4}, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckCallArityMismatchFails(t *testing.T) {
	fn := &expr.FnDef{
		Name:   "double",
		Params: []expr.FnParam{{Name: "x", Type: types.Word{W: 4}}},
		Return: types.Word{W: 4},
		Body:   expr.NewLocalReference(pos(), "x"),
	}
	e := expr.NewCall(pos(), fn, nil)
	var b diagnostics.Batch
	Check(e, types.Word{W: 4}, Context{}, &b)
	if !b.HasErrors() {
		t.Fatalf("expected arity mismatch error")
	}
}

func TestCheckStructFieldwise(t *testing.T) {
	def := &types.StructTypeDef{Name: "Pair", Fields: []types.StructField{
		{Name: "a", Type: types.Word{W: 4}},
		{Name: "b", Type: types.Word{W: 4}},
	}}
	e := expr.NewStruct(pos(), def, []expr.StructField{
		{Name: "a", Value: expr.NewWord(pos(), width(4), 1)},
		{Name: "b", Value: expr.NewWord(pos(), width(4), 2)},
	})
	var b diagnostics.Batch
	Check(e, types.Struct{Def: def}, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckHoleAlwaysPasses(t *testing.T) {
	var b diagnostics.Batch
	Check(expr.NewHole(pos(), nil), types.Word{W: 4}, Context{}, &b)
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Err())
	}
}

func TestCheckPackageWalksWiresAgainstBuiltContext(t *testing.T) {
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
	pkg := &circuit.Package{
		ModDefs: map[string]*circuit.ModDef{"Top": mod},
		Order:   []string{"Top"},
	}
	batch := CheckPackage(pkg)
	if batch.HasErrors() {
		t.Fatalf("unexpected errors: %v", batch.Err())
	}
}

func TestCheckPackageFlagsUnknownWireTarget(t *testing.T) {
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Top",
		Decls: []circuit.Decl{
			circuit.NewWireDecl(pos(), "nope", expr.NewWord(pos(), width(1), 0), circuit.Connect),
		},
	}
	pkg := &circuit.Package{
		ModDefs: map[string]*circuit.ModDef{"Top": mod},
		Order:   []string{"Top"},
	}
	batch := CheckPackage(pkg)
	if !batch.HasErrors() {
		t.Fatalf("expected an error for an unknown wire target")
	}
}

func TestCheckPackageLatchTargetResolvesThroughRegister(t *testing.T) {
	word4 := types.Word{W: 4}
	mod := &circuit.ModDef{
		Pos:  pos(),
		Name: "Counter",
		Decls: []circuit.Decl{
			circuit.NewRegDecl(pos(), "count", word4, expr.NewWord(pos(), width(4), 0)),
			circuit.NewWireDecl(pos(), "count.set", expr.NewBinOp(pos(), expr.Add,
				expr.NewReference(pos(), diagpath.New("count")),
				expr.NewWord(pos(), width(4), 1)), circuit.Latch),
		},
	}
	pkg := &circuit.Package{
		ModDefs: map[string]*circuit.ModDef{"Counter": mod},
		Order:   []string{"Counter"},
	}
	batch := CheckPackage(pkg)
	if batch.HasErrors() {
		t.Fatalf("unexpected errors: %v", batch.Err())
	}
}
