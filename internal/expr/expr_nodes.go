package expr

import (
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/types"
)

// UnOpKind enumerates unary operators.
type UnOpKind int

const (
	Not UnOpKind = iota
)

// BinOpKind enumerates binary operators (spec.md §3).
type BinOpKind int

const (
	Add BinOpKind = iota
	AddCarry
	Sub
	And
	Or
	Xor
	Eq
	Neq
	Lt
)

// Reference is a resolved path-keyed reference to a port/node/register, or
// (before elaboration rebase) a local path relative to the enclosing
// module. Local marks a Let/Match-bound name: its single-segment Path is
// never rebased by the elaborator's prefix-push, since it names a value,
// not a circuit component (spec.md §4.5 "rebase leaves Let-bound locals
// intact").
type Reference struct {
	base
	Path  diagpath.Path
	Local bool
}

func NewReference(pos diagnostics.Pos, path diagpath.Path) *Reference {
	return &Reference{base: newBase(pos), Path: path}
}

// NewLocalReference builds a Reference to a Let/Match-bound name.
func NewLocalReference(pos diagnostics.Pos, name string) *Reference {
	return &Reference{base: newBase(pos), Path: diagpath.New(name), Local: true}
}
func (*Reference) exprNode() {}

// Net is a simulation-only node produced by rewriting Reference leaves
// against net_id_by_path (spec.md §4.7).
type Net struct {
	base
	NetID int
}

func NewNet(pos diagnostics.Pos, netID int) *Net { return &Net{base: newBase(pos), NetID: netID} }
func (*Net) exprNode()                           {}

// Word is a (possibly width-unannotated) word literal.
type Word struct {
	base
	Width *uint64
	Value uint64
}

func NewWord(pos diagnostics.Pos, width *uint64, value uint64) *Word {
	return &Word{base: newBase(pos), Width: width, Value: value}
}
func (*Word) exprNode() {}

// Enum is a resolved enum-literal reference.
type Enum struct {
	base
	Def     *types.EnumTypeDef
	Variant string
}

func NewEnum(pos diagnostics.Pos, def *types.EnumTypeDef, variant string) *Enum {
	return &Enum{base: newBase(pos), Def: def, Variant: variant}
}
func (*Enum) exprNode() {}

// StructField is one "name: expr" entry of a Struct literal.
type StructField struct {
	Name  string
	Value Expr
}

// Struct constructs a struct value.
type Struct struct {
	base
	Def    *types.StructTypeDef
	Fields []StructField
}

func NewStruct(pos diagnostics.Pos, def *types.StructTypeDef, fields []StructField) *Struct {
	return &Struct{base: newBase(pos), Def: def, Fields: fields}
}
func (*Struct) exprNode() {}

// Vec constructs a vector value.
type Vec struct {
	base
	Elems []Expr
}

func NewVec(pos diagnostics.Pos, elems []Expr) *Vec { return &Vec{base: newBase(pos), Elems: elems} }
func (*Vec) exprNode()                              {}

// Ctor constructs a Valid/Invalid optional or an Alt alternative, by name.
type Ctor struct {
	base
	Name string
	Args []Expr
}

func NewCtor(pos diagnostics.Pos, name string, args []Expr) *Ctor {
	return &Ctor{base: newBase(pos), Name: name, Args: args}
}
func (*Ctor) exprNode() {}

// Cat concatenates words MSB-first.
type Cat struct {
	base
	Elems []Expr
}

func NewCat(pos diagnostics.Pos, elems []Expr) *Cat { return &Cat{base: newBase(pos), Elems: elems} }
func (*Cat) exprNode()                              {}

// Sext sign-extends a word to a wider width (the target width comes from
// the type cell once checked).
type Sext struct {
	base
	E Expr
}

func NewSext(pos diagnostics.Pos, e Expr) *Sext { return &Sext{base: newBase(pos), E: e} }
func (*Sext) exprNode()                         {}

// Zext zero-extends a word to a wider width.
type Zext struct {
	base
	E Expr
}

func NewZext(pos diagnostics.Pos, e Expr) *Zext { return &Zext{base: newBase(pos), E: e} }
func (*Zext) exprNode()                         {}

// ToWord reinterprets an enum's bit pattern as a Word.
type ToWord struct {
	base
	E Expr
}

func NewToWord(pos diagnostics.Pos, e Expr) *ToWord { return &ToWord{base: newBase(pos), E: e} }
func (*ToWord) exprNode()                           {}

// TryCast attempts a narrowing cast, evaluating to X on failure.
type TryCast struct {
	base
	E Expr
}

func NewTryCast(pos diagnostics.Pos, e Expr) *TryCast { return &TryCast{base: newBase(pos), E: e} }
func (*TryCast) exprNode()                            {}

// Call invokes a resolved user function.
type Call struct {
	base
	Fn   *FnDef
	Args []Expr
}

func NewCall(pos diagnostics.Pos, fn *FnDef, args []Expr) *Call {
	return &Call{base: newBase(pos), Fn: fn, Args: args}
}
func (*Call) exprNode() {}

// Let introduces a local binding visible in Body.
type Let struct {
	base
	Name       string
	Annotation types.Type // nil if absent
	Value      Expr
	Body       Expr
}

func NewLet(pos diagnostics.Pos, name string, annot types.Type, value, body Expr) *Let {
	return &Let{base: newBase(pos), Name: name, Annotation: annot, Value: value, Body: body}
}
func (*Let) exprNode() {}

// If is a strict conditional.
type If struct {
	base
	Cond, T, F Expr
}

func NewIf(pos diagnostics.Pos, cond, t, f Expr) *If {
	return &If{base: newBase(pos), Cond: cond, T: t, F: f}
}
func (*If) exprNode() {}

// Mux is the combinational multiplexer primitive.
type Mux struct {
	base
	Cond, T, F Expr
}

func NewMux(pos diagnostics.Pos, cond, t, f Expr) *Mux {
	return &Mux{base: newBase(pos), Cond: cond, T: t, F: f}
}
func (*Mux) exprNode() {}

// UnOp applies a unary operator.
type UnOp struct {
	base
	Op UnOpKind
	E  Expr
}

func NewUnOp(pos diagnostics.Pos, op UnOpKind, e Expr) *UnOp {
	return &UnOp{base: newBase(pos), Op: op, E: e}
}
func (*UnOp) exprNode() {}

// BinOp applies a binary operator.
type BinOp struct {
	base
	Op     BinOpKind
	E1, E2 Expr
}

func NewBinOp(pos diagnostics.Pos, op BinOpKind, e1, e2 Expr) *BinOp {
	return &BinOp{base: newBase(pos), Op: op, E1: e1, E2: e2}
}
func (*BinOp) exprNode() {}

// Idx selects a single bit (0 = LSB).
type Idx struct {
	base
	E Expr
	I uint64
}

func NewIdx(pos diagnostics.Pos, e Expr, i uint64) *Idx { return &Idx{base: newBase(pos), E: e, I: i} }
func (*Idx) exprNode()                                  {}

// IdxRange selects bits [I, J) — exclusive on J, inclusive on I.
type IdxRange struct {
	base
	E    Expr
	J, I uint64
}

func NewIdxRange(pos diagnostics.Pos, e Expr, j, i uint64) *IdxRange {
	return &IdxRange{base: newBase(pos), E: e, J: j, I: i}
}
func (*IdxRange) exprNode() {}

// IdxField accesses a struct field.
type IdxField struct {
	base
	E     Expr
	Field string
}

func NewIdxField(pos diagnostics.Pos, e Expr, field string) *IdxField {
	return &IdxField{base: newBase(pos), E: e, Field: field}
}
func (*IdxField) exprNode() {}

// Hole always evaluates to X.
type Hole struct {
	base
	Name *string
}

func NewHole(pos diagnostics.Pos, name *string) *Hole { return &Hole{base: newBase(pos), Name: name} }
func (*Hole) exprNode()                               {}
