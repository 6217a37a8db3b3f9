package ast

import "github.com/bitsysim/bitsysim/internal/diagnostics"

// Expr is a surface expression node, pre-resolution: identifiers and dotted
// paths are still names, not Path-keyed References.
type Expr interface {
	Node
	exprNode()
}

// Ident is a bare identifier.
type Ident struct {
	TokPos diagnostics.Pos
	Name   string
}

func (e *Ident) Pos() diagnostics.Pos { return e.TokPos }
func (*Ident) exprNode()              {}

// Dot is "lhs.field". The resolver requires Lhs to be an Ident itself; any
// other Lhs, a nested Dot included, is a "Dot applied to a non-identifier
// LHS" error (spec.md §4.3 Errors). Deeper access goes through IdxField.
type Dot struct {
	TokPos diagnostics.Pos
	Lhs    Expr
	Field  string
}

func (e *Dot) Pos() diagnostics.Pos { return e.TokPos }
func (*Dot) exprNode()              {}

// WordLit is a word literal; Width is nil when the literal's width must be
// inferred from context (spec.md §4.4 Word(None, n)).
type WordLit struct {
	TokPos diagnostics.Pos
	Width  *uint64
	Value  uint64
}

func (e *WordLit) Pos() diagnostics.Pos { return e.TokPos }
func (*WordLit) exprNode()              {}

// EnumLit is "EnumName::variant".
type EnumLit struct {
	TokPos  diagnostics.Pos
	TypeName string
	Variant  string
}

func (e *EnumLit) Pos() diagnostics.Pos { return e.TokPos }
func (*EnumLit) exprNode()              {}

// StructLit constructs a struct value field-by-field.
type StructLit struct {
	TokPos   diagnostics.Pos
	TypeName string
	Fields   []StructLitField
}

// StructLitField is one "name: expr" entry of a StructLit.
type StructLitField struct {
	Name  string
	Value Expr
}

func (e *StructLit) Pos() diagnostics.Pos { return e.TokPos }
func (*StructLit) exprNode()              {}

// VecLit constructs a vector value element-by-element.
type VecLit struct {
	TokPos diagnostics.Pos
	Elems  []Expr
}

func (e *VecLit) Pos() diagnostics.Pos { return e.TokPos }
func (*VecLit) exprNode()              {}

// Call is a call-shaped expression: either a built-in (cat, mux, sext,
// zext, trycast, word, or an @-prefixed ctor) or a user function call,
// disambiguated by the resolver via config.IsBuiltinCallName and fn_ctx
// lookup (spec.md §4.3 step 4).
type Call struct {
	TokPos diagnostics.Pos
	Callee string
	Args   []Expr
}

func (e *Call) Pos() diagnostics.Pos { return e.TokPos }
func (*Call) exprNode()              {}

// UnOp is a unary operator application.
type UnOpKind int

const (
	Not UnOpKind = iota
)

type UnOp struct {
	TokPos diagnostics.Pos
	Op     UnOpKind
	E      Expr
}

func (e *UnOp) Pos() diagnostics.Pos { return e.TokPos }
func (*UnOp) exprNode()              {}

// BinOpKind enumerates the binary operators (spec.md §3).
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

type BinOp struct {
	TokPos diagnostics.Pos
	Op     BinOpKind
	E1, E2 Expr
}

func (e *BinOp) Pos() diagnostics.Pos { return e.TokPos }
func (*BinOp) exprNode()              {}

// If is a strict conditional: both branches are evaluated in the type
// checker's sense (both must typecheck), but only one drives the value.
type If struct {
	TokPos     diagnostics.Pos
	Cond, T, F Expr
}

func (e *If) Pos() diagnostics.Pos { return e.TokPos }
func (*If) exprNode()              {}

// Mux is the combinational multiplexer primitive.
type Mux struct {
	TokPos     diagnostics.Pos
	Cond, T, F Expr
}

func (e *Mux) Pos() diagnostics.Pos { return e.TokPos }
func (*Mux) exprNode()              {}

// Let introduces a local binding visible in Body, shadowing any outer
// identifier of the same name.
type Let struct {
	TokPos     diagnostics.Pos
	Name       string
	Annotation TypeExpr // optional, nil if absent
	Value      Expr
	Body       Expr
}

func (e *Let) Pos() diagnostics.Pos { return e.TokPos }
func (*Let) exprNode()              {}

// Pattern is a match-arm pattern: a ctor pattern, a plain name binder, or
// "otherwise" (spec.md §9).
type Pattern interface {
	Node
	patternNode()
}

// CtorPattern matches "@Name(subpats...)".
type CtorPattern struct {
	TokPos  diagnostics.Pos
	Name    string
	SubPats []Pattern
}

func (p *CtorPattern) Pos() diagnostics.Pos { return p.TokPos }
func (*CtorPattern) patternNode()           {}

// BindPattern binds the scrutinee (or sub-value) to Name.
type BindPattern struct {
	TokPos diagnostics.Pos
	Name   string
}

func (p *BindPattern) Pos() diagnostics.Pos { return p.TokPos }
func (*BindPattern) patternNode()           {}

// WildcardPattern is "otherwise" — matches anything, binds nothing.
type WildcardPattern struct {
	TokPos diagnostics.Pos
}

func (p *WildcardPattern) Pos() diagnostics.Pos { return p.TokPos }
func (*WildcardPattern) patternNode()           {}

// MatchArm is one "pattern => body" arm.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

// Match evaluates arms in order, selecting the first whose pattern
// structurally unifies with the scrutinee (spec.md §9).
type Match struct {
	TokPos     diagnostics.Pos
	Scrutinee  Expr
	Arms       []MatchArm
}

func (e *Match) Pos() diagnostics.Pos { return e.TokPos }
func (*Match) exprNode()              {}

// Idx selects a single bit of a word (or element of a vector).
type Idx struct {
	TokPos diagnostics.Pos
	E      Expr
	I      uint64
}

func (e *Idx) Pos() diagnostics.Pos { return e.TokPos }
func (*Idx) exprNode()              {}

// IdxRange selects bits [I, J) — exclusive on J, inclusive on I (spec.md §4.7).
type IdxRange struct {
	TokPos diagnostics.Pos
	E      Expr
	J, I   uint64
}

func (e *IdxRange) Pos() diagnostics.Pos { return e.TokPos }
func (*IdxRange) exprNode()              {}

// IdxField accesses a struct field via a dotted chain deeper than one hop
// (spec.md §4.3: "Deeper dotted access uses IdxField").
type IdxField struct {
	TokPos diagnostics.Pos
	E      Expr
	Field  string
}

func (e *IdxField) Pos() diagnostics.Pos { return e.TokPos }
func (*IdxField) exprNode()              {}

// Hole is a placeholder expression that always evaluates to X.
type Hole struct {
	TokPos diagnostics.Pos
	Name   *string
}

func (e *Hole) Pos() diagnostics.Pos { return e.TokPos }
func (*Hole) exprNode()              {}
