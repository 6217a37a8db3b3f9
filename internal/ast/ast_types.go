package ast

import "github.com/bitsysim/bitsysim/internal/diagnostics"

// TypeExpr is a surface type annotation, pre-resolution. NamedType is the
// only variant that needs resolver involvement (it may name a built-in
// word-width shorthand is not included here — widths are explicit).
type TypeExpr interface {
	Node
	typeExprNode()
}

// WordType is "Word<width>".
type WordType struct {
	TokPos diagnostics.Pos
	Width  uint64
}

func (t *WordType) Pos() diagnostics.Pos { return t.TokPos }
func (*WordType) typeExprNode()          {}

// VecType is "Vec<elem, length>".
type VecType struct {
	TokPos diagnostics.Pos
	Elem   TypeExpr
	Length uint64
}

func (t *VecType) Pos() diagnostics.Pos { return t.TokPos }
func (*VecType) typeExprNode()          {}

// ValidType is "Valid<inner>".
type ValidType struct {
	TokPos diagnostics.Pos
	Inner  TypeExpr
}

func (t *ValidType) Pos() diagnostics.Pos { return t.TokPos }
func (*ValidType) typeExprNode()          {}

// NamedType references a user-defined Enum/Struct/Alt type (or, before
// resolution, any other type item) by name.
type NamedType struct {
	TokPos diagnostics.Pos
	Name   string
}

func (t *NamedType) Pos() diagnostics.Pos { return t.TokPos }
func (*NamedType) typeExprNode()          {}

// EnumVariantSpec is one surface enum variant: a name and its literal value.
type EnumVariantSpec struct {
	Name  string
	Value uint64
}

// EnumTypeDef declares a named enum type.
type EnumTypeDef struct {
	TokPos   diagnostics.Pos
	Name     string
	Width    uint64
	Variants []EnumVariantSpec
}

func (d *EnumTypeDef) Pos() diagnostics.Pos { return d.TokPos }
func (d *EnumTypeDef) ItemName() string     { return d.Name }
func (*EnumTypeDef) itemNode()              {}

// StructFieldSpec is one surface struct field.
type StructFieldSpec struct {
	Name string
	Type TypeExpr
}

// StructTypeDef declares a named struct type.
type StructTypeDef struct {
	TokPos diagnostics.Pos
	Name   string
	Fields []StructFieldSpec
}

func (d *StructTypeDef) Pos() diagnostics.Pos { return d.TokPos }
func (d *StructTypeDef) ItemName() string     { return d.Name }
func (*StructTypeDef) itemNode()              {}

// AltCtorSpec is one surface alt-type alternative.
type AltCtorSpec struct {
	Name    string
	Payload []TypeExpr
}

// AltTypeDef declares a named tagged-union type.
type AltTypeDef struct {
	TokPos diagnostics.Pos
	Name   string
	Alts   []AltCtorSpec
}

func (d *AltTypeDef) Pos() diagnostics.Pos { return d.TokPos }
func (d *AltTypeDef) ItemName() string     { return d.Name }
func (*AltTypeDef) itemNode()              {}

// FnParam is one function parameter.
type FnParam struct {
	Name string
	Type TypeExpr
}

// FnDef declares a user-defined function usable from wire expressions.
type FnDef struct {
	TokPos diagnostics.Pos
	Name   string
	Params []FnParam
	Return TypeExpr
	Body   Expr
}

func (d *FnDef) Pos() diagnostics.Pos { return d.TokPos }
func (d *FnDef) ItemName() string     { return d.Name }
func (*FnDef) itemNode()              {}
