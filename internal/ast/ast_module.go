package ast

import "github.com/bitsysim/bitsysim/internal/diagnostics"

// Dir distinguishes module port direction.
type Dir int

const (
	DirIncoming Dir = iota
	DirOutgoing
)

// Decl is one declaration inside a ModDef body.
type Decl interface {
	Node
	declNode()
}

// PortDecl declares an incoming or outgoing port.
type PortDecl struct {
	TokPos diagnostics.Pos
	Name   string
	Dir    Dir
	Type   TypeExpr
}

func (d *PortDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*PortDecl) declNode()              {}

// NodeDecl declares an internal combinational node.
type NodeDecl struct {
	TokPos diagnostics.Pos
	Name   string
	Type   TypeExpr
}

func (d *NodeDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*NodeDecl) declNode()              {}

// RegDecl declares a register with a reset-value expression. The type
// checker checks only the reset's type; nothing checks that it is constant,
// and the simulator evaluates it once at construction with every net at X.
type RegDecl struct {
	TokPos diagnostics.Pos
	Name   string
	Type   TypeExpr
	Reset  Expr
}

func (d *RegDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*RegDecl) declNode()              {}

// ModDecl declares an inline, anonymous submodule scope (spec.md §4.5
// "For Mod(name, inner): recurse with the stack pushed by name").
type ModDecl struct {
	TokPos diagnostics.Pos
	Name   string
	Body   []Decl
}

func (d *ModDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*ModDecl) declNode()              {}

// InstDecl instantiates a named ModDef as a child ("name = instantiate
// ModName").
type InstDecl struct {
	TokPos  diagnostics.Pos
	Name    string
	ModName string
}

func (d *InstDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*InstDecl) declNode()              {}

// ExtInstDecl instantiates a named ExtDef as a child black box.
type ExtInstDecl struct {
	TokPos  diagnostics.Pos
	Name    string
	ExtName string
}

func (d *ExtInstDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*ExtInstDecl) declNode()              {}

// WireKind distinguishes Connect (drives the target itself) from Latch
// (drives target.set(), used for registers).
type WireKind int

const (
	Connect WireKind = iota
	Latch
)

// WireDecl declares "target := expr" (Connect) or "target.set := expr"
// surface syntax (Latch) — the Kind field carries which; TargetName is the
// dotted surface name of the target, not yet resolved to a Path.
type WireDecl struct {
	TokPos     diagnostics.Pos
	TargetName string
	Expr       Expr
	Kind       WireKind
}

func (d *WireDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*WireDecl) declNode()              {}

// WhenDecl is a guarded wire group: each inner wire's RHS is implicitly
// wrapped in Mux(Cond, rhs, <prior driver>) at elaboration time, with
// later Whens in program order overriding earlier ones (spec.md §3 When).
type WhenDecl struct {
	TokPos diagnostics.Pos
	Cond   Expr
	Wires  []*WireDecl
}

func (d *WhenDecl) Pos() diagnostics.Pos { return d.TokPos }
func (*WhenDecl) declNode()              {}

// ModDef is a top-level module definition.
type ModDef struct {
	TokPos diagnostics.Pos
	Name   string
	Decls  []Decl
}

func (d *ModDef) Pos() diagnostics.Pos { return d.TokPos }
func (d *ModDef) ItemName() string     { return d.Name }
func (*ModDef) itemNode()              {}

// ExtPort is one port of an external black-box definition.
type ExtPort struct {
	Name string
	Dir  Dir
	Type TypeExpr
}

// ExtDef declares the port surface of a host-implemented external instance.
type ExtDef struct {
	TokPos diagnostics.Pos
	Name   string
	Ports  []ExtPort
}

func (d *ExtDef) Pos() diagnostics.Pos { return d.TokPos }
func (d *ExtDef) ItemName() string     { return d.Name }
func (*ExtDef) itemNode()              {}
