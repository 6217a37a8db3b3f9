// Package circuit holds the resolved module tree (the resolver's output)
// and the elaborator that flattens it into the absolute-path component/wire
// maps the simulator consumes (spec.md §4.5 "push-the-prefix").
package circuit

import (
	"github.com/bitsysim/bitsysim/internal/diagnostics"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/types"
)

// Dir distinguishes port direction.
type Dir int

const (
	DirIncoming Dir = iota
	DirOutgoing
)

// Decl is one resolved declaration inside a ModDef body.
type Decl interface {
	Pos() diagnostics.Pos
	declNode()
}

type declBase struct{ pos diagnostics.Pos }

func (b declBase) Pos() diagnostics.Pos { return b.pos }

// PortDecl declares an incoming or outgoing port.
type PortDecl struct {
	declBase
	Name string
	Dir  Dir
	Type types.Type
}

func NewPortDecl(pos diagnostics.Pos, name string, dir Dir, typ types.Type) *PortDecl {
	return &PortDecl{declBase{pos}, name, dir, typ}
}
func (*PortDecl) declNode() {}

// NodeDecl declares an internal combinational node.
type NodeDecl struct {
	declBase
	Name string
	Type types.Type
}

func NewNodeDecl(pos diagnostics.Pos, name string, typ types.Type) *NodeDecl {
	return &NodeDecl{declBase{pos}, name, typ}
}
func (*NodeDecl) declNode() {}

// RegDecl declares a register. Reset is nil when the register has no
// explicit reset expression (spec.md §4.6: reset then holds X).
type RegDecl struct {
	declBase
	Name  string
	Type  types.Type
	Reset expr.Expr
}

func NewRegDecl(pos diagnostics.Pos, name string, typ types.Type, reset expr.Expr) *RegDecl {
	return &RegDecl{declBase{pos}, name, typ, reset}
}
func (*RegDecl) declNode() {}

// ModDecl is an inline, anonymous submodule scope.
type ModDecl struct {
	declBase
	Name  string
	Decls []Decl
}

func NewModDecl(pos diagnostics.Pos, name string, decls []Decl) *ModDecl {
	return &ModDecl{declBase{pos}, name, decls}
}
func (*ModDecl) declNode() {}

// InstDecl instantiates a named ModDef as a child.
type InstDecl struct {
	declBase
	Name   string
	ModDef *ModDef
}

func NewInstDecl(pos diagnostics.Pos, name string, mod *ModDef) *InstDecl {
	return &InstDecl{declBase{pos}, name, mod}
}
func (*InstDecl) declNode() {}

// ExtInstDecl instantiates a named ExtDef as a child black box.
type ExtInstDecl struct {
	declBase
	Name   string
	ExtDef *ExtDef
}

func NewExtInstDecl(pos diagnostics.Pos, name string, ext *ExtDef) *ExtInstDecl {
	return &ExtInstDecl{declBase{pos}, name, ext}
}
func (*ExtInstDecl) declNode() {}

// WireKind distinguishes Connect (drives the target itself) from Latch
// (drives target.set(), used for registers).
type WireKind int

const (
	Connect WireKind = iota
	Latch
)

// WireDecl declares "target := expr" or "target.set := expr". TargetPath
// is relative to the enclosing ModDef until the elaborator rebases it to
// an absolute path.
type WireDecl struct {
	declBase
	TargetPath string
	Expr       expr.Expr
	Kind       WireKind
}

func NewWireDecl(pos diagnostics.Pos, target string, e expr.Expr, kind WireKind) *WireDecl {
	return &WireDecl{declBase{pos}, target, e, kind}
}
func (*WireDecl) declNode() {}

// WhenDecl is a guarded wire group (spec.md §3 When); the elaborator
// desugars each inner wire's RHS into Mux(Cond, rhs, <prior driver>).
type WhenDecl struct {
	declBase
	Cond  expr.Expr
	Wires []*WireDecl
}

func NewWhenDecl(pos diagnostics.Pos, cond expr.Expr, wires []*WireDecl) *WhenDecl {
	return &WhenDecl{declBase{pos}, cond, wires}
}
func (*WhenDecl) declNode() {}

// ModDef is a resolved, named module definition: a template the elaborator
// instantiates (possibly many times) under distinct absolute prefixes.
type ModDef struct {
	Pos   diagnostics.Pos
	Name  string
	Decls []Decl
}

// ExtPort is one port of an external black-box definition.
type ExtPort struct {
	Name string
	Dir  Dir
	Type types.Type
}

// ExtDef declares the port surface of a host-implemented external instance.
type ExtDef struct {
	Pos   diagnostics.Pos
	Name  string
	Ports []ExtPort
}

// Package is the resolver's output: every item bucketed by kind and keyed
// by name, fully resolved (no dangling TypeRef/Reference[T] left unbound).
type Package struct {
	ModDefs    map[string]*ModDef
	ExtDefs    map[string]*ExtDef
	EnumDefs   map[string]*types.EnumTypeDef
	StructDefs map[string]*types.StructTypeDef
	AltDefs    map[string]*types.AltTypeDef
	FnDefs     map[string]*expr.FnDef
	// Order preserves the reverse-topological resolution order, for
	// diagnostics and for deterministic package-wide passes (the type
	// checker walks ModDefs in this order).
	Order []string
}
