package expr

import "github.com/bitsysim/bitsysim/internal/types"

// FnParam is one resolved function parameter.
type FnParam struct {
	Name string
	Type types.Type
}

// FnDef is a resolved, fully type-annotated user function, callable from
// wire expressions via Call. Functions are pure: Body may only reference
// its own parameters (and any Let-bound locals within it), never module
// ports/nodes/registers — the resolver enforces this by rejecting a
// function whose resolved body contains any non-local Reference.
type FnDef struct {
	Name   string
	Params []FnParam
	Return types.Type
	Body   Expr
}
