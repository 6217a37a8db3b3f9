// Package typecheck implements the bidirectional type checker: Infer/Check
// over the resolved expression IR, populating each node's type cell
// (spec.md §4.4). It runs after internal/resolve and before
// internal/circuit.Elaborate, against ModDef-local paths — Elaborate's
// Rebase later carries the populated cells across its clone.
package typecheck

import (
	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/types"
)

// Context maps a ModDef-local path (a bare name, or "child.port" for a
// nested Mod/ModInst/Ext's port) to its declared type. Grounded on bitsy's
// package.rs `context_for`/`visible_paths`, which builds exactly this: own
// declarations directly, and only the *port* surface of nested
// Mod/ModInst/Ext children under one extra path segment (never their
// private nodes/registers — those aren't addressable from outside).
type Context map[diagpath.Path]types.Type

// withLocal returns a copy of c with name bound to t, shadowing any
// existing entry — used when entering a Let body or a matched pattern's
// bound names, without mutating the enclosing scope's context.
func (c Context) withLocal(name string, t types.Type) Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[diagpath.New(name)] = t
	return out
}

// buildContext collects the path->type bindings visible directly inside a
// ModDef/ModDecl body.
func buildContext(decls []circuit.Decl) Context {
	ctx := make(Context)
	for _, d := range decls {
		switch n := d.(type) {
		case *circuit.PortDecl:
			ctx[diagpath.New(n.Name)] = n.Type
		case *circuit.NodeDecl:
			ctx[diagpath.New(n.Name)] = n.Type
		case *circuit.RegDecl:
			ctx[diagpath.New(n.Name)] = n.Type
		case *circuit.ModDecl:
			addChildPorts(ctx, n.Name, n.Decls)
		case *circuit.InstDecl:
			addChildPorts(ctx, n.Name, n.ModDef.Decls)
		case *circuit.ExtInstDecl:
			for _, p := range n.ExtDef.Ports {
				ctx[diagpath.New(n.Name).Join(p.Name)] = p.Type
			}
		}
	}
	return ctx
}

func addChildPorts(ctx Context, childName string, decls []circuit.Decl) {
	for _, d := range decls {
		if p, ok := d.(*circuit.PortDecl); ok {
			ctx[diagpath.New(childName).Join(p.Name)] = p.Type
		}
	}
}
