package resolve

import (
	"fmt"

	"github.com/bitsysim/bitsysim/internal/ast"
	"github.com/bitsysim/bitsysim/internal/circuit"
)

func (r *Resolver) resolveModDef(m *ast.ModDef) (*circuit.ModDef, error) {
	decls, err := r.resolveDecls(m.Decls)
	if err != nil {
		return nil, err
	}
	return &circuit.ModDef{Pos: m.TokPos, Name: m.Name, Decls: decls}, nil
}

func (r *Resolver) resolveExtDef(e *ast.ExtDef) (*circuit.ExtDef, error) {
	ports := make([]circuit.ExtPort, len(e.Ports))
	for i, p := range e.Ports {
		t, err := r.resolveTypeExpr(p.Type)
		if err != nil {
			return nil, err
		}
		ports[i] = circuit.ExtPort{Name: p.Name, Dir: circuit.Dir(p.Dir), Type: t}
	}
	return &circuit.ExtDef{Pos: e.TokPos, Name: e.Name, Ports: ports}, nil
}

func (r *Resolver) resolveDecls(decls []ast.Decl) ([]circuit.Decl, error) {
	out := make([]circuit.Decl, 0, len(decls))
	for _, d := range decls {
		rd, err := r.resolveDecl(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, nil
}

func (r *Resolver) resolveDecl(d ast.Decl) (circuit.Decl, error) {
	switch n := d.(type) {
	case *ast.PortDecl:
		t, err := r.resolveTypeExpr(n.Type)
		if err != nil {
			return nil, err
		}
		return circuit.NewPortDecl(n.TokPos, n.Name, circuit.Dir(n.Dir), t), nil

	case *ast.NodeDecl:
		t, err := r.resolveTypeExpr(n.Type)
		if err != nil {
			return nil, err
		}
		return circuit.NewNodeDecl(n.TokPos, n.Name, t), nil

	case *ast.RegDecl:
		t, err := r.resolveTypeExpr(n.Type)
		if err != nil {
			return nil, err
		}
		if n.Reset != nil {
			re, err := r.resolveExpr(n.Reset, nil)
			if err != nil {
				return nil, err
			}
			return circuit.NewRegDecl(n.TokPos, n.Name, t, re), nil
		}
		return circuit.NewRegDecl(n.TokPos, n.Name, t, nil), nil

	case *ast.ModDecl:
		inner, err := r.resolveDecls(n.Body)
		if err != nil {
			return nil, err
		}
		return circuit.NewModDecl(n.TokPos, n.Name, inner), nil

	case *ast.InstDecl:
		mod, ok := r.modDefs[n.ModName]
		if !ok {
			return nil, fmt.Errorf("instantiation of undefined module %q", n.ModName)
		}
		return circuit.NewInstDecl(n.TokPos, n.Name, mod), nil

	case *ast.ExtInstDecl:
		ext, ok := r.extDefs[n.ExtName]
		if !ok {
			return nil, fmt.Errorf("instantiation of undefined external %q", n.ExtName)
		}
		return circuit.NewExtInstDecl(n.TokPos, n.Name, ext), nil

	case *ast.WireDecl:
		e, err := r.resolveExpr(n.Expr, nil)
		if err != nil {
			return nil, err
		}
		return circuit.NewWireDecl(n.TokPos, n.TargetName, e, circuit.WireKind(n.Kind)), nil

	case *ast.WhenDecl:
		cond, err := r.resolveExpr(n.Cond, nil)
		if err != nil {
			return nil, err
		}
		wires := make([]*circuit.WireDecl, len(n.Wires))
		for i, w := range n.Wires {
			rw, err := r.resolveDecl(w)
			if err != nil {
				return nil, err
			}
			wires[i] = rw.(*circuit.WireDecl)
		}
		return circuit.NewWhenDecl(n.TokPos, cond, wires), nil

	default:
		return nil, fmt.Errorf("resolve: unhandled Decl %T", d)
	}
}
