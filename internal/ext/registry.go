package ext

import "fmt"

// New builds a built-in Instance by kind name, for resolving
// config.ExtBinding entries loaded from bitsysim.yaml. Kind-specific
// parameters (register file depth/width) use fixed defaults here; an
// embedder wanting different parameters constructs the Instance directly
// and attaches it without going through this registry.
func New(kind string) (Instance, error) {
	switch kind {
	case "echo":
		return NewEcho(), nil
	case "registerfile":
		return NewRegisterFile(16, 32), nil
	default:
		return nil, fmt.Errorf("ext: unknown built-in kind %q", kind)
	}
}
