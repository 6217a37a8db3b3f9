package ext

import "github.com/bitsysim/bitsysim/internal/types"

// Echo is the reference black box from spec.md §8 scenario 5: whatever
// arrives on its incoming port "i" is forwarded, unchanged, to its
// outgoing port "o".
type Echo struct{}

// NewEcho constructs an Echo instance.
func NewEcho() *Echo { return &Echo{} }

func (*Echo) IncomingPorts() []string { return []string{"i"} }

func (*Echo) Update(port string, value types.Value) []PortUpdate {
	if port != "i" {
		return nil
	}
	return []PortUpdate{{Port: "o", Value: value}}
}

func (*Echo) Clock() []PortUpdate { return nil }

func (*Echo) Reset() {}
