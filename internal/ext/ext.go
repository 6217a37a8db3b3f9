// Package ext implements the external-instance plug-in contract: host-side
// black boxes wired into a simulated circuit at an Ext path (spec.md §4.8
// "External instance contract", §6 "External plug-in trait"). Grounded on
// nettle's `Box<dyn ExtInstance>` call sites in src/sim.rs (incoming_ports/
// update/clock/reset), reconstructed here as a Go interface since the trait
// definition itself lives outside the retrieved sources.
package ext

import "github.com/bitsysim/bitsysim/internal/types"

// PortUpdate is one "(port name, new value)" pair an external returns from
// Update or Clock, to be poked back through {ext_path}.{port_name}. Applied
// in list order; later entries targeting the same port win (spec.md §8
// "Ext callback ordering").
type PortUpdate struct {
	Port  string
	Value types.Value
}

// Instance is any host-implemented black box pluggable at an Ext path.
type Instance interface {
	// IncomingPorts lists the port names this instance accepts writes on.
	// Only these trigger Update from the simulator's broadcast push engine.
	IncomingPorts() []string
	// Update runs combinationally: port was just driven to value, return
	// whatever outgoing ports should change as a result.
	Update(port string, value types.Value) []PortUpdate
	// Clock runs once per simulator clock() call, after register advance.
	Clock() []PortUpdate
	// Reset runs once per simulator reset() call.
	Reset()
}
