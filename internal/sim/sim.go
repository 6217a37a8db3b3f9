// Package sim implements the event-driven simulator: a push-based
// evaluator holding one value per net, exposing peek/poke/set/clock/reset
// and external-instance callbacks (spec.md §4.8). Grounded on nettle's
// src/sim.rs `Sim` struct and method bodies (broadcast_update/
// broadcast_update_constants/clock/reset transcribed near-verbatim, with
// the combinational-loop recursion guard added per spec.md §9's
// "implementer SHOULD add a recursion-depth cap" note).
package sim

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/config"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/evalexpr"
	"github.com/bitsysim/bitsysim/internal/expr"
	"github.com/bitsysim/bitsysim/internal/ext"
	"github.com/bitsysim/bitsysim/internal/netlist"
	"github.com/bitsysim/bitsysim/internal/types"
)

// CombinationalLoopError reports that broadcast_update recursed past the
// configured guard depth — the dependency graph is assumed acyclic
// (spec.md §4.8 "Termination"); hitting this means the source circuit has
// a cycle through pure-combinational wires.
type CombinationalLoopError struct{ Path diagpath.Path }

func (e *CombinationalLoopError) Error() string {
	return fmt.Sprintf("sim: combinational loop detected at %s", e.Path)
}

// UnknownPathError reports a peek/poke/set against a path with no terminal
// in the elaborated circuit (spec.md §7 "pokeing a path that does not
// exist is an error").
type UnknownPathError struct{ Path diagpath.Path }

func (e *UnknownPathError) Error() string {
	return fmt.Sprintf("sim: no such terminal %s", e.Path)
}

type wireEntry struct {
	target diagpath.Path
	expr   expr.Expr
}

// Sim is the live simulator instance: net values plus the immutable wire/
// register/external tables computed once at construction (spec.md §5
// "Resource policy: never re-allocates during simulation").
type Sim struct {
	nl *netlist.Netlist
	el *circuit.Elaborated

	// SessionID identifies this simulator run, for diagnostics/logging that
	// need to correlate multiple peek/poke/clock calls back to one session.
	SessionID uuid.UUID

	netValues []types.Value
	wires     []wireEntry
	regPaths  []diagpath.Path
	regSet    map[diagpath.Path]bool
	regResets map[diagpath.Path]types.Value

	exts map[diagpath.Path]ext.Instance

	clockTicks     uint64
	startTime      time.Time
	clockFreqCapHz float64
	guardDepth     int
}

// New builds a Sim over el, computing its net partition, rewriting every
// wire expression's References to Nets, and running
// broadcast_update_constants once (spec.md §4.8 "Construction").
func New(el *circuit.Elaborated) (*Sim, error) {
	nl, err := netlist.Build(el)
	if err != nil {
		return nil, err
	}

	s := &Sim{
		nl:         nl,
		el:         el,
		SessionID:  uuid.New(),
		netValues:  make([]types.Value, len(nl.Nets)),
		regSet:     make(map[diagpath.Path]bool, len(el.RegPaths)),
		regResets:  make(map[diagpath.Path]types.Value, len(el.RegPaths)),
		exts:       make(map[diagpath.Path]ext.Instance),
		startTime:  time.Now(),
		guardDepth: config.DefaultCombinationalLoopGuard,
	}
	for i := range s.netValues {
		s.netValues[i] = types.X
	}

	keys := el.WireKeys()
	s.wires = make([]wireEntry, 0, len(keys))
	for _, target := range keys {
		w := el.Wires[target]
		s.wires = append(s.wires, wireEntry{
			target: target,
			expr:   netlist.RewriteToNets(w.Expr, nl),
		})
	}

	s.regPaths = append(s.regPaths, el.RegPaths...)
	for _, p := range el.RegPaths {
		s.regSet[p] = true
		reset := el.ResetFor(p)
		if reset == nil {
			s.regResets[p] = types.X
			continue
		}
		s.regResets[p] = evalexpr.Eval(netlist.RewriteToNets(reset, nl), s)
	}

	if err := s.broadcastUpdateConstants(); err != nil {
		return nil, err
	}
	return s, nil
}

// CapClockFreq sets the simulated clock-rate ceiling used by Clock's
// busy-wait gate; 0 (the default) means uncapped.
func (s *Sim) CapClockFreq(hz float64) { s.clockFreqCapHz = hz }

// SetGuardDepth overrides the combinational-loop recursion guard.
func (s *Sim) SetGuardDepth(depth int) {
	if depth > 0 {
		s.guardDepth = depth
	}
}

// Ext attaches an external instance at path, then re-runs
// broadcast_update_constants so any of its ports already wired to a
// constant expression settle immediately, mirroring nettle's `.ext(...)`
// builder method.
func (s *Sim) Ext(path diagpath.Path, inst ext.Instance) error {
	s.exts[path] = inst
	log.Printf("sim[%s]: attached ext at %s", s.SessionID, path)
	return s.broadcastUpdateConstants()
}

// NetValue implements evalexpr.View.
func (s *Sim) NetValue(netID int) types.Value {
	if netID < 0 || netID >= len(s.netValues) {
		return types.X
	}
	return s.netValues[netID]
}

func (s *Sim) netID(path diagpath.Path) (int, error) {
	id, ok := s.nl.NetID(path)
	if !ok {
		return 0, &UnknownPathError{Path: path}
	}
	return id, nil
}

// Peek returns the current value of path's net.
func (s *Sim) Peek(path diagpath.Path) (types.Value, error) {
	id, err := s.netID(path)
	if err != nil {
		return nil, err
	}
	return s.netValues[id], nil
}

// Poke writes value into path's net; if path is not a register terminal,
// this also runs broadcast_update(path) (spec.md §4.8).
func (s *Sim) Poke(path diagpath.Path, value types.Value) error {
	return s.poke(path, value, 0)
}

func (s *Sim) poke(path diagpath.Path, value types.Value, depth int) error {
	id, err := s.netID(path)
	if err != nil {
		return err
	}
	s.netValues[id] = value
	if !s.isReg(path) {
		return s.broadcastUpdate(path, depth)
	}
	return nil
}

// Set writes value into path's net and always broadcasts, regardless of
// whether path is a register terminal — used for externals' internal
// write-backs (spec.md §4.8).
func (s *Sim) Set(path diagpath.Path, value types.Value) error {
	id, err := s.netID(path)
	if err != nil {
		return err
	}
	s.netValues[id] = value
	return s.broadcastUpdate(path, 0)
}

// isReg reports whether path is a register terminal: either the register's
// own path, or its ".set" child.
func (s *Sim) isReg(path diagpath.Path) bool {
	if s.regSet[path] {
		return true
	}
	if len(path.Segments()) <= 1 {
		return false
	}
	return s.regSet[path.Parent()]
}

func (s *Sim) broadcastUpdateConstants() error {
	for _, w := range s.wires {
		if expr.IsConstant(w.expr) {
			value := evalexpr.Eval(w.expr, s)
			if err := s.poke(w.target, value, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// broadcastUpdate is the push engine (spec.md §4.8 "broadcast_update"):
// every wire whose expression depends on terminal's net is re-evaluated
// and poked into its target, in sorted-target order for reproducibility
// (spec.md §5 "Ordering"), except pure-reference wires, whose targets share
// the net already; then, for each terminal of that net that is an external
// instance's declared incoming port, the instance's combinational Update
// runs and its returned port updates are poked back.
func (s *Sim) broadcastUpdate(terminal diagpath.Path, depth int) error {
	if depth > s.guardDepth {
		return &CombinationalLoopError{Path: terminal}
	}
	netID, err := s.netID(terminal)
	if err != nil {
		return err
	}
	for _, w := range s.wires {
		if !expr.DependsOnNet(w.expr, netID) {
			continue
		}
		// A pure-reference wire's target is already a member of this net.
		if _, pure := w.expr.(*expr.Net); pure {
			continue
		}
		value := evalexpr.Eval(w.expr, s)
		if err := s.poke(w.target, value, depth+1); err != nil {
			return err
		}
	}

	for _, member := range s.nl.Nets[netID].Drivees {
		if len(member.Segments()) < 2 {
			continue
		}
		extPath := member.Parent()
		inst, ok := s.exts[extPath]
		if !ok {
			continue
		}
		portName := member.TrimPrefix(extPath)
		if !containsString(inst.IncomingPorts(), portName) {
			continue
		}
		for _, u := range inst.Update(portName, s.netValues[netID]) {
			if err := s.poke(extPath.Join(u.Port), u.Value, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// Clock advances simulated time by one tick: registers latch their .set
// value, externals run their Clock hook, then every register's net
// broadcasts to its combinational fanout (spec.md §4.8 "clock()").
func (s *Sim) Clock() error {
	s.clockTicks++

	if s.clockFreqCapHz > 0 {
		for {
			freq := s.ClocksPerSecond()
			if !(freq > s.clockFreqCapHz) {
				break
			}
		}
	}

	for _, p := range s.regPaths {
		setVal, err := s.Peek(p.Set())
		if err != nil {
			return err
		}
		if err := s.poke(p, setVal, 0); err != nil {
			return err
		}
	}

	for _, extPath := range s.sortedExtPaths() {
		for _, u := range s.exts[extPath].Clock() {
			if err := s.poke(extPath.Join(u.Port), u.Value, 0); err != nil {
				return err
			}
		}
	}

	for _, p := range s.regPaths {
		if err := s.broadcastUpdate(p, 0); err != nil {
			return err
		}
	}
	return nil
}

// Reset writes each register's stored reset value into its net, resets
// every external instance, then broadcasts every register's net (spec.md
// §4.8 "reset()").
func (s *Sim) Reset() error {
	for _, p := range s.regPaths {
		if err := s.poke(p, s.regResets[p], 0); err != nil {
			return err
		}
	}
	for _, extPath := range s.sortedExtPaths() {
		s.exts[extPath].Reset()
	}
	for _, p := range s.regPaths {
		if err := s.broadcastUpdate(p, 0); err != nil {
			return err
		}
	}
	return nil
}

// Ticks reports the number of Clock() calls made so far.
func (s *Sim) Ticks() uint64 { return s.clockTicks }

// ClocksPerSecond reports the simulated clock rate achieved so far.
func (s *Sim) ClocksPerSecond() float64 {
	elapsed := time.Since(s.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.clockTicks) / elapsed
}

func (s *Sim) sortedExtPaths() []diagpath.Path {
	paths := make([]diagpath.Path, 0, len(s.exts))
	for p := range s.exts {
		paths = append(paths, p)
	}
	diagpath.SortPaths(paths)
	return paths
}
