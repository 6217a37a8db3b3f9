package main

import (
	"testing"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/ext"
	"github.com/bitsysim/bitsysim/internal/resolve"
	"github.com/bitsysim/bitsysim/internal/sim"
	"github.com/bitsysim/bitsysim/internal/typecheck"
	"github.com/bitsysim/bitsysim/internal/types"
)

func buildSim(t *testing.T, fixtureName string) *sim.Sim {
	t.Helper()
	fixture, ok := fixtures[fixtureName]
	if !ok {
		t.Fatalf("no such fixture %q", fixtureName)
	}
	pkg, batch := resolve.Resolve(fixture())
	if batch.HasErrors() {
		t.Fatalf("resolve: %s", batch.Err())
	}
	tcBatch := typecheck.CheckPackage(pkg)
	if tcBatch.HasErrors() {
		t.Fatalf("typecheck: %s", tcBatch.Err())
	}
	el, err := circuit.Elaborate(pkg, "Top")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	s, err := sim.New(el)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return s
}

func TestFixturesAllResolveTypecheckElaborate(t *testing.T) {
	for name := range fixtures {
		buildSim(t, name)
	}
}

func TestAdderFixtureBehavior(t *testing.T) {
	s := buildSim(t, "adder")
	s.Poke(diagpath.New("top.a"), types.NewWord(3, 8))
	s.Poke(diagpath.New("top.b"), types.NewWord(5, 8))
	got, err := s.Peek(diagpath.New("top.s"))
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if !got.Equal(types.NewWord(8, 8)) {
		t.Fatalf("got %v, want 8", got)
	}
}

func TestCounterFixtureBehavior(t *testing.T) {
	s := buildSim(t, "counter")
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Clock(); err != nil {
			t.Fatalf("clock: %v", err)
		}
	}
	got, _ := s.Peek(diagpath.New("top.out"))
	if !got.Equal(types.NewWord(3, 4)) {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestMuxFixtureBehavior(t *testing.T) {
	s := buildSim(t, "mux")
	s.Poke(diagpath.New("top.sel"), types.NewWord(1, 1))
	s.Poke(diagpath.New("top.a"), types.NewWord(7, 8))
	s.Poke(diagpath.New("top.b"), types.NewWord(9, 8))
	got, _ := s.Peek(diagpath.New("top.out"))
	if !got.Equal(types.NewWord(7, 8)) {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestCatFixtureBehavior(t *testing.T) {
	s := buildSim(t, "cat")
	got, err := s.Peek(diagpath.New("top.out"))
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if !got.Equal(types.NewWord(13, 4)) {
		t.Fatalf("got %v, want 13", got)
	}
}

func TestEchoFixtureBehavior(t *testing.T) {
	s := buildSim(t, "echo")
	if err := s.Ext(diagpath.New("top.e"), ext.NewEcho()); err != nil {
		t.Fatalf("attach ext: %v", err)
	}
	if err := s.Poke(diagpath.New("top.in"), types.NewWord(42, 8)); err != nil {
		t.Fatalf("poke: %v", err)
	}
	got, err := s.Peek(diagpath.New("top.out"))
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if !got.Equal(types.NewWord(42, 8)) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestParseValueAcceptsXAndWidthedWord(t *testing.T) {
	v, err := parseValue("X")
	if err != nil || !types.IsX(v) {
		t.Fatalf("expected X, got %v, %v", v, err)
	}
	v, err = parseValue("5:8")
	if err != nil || !v.Equal(types.NewWord(5, 8)) {
		t.Fatalf("expected 5:8, got %v, %v", v, err)
	}
	if _, err := parseValue("garbage"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
}
