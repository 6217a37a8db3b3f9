// Command bitsysim is the reference CLI collaborator described in spec.md
// §6: it elaborates a named top module and exposes an interactive
// peek/poke/clock REPL. The real surface-syntax grammar/lexer is an
// out-of-scope external collaborator (spec.md §1), so this binary selects
// among a small set of built-in circuit fixtures instead of parsing source
// text (see fixtures.go).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/bitsysim/bitsysim/internal/circuit"
	"github.com/bitsysim/bitsysim/internal/config"
	"github.com/bitsysim/bitsysim/internal/diagpath"
	"github.com/bitsysim/bitsysim/internal/ext"
	"github.com/bitsysim/bitsysim/internal/resolve"
	"github.com/bitsysim/bitsysim/internal/sim"
	"github.com/bitsysim/bitsysim/internal/typecheck"
	"github.com/bitsysim/bitsysim/internal/types"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bitsysim", flag.ContinueOnError)
	topName := fs.String("top", "Top", "name of the top-level module to elaborate")
	configPath := fs.String("config", "", "path to a bitsysim.yaml project file (ext bindings, clock cap, loop guard)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "usage: bitsysim [--top Name] [--config bitsysim.yaml] <circuit>\navailable circuits:\n%s", describeFixtures())
		return 2
	}

	fixture, ok := fixtures[rest[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown circuit %q, available:\n%s", rest[0], describeFixtures())
		return 2
	}

	var proj *config.Project
	if *configPath != "" {
		p, err := config.LoadProject(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %s\n", err)
			return 1
		}
		proj = p
	}

	pkg, batch := resolve.Resolve(fixture())
	if batch.HasErrors() {
		fmt.Fprintln(os.Stderr, "resolve failed:")
		for _, d := range batch.Items() {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Pos, d.Err)
		}
		return 1
	}

	tcBatch := typecheck.CheckPackage(pkg)
	if tcBatch.HasErrors() {
		fmt.Fprintln(os.Stderr, "type check failed:")
		for _, d := range tcBatch.Items() {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Pos, d.Err)
		}
		return 1
	}

	el, err := circuit.Elaborate(pkg, *topName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elaboration failed: %s\n", err)
		return 1
	}

	s, err := sim.New(el)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulator construction failed: %s\n", err)
		return 1
	}

	if proj != nil {
		if proj.ClockFreqCapHz > 0 {
			s.CapClockFreq(proj.ClockFreqCapHz)
		}
		s.SetGuardDepth(proj.GuardDepth())
		for _, binding := range proj.Exts {
			inst, err := ext.New(binding.Kind)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ext binding %q: %s\n", binding.Path, err)
				return 1
			}
			if err := s.Ext(diagpath.New(binding.Path), inst); err != nil {
				fmt.Fprintf(os.Stderr, "attaching ext %q: %s\n", binding.Path, err)
				return 1
			}
		}
	}

	return repl(s)
}

func repl(s *sim.Sim) int {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		switch cmd {
		case "quit", "exit":
			fmt.Printf("ran %s clocks\n", humanize.Comma(int64(s.Ticks())))
			return 0
		case "peek":
			if len(fields) != 2 {
				fmt.Fprintln(os.Stderr, "usage: peek <path>")
				continue
			}
			v, err := s.Peek(diagpath.New(fields[1]))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %s\n", err)
				continue
			}
			fmt.Println(v.String())
		case "poke", "set":
			if len(fields) != 3 {
				fmt.Fprintf(os.Stderr, "usage: %s <path> <value>\n", cmd)
				continue
			}
			value, err := parseValue(fields[2])
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %s\n", err)
				continue
			}
			path := diagpath.New(fields[1])
			if cmd == "poke" {
				err = s.Poke(path, value)
			} else {
				err = s.Set(path, value)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %s\n", err)
			}
		case "clock":
			n := 1
			if len(fields) == 2 {
				parsed, err := strconv.Atoi(fields[1])
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %s\n", err)
					continue
				}
				n = parsed
			}
			for i := 0; i < n; i++ {
				if err := s.Clock(); err != nil {
					fmt.Fprintf(os.Stderr, "error: %s\n", err)
					break
				}
			}
		case "reset":
			if err := s.Reset(); err != nil {
				fmt.Fprintf(os.Stderr, "error: %s\n", err)
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q (peek/poke/set/clock/reset/quit)\n", cmd)
		}
	}
	return 0
}

// parseValue parses a REPL value literal: "X" for unknown, or "<value>:<width>"
// for a Word of the given bit width (e.g. "5:8").
func parseValue(s string) (types.Value, error) {
	if s == "X" || s == "x" {
		return types.X, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("value %q must be X or <value>:<width>", s)
	}
	val, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad value %q: %w", parts[0], err)
	}
	width, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad width %q: %w", parts[1], err)
	}
	return types.NewWord(val, width), nil
}
