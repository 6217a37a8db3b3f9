package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExtBinding names which external-instance implementation to attach at a
// given elaborated path, loaded from bitsysim.yaml. The CLI resolves Kind
// against a small registry of built-in ext.Instance constructors
// (internal/ext); embedders are free to ignore this and call Sim.Ext
// directly.
type ExtBinding struct {
	Path string `yaml:"path"`
	Kind string `yaml:"kind"`
}

// Project is the top-level bitsysim.yaml configuration.
type Project struct {
	// ClockFreqCapHz caps simulated clock rate, 0 means uncapped.
	ClockFreqCapHz float64 `yaml:"clock_freq_cap_hz,omitempty"`

	// Exts lists external-instance bindings by elaborated path.
	Exts []ExtBinding `yaml:"exts,omitempty"`

	// CombinationalLoopGuard overrides DefaultCombinationalLoopGuard; 0
	// means "use the default".
	CombinationalLoopGuard int `yaml:"combinational_loop_guard,omitempty"`
}

// LoadProject reads and validates a bitsysim.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if p.ClockFreqCapHz < 0 {
		return nil, fmt.Errorf("config: %s: clock_freq_cap_hz must be >= 0", path)
	}
	for _, e := range p.Exts {
		if e.Path == "" {
			return nil, fmt.Errorf("config: %s: ext binding missing path", path)
		}
		if e.Kind == "" {
			return nil, fmt.Errorf("config: %s: ext binding %q missing kind", path, e.Path)
		}
	}
	return &p, nil
}

// GuardDepth returns the effective combinational-loop recursion guard.
func (p *Project) GuardDepth() int {
	if p == nil || p.CombinationalLoopGuard <= 0 {
		return DefaultCombinationalLoopGuard
	}
	return p.CombinationalLoopGuard
}
