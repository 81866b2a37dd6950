// Package registry holds the named specs a binary can run and the gates that
// select among them.
package registry

import (
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	sweetest "github.com/ethereum-optimism/infra/op-sweetest"
)

// Spec is a named function declaring root suites on a runner.
type Spec struct {
	ID          string
	Description string
	Fn          func(r *sweetest.Runner)
}

// GateConfig selects a set of specs, optionally inheriting other gates.
type GateConfig struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Inherits    []string `yaml:"inherits,omitempty"`
	Specs       []string `yaml:"specs,omitempty"`
}

// GatesConfig is the layout of a gate file.
type GatesConfig struct {
	Gates []GateConfig `yaml:"gates"`
}

// Registry manages specs in registration order and the gates loaded for them.
type Registry struct {
	mu    sync.RWMutex
	specs []Spec
	index map[string]int
	gates map[string]GateConfig
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		index: make(map[string]int),
		gates: make(map[string]GateConfig),
	}
}

// Register adds a spec. IDs must be unique and non-empty.
func (r *Registry) Register(id, description string, fn func(*sweetest.Runner)) error {
	if id == "" {
		return fmt.Errorf("spec id must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("spec %q has no function", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[id]; exists {
		return fmt.Errorf("spec %q already registered", id)
	}
	r.index[id] = len(r.specs)
	r.specs = append(r.specs, Spec{ID: id, Description: description, Fn: fn})
	return nil
}

// Spec returns the spec registered under id.
func (r *Registry) Spec(id string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// All returns every spec in registration order.
func (r *Registry) All() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, len(r.specs))
	copy(specs, r.specs)
	return specs
}

// LoadGates reads a gate file and adds its gates. The file is applied as a
// whole: if any gate is rejected or fails to resolve, no gate is added.
func (r *Registry) LoadGates(path string) error {
	log.Debug("Reading gate file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading gate file: %w", err)
	}

	var cfg GatesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing gate file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	merged := make(map[string]GateConfig, len(r.gates)+len(cfg.Gates))
	for id, gate := range r.gates {
		merged[id] = gate
	}
	for _, gate := range cfg.Gates {
		if err := addGate(merged, gate); err != nil {
			return fmt.Errorf("gate file %s: %w", path, err)
		}
	}
	if err := r.validate(merged); err != nil {
		return err
	}
	r.gates = merged
	return nil
}

func addGate(gates map[string]GateConfig, gate GateConfig) error {
	if gate.ID == "" {
		return fmt.Errorf("gate id must not be empty")
	}
	if _, exists := gates[gate.ID]; exists {
		return fmt.Errorf("gate %q defined more than once", gate.ID)
	}
	gates[gate.ID] = gate
	return nil
}

// Gate returns the gate registered under id.
func (r *Registry) Gate(id string) (GateConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gate, ok := r.gates[id]
	return gate, ok
}

// validate resolves every gate, reporting the first inheritance or spec error.
func (r *Registry) validate(gates map[string]GateConfig) error {
	for id := range gates {
		if _, err := r.selectSpecs(gates, id); err != nil {
			return err
		}
	}
	return nil
}

// Specs returns the specs selected by a gate: its own specs first, then those
// of each inherited gate in order, without duplicates. An empty gate id selects
// every registered spec.
func (r *Registry) Specs(gateID string) ([]Spec, error) {
	if gateID == "" {
		return r.All(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selectSpecs(r.gates, gateID)
}

// selectSpecs resolves gateID against gates. The caller holds r.mu.
func (r *Registry) selectSpecs(gates map[string]GateConfig, gateID string) ([]Spec, error) {
	gate, ok := gates[gateID]
	if !ok {
		return nil, fmt.Errorf("gate %q not found", gateID)
	}

	ids, err := resolve(gates, gate, map[string]bool{gate.ID: true})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var specs []Spec
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		i, ok := r.index[id]
		if !ok {
			return nil, fmt.Errorf("gate %q references unknown spec %q", gateID, id)
		}
		specs = append(specs, r.specs[i])
	}
	return specs, nil
}

// resolve flattens the spec ids of gate and its ancestors. visiting holds the
// gates on the current inheritance path.
func resolve(gates map[string]GateConfig, gate GateConfig, visiting map[string]bool) ([]string, error) {
	ids := append([]string{}, gate.Specs...)

	for _, inheritFrom := range gate.Inherits {
		if visiting[inheritFrom] {
			return nil, fmt.Errorf("circular inheritance detected for gate %q", inheritFrom)
		}
		parent, ok := gates[inheritFrom]
		if !ok {
			return nil, fmt.Errorf("gate %q inherits from non-existent gate %q", gate.ID, inheritFrom)
		}

		visiting[inheritFrom] = true
		inherited, err := resolve(gates, parent, visiting)
		if err != nil {
			return nil, fmt.Errorf("resolving inheritance for parent gate %q: %w", inheritFrom, err)
		}
		visiting[inheritFrom] = false

		ids = append(ids, inherited...)
	}
	return ids, nil
}
