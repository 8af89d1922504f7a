// Tracks per-phase timings across benchmark rounds.

package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/nullreff/redpile/sim"
	"gopkg.in/yaml.v3"
)

// Phase names in execution order.
const (
	PhaseAdd    = "world_add_node"
	PhaseGet    = "world_get_node"
	PhaseTick   = "world_tick"
	PhaseRemove = "world_remove_node"
)

var phaseOrder = []string{PhaseAdd, PhaseGet, PhaseTick, PhaseRemove}

// PhaseMetrics aggregates one phase over every round.
type PhaseMetrics struct {
	Name    string        `yaml:"name"`
	Total   time.Duration `yaml:"total"`
	Fastest time.Duration `yaml:"fastest"`
	Slowest time.Duration `yaml:"slowest"`
	Ops     int           `yaml:"ops"`       // node operations or ticks performed
	NsPerOp float64       `yaml:"ns_per_op"` // mean time per operation
}

// Metrics is the result of a benchmark run.
type Metrics struct {
	Rounds        int             `yaml:"rounds"`
	NodesPerRound int             `yaml:"nodes_per_round"`
	Seed          int64           `yaml:"seed"`
	Total         time.Duration   `yaml:"total"`
	Phases        []*PhaseMetrics `yaml:"phases"`
	Stats         sim.Stats       `yaml:"stats"` // world state after the last tick phase
}

func newMetrics(seed int64, nodes int) *Metrics {
	m := &Metrics{Seed: seed, NodesPerRound: nodes}
	for _, name := range phaseOrder {
		m.Phases = append(m.Phases, &PhaseMetrics{Name: name})
	}
	return m
}

// Phase returns the named phase, or nil.
func (m *Metrics) Phase(name string) *PhaseMetrics {
	for _, p := range m.Phases {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (m *Metrics) record(name string, d time.Duration, ops int) {
	p := m.Phase(name)
	if p.Fastest == 0 || d < p.Fastest {
		p.Fastest = d
	}
	if d > p.Slowest {
		p.Slowest = d
	}
	p.Total += d
	p.Ops += ops
	if p.Ops > 0 {
		p.NsPerOp = float64(p.Total.Nanoseconds()) / float64(p.Ops)
	}
}

// Print writes the metrics as a YAML document under a header.
func (m *Metrics) Print(w io.Writer) error {
	fmt.Fprintln(w, "=== Benchmark Metrics ===")
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal benchmark metrics: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// FormatTime renders d in whole seconds, milliseconds or microseconds,
// picking the largest unit the duration exceeds.
func FormatTime(d time.Duration) string {
	us := d.Microseconds()
	switch {
	case us > 1000*1000*1000:
		return fmt.Sprintf("%d sec", us/(1000*1000))
	case us > 1000*1000:
		return fmt.Sprintf("%d ms", us/1000)
	}
	return fmt.Sprintf("%d us", us)
}
