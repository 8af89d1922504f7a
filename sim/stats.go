package sim

import (
	"fmt"
	"io"
)

// Stats describes the world's contents and index health.
type Stats struct {
	Ticks      uint64 `yaml:"ticks"`
	Nodes      int    `yaml:"nodes"`
	Size       uint32 `yaml:"size"`
	Buckets    int    `yaml:"buckets"`    // buckets holding at least one node
	MaxDepth   int    `yaml:"max_depth"`  // nodes in the fullest bucket
	Collisions int    `yaml:"collisions"` // nodes sharing a bucket with an earlier node
	Resizes    int    `yaml:"resizes"`
	Queued     int    `yaml:"queued"`
	MaxInputs  int    `yaml:"max_inputs"`
	MaxOutputs int    `yaml:"max_outputs"`
	Dropped    int    `yaml:"dropped"` // messages whose target was empty on delivery
}

// Stats computes the current statistics.
func (w *World) Stats() Stats {
	s := Stats{
		Ticks:      w.Ticks,
		Nodes:      w.count,
		Size:       w.size,
		Resizes:    w.resizes,
		Queued:     w.queue.Len(),
		MaxInputs:  w.maxInputs,
		MaxOutputs: w.maxOutputs,
		Dropped:    w.dropped,
	}
	for _, nodes := range w.buckets {
		if len(nodes) == 0 {
			continue
		}
		s.Buckets++
		if len(nodes) > s.MaxDepth {
			s.MaxDepth = len(nodes)
		}
	}
	s.Collisions = s.Nodes - s.Buckets
	return s
}

// Print writes the statistics one "name: value" per line.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "ticks: %d\n", s.Ticks)
	fmt.Fprintf(w, "nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "size: %d\n", s.Size)
	fmt.Fprintf(w, "buckets: %d\n", s.Buckets)
	fmt.Fprintf(w, "max_depth: %d\n", s.MaxDepth)
	fmt.Fprintf(w, "collisions: %d\n", s.Collisions)
	fmt.Fprintf(w, "resizes: %d\n", s.Resizes)
	fmt.Fprintf(w, "queued: %d\n", s.Queued)
	fmt.Fprintf(w, "max_inputs: %d\n", s.MaxInputs)
	fmt.Fprintf(w, "max_outputs: %d\n", s.MaxOutputs)
	fmt.Fprintf(w, "dropped: %d\n", s.Dropped)
}
