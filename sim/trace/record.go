// Package trace records what happens during world ticks so callers can print
// or summarize it. This package has no dependencies on sim/; records hold
// preformatted node and message text.
package trace

// NodeRecord captures one node being processed during a tick.
type NodeRecord struct {
	Tick    uint64
	Node    string
	Inputs  int // messages delivered to the node this tick
	Outputs int // messages the node sent this tick
}

// SendRecord captures a message queued by a behavior.
type SendRecord struct {
	Tick    uint64
	Message string
	Due     uint64 // tick the message will be delivered on
}

// SetRecord captures a field assignment applied at the end of a tick.
type SetRecord struct {
	Tick  uint64
	Node  string // node text after the assignment
	Field string
	Value int32
}
