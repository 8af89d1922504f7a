package trace

// TickSummary aggregates statistics from a TickTrace.
type TickSummary struct {
	Ticks       int
	TotalNodes  int
	TotalSends  int
	TotalSets   int
	MaxInputs   int
	MaxOutputs  int
	BusiestTick uint64 // tick with the most sends; 0 when there were none
}

// Summarize computes aggregate statistics from a TickTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(tt *TickTrace) *TickSummary {
	summary := &TickSummary{}
	if tt == nil {
		return summary
	}

	summary.Ticks = len(tt.Ticks)
	summary.TotalNodes = len(tt.Nodes)
	summary.TotalSends = len(tt.Sends)
	summary.TotalSets = len(tt.Sets)

	for _, n := range tt.Nodes {
		if n.Inputs > summary.MaxInputs {
			summary.MaxInputs = n.Inputs
		}
		if n.Outputs > summary.MaxOutputs {
			summary.MaxOutputs = n.Outputs
		}
	}

	perTick := make(map[uint64]int)
	for _, s := range tt.Sends {
		perTick[s.Tick]++
	}
	busiest := 0
	for tick, count := range perTick {
		if count > busiest || (count == busiest && tick < summary.BusiestTick) {
			busiest = count
			summary.BusiestTick = tick
		}
	}

	return summary
}
