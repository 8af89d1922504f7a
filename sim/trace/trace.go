package trace

// Level controls how much of a tick is recorded.
type Level string

const (
	// LevelQuiet records nothing.
	LevelQuiet Level = "quiet"
	// LevelNormal records field assignments only.
	LevelNormal Level = "normal"
	// LevelVerbose records every processed node, sent message and assignment.
	LevelVerbose Level = "verbose"
)

// Config controls trace collection behavior.
type Config struct {
	Level Level
}

// TickTrace collects records during one or more ticks.
// A nil *TickTrace is valid and records nothing.
type TickTrace struct {
	Config Config
	Ticks  []uint64
	Nodes  []NodeRecord
	Sends  []SendRecord
	Sets   []SetRecord
}

// NewTickTrace creates a TickTrace ready for recording.
func NewTickTrace(config Config) *TickTrace {
	if config.Level == "" {
		config.Level = LevelNormal
	}
	return &TickTrace{
		Config: config,
		Nodes:  make([]NodeRecord, 0),
		Sends:  make([]SendRecord, 0),
		Sets:   make([]SetRecord, 0),
	}
}

func (tt *TickTrace) level() Level {
	if tt == nil {
		return LevelQuiet
	}
	return tt.Config.Level
}

// Verbose reports whether per-node records are being collected.
func (tt *TickTrace) Verbose() bool {
	return tt.level() == LevelVerbose
}

// RecordTick marks the start of a tick.
func (tt *TickTrace) RecordTick(tick uint64) {
	if tt.level() == LevelQuiet {
		return
	}
	tt.Ticks = append(tt.Ticks, tick)
}

// RecordNode appends a node record when verbose.
func (tt *TickTrace) RecordNode(record NodeRecord) {
	if tt.level() != LevelVerbose {
		return
	}
	tt.Nodes = append(tt.Nodes, record)
}

// RecordSend appends a send record when verbose.
func (tt *TickTrace) RecordSend(record SendRecord) {
	if tt.level() != LevelVerbose {
		return
	}
	tt.Sends = append(tt.Sends, record)
}

// RecordSet appends an assignment record unless quiet.
func (tt *TickTrace) RecordSet(record SetRecord) {
	if tt.level() == LevelQuiet {
		return
	}
	tt.Sets = append(tt.Sets, record)
}
