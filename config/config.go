// Package config turns the redpile command line into a validated Config.
//
// Parsing and validation are separate steps: Parse only recognises options,
// Validate applies the domain rules and decides whether the program should
// continue (Ready), stop cleanly (Done, after help or version output) or fail.
package config

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// Defaults applied when an option is absent.
const (
	DefaultWorldSize uint32 = 1024
	DefaultPort      uint16 = 0
	DefaultBenchmark uint32 = 0
)

var (
	worldSizeMessage = fmt.Sprintf("You must pass a power of two between 1 and %d as the world size", uint32(math.MaxUint32))
	portMessage      = fmt.Sprintf("You must pass a number between 1 and %d as the port number", uint16(math.MaxUint16))
	benchmarkMessage = "You must pass a positive number of seconds to run each benchmark for"
	fileMessage      = "You must provide a configuration file"
)

// Config is the validated startup configuration. It is built once per
// process and never modified.
type Config struct {
	WorldSize   uint32 // power of two, > 0
	Interactive bool
	Port        uint16 // 0 means no listener
	Benchmark   uint32 // milliseconds, 0 means no benchmark
	File        string
}

// BenchmarkDuration returns the benchmark length as a time.Duration.
func (c Config) BenchmarkDuration() time.Duration {
	return time.Duration(c.Benchmark) * time.Millisecond
}

// Status is the kind of result produced by Validate.
type Status int

const (
	// Ready means Config is valid and startup should continue.
	Ready Status = iota
	// Done means help or version text was printed; exit with status 0.
	Done
	// Failed means Err describes why the command line was rejected.
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of loading the configuration.
type Outcome struct {
	Status Status
	Config Config // set when Status == Ready
	Err    error  // *ParseError or *ValidationError when Status == Failed
}

// ValidationError reports an option whose value is outside its domain, or a
// missing configuration file.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Load parses and validates argv. Help and version output is written to stdout.
func Load(argv []string, stdout io.Writer) Outcome {
	args, err := Parse(argv)
	if err != nil {
		return Outcome{Status: Failed, Err: err}
	}
	return Validate(args, stdout)
}

// Validate applies the domain rules to parsed arguments. Help and version
// short-circuit everything else, even malformed values. Otherwise the first
// violation found is returned.
func Validate(args *Arguments, stdout io.Writer) Outcome {
	if args.Flag(OptHelp) {
		PrintUsage(stdout)
		return Outcome{Status: Done}
	}
	if args.Flag(OptVersion) {
		PrintVersion(stdout)
		return Outcome{Status: Done}
	}

	cfg := Config{
		WorldSize:   DefaultWorldSize,
		Interactive: args.Flag(OptInteractive),
		Port:        DefaultPort,
		Benchmark:   DefaultBenchmark,
	}

	if raw, ok := args.Values[OptWorldSize]; ok {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || !IsPowerOfTwo(uint32(n)) {
			return failed(OptWorldSize, worldSizeMessage)
		}
		cfg.WorldSize = uint32(n)
	}

	// An explicit 0 is rejected even though it equals the default.
	if raw, ok := args.Values[OptPort]; ok {
		n, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || n == 0 {
			return failed(OptPort, portMessage)
		}
		cfg.Port = uint16(n)
	}

	if raw, ok := args.Values[OptBenchmark]; ok {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return failed(OptBenchmark, benchmarkMessage)
		}
		cfg.Benchmark = uint32(n)
	}

	if len(args.Positional) == 0 || args.Positional[0] == "" {
		return failed("file", fileMessage)
	}
	cfg.File = args.Positional[0]

	return Outcome{Status: Ready, Config: cfg}
}

// IsPowerOfTwo reports whether x is a power of two. Zero is not.
func IsPowerOfTwo(x uint32) bool {
	return x != 0 && x&(x-1) == 0
}

func failed(field, message string) Outcome {
	return Outcome{Status: Failed, Err: &ValidationError{Field: field, Message: message}}
}
