package config

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Option names as they appear on the command line (long form).
const (
	OptWorldSize   = "world-size"
	OptInteractive = "interactive"
	OptPort        = "port"
	OptBenchmark   = "benchmark"
	OptVersion     = "version"
	OptHelp        = "help"
)

// Arguments is the raw result of parsing the command line. Only options that
// were actually supplied are present, so callers can tell an explicit value
// apart from a default.
type Arguments struct {
	Values     map[string]string // value-taking options, keyed by long name
	Flags      map[string]bool   // presence options, keyed by long name
	Positional []string
}

// Has reports whether the named option was supplied, with or without a value.
func (a *Arguments) Has(name string) bool {
	if _, ok := a.Values[name]; ok {
		return true
	}
	_, ok := a.Flags[name]
	return ok
}

// Flag returns the value of a presence option, false when it was not supplied.
func (a *Arguments) Flag(name string) bool {
	return a.Flags[name]
}

// ParseError reports a malformed command line: an unknown flag or a flag
// that takes a value but was given none.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newFlagSet declares the recognised options. Every value-taking option is a
// string so that domain rules are applied by Validate rather than by pflag.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("redpile", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.StringP(OptWorldSize, "w", "", "world size, a power of two")
	fs.BoolP(OptInteractive, "i", false, "run with a prompt for reading commands")
	fs.StringP(OptPort, "p", "", "port to listen for commands on")
	fs.StringP(OptBenchmark, "b", "", "milliseconds to run benchmarks for")
	fs.BoolP(OptVersion, "v", false, "print the current version")
	fs.BoolP(OptHelp, "h", false, "print the help message")
	return fs
}

// Parse splits argv (without the program name) into recognised options and
// positional arguments. On error no partial Arguments are returned, except
// that a help or version option appearing before the malformed one is still
// honoured; the result then holds only those options.
func Parse(argv []string) (*Arguments, error) {
	fs := newFlagSet()
	if err := fs.Parse(argv); err != nil {
		if early := shortCircuitBefore(argv); len(early) > 0 {
			return &Arguments{Values: map[string]string{}, Flags: early}, nil
		}
		return nil, &ParseError{Err: err}
	}

	args := &Arguments{
		Values:     make(map[string]string),
		Flags:      make(map[string]bool),
		Positional: fs.Args(),
	}

	var visitErr error
	fs.Visit(func(f *pflag.Flag) {
		if f.Value.Type() == "bool" {
			v, err := fs.GetBool(f.Name)
			if err != nil && visitErr == nil {
				visitErr = err
			}
			args.Flags[f.Name] = v
			return
		}
		args.Values[f.Name] = f.Value.String()
	})
	if visitErr != nil {
		return nil, &ParseError{Err: visitErr}
	}
	return args, nil
}

// shortCircuitBefore walks argv in order, the way the options are consumed,
// and collects help and version options up to the first token that cannot be
// parsed. Values of value-taking options are skipped.
func shortCircuitBefore(argv []string) map[string]bool {
	found := make(map[string]bool)
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--":
			return found
		case strings.HasPrefix(a, "--"):
			name, _, inline := strings.Cut(a[2:], "=")
			switch name {
			case OptHelp, OptVersion:
				found[name] = true
			case OptInteractive:
			case OptWorldSize, OptPort, OptBenchmark:
				if !inline {
					if i+1 >= len(argv) {
						return found
					}
					i++
				}
			default:
				return found
			}
		case len(a) > 1 && a[0] == '-':
		shorthands:
			for j := 1; j < len(a); j++ {
				switch a[j] {
				case 'h':
					found[OptHelp] = true
				case 'v':
					found[OptVersion] = true
				case 'i':
				case 'w', 'p', 'b':
					if j == len(a)-1 {
						if i+1 >= len(argv) {
							return found
						}
						i++
					}
					break shorthands
				default:
					return found
				}
			}
		}
	}
	return found
}
