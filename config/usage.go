package config

import (
	"fmt"
	"io"
)

// Version is the program version, overridable at link time with
// -ldflags "-X github.com/nullreff/redpile/config.Version=...".
var Version = "0.4.0"

const usage = `Redpile - High Performance Redstone

Usage: redpile [options] CONFIG_FILE
Options:
    -w, --world-size SIZE
        Size of the world's node index, a power of two (default 1024)

    -i, --interactive
        Run in interactive mode with a prompt for reading commands

    -p, --port PORT
        Read commands from a TCP connection on PORT (1-65535)

    -b, --benchmark MILLISECONDS
        Run benchmarks for MILLISECONDS instead of reading commands

    -v, --version
        Print the current version

    -h, --help
        Print this message
`

// PrintUsage writes the help message.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// PrintVersion writes the version line.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "Redpile %s\n", Version)
}
