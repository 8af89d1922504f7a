package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment holds settings read from REDPILE_* environment variables.
// They tune logging and the runtime, never the validated Config.
type Environment struct {
	LogLevel    string `env:"REDPILE_LOG_LEVEL"    envDefault:"warn"`
	LogFormat   string `env:"REDPILE_LOG_FORMAT"   envDefault:"text"`
	ListenHost  string `env:"REDPILE_LISTEN_HOST"  envDefault:"0.0.0.0"`
	Prompt      string `env:"REDPILE_PROMPT"       envDefault:"> "`
	BenchRadius int    `env:"REDPILE_BENCH_RADIUS" envDefault:"6"`
	BenchSeed   int64  `env:"REDPILE_BENCH_SEED"   envDefault:"42"`
}

// ParseEnv loads the Environment from the process environment.
func ParseEnv() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("parse env: %w", err)
	}
	if e.LogFormat != "text" && e.LogFormat != "json" {
		return Environment{}, fmt.Errorf("parse env: REDPILE_LOG_FORMAT must be 'text' or 'json', got %q", e.LogFormat)
	}
	if e.BenchRadius < 1 {
		return Environment{}, fmt.Errorf("parse env: REDPILE_BENCH_RADIUS must be at least 1, got %d", e.BenchRadius)
	}
	return e, nil
}
