package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nullreff/redpile/config"
	"github.com/nullreff/redpile/engine"
	"github.com/nullreff/redpile/startup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ExitError carries a non-zero process exit status out of the command.
// The message, if any, has already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// rootCmd hands the raw command line to startup.Run, which owns option
// parsing, help and version output.
var rootCmd = &cobra.Command{
	Use:   "redpile [options] CONFIG_FILE",
	Short: "High performance redstone simulator",

	DisableFlagParsing: true,
	SilenceErrors:      true,
	SilenceUsage:       true,

	RunE: func(cmd *cobra.Command, args []string) error {
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

		env, err := config.ParseEnv()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return &ExitError{Code: 1}
		}
		if err := setupLogging(env, stderr); err != nil {
			fmt.Fprintln(stderr, err)
			return &ExitError{Code: 1}
		}

		core := engine.New(env)
		core.In = cmd.InOrStdin()
		core.Out = stdout
		core.Err = stderr

		if code := startup.Run(cmd.Context(), core, args, stdout, stderr); code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	},
}

// setupLogging applies REDPILE_LOG_LEVEL and REDPILE_LOG_FORMAT. Logs go to
// stderr so they never mix with command output.
func setupLogging(env config.Environment, w io.Writer) error {
	level, err := logrus.ParseLevel(env.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", env.LogLevel, err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(w)
	if env.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}
	return nil
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
