package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/diesel-lang/diesel/internal/cli"
	"github.com/diesel-lang/diesel/internal/config"
)

const toolName = "dieselopt"

// app holds the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	status int

	configFile string
	verbose    bool
	debug      bool
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   toolName,
		Short: "Diesel constant-folding optimizer",
		Long: `dieselopt reads a type-checked Diesel program in its YAML interchange
form and replaces constant subexpressions by their values.

The exit status is the number of errors reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "configuration file (default: $"+config.EnvVar+" or ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log progress")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log per-pass statistics")

	root.AddCommand(a.optimizeCommand())
	root.AddCommand(a.checkCommand())
	root.AddCommand(a.versionCommand())
	return root
}

// loadConfig reads the configuration named by --config, falling back to
// the environment and the default search path.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configFile != "" {
		return config.Load(a.configFile)
	}
	return config.LoadFromEnv()
}

// logger builds the CLI logger. Command line switches only ever raise the
// level set in the configuration.
func (a *app) logger(cfg *config.Config) *cli.Logger {
	verbose, debug, _ := cfg.LogFlags()
	return cli.NewLoggerTo(a.stderr, verbose || a.verbose || a.debug, debug || a.debug)
}
