package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Flags
	configFile string
	ruleFile   string
	debugFlag  bool
)

// rootCmd assembles the punp CLI: a "run" command that does the actual
// rewriting and a "version" command that reports build/update info.
func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "punp",
		Short:         "punp rewrites source files in batch according to a rule file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".punprc", "project config file path")
	cmd.PersistentFlags().StringVarP(&ruleFile, "rules", "r", "", "rule file path (overrides the project config value)")
	cmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging installs a default context logger so packages that reach
// for zerolog.Ctx before a request-scoped logger exists still get one.
func setupLogging() {
	if debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := newLogger()
	zerolog.DefaultContextLogger = &log
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debugFlag {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
