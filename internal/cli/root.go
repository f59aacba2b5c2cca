// Package cli implements the filterbus command line.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/filterbus/internal/config"
	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/logging"
)

// app holds state resolved once per invocation by the root command.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "filterbus",
		Short: "Run and script the filter-indexed event bus",
		Long: "filterbus runs YAML scenarios and Lua scripts against an in-process event bus " +
			"whose listeners are indexed by event parameter values.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().String("config", "", "Path to a TOML config file")
	root.PersistentFlags().String("log-level", "", "Log level: debug | info | warn | error | off")
	root.PersistentFlags().Bool("trace", false, "Log every raise at debug level")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("filterbus version %s\n", version))

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newScriptCmd(a))
	root.AddCommand(newDemoCmd(a))

	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return exitError(exitConfig, "loading config: %v", err)
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		cfg.Log.Level = level
	}
	if cmd.Flags().Changed("trace") {
		cfg.Bus.Trace, _ = cmd.Flags().GetBool("trace")
	}
	if err := cfg.Validate(); err != nil {
		return exitError(exitConfig, "%v", err)
	}

	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	a.cfg = cfg
	a.log = logging.New(lc)
	return nil
}

// newBus builds a bus from the resolved configuration.
func (a *app) newBus(component string) *event.Bus {
	return event.NewBus(a.cfg.BusOptions(logging.WithComponent(a.log, component))...)
}
