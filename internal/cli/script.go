package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dshills/filterbus/internal/logging"
	"github.com/dshills/filterbus/internal/script"
)

func newScriptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script <file.lua>",
		Short: "Run a Lua script against a fresh bus",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runScript,
	}
	cmd.Flags().Bool("stats", false, "Print bus statistics after the script ends")
	return cmd
}

func (a *app) runScript(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return exitError(exitFileNotFound, "file not found: %s", path)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	bus := a.newBus("bus")
	engine := script.New(bus,
		script.WithLogger(logging.WithComponent(a.log, "script")),
		script.WithOutput(cmd.OutOrStdout()),
	)
	defer engine.Close()

	if err := engine.RunFile(ctx, path); err != nil {
		return exitError(exitRuntime, "%v", err)
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		s := bus.Stats()
		fmt.Fprintf(cmd.OutOrStdout(),
			"types: %d, listeners: %d, raises: %d, deliveries: %d, stopped: %d, queued: %d, max depth: %d\n",
			s.Types, s.Listeners, s.Raises, s.Deliveries, s.Stopped, s.Queued, s.MaxDepth)
	}
	return nil
}
