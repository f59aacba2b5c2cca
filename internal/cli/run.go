package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/logging"
	"github.com/dshills/filterbus/internal/scenario"
	"github.com/dshills/filterbus/internal/watch"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and check its expectations",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runRun,
	}

	cmd.Flags().BoolP("watch", "w", false, "Re-run the scenario whenever the file changes")
	cmd.Flags().Duration("debounce", 0, "Delay after the last change before re-running (default from config)")
	cmd.Flags().Int("max-nesting", scenario.DefaultMaxNesting, "Maximum depth of raise actions")

	return cmd
}

func (a *app) runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	watching, _ := cmd.Flags().GetBool("watch")
	if !cmd.Flags().Changed("watch") {
		watching = a.cfg.Watch.Enabled
	}

	if !watching {
		return a.runScenario(cmd, path, out)
	}

	debounce, err := a.cfg.DebounceDuration()
	if err != nil {
		return exitError(exitConfig, "%v", err)
	}
	if cmd.Flags().Changed("debounce") {
		debounce, _ = cmd.Flags().GetDuration("debounce")
	}

	// Failures are reported and the watch continues.
	rerun := func() {
		if err := a.runScenario(cmd, path, out); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
	rerun()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a.log.Info().Str("path", path).Dur("debounce", debounce).Msg("watching scenario")
	err = watch.Run(ctx, path, debounce, func() {
		fmt.Fprintf(out, "\n--- %s changed at %s\n", path, time.Now().Format(time.TimeOnly))
		rerun()
	}, watch.WithLogger(logging.WithComponent(a.log, "watch")))
	if err != nil {
		if errors.Is(err, watch.ErrPathNotExist) {
			return exitError(exitFileNotFound, "%v", err)
		}
		return exitError(exitRuntime, "watching %s: %v", path, err)
	}
	return nil
}

// runScenario loads, runs and reports one scenario.
func (a *app) runScenario(cmd *cobra.Command, path string, out io.Writer) error {
	s, err := loadScenario(path)
	if err != nil {
		return err
	}

	maxNesting, _ := cmd.Flags().GetInt("max-nesting")
	runner := scenario.NewRunner(
		scenario.WithLogger(logging.WithComponent(a.log, "scenario")),
		scenario.WithBusOptions(
			event.WithLogger(logging.WithComponent(a.log, "bus")),
			event.WithTrace(a.cfg.Bus.Trace),
		),
		scenario.WithMaxNesting(maxNesting),
	)

	report, err := runner.Run(s)
	if err != nil {
		return exitError(exitRuntime, "running %s: %v", path, err)
	}
	if err := report.Write(out); err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return exitError(exitExpectation, "%d of %d raises did not match expectations", n, report.Raises())
	}
	return nil
}

// loadScenario maps load failures to exit codes.
func loadScenario(path string) (*scenario.Scenario, error) {
	s, err := scenario.LoadFile(path)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, exitError(exitFileNotFound, "file not found: %s", path)
	}
	return nil, exitError(exitInvalid, "%v", err)
}
