package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			a.log.Debug().Str("scenario", s.Name).Msg("scenario valid")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d subscriptions, %d raises)\n",
				s.Name, len(s.Subscriptions), len(s.Raises))
			return nil
		},
	}
}
