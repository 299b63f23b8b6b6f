package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/birdstrike/internal/pipeline"
)

// inspectCommand loads and cleans the inputs and prints what cleaning did
func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [flags] <light-levels.json> <collision-data.json> <flight-call.json>",
		Short: "Print per-table cleaning statistics without writing any output",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pipeline.New(a.settings)
			if err != nil {
				return err
			}
			insp, err := r.Inspect(pipeline.Paths{
				LightLevels: args[0],
				Collisions:  args[1],
				FlightCalls: args[2],
			})
			if err != nil {
				return err
			}
			return insp.Print(cmd.OutOrStdout())
		},
	}
}
