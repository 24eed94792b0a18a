package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faultline-io/faultline/internal/analysis"
)

// NewValidateCommand creates the validate command: load and freeze a
// model without running any analysis.
func NewValidateCommand(root *RootOptions) *cobra.Command {
	var missionTime float64

	cmd := &cobra.Command{
		Use:   "validate <model.yaml>",
		Short: "Validate a fault-tree model without analyzing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}

			m, err := LoadModel(args[0], missionTime)
			if err != nil {
				out.Fail(err)
				return WrapExitError(ExitFailure, "validation failed", err)
			}

			if out.JSON() {
				payload := struct {
					Model       string `json:"model"`
					BasicEvents int    `json:"basic_events"`
					Gates       int    `json:"gates"`
				}{m.Name(), len(m.BasicEvents()), len(m.Gates())}
				return out.OK(payload)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model %s is valid: %d basic events, %d gates\n",
				m.Name(), len(m.BasicEvents()), len(m.Gates()))
			return nil
		},
	}

	cmd.Flags().Float64Var(&missionTime, "mission-time", analysis.DefaultMissionTime, "mission time in hours")
	return cmd
}
