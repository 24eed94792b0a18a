package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faultline-io/faultline/internal/store"
)

// NewHistoryCommand creates the history command: list archived runs.
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}

			s, err := store.Open(dbPath)
			if err != nil {
				out.Fail(err)
				return WrapExitError(ExitCommandError, "opening database", err)
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				out.Fail(err)
				return WrapExitError(ExitCommandError, "listing runs", err)
			}

			if out.JSON() {
				return out.OK(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived runs")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %-12s  %-12s  %s\n",
				"id", "model", "p_total", "p_rare", "created")
			for _, run := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %-12g  %-12g  %s\n",
					run.ID, run.Model, run.PTotal, run.PRare, run.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "faultline.db", "SQLite database of archived runs")
	return cmd
}
