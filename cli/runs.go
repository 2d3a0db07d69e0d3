// cli/runs.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/gewnthar/cragbook/database"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), rootOpts.Config)
			if err != nil {
				return err
			}
			defer database.CloseDB()

			runs, err := store.ListSyncRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if rootOpts.Format == "text" {
				return writeRunsText(cmd.OutOrStdout(), runs)
			}
			return writeJSON(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
