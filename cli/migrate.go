// cli/migrate.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gewnthar/cragbook/database"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openStore(cmd.Context(), rootOpts.Config); err != nil {
				return err
			}
			defer database.CloseDB()

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", rootOpts.Config.Database.Dialect)
			return nil
		},
	}
}
