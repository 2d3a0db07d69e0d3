// cli/sync.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/gewnthar/cragbook/models"
)

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show what a sync would change without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), rootOpts.Config)
			if err != nil {
				return err
			}
			defer a.Close()

			diff, err := a.sync.Preview(cmd.Context())
			if err != nil {
				return err
			}

			wouldSkip := a.sync.WouldBeSkipped(diff)
			if rootOpts.Format == "text" {
				writePreviewText(cmd.OutOrStdout(), diff, wouldSkip, a.sync.MaxArchive())
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), models.PreviewResponse{
				Diff:           diff,
				NewCount:       len(diff.New),
				ExistingCount:  len(diff.Existing),
				MissingCount:   len(diff.Missing),
				RejectedCount:  len(diff.Rejected),
				WouldBeSkipped: wouldSkip,
			})
		},
	}
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Sync the route catalog with the spreadsheet",
		Long: `Fetch the spreadsheet, classify it against the active catalog and write
the result in one transaction. The pass is skipped without writing when it
would archive more routes than sync.max_archive_per_run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), rootOpts.Config)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.sync.Apply(cmd.Context(), models.TriggerCLI)
			if err != nil {
				return err
			}
			if rootOpts.Format == "text" {
				writeApplyText(cmd.OutOrStdout(), result)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}
