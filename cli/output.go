// cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gewnthar/cragbook/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePreviewText(w io.Writer, diff *models.Diff, wouldSkip bool, limit int) {
	fmt.Fprintf(w, "new: %d  existing: %d  missing: %d  rejected: %d\n",
		len(diff.New), len(diff.Existing), len(diff.Missing), len(diff.Rejected))
	for _, c := range diff.New {
		fmt.Fprintf(w, "  + %s %s %s (%s)\n", c.WallID, c.Grade, c.Color, c.SetDate)
	}
	for _, r := range diff.Missing {
		fmt.Fprintf(w, "  - #%d %s %s %s (%s)\n", r.ID, r.WallID, r.Grade, r.Color, r.SetDate)
	}
	for _, r := range diff.Rejected {
		fmt.Fprintf(w, "  ! %s row %d: %s\n", r.Tab, r.Row, r.Reason)
	}
	if wouldSkip {
		fmt.Fprintf(w, "apply would be skipped: %d routes exceed the archive limit of %d\n", len(diff.Missing), limit)
	}
}

func writeApplyText(w io.Writer, result *models.ApplyResult) {
	if result.Skipped {
		fmt.Fprintf(w, "skipped (run %s): %d routes would have been archived\n", result.RunID, result.RoutesThatWouldBeArchivedCount)
		return
	}
	fmt.Fprintf(w, "applied (run %s): %d added, %d archived, %d updated\n",
		result.RunID, result.Added, result.Archived, result.Updated)
}

func writeRunsText(w io.Writer, runs []models.SyncRun) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tTRIGGER\tSTATUS\tADDED\tARCHIVED\tUPDATED\tREJECTED\tID")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Trigger, r.Status,
			r.Added, r.Archived, r.Updated, r.Rejected, r.ID)
	}
	return tw.Flush()
}
