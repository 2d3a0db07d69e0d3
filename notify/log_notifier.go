// notify/log_notifier.go
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the structured log. It is used when no
// other channel is configured.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n LogNotifier) SyncSummary(_ context.Context, s SyncSummary) error {
	n.Logger.Info().
		Str("run_id", s.RunID).
		Str("trigger", string(s.Trigger)).
		Int("added", len(s.AddedRoutes)).
		Int("archived", s.Archived).
		Int("updated", s.Updated).
		Msg(SummaryText(s))
	return nil
}

func (n LogNotifier) SyncSkipped(_ context.Context, s SyncSkipped) error {
	n.Logger.Warn().
		Str("run_id", s.RunID).
		Str("trigger", string(s.Trigger)).
		Int("would_archive", s.WouldArchive).
		Int("limit", s.Limit).
		Msg(SkippedText(s))
	return nil
}
