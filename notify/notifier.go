// notify/notifier.go

// Package notify tells people what a route sync did. Delivery is best effort:
// callers log a returned error and carry on.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gewnthar/cragbook/models"
)

// SyncSummary describes an applied pass.
type SyncSummary struct {
	RunID       string             `json:"run_id"`
	Trigger     models.SyncTrigger `json:"trigger"`
	AddedRoutes []models.Route     `json:"added_routes"`
	Archived    int                `json:"archived"`
	Updated     int                `json:"updated"`
}

// SyncSkipped describes a pass vetoed by the removal threshold.
type SyncSkipped struct {
	RunID        string             `json:"run_id"`
	Trigger      models.SyncTrigger `json:"trigger"`
	WouldArchive int                `json:"would_archive"`
	Limit        int                `json:"limit"`
}

// Notifier receives the two messages a sync pass can produce.
type Notifier interface {
	SyncSummary(ctx context.Context, s SyncSummary) error
	SyncSkipped(ctx context.Context, s SyncSkipped) error
}

// SummaryText renders the human readable summary message.
func SummaryText(s SyncSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Route sync (%s): %d added, %d archived.", s.Trigger, len(s.AddedRoutes), s.Archived)
	for _, r := range s.AddedRoutes {
		fmt.Fprintf(&b, "\n• %s %s on %s", r.Grade, r.Color, r.WallID)
	}
	return b.String()
}

// SkippedText renders the "too many removals" message.
func SkippedText(s SyncSkipped) string {
	return fmt.Sprintf(
		"Route sync (%s) skipped: too many removals. %d routes would have been archived, the limit is %d. Check the route sheet before syncing again.",
		s.Trigger, s.WouldArchive, s.Limit,
	)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) SyncSummary(ctx context.Context, s SyncSummary) error {
	var errs []error
	for _, n := range m {
		if err := n.SyncSummary(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SyncSkipped(ctx context.Context, s SyncSkipped) error {
	var errs []error
	for _, n := range m {
		if err := n.SyncSkipped(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
