// models/meta.go
package models

import "time"

// SyncTrigger names what started an apply pass.
type SyncTrigger string

const (
	TriggerAdmin     SyncTrigger = "admin"
	TriggerScheduled SyncTrigger = "scheduled"
	TriggerCLI       SyncTrigger = "cli"
)

// SyncRunStatus is the outcome of an apply pass.
type SyncRunStatus string

const (
	SyncRunApplied SyncRunStatus = "applied"
	SyncRunSkipped SyncRunStatus = "skipped"
	SyncRunFailed  SyncRunStatus = "failed"
)

// SyncRun is the audit record of one apply pass against the route feed.
type SyncRun struct {
	ID           string        `db:"id" json:"id"`
	Trigger      SyncTrigger   `db:"trigger_source" json:"trigger"`
	Status       SyncRunStatus `db:"status" json:"status"`
	Added        int           `db:"added" json:"added"`
	Archived     int           `db:"archived" json:"archived"`
	Updated      int           `db:"updated" json:"updated"`
	Rejected     int           `db:"rejected" json:"rejected"`
	WouldArchive int           `db:"would_archive" json:"would_archive,omitempty"`
	ErrorMessage string        `db:"error_message" json:"error,omitempty"`
	StartedAt    time.Time     `db:"started_at" json:"started_at"`
	FinishedAt   time.Time     `db:"finished_at" json:"finished_at"`
}
