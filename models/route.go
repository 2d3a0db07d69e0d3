// models/route.go
package models

import "time"

// RouteStatus is the lifecycle state of a catalog route.
type RouteStatus string

const (
	RouteStatusActive   RouteStatus = "active"
	RouteStatusArchived RouteStatus = "archived"
)

// DefaultSetterName is used when the feed row leaves the setter cell blank.
const DefaultSetterName = "Unknown"

// SetDateLayout is the storage format for Route.SetDate.
const SetDateLayout = "2006-01-02"

// Route is one entry of the persisted route catalog.
type Route struct {
	ID              int64       `db:"id" json:"id"`
	WallID          string      `db:"wall_id" json:"wall_id"`
	Grade           string      `db:"grade" json:"grade"`
	Color           string      `db:"color" json:"color"`
	DifficultyLabel *string     `db:"difficulty_label" json:"difficulty_label"`
	SetDate         string      `db:"set_date" json:"set_date"` // YYYY-MM-DD, no time component
	SetterName      string      `db:"setter_name" json:"setter_name"`
	Style           *string     `db:"style" json:"style"`
	HoldType        *string     `db:"hold_type" json:"hold_type"`
	Attributes      []string    `db:"attributes" json:"attributes"` // Stored as a JSON array
	Status          RouteStatus `db:"status" json:"status"`
	RemovedAt       *time.Time  `db:"removed_at" json:"removed_at"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// Candidate is a route derived from one feed row. It is never stored.
type Candidate struct {
	WallID          string  `json:"wall_id"`
	Grade           string  `json:"grade"`
	Color           string  `json:"color"`
	DifficultyLabel *string `json:"difficulty_label"`
	SetDate         string  `json:"set_date"`
	SetterName      string  `json:"setter_name"`
	Style           *string `json:"style"`
	HoldType        *string `json:"hold_type"`

	// Where the row came from; not part of the fingerprint.
	Tab       string `json:"tab,omitempty"`
	RowNumber int    `json:"row,omitempty"`
}

// Fingerprint is the identity tuple used to decide whether a candidate and a
// persisted route describe the same listing.
type Fingerprint struct {
	WallID          string
	Grade           string
	Color           string
	DifficultyLabel *string
	SetDate         string
}

// Equal compares every field; a nil label only equals a nil label.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.WallID == o.WallID &&
		f.Grade == o.Grade &&
		f.Color == o.Color &&
		f.SetDate == o.SetDate &&
		equalOptional(f.DifficultyLabel, o.DifficultyLabel)
}

// Fingerprint returns the identity fields of the route.
func (r Route) Fingerprint() Fingerprint {
	return Fingerprint{
		WallID:          r.WallID,
		Grade:           r.Grade,
		Color:           r.Color,
		DifficultyLabel: r.DifficultyLabel,
		SetDate:         r.SetDate,
	}
}

// Fingerprint returns the identity fields of the candidate.
func (c Candidate) Fingerprint() Fingerprint {
	return Fingerprint{
		WallID:          c.WallID,
		Grade:           c.Grade,
		Color:           c.Color,
		DifficultyLabel: c.DifficultyLabel,
		SetDate:         c.SetDate,
	}
}

// NewRoute builds the active route that inserting this candidate produces.
func (c Candidate) NewRoute(createdAt time.Time) Route {
	return Route{
		WallID:          c.WallID,
		Grade:           c.Grade,
		Color:           c.Color,
		DifficultyLabel: c.DifficultyLabel,
		SetDate:         c.SetDate,
		SetterName:      c.SetterName,
		Style:           c.Style,
		HoldType:        c.HoldType,
		Attributes:      []string{},
		Status:          RouteStatusActive,
		CreatedAt:       createdAt,
	}
}

// WithMutableFrom returns a copy of r carrying the candidate's mutable fields.
func (r Route) WithMutableFrom(c Candidate) Route {
	merged := r
	merged.SetterName = c.SetterName
	merged.Style = c.Style
	merged.HoldType = c.HoldType
	return merged
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
