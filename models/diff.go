// models/diff.go
package models

// ExistingMatch pairs a candidate with the active route it matched. Route is
// the persisted record with the candidate's mutable fields merged in.
type ExistingMatch struct {
	RouteID int64 `json:"route_id"`
	Route   Route `json:"route"`
}

// RejectedRow records a feed row the parser skipped.
type RejectedRow struct {
	Tab    string `json:"tab"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Diff is the output of one reconciliation pass. New, Existing and Missing
// are disjoint; Rejected is reported alongside and takes no part in apply.
type Diff struct {
	New      []Candidate     `json:"new"`
	Existing []ExistingMatch `json:"existing"`
	Missing  []Route         `json:"missing"`
	Rejected []RejectedRow   `json:"rejected"`
}

// NewDiff returns a Diff whose slices are empty rather than nil, so it
// serialises as arrays.
func NewDiff() *Diff {
	return &Diff{
		New:      []Candidate{},
		Existing: []ExistingMatch{},
		Missing:  []Route{},
		Rejected: []RejectedRow{},
	}
}

// ApplyResult summarises an apply pass.
type ApplyResult struct {
	RunID    string `json:"run_id"`
	Added    int    `json:"added"`
	Archived int    `json:"archived"`
	Updated  int    `json:"updated"`

	// Skipped is set when the safety gate vetoed the pass; nothing was written.
	Skipped                        bool `json:"skipped"`
	RoutesThatWouldBeArchivedCount int  `json:"routesThatWouldBeArchivedCount,omitempty"`

	AddedRoutes []Route `json:"added_routes"`
}
