// models/api_models.go
package models

// ErrorResponse is the JSON body returned by handlers on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RouteListResponse wraps a route listing.
type RouteListResponse struct {
	Status RouteStatus `json:"status"`
	Count  int         `json:"count"`
	Routes []Route     `json:"routes"`
}

// PreviewResponse is the admin preview payload: the diff plus its counts so a
// reviewer can read the change-set size at a glance.
type PreviewResponse struct {
	Diff          *Diff `json:"diff"`
	NewCount      int   `json:"new_count"`
	ExistingCount int   `json:"existing_count"`
	MissingCount  int   `json:"missing_count"`
	RejectedCount int   `json:"rejected_count"`

	// WouldBeSkipped tells the reviewer that apply will be vetoed.
	WouldBeSkipped bool `json:"would_be_skipped"`
}
