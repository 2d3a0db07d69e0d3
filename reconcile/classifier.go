// reconcile/classifier.go
package reconcile

import (
	"errors"
	"fmt"

	"github.com/gewnthar/cragbook/metrics"
	"github.com/gewnthar/cragbook/models"
)

// ErrDuplicateRow rejects a feed row whose fingerprint repeats an earlier row.
var ErrDuplicateRow = errors.New("duplicates an earlier row")

// Classify partitions the feed candidates and the active catalog into new,
// existing and missing. Each active route is claimed by at most one
// candidate. A candidate repeating an earlier candidate's fingerprint is
// placed in Rejected instead, so one apply never creates two active routes
// with the same fingerprint.
//
// Exact matches are claimed before tolerant ones: a candidate is never
// inserted while an unclaimed active route shares its exact fingerprint.
func Classify(candidates []models.Candidate, active []models.Route, s Strictness) *models.Diff {
	diff := models.NewDiff()

	firstSeen := make(map[fingerprintKey]models.Candidate, len(candidates))
	unique := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := keyOf(c.Fingerprint())
		if first, dup := firstSeen[key]; dup {
			metrics.FeedRowsRejected.WithLabelValues("duplicate").Inc()
			diff.Rejected = append(diff.Rejected, models.RejectedRow{
				Tab:    c.Tab,
				Row:    c.RowNumber,
				Reason: fmt.Errorf("%s row %d: %w", first.Tab, first.RowNumber, ErrDuplicateRow).Error(),
			})
			continue
		}
		firstSeen[key] = c
		unique = append(unique, c)
	}

	claimed := make(map[int64]bool, len(active))
	matched := make([]*models.Route, len(unique))

	claim := func(i int, strict Strictness) {
		for j := range active {
			r := &active[j]
			if !claimed[r.ID] && strict.Matches(unique[i], *r) {
				claimed[r.ID] = true
				matched[i] = r
				return
			}
		}
	}
	for i := range unique {
		claim(i, Strictness{})
	}
	if s.DateToleranceDays > 0 {
		for i := range unique {
			if matched[i] == nil {
				claim(i, s)
			}
		}
	}

	for i, c := range unique {
		if r := matched[i]; r != nil {
			diff.Existing = append(diff.Existing, models.ExistingMatch{
				RouteID: r.ID,
				Route:   r.WithMutableFrom(c),
			})
			continue
		}
		diff.New = append(diff.New, c)
	}

	for _, r := range active {
		if !claimed[r.ID] {
			diff.Missing = append(diff.Missing, r)
		}
	}
	return diff
}

type fingerprintKey struct {
	wallID, grade, color string
	label                string
	hasLabel             bool
	setDate              string
}

func keyOf(f models.Fingerprint) fingerprintKey {
	k := fingerprintKey{
		wallID:  f.WallID,
		grade:   f.Grade,
		color:   f.Color,
		setDate: f.SetDate,
	}
	if f.DifficultyLabel != nil {
		k.label = *f.DifficultyLabel
		k.hasLabel = true
	}
	return k
}
