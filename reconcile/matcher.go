// reconcile/matcher.go
package reconcile

import (
	"time"

	"github.com/gewnthar/cragbook/models"
)

// Strictness controls how closely a candidate must agree with a route to be
// treated as the same listing. The zero value is exact matching.
type Strictness struct {
	// DateToleranceDays lets set dates differ by up to this many days. Every
	// other fingerprint field must still be equal.
	DateToleranceDays int
}

// Matches reports whether the candidate and route share a fingerprint under s.
func (s Strictness) Matches(c models.Candidate, r models.Route) bool {
	cf, rf := c.Fingerprint(), r.Fingerprint()
	if s.DateToleranceDays <= 0 || cf.SetDate == rf.SetDate {
		return cf.Equal(rf)
	}

	cf.SetDate = rf.SetDate
	if !cf.Equal(rf) {
		return false
	}
	return withinDays(c.SetDate, r.SetDate, s.DateToleranceDays)
}

func withinDays(a, b string, days int) bool {
	ta, errA := time.Parse(models.SetDateLayout, a)
	tb, errB := time.Parse(models.SetDateLayout, b)
	if errA != nil || errB != nil {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

// Match returns the first active route whose fingerprint matches the candidate.
func Match(c models.Candidate, active []models.Route, s Strictness) (models.Route, bool) {
	for _, r := range active {
		if s.Matches(c, r) {
			return r, true
		}
	}
	return models.Route{}, false
}
