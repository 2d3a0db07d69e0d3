// reconcile/governor.go
package reconcile

import (
	"errors"
	"fmt"

	"github.com/gewnthar/cragbook/models"
)

// ErrTooManyRemovals matches every *TooManyRemovalsError.
var ErrTooManyRemovals = errors.New("too many routes would be archived")

// TooManyRemovalsError is the governor's veto.
type TooManyRemovalsError struct {
	Count int
	Limit int
}

func (e *TooManyRemovalsError) Error() string {
	return fmt.Sprintf("%d routes would be archived, limit is %d", e.Count, e.Limit)
}

func (e *TooManyRemovalsError) Is(target error) bool {
	return target == ErrTooManyRemovals
}

// Governor vetoes a diff that would archive more than MaxArchive routes.
type Governor struct {
	MaxArchive int
}

// Check returns nil when the diff may be applied.
func (g Governor) Check(d *models.Diff) error {
	if n := len(d.Missing); n > g.MaxArchive {
		return &TooManyRemovalsError{Count: n, Limit: g.MaxArchive}
	}
	return nil
}
