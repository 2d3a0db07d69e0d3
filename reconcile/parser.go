// reconcile/parser.go
package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gewnthar/cragbook/metrics"
	"github.com/gewnthar/cragbook/models"
	"github.com/gewnthar/cragbook/utils"
)

var (
	// ErrMissingField rejects a row without a zone, grade or color.
	ErrMissingField = errors.New("required cell is empty")
	// ErrInvalidZone rejects a row whose zone does not name a wall.
	ErrInvalidZone = errors.New("zone does not name a wall")
)

// Layouts tried in order when reading the date cell. The year is discarded
// afterwards, so year-less layouts are fine.
var dateLayouts = []string{
	models.SetDateLayout,
	"1/2/2006",
	"1/2/06",
	"1/2/2006 15:04:05",
	"1/2",
	"2006/1/2",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Jan 2",
	"January 2",
	"2 Jan 2006",
	"2-Jan-2006",
	"Mon, Jan 2, 2006",
	time.RFC3339,
}

// ParseRow turns one feed row into a candidate. walls is the ordered wall
// list that zone numbers index into; ref supplies "today" and the year every
// set date is placed in.
func ParseRow(row models.FeedRow, walls []string, ref time.Time) (models.Candidate, error) {
	zone := utils.NormalizeCell(row.Zone)
	color := utils.NormalizeCell(row.Color)
	grade := utils.NormalizeCell(row.Grade)

	switch {
	case zone == "":
		return models.Candidate{}, fmt.Errorf("zone: %w", ErrMissingField)
	case grade == "":
		return models.Candidate{}, fmt.Errorf("grade: %w", ErrMissingField)
	case color == "":
		return models.Candidate{}, fmt.Errorf("color: %w", ErrMissingField)
	}

	wallID, err := wallForZone(zone, walls)
	if err != nil {
		return models.Candidate{}, err
	}

	setter := utils.NormalizeCell(row.Setter)
	if setter == "" {
		setter = models.DefaultSetterName
	}

	return models.Candidate{
		WallID:          wallID,
		Grade:           grade,
		Color:           color,
		DifficultyLabel: models.StringPtr(utils.NormalizeCell(row.DifficultyLabel)),
		SetDate:         NormalizeSetDate(utils.NormalizeCell(row.SetDate), ref),
		SetterName:      setter,
		Style:           models.StringPtr(utils.NormalizeCell(row.Style)),
		HoldType:        models.StringPtr(utils.NormalizeCell(row.HoldType)),
	}, nil
}

func wallForZone(zone string, walls []string) (string, error) {
	n, err := strconv.Atoi(zone)
	if err != nil {
		return "", fmt.Errorf("zone %q: %w", zone, ErrInvalidZone)
	}
	idx := n - 1
	if idx < 0 || idx >= len(walls) {
		return "", fmt.Errorf("zone %d outside 1..%d: %w", n, len(walls), ErrInvalidZone)
	}
	return walls[idx], nil
}

// NormalizeSetDate maps the date cell to YYYY-MM-DD. An unreadable cell
// yields the reference date; a readable one keeps its month and day but
// always takes the reference year.
func NormalizeSetDate(text string, ref time.Time) string {
	parsed, ok := parseDate(text)
	if !ok {
		return ref.Format(models.SetDateLayout)
	}
	// time.Date normalises Feb 29 in a non-leap year to Mar 1.
	return time.Date(ref.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC).Format(models.SetDateLayout)
}

func parseDate(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseOptions controls how a whole feed is read.
type ParseOptions struct {
	Walls      []string
	HeaderRows int
	Reference  time.Time
}

// ParseResult holds the candidates and skipped rows of one feed.
type ParseResult struct {
	Candidates []models.Candidate
	Rejected   []models.RejectedRow
}

// ParseFeed parses every tab in name order. Header rows and blank rows are
// dropped quietly; any other rejected row is logged and reported.
func ParseFeed(tabs map[string][]models.FeedRow, opts ParseOptions, logger zerolog.Logger) ParseResult {
	names := make([]string, 0, len(tabs))
	for name := range tabs {
		names = append(names, name)
	}
	sort.Strings(names)

	result := ParseResult{
		Candidates: []models.Candidate{},
		Rejected:   []models.RejectedRow{},
	}
	for _, name := range names {
		for i, row := range tabs[name] {
			if i < opts.HeaderRows || row.IsBlank() {
				continue
			}
			rowNumber := i + 1

			candidate, err := ParseRow(row, opts.Walls, opts.Reference)
			if err != nil {
				logger.Warn().
					Str("tab", name).
					Int("row", rowNumber).
					Err(err).
					Msg("skipping feed row")
				metrics.FeedRowsRejected.WithLabelValues(rejectReason(err)).Inc()
				result.Rejected = append(result.Rejected, models.RejectedRow{
					Tab:    name,
					Row:    rowNumber,
					Reason: err.Error(),
				})
				continue
			}
			candidate.Tab = name
			candidate.RowNumber = rowNumber
			result.Candidates = append(result.Candidates, candidate)
		}
	}
	return result
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidZone):
		return "invalid_zone"
	default:
		return "other"
	}
}
