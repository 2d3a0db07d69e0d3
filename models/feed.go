// models/feed.go
package models

import "strings"

// FeedRowWidth is the number of columns read from each feed row.
const FeedRowWidth = 8

// FeedRow is one row of a staff spreadsheet tab. The csv tags name the
// columns in sheet order: zone, label, color, grade, style, hold type,
// setter, date.
type FeedRow struct {
	Zone            string `csv:"zone"`
	DifficultyLabel string `csv:"difficulty_label"`
	Color           string `csv:"color"`
	Grade           string `csv:"grade"`
	Style           string `csv:"style"`
	HoldType        string `csv:"hold_type"`
	Setter          string `csv:"setter"`
	SetDate         string `csv:"set_date"`
}

// FeedRowFromCells maps positional cells onto a row. Missing trailing cells
// are empty and cells past the eighth are ignored.
func FeedRowFromCells(cells []string) FeedRow {
	at := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return FeedRow{
		Zone:            at(0),
		DifficultyLabel: at(1),
		Color:           at(2),
		Grade:           at(3),
		Style:           at(4),
		HoldType:        at(5),
		Setter:          at(6),
		SetDate:         at(7),
	}
}

// IsBlank reports whether every cell is empty after trimming.
func (r FeedRow) IsBlank() bool {
	for _, cell := range []string{r.Zone, r.DifficultyLabel, r.Color, r.Grade, r.Style, r.HoldType, r.Setter, r.SetDate} {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
